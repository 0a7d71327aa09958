package initree

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func resolvePaths(t *testing.T, dir, root string) ([]string, []Diagnostic) {
	t.Helper()
	paths, diags, err := NewResolver(logr.Discard()).Resolve(context.Background(), filepath.Join(dir, root))
	require.NoError(t, err)
	rel := make([]string, len(paths))
	for i, p := range paths {
		r, err := filepath.Rel(dir, p)
		require.NoError(t, err)
		rel[i] = filepath.ToSlash(r)
	}
	return rel, diags
}

func TestResolvePreOrderDepthFirst(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"root.ini":  "[#include]\n0=a.ini\n1=b.ini\n",
		"a.ini":     "[#include]\n0=sub/c.ini\n",
		"sub/c.ini": "[C]\n",
		"b.ini":     "[B]\n",
	})
	order, diags := resolvePaths(t, dir, "root.ini")
	assert.Equal(t, []string{"root.ini", "a.ini", "sub/c.ini", "b.ini"}, order)
	assert.Empty(t, diags)
}

func TestResolveSkipsUnreadableChild(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"root.ini": "[#include]\n0=a.ini\n1=b.ini\n",
		"b.ini":    "[B]\n",
	})
	order, diags := resolvePaths(t, dir, "root.ini")
	assert.Equal(t, []string{"root.ini", "b.ini"}, order)
	require.Len(t, diags, 1)
	assert.Equal(t, ReasonUnreadable, diags[0].Reason)
	assert.Contains(t, diags[0].Path, "a.ini")
}

func TestResolveConfinesToRootDirectory(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"tree/root.ini": "[#include]\n0=../escape.ini\n1=ok.ini\n",
		"tree/ok.ini":   "[OK]\n",
		"escape.ini":    "[Escape]\n",
	})
	order, diags := resolvePaths(t, filepath.Join(dir, "tree"), "root.ini")
	assert.Equal(t, []string{"root.ini", "ok.ini"}, order)
	require.Len(t, diags, 1)
	assert.Equal(t, ReasonOutsideRoot, diags[0].Reason)
}

func TestResolveDiamondEmittedPerOccurrence(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"root.ini":   "[#include]\n0=a.ini\n1=b.ini\n",
		"a.ini":      "[#include]\n0=shared.ini\n",
		"b.ini":      "[#include]\n0=shared.ini\n",
		"shared.ini": "[S]\n",
	})
	order, diags := resolvePaths(t, dir, "root.ini")
	assert.Equal(t, []string{"root.ini", "a.ini", "shared.ini", "b.ini", "shared.ini"}, order)
	assert.Empty(t, diags)
}

func TestResolveSelfIncludeTerminates(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"root.ini": "[#include]\n0=root.ini\n",
	})
	order, diags := resolvePaths(t, dir, "root.ini")
	assert.Equal(t, maxIncludeDepth+1, len(order), "walk stops at the depth cap")
	require.NotEmpty(t, diags)
	assert.Equal(t, ReasonTooDeep, diags[len(diags)-1].Reason)
}

func TestResolveUnparsableChildTreatedUnreadable(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"root.ini": "[#include]\n0=bad.ini\n",
		"bad.ini":  "[Broken\n",
	})
	order, diags := resolvePaths(t, dir, "root.ini")
	assert.Equal(t, []string{"root.ini"}, order)
	require.Len(t, diags, 1)
	assert.Equal(t, ReasonParse, diags[0].Reason)
}

func TestResolveUnreadableRootStillListed(t *testing.T) {
	dir := t.TempDir()
	order, diags := resolvePaths(t, dir, "missing.ini")
	assert.Equal(t, []string{"missing.ini"}, order)
	require.Len(t, diags, 1)
	assert.Equal(t, ReasonUnreadable, diags[0].Reason)
}

func TestResolveCancellation(t *testing.T) {
	dir := writeTree(t, map[string]string{"root.ini": "[A]\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	paths, diags, err := NewResolver(logr.Discard()).Resolve(ctx, filepath.Join(dir, "root.ini"))
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, paths)
	assert.Nil(t, diags)
}
