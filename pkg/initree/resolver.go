// Package initree discovers and reads `[#include]` trees of dialect files:
// a deterministic pre-order walk enumerates every included file under the
// root's directory, and a bounded worker pool reads them all into one merged
// document in exactly that order.
package initree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"

	"github.com/example/rulekit/internal/textenc"
	"github.com/example/rulekit/pkg/inidoc"
)

// IncludeSection is the section whose values name included sub-files.
const IncludeSection = "#include"

// maxIncludeDepth caps nesting so a file including itself terminates with a
// diagnostic instead of recursing forever.
const maxIncludeDepth = 64

// Reasons attached to per-file diagnostics.
const (
	ReasonUnreadable  = "unreadable"
	ReasonParse       = "parse"
	ReasonOutsideRoot = "outside-root"
	ReasonTooDeep     = "too-deep"
	ReasonUndecodable = "undecodable"
)

// Diagnostic records a file that was skipped or degraded during resolution or
// reading. Diagnostics never abort a tree operation.
type Diagnostic struct {
	Path   string
	Reason string
	Err    error
}

func (d Diagnostic) String() string {
	if d.Err != nil {
		return fmt.Sprintf("%s: %s: %v", d.Path, d.Reason, d.Err)
	}
	return fmt.Sprintf("%s: %s", d.Path, d.Reason)
}

// Resolver enumerates the include tree rooted at one dialect file.
type Resolver struct {
	log logr.Logger
}

// NewResolver returns a resolver logging skips through log.
func NewResolver(log logr.Logger) *Resolver {
	return &Resolver{log: log}
}

// Resolve walks the include tree depth-first in declaration order and returns
// every readable node's path, the root itself first. Children are resolved
// against the root's directory and must stay inside it; nodes that escape, or
// cannot be read or parsed, are skipped with a diagnostic and their own
// includes are not followed. A repeated path (diamond inclusion) is emitted
// once per occurrence.
//
// Only caller cancellation produces an error; no partial order is returned
// with one.
func (r *Resolver) Resolve(ctx context.Context, root string) ([]string, []Diagnostic, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve root %q: %w", root, err)
	}
	w := &walker{
		base: filepath.Dir(absRoot),
		log:  r.log,
	}
	if err := w.walk(ctx, absRoot, 0, true); err != nil {
		return nil, nil, err
	}
	return w.order, w.diags, nil
}

type walker struct {
	base  string
	log   logr.Logger
	order []string
	diags []Diagnostic
}

func (w *walker) walk(ctx context.Context, path string, depth int, isRoot bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, diag := loadForScan(path)
	if diag != nil {
		// The root stays in the order even when unreadable, so the tree
		// reader reports it; a bad child is dropped entirely.
		if isRoot {
			w.order = append(w.order, path)
		}
		w.skip(*diag)
		return nil
	}
	w.order = append(w.order, path)

	inc, ok := doc.Section(IncludeSection)
	if !ok {
		return nil
	}
	for _, rel := range inc.Values() {
		child := rel
		if !filepath.IsAbs(child) {
			child = filepath.Join(w.base, child)
		}
		child = filepath.Clean(child)
		if !within(w.base, child) {
			w.skip(Diagnostic{Path: child, Reason: ReasonOutsideRoot})
			continue
		}
		if depth+1 > maxIncludeDepth {
			w.skip(Diagnostic{Path: child, Reason: ReasonTooDeep})
			continue
		}
		if err := w.walk(ctx, child, depth+1, false); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) skip(d Diagnostic) {
	w.diags = append(w.diags, d)
	w.log.V(1).Info("skipping include node", "path", d.Path, "reason", d.Reason)
}

// loadForScan parses just enough of a node to read its include directive; a
// structural parse failure makes the node as unusable as an unreadable one.
func loadForScan(path string) (*inidoc.Document, *Diagnostic) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &Diagnostic{Path: path, Reason: ReasonUnreadable, Err: err}
	}
	text, _ := textenc.Decode(raw)
	doc, err := inidoc.Parse(strings.NewReader(text))
	if err != nil {
		return nil, &Diagnostic{Path: path, Reason: ReasonParse, Err: err}
	}
	return doc, nil
}

// within reports whether path is base itself or inside base's subtree.
func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
