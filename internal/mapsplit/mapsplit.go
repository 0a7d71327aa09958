// Package mapsplit partitions a parsed map document into small, diff-friendly
// files for version control and reassembles them. Registry sections are moved
// together with the sections they register; huge packed sections go to
// fixed-record binary sidecars instead of thousand-line INI blocks.
package mapsplit

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/example/rulekit/pkg/inidoc"
	"github.com/example/rulekit/pkg/initree"
)

// packValueSize is the fixed width of one pack record's value field. Packed
// map sections store base64 chunks of at most 70 characters per line.
const packValueSize = 70

// Output describes one split INI file.
type Output struct {
	// File is the output name, relative to the split directory.
	File string `yaml:"file"`
	// Registries are moved with every section their type list names.
	Registries []string `yaml:"registries,omitempty"`
	// Sections are moved verbatim.
	Sections []string `yaml:"sections,omitempty"`
}

// Pack describes one section stored as a binary sidecar.
type Pack struct {
	File    string `yaml:"file"`
	Section string `yaml:"section"`
}

// Plan drives a split: which sections land in which file. Whatever the plan
// does not claim stays in the partial file.
type Plan struct {
	Outputs []Output `yaml:"outputs"`
	Packs   []Pack   `yaml:"packs,omitempty"`
	// Partial names the remainder file. Empty means "partial.ini".
	Partial string `yaml:"partial,omitempty"`
}

// DefaultPlan reproduces the classic grouping for Yuri's Revenge maps.
func DefaultPlan() Plan {
	return Plan{
		Outputs: []Output{
			{File: "houses.ini", Registries: []string{"Houses", "Countries"}},
			{File: "AI_local.ini",
				Registries: []string{"TaskForces", "ScriptTypes", "TeamTypes"},
				Sections:   []string{"AITriggerTypes", "AITriggerTypesEnable"}},
			{File: "logics.ini",
				Sections: []string{"VariableNames", "Triggers", "Events", "Actions", "Tags"}},
			{File: "objects.ini",
				Sections: []string{"Infantry", "Units", "Aircraft", "Structures",
					"Smudge", "Terrain", "CellTags", "Waypoints"}},
		},
		Packs: []Pack{
			{File: "iso.mappkg", Section: "IsoMapPack5"},
			{File: "ovl.mappkg", Section: "OverlayPack"},
			{File: "ovldata.mappkg", Section: "OverlayDataPack"},
		},
		Partial: "partial.ini",
	}
}

// LoadPlan reads a YAML plan file.
func LoadPlan(path string) (Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("load split plan: %w", err)
	}
	var p Plan
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Plan{}, fmt.Errorf("parse split plan %s: %w", path, err)
	}
	if len(p.Outputs) == 0 && len(p.Packs) == 0 {
		return Plan{}, fmt.Errorf("split plan %s claims no sections", path)
	}
	return p, nil
}

func (p Plan) partialFile() string {
	if p.Partial == "" {
		return "partial.ini"
	}
	return p.Partial
}

// Split writes doc into outDir per plan, consuming the claimed sections from
// doc as it goes; what remains afterwards is exactly the partial file's
// content.
func Split(doc *inidoc.Document, outDir string, plan Plan, wopts inidoc.WriteOptions) error {
	for _, out := range plan.Outputs {
		part := inidoc.NewDocument()
		for _, reg := range out.Registries {
			extractRegistry(doc, part, reg)
		}
		moveSections(doc, part, out.Sections)
		if err := writeFile(part, filepath.Join(outDir, out.File), wopts); err != nil {
			return err
		}
	}
	for _, pack := range plan.Packs {
		if err := writePack(doc, pack.Section, filepath.Join(outDir, pack.File)); err != nil {
			return err
		}
	}
	return writeFile(doc, filepath.Join(outDir, plan.partialFile()), wopts)
}

// Join reads a split directory back into one document: the partial file
// first, then every plan output in order, then the binary packs. Missing
// split files surface as diagnostics, matching tree-read semantics.
func Join(ctx context.Context, srcDir string, plan Plan) (*inidoc.Document, []initree.Diagnostic, error) {
	paths := []string{filepath.Join(srcDir, plan.partialFile())}
	for _, out := range plan.Outputs {
		paths = append(paths, filepath.Join(srcDir, out.File))
	}
	reader := initree.NewReader(initree.Options{})
	doc, diags, err := reader.ReadFiles(ctx, paths)
	if err != nil {
		return nil, nil, err
	}
	for _, pack := range plan.Packs {
		err := readPack(doc, pack.Section, filepath.Join(srcDir, pack.File))
		if errors.Is(err, fs.ErrNotExist) {
			// splitting a map without that section wrote no pack file
			continue
		}
		if err != nil {
			diags = append(diags, initree.Diagnostic{
				Path:   filepath.Join(srcDir, pack.File),
				Reason: initree.ReasonUnreadable,
				Err:    err,
			})
		}
	}
	return doc, diags, nil
}

// extractRegistry moves a registry section into part, re-keyed 0..n-1 with
// duplicates collapsed, together with every member section it names.
func extractRegistry(doc, part *inidoc.Document, name string) {
	members := doc.TypeList(name)
	if len(members) == 0 {
		return
	}
	doc.Remove(name)
	reg := inidoc.NewSection()
	for i, member := range members {
		reg.Set(strconv.Itoa(i), member)
	}
	part.Put(name, reg)
	moveSections(doc, part, members)
}

func moveSections(doc, part *inidoc.Document, names []string) {
	for _, name := range names {
		sec, ok := doc.Section(name)
		if !ok {
			continue
		}
		part.Put(name, sec)
		if parent, ok := doc.Parent(name); ok {
			_ = part.SetParent(name, parent)
		}
		doc.Remove(name)
	}
}

func writeFile(doc *inidoc.Document, path string, wopts inidoc.WriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create split file: %w", err)
	}
	defer f.Close()
	if err := inidoc.Write(f, doc, wopts); err != nil {
		return err
	}
	return f.Close()
}

// packRecord is the on-disk layout of one packed entry: the numeric key and
// the zero-padded value.
type packRecord struct {
	Index int32
	Value [packValueSize]byte
}

// writePack consumes the named section into a binary sidecar. Sections whose
// keys are not all numeric cannot be packed.
func writePack(doc *inidoc.Document, name, path string) error {
	sec, ok := doc.Section(name)
	if !ok {
		return nil
	}
	// Validate every entry before touching the filesystem so a bad section
	// never leaves a truncated sidecar behind.
	recs := make([]packRecord, 0, sec.Len())
	for _, pair := range sec.Pairs() {
		idx, err := strconv.Atoi(pair.Key)
		if err != nil {
			return fmt.Errorf("pack [%s]: key %q is not numeric", name, pair.Key)
		}
		if len(pair.Value) > packValueSize {
			return fmt.Errorf("pack [%s]: value under key %q exceeds %d bytes", name, pair.Key, packValueSize)
		}
		rec := packRecord{Index: int32(idx)}
		copy(rec.Value[:], pair.Value)
		recs = append(recs, rec)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create pack file: %w", err)
	}
	defer f.Close()
	for i := range recs {
		if err := binary.Write(f, binary.LittleEndian, &recs[i]); err != nil {
			return fmt.Errorf("write pack %s: %w", path, err)
		}
	}
	doc.Remove(name)
	return f.Close()
}

func readPack(doc *inidoc.Document, name, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	sec := doc.Ensure(name)
	r := bytes.NewReader(raw)
	for r.Len() > 0 {
		var rec packRecord
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			return fmt.Errorf("read pack %s: %w", path, err)
		}
		sec.Set(strconv.Itoa(int(rec.Index)), string(bytes.TrimRight(rec.Value[:], "\x00")))
	}
	return nil
}
