package inidoc

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteOptions controls the textual rendering of a document.
//
// Trailing comments on key/value lines and section summaries always render
// with the fixed "  ; " form; Commenting affects standalone comment lines
// only.
type WriteOptions struct {
	// Pairing joins keys with values. Empty means "=".
	Pairing string
	// Commenting prefixes standalone comment lines. Empty means "; ".
	Commenting string
	// BlankLines separates section blocks. DefaultWriteOptions sets 1;
	// a caller-provided 0 is honored.
	BlankLines int
}

// DefaultWriteOptions mirrors the engine's usual layout.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{Pairing: "=", Commenting: "; ", BlankLines: 1}
}

func (o WriteOptions) normalized() WriteOptions {
	if o.Pairing == "" {
		o.Pairing = "="
	}
	if o.Commenting == "" {
		o.Commenting = "; "
	}
	if o.BlankLines < 0 {
		o.BlankLines = 0
	}
	return o
}

// Write renders the document as dialect text: header entries first, then each
// section in document order, with inheritance as [Child]:[Parent].
func Write(w io.Writer, d *Document, opts WriteOptions) error {
	opts = opts.normalized()
	bw := bufio.NewWriter(w)
	sep := strings.Repeat("\n", opts.BlankLines)

	writeBody(bw, d.Header(), opts)
	bw.WriteString(sep)
	for _, name := range d.Names() {
		sec, _ := d.Section(name)
		bw.WriteString("[" + name + "]")
		if parent, ok := d.Parent(name); ok {
			bw.WriteString(":[" + parent + "]")
		}
		if sec.Summary != "" {
			bw.WriteString("  ; " + sec.Summary)
		}
		bw.WriteByte('\n')
		writeBody(bw, sec, opts)
		bw.WriteString(sep)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// Render is a convenience wrapper returning the text directly, used by diff
// and test helpers.
func Render(d *Document, opts WriteOptions) string {
	var b strings.Builder
	_ = Write(&b, d, opts)
	return b.String()
}

func writeBody(bw *bufio.Writer, sec *Section, opts WriteOptions) {
	for _, e := range sec.entries {
		switch e.kind {
		case kindComment:
			bw.WriteString(opts.Commenting + e.comment + "\n")
		case kindPair:
			bw.WriteString(e.key + opts.Pairing + e.value)
			if e.comment != "" {
				bw.WriteString("  ; " + e.comment)
			}
			bw.WriteByte('\n')
		}
	}
}
