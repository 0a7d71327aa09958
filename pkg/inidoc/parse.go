package inidoc

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseError reports a structural failure in dialect text. It fails the whole
// file per the error model; tree reads downgrade it to a per-file diagnostic.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Parse reads dialect text into a fresh document.
func Parse(r io.Reader) (*Document, error) {
	d := NewDocument()
	if err := ParseInto(d, r); err != nil {
		return nil, err
	}
	return d, nil
}

// ParseInto reads dialect text into an existing document, the primitive used
// when several split files accumulate into one model. Sections re-declared by
// the input are updated in place; the document is left partially updated when
// an error is returned.
func ParseInto(d *Document, r io.Reader) error {
	cur := d.Header()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
		case line[0] == '[':
			sec, err := parseDeclaration(d, line, lineNo)
			if err != nil {
				return err
			}
			cur = sec
		case line[0] == ';':
			cur.AddComment(trimComment(line))
		default:
			parseEntry(cur, line)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}
	return nil
}

// parseDeclaration handles `[Name]`, `[Child]:[Parent]`, and a trailing
// summary comment on either form.
func parseDeclaration(d *Document, line string, lineNo int) (*Section, error) {
	name, rest, err := bracketed(line, lineNo)
	if err != nil {
		return nil, err
	}
	sec := d.Ensure(name)
	if strings.HasPrefix(rest, ":") {
		parent, tail, err := bracketed(strings.TrimSpace(rest[1:]), lineNo)
		if err != nil {
			return nil, err
		}
		if err := d.SetParent(name, parent); err != nil {
			return nil, &ParseError{Line: lineNo, Msg: err.Error()}
		}
		rest = tail
	}
	rest = strings.TrimSpace(rest)
	switch {
	case rest == "":
	case rest[0] == ';':
		if t := trimComment(rest); t != "" {
			sec.Summary = t
		}
	default:
		return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("trailing junk after [%s]: %q", name, rest)}
	}
	return sec, nil
}

// bracketed consumes a leading "[name]" and returns name plus the remainder.
func bracketed(s string, lineNo int) (string, string, error) {
	if s == "" || s[0] != '[' {
		return "", "", &ParseError{Line: lineNo, Msg: fmt.Sprintf("expected section name in %q", s)}
	}
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return "", "", &ParseError{Line: lineNo, Msg: fmt.Sprintf("unterminated section name in %q", s)}
	}
	return s[1:end], s[end+1:], nil
}

// parseEntry handles a key=value line with an optional trailing comment.
// Lines without '=' and lines whose key contains ';' carry no data; they are
// retained as comments, matching how the game engine skips them.
func parseEntry(sec *Section, line string) {
	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		sec.AddComment(line)
		return
	}
	key := strings.TrimSpace(line[:eq])
	if key == "" {
		return
	}
	if strings.ContainsRune(key, ';') {
		sec.AddComment(trimComment(line))
		return
	}
	rawVal := line[eq+1:]
	value := rawVal
	trailing := ""
	if c := strings.IndexByte(rawVal, ';'); c >= 0 {
		value = rawVal[:c]
		trailing = trimComment(rawVal[c:])
	}
	stored := sec.Set(key, strings.TrimSpace(value))
	if trailing != "" {
		sec.SetTrailing(stored, trailing)
	}
}

// trimComment strips the leading ';' run and surrounding space from a
// comment fragment, keeping only its text.
func trimComment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, ";")
	return strings.TrimSpace(s)
}
