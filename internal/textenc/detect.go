// Package textenc decodes raw rule-file bytes into text. Community mods ship
// files in a mix of UTF-8 and legacy regional codepages, so reads go through
// a statistical charset guess with fixed fallbacks instead of trusting any
// single encoding.
package textenc

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// confidenceFloor is the chardet confidence (0..100) below which the guess is
// discarded in favor of the fallback list.
const confidenceFloor = 80

// Result describes how a buffer was decoded.
type Result struct {
	// Encoding is the charset that produced the returned text.
	Encoding string
	// Confidence is the detector's score for its best guess, 0..100.
	Confidence int
	// Fallback is set when the guess was unusable and the fixed fallback
	// list was consulted.
	Fallback bool
	// Failed is set when no candidate decoded cleanly and the first
	// fallback was forced with replacement characters.
	Failed bool
}

// fallbacks are tried in order when the statistical guess is rejected:
// modern UTF-8 first, then GBK for legacy Chinese community files.
var fallbacks = []string{"UTF-8", "GBK"}

// Detect reports the encoding Decode would choose, without keeping the text.
func Detect(data []byte) Result {
	_, res := Decode(data)
	return res
}

// Decode converts raw bytes to text, never failing: when nothing decodes
// cleanly the first fallback is forced and Result.Failed is set.
func Decode(data []byte) (string, Result) {
	if len(data) == 0 {
		return "", Result{Encoding: fallbacks[0], Confidence: 100}
	}

	res := Result{Encoding: fallbacks[0]}
	if best, err := chardet.NewTextDetector().DetectBest(data); err == nil {
		res.Confidence = best.Confidence
		if best.Confidence >= confidenceFloor {
			if text, ok := decodeClean(best.Charset, data); ok {
				res.Encoding = best.Charset
				return text, res
			}
		}
	}

	res.Fallback = true
	for _, name := range fallbacks {
		if text, ok := decodeClean(name, data); ok {
			res.Encoding = name
			return text, res
		}
	}

	res.Encoding = fallbacks[0]
	res.Failed = true
	return strings.ToValidUTF8(string(data), string(utf8.RuneError)), res
}

// DecodeAs decodes with an explicit charset, for callers that already know
// the file's encoding. Unknown names or dirty decodes return an error.
func DecodeAs(name string, data []byte) (string, error) {
	text, ok := decodeClean(name, data)
	if !ok {
		return "", fmt.Errorf("decode as %s: input is not valid %s", name, name)
	}
	return text, nil
}

// decodeClean decodes data with the named charset and reports whether the
// result is clean. UTF-8 is validated byte-exact; other charsets are deemed
// dirty when the decoder had to emit a replacement rune, which no rule file
// legitimately contains. A leading byte-order mark is dropped so it cannot
// leak into the first key of a parse.
func decodeClean(name string, data []byte) (string, bool) {
	enc, err := lookup(name)
	if err != nil {
		return "", false
	}
	if enc == nil { // UTF-8 family maps to a nop transformer
		if !utf8.Valid(data) {
			return "", false
		}
		return strings.TrimPrefix(string(data), "\uFEFF"), true
	}
	text, err := enc.NewDecoder().String(string(data))
	if err != nil || strings.ContainsRune(text, utf8.RuneError) {
		return "", false
	}
	return strings.TrimPrefix(text, "\uFEFF"), true
}

func lookup(name string) (encoding.Encoding, error) {
	switch strings.ToUpper(name) {
	case "UTF-8", "UTF8", "ASCII", "US-ASCII":
		return nil, nil
	case "GBK", "GB2312":
		return simplifiedchinese.GBK, nil
	case "GB-18030", "GB18030":
		return simplifiedchinese.GB18030, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("charset %q has no decoder", name)
	}
	return enc, nil
}
