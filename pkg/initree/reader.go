package initree

import (
	"context"
	"os"
	"runtime"
	"strings"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/example/rulekit/internal/textenc"
	"github.com/example/rulekit/pkg/inidoc"
)

// Options configures a tree read.
type Options struct {
	// Workers bounds concurrent file reads. Zero or negative picks the CPU
	// count.
	Workers int
	// Encoding forces a charset for every file instead of detection. Files
	// that are not valid in it still go through detection, with an
	// undecodable diagnostic.
	Encoding string
	// Logger receives per-file skip events. The zero value discards.
	Logger logr.Logger
}

// Reader reads a root file and its include tree into one document.
type Reader struct {
	opts     Options
	resolver *Resolver
}

// NewReader returns a tree reader with the given options.
func NewReader(opts Options) *Reader {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Logger.GetSink() == nil {
		opts.Logger = logr.Discard()
	}
	return &Reader{opts: opts, resolver: NewResolver(opts.Logger)}
}

// ReadTree resolves root's include tree and reads every discovered file into
// one merged document. Skipped and degraded files come back as diagnostics;
// the document is usable even when some nodes were dropped. On cancellation
// no partial document is returned.
func (r *Reader) ReadTree(ctx context.Context, root string) (*inidoc.Document, []Diagnostic, error) {
	paths, diags, err := r.resolver.Resolve(ctx, root)
	if err != nil {
		return nil, nil, err
	}
	// The resolver keeps an unreadable root in the order; reading it again
	// would report the same failure twice, so drop already-diagnosed paths.
	if len(diags) > 0 {
		flagged := make(map[string]struct{}, len(diags))
		for _, d := range diags {
			flagged[d.Path] = struct{}{}
		}
		kept := paths[:0]
		for _, p := range paths {
			if _, ok := flagged[p]; !ok {
				kept = append(kept, p)
			}
		}
		paths = kept
	}
	return r.readMerge(ctx, paths, diags)
}

// ReadFiles reads an explicit sequence of files, bypassing include
// resolution, and merges them in the given order. The original engine's
// directory confinement does not apply here: the caller owns the list.
func (r *Reader) ReadFiles(ctx context.Context, paths []string) (*inidoc.Document, []Diagnostic, error) {
	return r.readMerge(ctx, paths, nil)
}

// fileResult carries one worker's output back to the merge step.
type fileResult struct {
	doc   *inidoc.Document
	diags []Diagnostic
}

// readMerge fans file reads out to a bounded pool, then merges strictly in
// the supplied path order. Workers may finish in any order; each writes only
// its own slot, so the merged document is the same under any scheduling.
func (r *Reader) readMerge(ctx context.Context, paths []string, diags []Diagnostic) (*inidoc.Document, []Diagnostic, error) {
	results := make([]fileResult, len(paths))
	sem := make(chan struct{}, r.opts.Workers)
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()
			results[i] = r.readOne(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	merged := inidoc.NewDocument()
	for _, res := range results {
		diags = append(diags, res.diags...)
		if res.doc != nil {
			merged.Merge(res.doc)
		}
	}
	return merged, diags, nil
}

// readOne owns its file exclusively: open, decode, parse. Failures degrade to
// diagnostics so a single bad file never sinks the tree.
func (r *Reader) readOne(path string) fileResult {
	var res fileResult
	raw, err := os.ReadFile(path)
	if err != nil {
		res.diags = append(res.diags, Diagnostic{Path: path, Reason: ReasonUnreadable, Err: err})
		return res
	}

	var text string
	if r.opts.Encoding != "" {
		text, err = textenc.DecodeAs(r.opts.Encoding, raw)
	}
	if r.opts.Encoding == "" || err != nil {
		var dec textenc.Result
		text, dec = textenc.Decode(raw)
		if dec.Failed {
			res.diags = append(res.diags, Diagnostic{Path: path, Reason: ReasonUndecodable})
		}
	}

	doc, err := inidoc.Parse(strings.NewReader(text))
	if err != nil {
		res.diags = append(res.diags, Diagnostic{Path: path, Reason: ReasonParse, Err: err})
		return res
	}
	res.doc = doc
	r.opts.Logger.V(1).Info("parsed file", "path", path, "sections", doc.Len())
	return res
}
