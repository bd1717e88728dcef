// Package discover implements the driver loop: turning file and glob
// arguments into decoded samples, folding each into a summary, and
// reporting per-file failures without aborting the run.
//
// Folding is the one place this module steps outside the single-threaded
// core on purpose. shapeinfer.Join is commutative, associative, and
// idempotent, so a shard of files can be folded on its own goroutine and
// the partial results joined back together afterward; the result is
// identical to folding every file sequentially in any order. Run exploits
// that with golang.org/x/sync/errgroup.
package discover

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	shapeinfer "go.shapeinfer.dev/shapeinfer"
	"go.shapeinfer.dev/shapeinfer/filter"
	"go.shapeinfer.dev/shapeinfer/jsonval"
)

// FileError records a single file's failure to read, decode, or observe
// without stopping the rest of the run.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

func (e *FileError) Unwrap() error { return e.Err }

// Result is the outcome of a Run: the folded summary's lowered type, plus
// any per-file errors encountered along the way. A Result is still usable
// even when Errors is non-empty, since one bad file never aborts the rest.
type Result struct {
	Ty     shapeinfer.Ty
	Errors []*FileError

	// Files lists every path actually folded into Ty, in the order the
	// expanded input list gave them (shards are contiguous runs of that
	// list and are collected in index order).
	Files []string
}

// Option configures a Run.
type Option func(*runConfig)

type runConfig struct {
	policy     *shapeinfer.Policy
	shards     int
	hinters    []shapeinfer.Hinter
	filterExpr *filter.Expr
	onNotice   func(path string, msg string)
}

// WithPolicy sets the Policy used by every shard's Observe+Join folding.
func WithPolicy(p *shapeinfer.Policy) Option {
	return func(c *runConfig) { c.policy = p }
}

// WithHinters sets the Hint sources applied to the folded Ty once, after
// every shard has joined, in priority order.
func WithHinters(hinters ...shapeinfer.Hinter) Option {
	return func(c *runConfig) { c.hinters = hinters }
}

// WithFilter sets a pre-filter expression applied to each decoded sample
// before it is folded. A sample the expression resolves to zero values
// contributes nothing; one it resolves to several values (via a "[]"
// iteration step) has each of those values folded as if it were its own
// independent sample, joined into the same file's contribution.
func WithFilter(e *filter.Expr) Option {
	return func(c *runConfig) { c.filterExpr = e }
}

// WithShards sets how many concurrent workers shard the input file list.
// Values less than 1 are clamped to 1.
func WithShards(n int) Option {
	return func(c *runConfig) {
		if n < 1 {
			n = 1
		}

		c.shards = n
	}
}

// WithNotice registers a callback invoked once per file successfully
// folded, for driver-level progress notices. The only message Run sends
// is "folded"; the CLI prints it on a TTY and copies it to the audit log.
func WithNotice(f func(path, msg string)) Option {
	return func(c *runConfig) { c.onNotice = f }
}

// Run expands args (plain paths or globs) into a file list, reads and
// decodes each file concurrently in shards, folds each shard's files into
// a partial summary via sequential Observe+Join, and joins the partial
// summaries into one final Ty. A glob that matches nothing adds no files;
// a literal path that cannot be stat'ed is an error; a file that exists
// but fails to parse or observe is recorded in Result.Errors and skipped.
func Run(ctx context.Context, args []string, opts ...Option) (*Result, error) {
	cfg := &runConfig{policy: shapeinfer.DefaultPolicy(), shards: 4}
	for _, opt := range opts {
		opt(cfg)
	}

	files, err := expand(args)
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		ty, _ := shapeinfer.NewGenerator(shapeinfer.WithPolicy(cfg.policy)).Infer()

		return &Result{Ty: shapeinfer.ApplyHints(ty, cfg.hinters)}, nil
	}

	shards := shardFiles(files, cfg.shards)

	partials := make([]*shardResult, len(shards))

	g, gctx := errgroup.WithContext(ctx)

	for i, shard := range shards {
		i, shard := i, shard

		g.Go(func() error {
			partials[i] = foldShard(gctx, shard, cfg)

			return nil
		})
	}

	// Shard folding never returns an error itself (per-file failures are
	// collected, not propagated); the only error Wait can report is
	// context cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{}

	var acc *shapeinfer.U

	for _, p := range partials {
		if p.u != nil {
			if acc == nil {
				acc = p.u
			} else {
				acc = shapeinfer.Join(acc, p.u, cfg.policy)
			}
		}

		result.Errors = append(result.Errors, p.errs...)
		result.Files = append(result.Files, p.files...)
	}

	if acc == nil {
		ty, _ := shapeinfer.NewGenerator(shapeinfer.WithPolicy(cfg.policy)).Infer()
		result.Ty = shapeinfer.ApplyHints(ty, cfg.hinters)

		return result, nil
	}

	shapeinfer.Normalize(acc, cfg.policy)
	result.Ty = shapeinfer.ApplyHints(shapeinfer.Lower(acc), cfg.hinters)

	return result, nil
}

type shardResult struct {
	u     *shapeinfer.U
	errs  []*FileError
	files []string
}

// foldShard sequentially Observes and Joins every file in shard, producing
// one partial summary for the caller to fold into the final result.
func foldShard(ctx context.Context, shard []string, cfg *runConfig) *shardResult {
	out := &shardResult{}

	var acc *shapeinfer.U

	for _, path := range shard {
		if ctx.Err() != nil {
			return out
		}

		v, err := readAndDecode(path)
		if err != nil {
			out.errs = append(out.errs, &FileError{Path: path, Err: err})

			continue
		}

		selected := []jsonval.Value{v}
		if cfg.filterExpr != nil {
			selected = filter.Select(cfg.filterExpr, v)
		}

		folded := false

		for _, sv := range selected {
			u, err := shapeinfer.ObserveWithPolicy(sv, cfg.policy)
			if err != nil {
				out.errs = append(out.errs, &FileError{Path: path, Err: err})

				continue
			}

			if acc == nil {
				acc = u
			} else {
				acc = shapeinfer.Join(acc, u, cfg.policy)
			}

			folded = true
		}

		if !folded {
			continue
		}

		out.files = append(out.files, path)

		if cfg.onNotice != nil {
			cfg.onNotice(path, "folded")
		}
	}

	out.u = acc

	return out
}

func readAndDecode(path string) (jsonval.Value, error) {
	var (
		data []byte
		err  error
	)

	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // path comes from CLI args/globs, the expected use.
	}

	if err != nil {
		return jsonval.Value{}, fmt.Errorf("%w: %w", shapeinfer.ErrReadInput, err)
	}

	v, err := jsonval.Decode(bytes.NewReader(data))
	if err != nil {
		return jsonval.Value{}, fmt.Errorf("%w: %w", shapeinfer.ErrInputNotJSON, err)
	}

	return v, nil
}

// shardFiles splits files into at most n roughly-even, contiguous shards.
// Contiguous shards (rather than round-robin) keep each worker's reads
// local on disk and make the sharding test's "same files, different
// shard counts" comparisons easy to reason about.
func shardFiles(files []string, n int) [][]string {
	if n > len(files) {
		n = len(files)
	}

	if n < 1 {
		n = 1
	}

	shards := make([][]string, 0, n)
	base := len(files) / n
	rem := len(files) % n

	start := 0
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}

		shards = append(shards, files[start:start+size])
		start += size
	}

	return shards
}

// expand resolves each arg into zero or more file paths. An arg containing
// a glob metacharacter is matched with filepath.Glob; a directory arg is
// walked recursively for *.json files; anything else (including "-") is
// taken as a literal path.
func expand(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		switch {
		case arg == "-":
			files = append(files, arg)
		case containsMeta(arg):
			matches, err := filepath.Glob(arg)
			if err != nil {
				return nil, fmt.Errorf("%w: glob %q: %w", shapeinfer.ErrReadInput, arg, err)
			}

			files = append(files, matches...)
		default:
			info, err := os.Stat(arg)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", shapeinfer.ErrReadInput, err)
			}

			if info.IsDir() {
				walked, err := walkDir(arg)
				if err != nil {
					return nil, err
				}

				files = append(files, walked...)
			} else {
				files = append(files, arg)
			}
		}
	}

	return files, nil
}

func walkDir(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		if filepath.Ext(path) == ".json" {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walking %q: %w", shapeinfer.ErrReadInput, root, err)
	}

	return files, nil
}

func containsMeta(path string) bool {
	for _, r := range path {
		switch r {
		case '*', '?', '[':
			return true
		}
	}

	return false
}
