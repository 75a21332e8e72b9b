package driver

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"amend/internal/config"
	"amend/internal/diag"
	"amend/internal/inspect"
	"amend/internal/source"
	"amend/internal/trace"
)

// Options configures Inspect.
type Options struct {
	Config   config.Config
	Registry *inspect.Registry // nil means inspect.Default()
	// Jobs bounds concurrent file inspections; <= 0 means GOMAXPROCS.
	Jobs int
	// Cache, when set, serves results for unchanged files. Cached
	// diagnostics carry no fixes.
	Cache   *DiskCache
	BaseDir string
}

// FileResult is the outcome for one input file.
type FileResult struct {
	Path        string
	FileID      source.FileID
	Diagnostics []diag.Diagnostic
	Cached      bool
	LoadErr     error
}

// Expand turns the command line paths into the file list to inspect:
// directories are walked, plain files are kept as given.
func Expand(paths []string, cfg config.Config) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := ListFiles(p, cfg.MatchesExtension)
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
		files = append(files, found...)
	}
	return files, nil
}

// Inspect loads every path into one file set and runs the enabled rules on
// each file concurrently. Results are in input order.
func Inspect(ctx context.Context, paths []string, opts Options) (*source.FileSet, []FileResult, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "inspect", 0)
	defer span.End("")

	reg := opts.Registry
	if reg == nil {
		reg = inspect.Default()
	}
	if err := reg.Validate(opts.Config); err != nil {
		return nil, nil, err
	}

	fileSet := source.NewFileSetWithBase(opts.BaseDir)
	results := make([]FileResult, len(paths))
	for i, path := range paths {
		results[i].Path = path
		id, err := fileSet.Load(path)
		if err != nil {
			results[i].LoadErr = err
			continue
		}
		results[i].FileID = id
	}
	if len(paths) == 0 {
		return fileSet, results, nil
	}

	ruleIDs := make([]string, 0)
	for _, r := range reg.Enabled(opts.Config) {
		ruleIDs = append(ruleIDs, r.ID())
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i := range results {
		if results[i].LoadErr != nil {
			continue
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			// индекс i уникален, мьютекс не нужен
			res := &results[i]
			file := fileSet.Get(res.FileID)
			fileSpan := trace.Begin(tracer, trace.ScopeFile, "file:"+res.Path, span.ID())

			var key Digest
			if opts.Cache != nil {
				key = cacheKey(file.Hash, ruleIDs, opts.Config)
				var payload DiskPayload
				hit, err := opts.Cache.Get(key, &payload)
				if err != nil {
					trace.Fail(tracer, "cache:"+res.Path, err)
				}
				if hit {
					res.Diagnostics = fromPayload(res.FileID, &payload)
					res.Cached = true
					fileSpan.WithExtra("diagnostics", strconv.Itoa(len(res.Diagnostics))).End("cached")
					return nil
				}
			}

			res.Diagnostics = reg.Run(file, opts.Config)
			if opts.Cache != nil {
				if err := opts.Cache.Put(key, toPayload(res.Path, res.Diagnostics)); err != nil {
					trace.Fail(tracer, "cache:"+res.Path, err)
				}
			}
			fileSpan.WithExtra("diagnostics", strconv.Itoa(len(res.Diagnostics))).End("")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

// Diagnostics flattens the diagnostics of every result.
func Diagnostics(results []FileResult) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, r := range results {
		out = append(out, r.Diagnostics...)
	}
	return out
}
