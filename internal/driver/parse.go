package driver

import (
	"context"
	"fmt"

	"lunar/internal/ast"
	"lunar/internal/diag"
	"lunar/internal/parser"
	"lunar/internal/source"
	"lunar/internal/trace"
)

type ParseResult struct {
	FileSet *source.FileSet
	File    *source.File
	// Tree is nil when the diagnostics came from the disk cache.
	Tree   *ast.Tree
	Bag    *diag.Bag
	Cached bool
}

func Parse(ctx context.Context, path string, opts Options) (*ParseResult, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeRun, "parse", path, 0)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	done := opts.phase("load")
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	done(path)
	if err != nil {
		span.End("load failed")
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	file := fs.Get(fileID)

	done = opts.phase("parse")
	res := parseOne(ctx, file, opts)
	done(fmt.Sprintf("%d diagnostics", res.Bag.Len()))
	span.Count(0, res.Bag.Len(), res.Bag.CountErrors()).End(cachedNote(res.Cached))

	return &ParseResult{
		FileSet: fs,
		File:    file,
		Tree:    res.Tree,
		Bag:     res.Bag,
		Cached:  res.Cached,
	}, nil
}

type fileResult struct {
	Tree   *ast.Tree
	Bag    *diag.Bag
	Cached bool
}

// parseOne разбирает file либо достаёт его диагностики из кеша.
// Ошибки кеша не фатальны: файл просто разбирается заново.
func parseOne(ctx context.Context, file *source.File, opts Options) fileResult {
	leave := trace.InflightFrom(ctx).Enter(file.Path)
	defer leave()
	bag := diag.NewBag(opts.MaxDiagnostics)

	var key CacheKey
	if opts.Cache != nil {
		key = cacheKeyFor(file, opts.Parser)
		var payload DiskPayload
		if ok, err := opts.Cache.Get(key, &payload); err == nil && ok && payload.matches(file) {
			for _, d := range payload.diagnostics(file.ID) {
				bag.Add(d)
			}
			return fileResult{Bag: bag, Cached: true}
		}
	}

	popts := opts.Parser
	popts.Reporter = nil
	tree := parser.ParseFile(ctx, file, popts)
	for _, d := range tree.Diagnostics() {
		if !bag.Add(d) {
			break
		}
	}

	// отменённый разбор не кешируем: результат неполный
	if opts.Cache != nil && ctx.Err() == nil {
		if err := opts.Cache.Put(key, newDiskPayload(file, tree.Diagnostics())); err != nil {
			trace.Note(trace.FromContext(ctx), trace.ScopeFile, "cache-put-failed", file.Path, err.Error())
		}
	}
	return fileResult{Tree: tree, Bag: bag}
}

func cachedNote(cached bool) string {
	if cached {
		return "cached"
	}
	return ""
}
