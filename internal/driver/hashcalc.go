package driver

import (
	"fmt"

	"lunar/internal/parser"
	"lunar/internal/project"
	"lunar/internal/source"
)

// CacheKey addresses one DiskCache entry.
type CacheKey = project.Digest

// cacheKeyFor: H(content || H(options)). Любая опция, влияющая на
// диагностики, обязана попасть в отпечаток.
func cacheKeyFor(file *source.File, opts parser.Options) CacheKey {
	return project.Combine(project.Digest(file.Hash), project.HashString(optionsFingerprint(opts)))
}

func optionsFingerprint(opts parser.Options) string {
	return fmt.Sprintf("schema=%d;mode=%s;version=%s;depth=%d;errors=%d;toklen=%d",
		diskCacheSchemaVersion, opts.Mode, opts.Version, opts.MaxDepth, opts.MaxErrors, opts.MaxTokenLength)
}
