package driver

import (
	"runtime"

	"lunar/internal/lexer"
	"lunar/internal/observ"
	"lunar/internal/parser"
	"lunar/internal/project"
)

// Options собирает всё, что нужно драйверу для одного запуска CLI.
type Options struct {
	Parser parser.Options
	// MaxDiagnostics ограничивает размер Bag каждого файла (0 — без лимита).
	MaxDiagnostics int
	// Jobs — число параллельных воркеров в *Dir; <= 0 означает GOMAXPROCS.
	Jobs int
	// Config задаёт include/exclude для обхода каталогов; nil — project.Default().
	Config *project.Config
	// Cache, если задан, переиспользует диагностики файлов с тем же хешем.
	Cache *DiskCache

	Timer  *observ.Timer
	Phases PhaseObserver
	Events EventSink
}

func (o Options) jobs(n int) int {
	jobs := o.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(1, min(jobs, n))
}

func (o Options) config() project.Config {
	if o.Config != nil {
		return *o.Config
	}
	return project.Default()
}

func (o Options) lexerOptions() lexer.Options {
	return lexer.Options{
		Version:        o.Parser.Version,
		Script:         o.Parser.Mode == parser.ModeScript,
		MaxTokenLength: o.Parser.MaxTokenLength,
	}
}
