package driver

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"lunar/internal/ast"
	"lunar/internal/diag"
	"lunar/internal/project"
	"lunar/internal/source"
	"lunar/internal/token"
	"lunar/internal/trace"
)

// TokenizeDirResult содержит результат токенизации одного файла
type TokenizeDirResult struct {
	Path   string        // Путь к файлу
	FileID source.FileID // ID файла в FileSet; при ошибке загрузки — пустой виртуальный файл
	Tokens []token.Token
	Bag    *diag.Bag
}

// ParseDirResult содержит результат разбора одного файла
type ParseDirResult struct {
	Path   string
	FileID source.FileID
	Tree   *ast.Tree // nil при ошибке загрузки или попадании в кеш
	Bag    *diag.Bag
	Cached bool
}

// ListLuaFiles возвращает отсортированный список файлов dir, выбранных
// include/exclude из cfg (пути сопоставляются относительно dir).
func ListLuaFiles(dir string, cfg project.Config) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if cfg.Matches(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// dirBatch — общая подготовка для TokenizeDir/ParseDir: список файлов,
// загруженный FileSet и ошибки загрузки по индексу.
type dirBatch struct {
	files      []string
	fileSet    *source.FileSet
	fileIDs    []source.FileID
	loadErrors []error
}

func loadDir(dir string, opts Options) (*dirBatch, error) {
	done := opts.phase("list")
	files, err := ListLuaFiles(dir, opts.config())
	done(strconv.Itoa(len(files)) + " files")
	if err != nil {
		return nil, err
	}

	done = opts.phase("load")
	b := &dirBatch{
		files:      files,
		fileSet:    source.NewFileSetWithBase(dir),
		fileIDs:    make([]source.FileID, len(files)),
		loadErrors: make([]error, len(files)),
	}
	for i, path := range files {
		// FileSet не потокобезопасен, поэтому загрузка последовательная
		fileID, err := b.fileSet.Load(path)
		if err != nil {
			// Сохраняем ошибку загрузки; пустой виртуальный файл даёт
			// диагностике путь для вывода
			b.loadErrors[i] = err
			fileID = b.fileSet.Add(path, []byte{}, source.FileVirtual)
		}
		b.fileIDs[i] = fileID
	}
	done("")

	for i, path := range files {
		opts.emit(FileEvent{Path: path, Index: i, Total: len(files), Status: FileQueued})
	}
	return b, nil
}

// loadFailure превращает ошибку загрузки в диагностику IO4001.
func loadFailure(bag *diag.Bag, id source.FileID, err error) {
	bag.Add(diag.New(diag.SevError, diag.IOLoadFileError, source.Span{File: id}, "failed to load file: "+err.Error()))
}

// TokenizeDir токенизирует все выбранные файлы каталога параллельно
func TokenizeDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []TokenizeDirResult, error) {
	batch, err := loadDir(dir, opts)
	if err != nil {
		return nil, nil, err
	}
	if len(batch.files) == 0 {
		return batch.fileSet, nil, nil
	}

	done := opts.phase("lex")
	defer done("")

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]TokenizeDirResult, len(batch.files))
	total := len(batch.files)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs(total))

	for i, path := range batch.files {
		g.Go(func() error {
			// Проверка отмены
			if err := gctx.Err(); err != nil {
				return err
			}
			started := time.Now()
			opts.emit(FileEvent{Path: path, Index: i, Total: total, Status: FileParsing})

			bag := diag.NewBag(opts.MaxDiagnostics)
			results[i] = TokenizeDirResult{Path: path, FileID: batch.fileIDs[i], Bag: bag}
			if loadErr := batch.loadErrors[i]; loadErr != nil {
				loadFailure(bag, batch.fileIDs[i], loadErr)
				opts.emit(FileEvent{Path: path, Index: i, Total: total, Status: FileFailed,
					Diagnostics: 1, HasErrors: true, Elapsed: time.Since(started)})
				return nil
			}

			fileID := batch.fileIDs[i]
			results[i].Tokens = tokenizeFile(batch.fileSet.Get(fileID), bag, opts)
			bag.Sort()

			opts.emit(FileEvent{Path: path, Index: i, Total: total, Status: FileDone,
				Diagnostics: bag.Len(), HasErrors: bag.HasErrors(), Elapsed: time.Since(started)})
			return nil
		})
	}

	// Ждём завершения всех горутин
	if err := g.Wait(); err != nil {
		return batch.fileSet, results, err
	}
	return batch.fileSet, results, nil
}

// ParseDir разбирает все выбранные файлы каталога параллельно.
// Результаты идут в порядке отсортированных путей.
func ParseDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []ParseDirResult, error) {
	tracer := trace.FromContext(ctx)
	dirSpan := trace.Begin(tracer, trace.ScopeRun, "parse-dir", dir, 0)

	batch, err := loadDir(dir, opts)
	if err != nil {
		dirSpan.End("list failed")
		return nil, nil, err
	}
	if len(batch.files) == 0 {
		dirSpan.End("no files")
		return batch.fileSet, nil, nil
	}

	done := opts.phase("parse")
	defer done("")

	results := make([]ParseDirResult, len(batch.files))
	total := len(batch.files)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs(total))

	for i, path := range batch.files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			started := time.Now()
			opts.emit(FileEvent{Path: path, Index: i, Total: total, Status: FileParsing})

			if loadErr := batch.loadErrors[i]; loadErr != nil {
				bag := diag.NewBag(opts.MaxDiagnostics)
				loadFailure(bag, batch.fileIDs[i], loadErr)
				results[i] = ParseDirResult{Path: path, FileID: batch.fileIDs[i], Bag: bag}
				opts.emit(FileEvent{Path: path, Index: i, Total: total, Status: FileFailed,
					Diagnostics: 1, HasErrors: true, Elapsed: time.Since(started)})
				return nil
			}

			fileSpan := trace.Begin(tracer, trace.ScopeFile, "file", path, dirSpan.ID())
			fctx := trace.WithSpanContext(gctx, trace.SpanContext{SpanID: fileSpan.ID()})

			fileID := batch.fileIDs[i]
			res := parseOne(fctx, batch.fileSet.Get(fileID), opts)
			fileSpan.Count(0, res.Bag.Len(), res.Bag.CountErrors()).End(cachedNote(res.Cached))

			results[i] = ParseDirResult{
				Path:   path,
				FileID: fileID,
				Tree:   res.Tree,
				Bag:    res.Bag,
				Cached: res.Cached,
			}
			opts.emit(FileEvent{Path: path, Index: i, Total: total, Status: FileDone,
				Diagnostics: res.Bag.Len(), HasErrors: res.Bag.HasErrors(), Cached: res.Cached,
				Elapsed: time.Since(started)})
			return nil
		})
	}

	err = g.Wait()
	diags, errs, failed := 0, 0, 0
	for _, r := range results {
		if r.Bag == nil {
			continue
		}
		diags += r.Bag.Len()
		errs += r.Bag.CountErrors()
		if r.Bag.HasErrors() {
			failed++
		}
	}
	dirSpan.Count(0, diags, errs).
		WithExtra("files", strconv.Itoa(total)).
		WithExtra("failed", strconv.Itoa(failed)).
		End("")
	if err != nil {
		return batch.fileSet, results, err
	}
	// отмена могла прийти уже после последнего gctx.Err(): разбор тогда
	// вернул частичные деревья, сообщаем об этом вызывающему
	if err := ctx.Err(); err != nil {
		return batch.fileSet, results, err
	}
	return batch.fileSet, results, nil
}
