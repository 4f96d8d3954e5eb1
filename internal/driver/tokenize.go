package driver

import (
	"fmt"
	"strconv"

	"lunar/internal/diag"
	"lunar/internal/lexer"
	"lunar/internal/source"
	"lunar/internal/token"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag
}

func Tokenize(path string, opts Options) (*TokenizeResult, error) {
	done := opts.phase("load")
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	done(path)
	if err != nil {
		return nil, fmt.Errorf("tokenize %s: %w", path, err)
	}
	file := fs.Get(fileID)

	done = opts.phase("lex")
	bag := diag.NewBag(opts.MaxDiagnostics)
	tokens := tokenizeFile(file, bag, opts)
	done(strconv.Itoa(len(tokens)) + " tokens")

	bag.Sort()
	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  tokens,
		Bag:     bag,
	}, nil
}

// tokenizeFile прогоняет лексер до EOF включительно.
func tokenizeFile(file *source.File, bag *diag.Bag, opts Options) []token.Token {
	lexOpts := opts.lexerOptions()
	lexOpts.Reporter = diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexOpts)

	tokens := make([]token.Token, 0, len(file.Content)/4+1)
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens
}
