package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"lunar/internal/source"
	"lunar/internal/token"
)

type TriviaOutput struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

type TokenOutput struct {
	Kind     string         `json:"kind"`
	Text     string         `json:"text,omitempty"`
	Span     source.Span    `json:"span"`
	Value    string         `json:"value,omitempty"`
	Missing  bool           `json:"missing,omitempty"`
	Leading  []TriviaOutput `json:"leading,omitempty"`
	Trailing []TriviaOutput `json:"trailing,omitempty"`
	Diags    []string       `json:"diagnostics,omitempty"`
}

// FormatTokensPretty выводит токены в человекочитаемом формате
func FormatTokensPretty(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	for i := range tokens {
		tok := &tokens[i]

		fmt.Fprintf(w, "%3d: %-15s", i+1, tok.Kind.String())
		if tok.Text != "" {
			fmt.Fprintf(w, " %q", tok.Text)
		}
		fmt.Fprintf(w, " at %s", formatSpan(tok.Span, fs))
		if !tok.Value.IsZero() {
			fmt.Fprintf(w, " = %s", tok.Value.String())
		}
		if len(tok.Leading) > 0 {
			fmt.Fprintf(w, " (leading: %s)", triviaKinds(tok.Leading))
		}
		if len(tok.Trailing) > 0 {
			fmt.Fprintf(w, " (trailing: %s)", triviaKinds(tok.Trailing))
		}
		for _, d := range tok.Diags {
			fmt.Fprintf(w, " [%s]", d.Code.ID())
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}

		if tok.Kind == token.EOF {
			break
		}
	}
	return nil
}

func triviaKinds(list []token.Trivia) string {
	kinds := make([]string, len(list))
	for i, tv := range list {
		kinds[i] = tv.Kind.String()
	}
	return strings.Join(kinds, ", ")
}

func triviaOutput(list []token.Trivia) []TriviaOutput {
	if len(list) == 0 {
		return nil // Убираем пустые массивы из JSON
	}
	out := make([]TriviaOutput, len(list))
	for i, tv := range list {
		out[i] = TriviaOutput{Kind: tv.Kind.String(), Text: tv.Text}
	}
	return out
}

func tokenOutput(tok *token.Token) TokenOutput {
	out := TokenOutput{
		Kind:     tok.Kind.String(),
		Text:     tok.Text,
		Span:     tok.Span,
		Value:    tok.Value.String(),
		Missing:  tok.Missing,
		Leading:  triviaOutput(tok.Leading),
		Trailing: triviaOutput(tok.Trailing),
	}
	for _, d := range tok.Diags {
		out.Diags = append(out.Diags, d.Code.ID())
	}
	return out
}

// FormatTokensJSON выводит токены в JSON формате
func FormatTokensJSON(w io.Writer, tokens []token.Token) error {
	output := make([]TokenOutput, 0, len(tokens))
	for i := range tokens {
		output = append(output, tokenOutput(&tokens[i]))
		if tokens[i].Kind == token.EOF {
			break
		}
	}
	return writeJSON(w, output)
}
