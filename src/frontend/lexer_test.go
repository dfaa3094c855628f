// Tests the lexer by verifying that a small L0 source snippet is tokenized
// into the expected sequence of kinds and lexemes, one expectation entry
// per token.
package frontend

import (
	"testing"

	"github.com/hhramberg/l0c/src/token"
)

func TestLex(t *testing.T) {
	src := `fn main() -> I64 {
  x: mut I64 = 2 + 3 * 4;
  return x;
};`

	exp := []struct {
		kind   token.Kind
		lexeme string
	}{
		{token.Keyword, "fn"},
		{token.Identifier, "main"},
		{token.LParen, "("},
		{token.RParen, ")"},
		{token.Arrow, "->"},
		{token.Identifier, "I64"},
		{token.LBrace, "{"},
		{token.Identifier, "x"},
		{token.Colon, ":"},
		{token.Keyword, "mut"},
		{token.Identifier, "I64"},
		{token.Assign, "="},
		{token.IntegerLiteral, "2"},
		{token.Plus, "+"},
		{token.IntegerLiteral, "3"},
		{token.Star, "*"},
		{token.IntegerLiteral, "4"},
		{token.Semi, ";"},
		{token.Keyword, "return"},
		{token.Identifier, "x"},
		{token.Semi, ";"},
		{token.RBrace, "}"},
		{token.Semi, ";"},
		{token.EOF, "EOF"},
	}

	toks, err := Lex(src)
	if err != nil {
		t.Fatalf("unexpected lexer error: %s", err)
	}
	if len(toks) != len(exp) {
		t.Fatalf("expected %d tokens, got %d", len(exp), len(toks))
	}
	for i1, e1 := range exp {
		if toks[i1].Kind != e1.kind || toks[i1].String() != e1.lexeme {
			t.Errorf("token %d: expected {%s %q}, got {%s %q}",
				i1, e1.kind, e1.lexeme, toks[i1].Kind, toks[i1].String())
		}
	}
}

func TestLexStringAndCharacterEscapes(t *testing.T) {
	src := `"a\nb" '\t'`
	toks, err := Lex(src)
	if err != nil {
		t.Fatalf("unexpected lexer error: %s", err)
	}
	if len(toks) != 3 { // string, char, EOF
		t.Fatalf("expected 3 tokens, got %d", len(toks))
	}
	if toks[0].Kind != token.StringLiteral || toks[0].StrVal != "a\nb" {
		t.Errorf("expected string literal \"a\\nb\", got %q", toks[0].StrVal)
	}
	if toks[1].Kind != token.CharacterLiteral || toks[1].CharVal != '\t' {
		t.Errorf("expected character literal '\\t', got %q", toks[1].CharVal)
	}
}

func TestLexUnknownCharacterError(t *testing.T) {
	if _, err := Lex("@"); err == nil {
		t.Fatalf("expected a lexer error for an unrecognised character")
	}
}

func TestLexUnterminatedStringError(t *testing.T) {
	if _, err := Lex(`"unterminated`); err == nil {
		t.Fatalf("expected a lexer error for an unterminated string literal")
	}
}

func TestLexLineComment(t *testing.T) {
	toks, err := Lex("x # this is a comment\n:= 1;")
	if err != nil {
		t.Fatalf("unexpected lexer error: %s", err)
	}
	// x, :=, 1, ;, EOF
	if len(toks) != 5 {
		t.Fatalf("expected 5 tokens, got %d: %v", len(toks), toks)
	}
	if toks[1].Kind != token.Walrus {
		t.Errorf("expected the comment to be skipped, got %s at index 1", toks[1].Kind)
	}
}
