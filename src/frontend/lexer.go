// This lexer follows the state-function approach of Rob Pike's talk on
// Go scanners (https://talks.golang.org/2011/lex.slide#1). The parser
// consumes tokens synchronously, so there is no goroutine/channel pair:
// the state functions emit directly into a token slice.
package frontend

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/hhramberg/l0c/src/token"
	"github.com/hhramberg/l0c/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// stateFunc defines the state of the lexer.
type stateFunc func(*lexer) stateFunc

// lexer is a lexical scanner that traverses a source stream character by
// character and emits token.Tokens.
type lexer struct {
	input       string // The source stream of characters to scan for lexemes.
	start       int    // The starting byte position of the current token.
	pos         int    // The current byte position of the scanner in the source stream.
	width       int    // The width of the currently scanned rune in bytes.
	line        int    // The current line in the source stream. Not zero-indexed.
	startOnLine int    // The start column of the current token on the current line. Not zero-indexed.

	tokens []token.Token // Tokens emitted so far.
	err    error         // Set on the first lexer error encountered.
}

// ---------------------
// ----- Constants -----
// ---------------------

const eof = 0 // Same as '\0' for null-terminated C strings.

// twoCharOps maps two-character lexemes to their token.Kind.
var twoCharOps = map[string]token.Kind{
	"->": token.Arrow,
	"==": token.Eq,
	"!=": token.Ne,
	"&&": token.AndAnd,
	"||": token.OrOr,
	":=": token.Walrus,
	"<=": token.Le,
	">=": token.Ge,
	"::": token.ColonColon,
}

// oneCharOps maps single-character lexemes to their token.Kind.
var oneCharOps = map[rune]token.Kind{
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Star,
	'/': token.Slash,
	'%': token.Percent,
	'!': token.Bang,
	'.': token.Dot,
	',': token.Comma,
	':': token.Colon,
	';': token.Semi,
	'=': token.Assign,
	'$': token.Dollar,
	'&': token.Amp,
	'^': token.Caret,
	'<': token.Lt,
	'>': token.Gt,
	'(': token.LParen,
	')': token.RParen,
	'[': token.LBracket,
	']': token.RBracket,
	'{': token.LBrace,
	'}': token.RBrace,
}

// ---------------------------
// ----- Lexer functions -----
// ---------------------------

// newLexer creates a new lexer over src.
func newLexer(src string) *lexer {
	return &lexer{
		input:       src,
		line:        1,
		startOnLine: 1,
	}
}

// Lex runs the lexer to completion, returning every scanned token.Token,
// terminated by a token.EOF, or the first LexerError encountered.
func Lex(src string) ([]token.Token, error) {
	l := newLexer(src)
	for state := stateFunc(lexGlobal); state != nil; {
		state = state(l)
	}
	if l.err != nil {
		return nil, l.err
	}
	return l.tokens, nil
}

// emit appends a token of kind typ spanning the pending lexeme to the token
// slice.
func (l *lexer) emit(typ token.Kind) {
	lexeme := l.input[l.start:l.pos]
	l.tokens = append(l.tokens, token.Token{
		Kind:   typ,
		Lexeme: lexeme,
		Line:   l.line,
		Col:    l.startOnLine,
	})
	l.startOnLine += len(lexeme)
	l.start = l.pos
}

// emitValue is like emit but additionally attaches a parsed payload.
func (l *lexer) emitValue(typ token.Kind, intVal int64, charVal byte, strVal string) {
	lexeme := l.input[l.start:l.pos]
	l.tokens = append(l.tokens, token.Token{
		Kind:    typ,
		Lexeme:  lexeme,
		IntVal:  intVal,
		CharVal: charVal,
		StrVal:  strVal,
		Line:    l.line,
		Col:     l.startOnLine,
	})
	l.startOnLine += len(lexeme)
	l.start = l.pos
}

// next returns the next rune in the input, advancing the cursor.
func (l *lexer) next() (r rune) {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, l.width = utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += l.width
	return r
}

// ignore skips over the pending input before this point.
func (l *lexer) ignore() {
	l.startOnLine += len(l.input[l.start:l.pos])
	l.start = l.pos
}

// backup steps back one rune. Should only be called once per call of next.
func (l *lexer) backup() {
	if l.pos > l.start {
		l.pos -= l.width
	}
}

// peek returns, but does not consume, the next rune in the input.
func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// errorf records a LexerError and terminates the scan.
func (l *lexer) errorf(format string, args ...interface{}) stateFunc {
	l.err = &util.LexerError{Message: fmt.Sprintf(format, args...)}
	return nil
}

// ----------------------------
// ----- Helper functions -----
// ----------------------------

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r'
}

// parseInt parses an unsigned decimal integer literal as a signed 64-bit
// integer.
func parseInt(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
