package vcd

import (
	"fmt"
	"io"
)

// ParseError locates a malformed construct by byte offset.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcd: offset %d: %s", e.Offset, e.Msg)
}

// Token is a whitespace-delimited word and its starting offset.
type Token struct {
	Text   string
	Offset int
}

// Tokenizer splits a dump into whitespace-delimited words.
type Tokenizer struct {
	data []byte
	pos  int
}

func NewTokenizer(data []byte) *Tokenizer {
	return &Tokenizer{data: data}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

// Next returns the next word, or io.EOF.
func (t *Tokenizer) Next() (Token, error) {
	for t.pos < len(t.data) && isSpace(t.data[t.pos]) {
		t.pos++
	}
	if t.pos >= len(t.data) {
		return Token{Offset: t.pos}, io.EOF
	}
	start := t.pos
	for t.pos < len(t.data) && !isSpace(t.data[t.pos]) {
		t.pos++
	}
	return Token{Text: string(t.data[start:t.pos]), Offset: start}, nil
}

// Position is the number of bytes consumed so far.
func (t *Tokenizer) Position() int { return t.pos }

// Size is the total input length.
func (t *Tokenizer) Size() int { return len(t.data) }
