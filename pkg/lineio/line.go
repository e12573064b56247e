package lineio

import (
	"fmt"
	"strconv"
	"strings"
)

// Line is a tokenized source line with a cursor past the keyword.
type Line struct {
	number int
	tokens []string
	pos    int
}

// NewLine builds a line from pre-split tokens; the first token is the keyword.
func NewLine(number int, tokens ...string) *Line {
	return &Line{number: number, tokens: tokens, pos: 1}
}

// Number returns the 1-based line number.
func (l *Line) Number() int {
	return l.number
}

// Keyword returns the first token of the line.
func (l *Line) Keyword() string {
	if len(l.tokens) == 0 {
		return ""
	}
	return l.tokens[0]
}

// Unrecognized returns an ErrUnrecognized error naming the keyword.
func (l *Line) Unrecognized() error {
	return fmt.Errorf("%w: %q", ErrUnrecognized, l.Keyword())
}

// HasMore reports whether unread tokens remain.
func (l *Line) HasMore() bool {
	return l.pos < len(l.tokens)
}

// Remaining returns the number of unread tokens.
func (l *Line) Remaining() int {
	return len(l.tokens) - l.pos
}

// Next returns the next token, if any.
func (l *Line) Next() (string, bool) {
	if !l.HasMore() {
		return "", false
	}
	tok := l.tokens[l.pos]
	l.pos++
	return tok, true
}

// Rest returns all unread tokens and consumes them.
func (l *Line) Rest() []string {
	rest := l.tokens[l.pos:]
	l.pos = len(l.tokens)
	return rest
}

// String reads a required token.
func (l *Line) String(field string) (string, error) {
	tok, ok := l.Next()
	if !ok {
		return "", fmt.Errorf("%w: missing %s", ErrParse, field)
	}
	return tok, nil
}

// Float32 reads a required float token.
func (l *Line) Float32(field string) (float32, error) {
	tok, err := l.String(field)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrParse, field, tok)
	}
	return float32(v), nil
}

// Vec3 reads three required float tokens.
func (l *Line) Vec3(field string) ([3]float32, error) {
	var v [3]float32
	for i := range v {
		f, err := l.Float32(fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

// Uint32 reads a required unsigned integer token.
func (l *Line) Uint32(field string) (uint32, error) {
	tok, err := l.String(field)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(tok, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an unsigned integer", ErrParse, field, tok)
	}
	return uint32(v), nil
}

// Int reads a required signed integer token.
func (l *Line) Int(field string) (int, error) {
	tok, err := l.String(field)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", ErrParse, field, tok)
	}
	return v, nil
}

// Bool reads a required boolean token (true/false/on/off/1/0).
func (l *Line) Bool(field string) (bool, error) {
	tok, err := l.String(field)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(tok) {
	case "true", "on", "1":
		return true, nil
	case "false", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: %s %q is not a boolean", ErrParse, field, tok)
}
