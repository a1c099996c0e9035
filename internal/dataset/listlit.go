package dataset

import (
	"fmt"
	"strings"
	"unicode"

	"caselens/domain/core"
)

// ParseListLiteral parses bracket-delimited list text produced by a
// prior stringification step, e.g. ['roubo', 'furto'] or ["a", 2, None].
// It is a strict recursive-descent parser over a minimal grammar -
// quoted strings, bare numbers and None/null - and only ever yields
// strings, so no permissive literal evaluation is involved. Nested
// structures are rejected.
func ParseListLiteral(raw string) ([]string, error) {
	p := &listParser{input: strings.TrimSpace(raw)}
	return p.parse()
}

// LooksLikeListLiteral reports whether a string cell is worth handing to
// ParseListLiteral.
func LooksLikeListLiteral(s string) bool {
	t := strings.TrimSpace(s)
	return len(t) >= 2 && strings.HasPrefix(t, "[") && strings.HasSuffix(t, "]")
}

type listParser struct {
	input string
	pos   int
}

// consume advances past c when it is the next byte.
func (p *listParser) consume(c byte) bool {
	if p.pos < len(p.input) && p.input[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *listParser) skipSpace() {
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *listParser) parse() ([]string, error) {
	if !p.consume('[') {
		return nil, fmt.Errorf("%w: missing opening bracket", core.ErrNotAListLiteral)
	}
	elems := []string{}
	p.skipSpace()
	if p.consume(']') {
		if p.pos != len(p.input) {
			return nil, fmt.Errorf("%w: trailing content", core.ErrNotAListLiteral)
		}
		return elems, nil
	}
	for {
		elem, err := p.element()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		p.skipSpace()
		if p.consume(',') {
			p.skipSpace()
			continue
		}
		break
	}
	if !p.consume(']') {
		return nil, fmt.Errorf("%w: missing closing bracket", core.ErrNotAListLiteral)
	}
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("%w: trailing content", core.ErrNotAListLiteral)
	}
	return elems, nil
}

func (p *listParser) element() (string, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return "", fmt.Errorf("%w: unexpected end of input", core.ErrNotAListLiteral)
	}
	switch c := p.input[p.pos]; {
	case c == '\'' || c == '"':
		return p.quoted(c)
	case c == '[':
		return "", fmt.Errorf("%w: nested lists not allowed", core.ErrNotAListLiteral)
	default:
		return p.bare()
	}
}

func (p *listParser) quoted(quote byte) (string, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch c {
		case '\\':
			if p.pos+1 >= len(p.input) {
				return "", fmt.Errorf("%w: dangling escape", core.ErrNotAListLiteral)
			}
			b.WriteByte(p.input[p.pos+1])
			p.pos += 2
		case quote:
			p.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", fmt.Errorf("%w: unterminated string", core.ErrNotAListLiteral)
}

// bare accepts numbers and the null tokens None/null/nan; anything else
// fails the whole parse so the original text is kept instead.
func (p *listParser) bare() (string, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == ',' || c == ']' {
			break
		}
		p.pos++
	}
	token := strings.TrimSpace(p.input[start:p.pos])
	switch token {
	case "None", "null", "nan", "NaN":
		return "", nil
	}
	if isNumberToken(token) {
		return token, nil
	}
	return "", fmt.Errorf("%w: unquoted token %q", core.ErrNotAListLiteral, token)
}

func isNumberToken(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[i] == '+' || s[i] == '-' {
		i++
	}
	digits, dot := 0, 0
	for ; i < len(s); i++ {
		switch {
		case unicode.IsDigit(rune(s[i])):
			digits++
		case s[i] == '.' && dot == 0:
			dot++
		default:
			return false
		}
	}
	return digits > 0
}
