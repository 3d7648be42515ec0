// Package calc implements the "calculator mode" for amount inputs: a value
// beginning with "=" is parsed as a restricted arithmetic expression and
// reduced to a plain number before the field commits. The grammar admits
// numeric literals (with optional comma grouping), the four arithmetic
// operators, and parentheses; nothing else ever reaches an evaluator.
package calc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidArithmetic covers both disallowed characters and malformed
	// expressions (a bare "5+5" without the leading "=", unbalanced parens,
	// a trailing operator).
	ErrInvalidArithmetic = errors.New("invalid arithmetic expression")

	// ErrDivisionByZero is an evaluation-time failure; the field stays in
	// its error state until the expression changes.
	ErrDivisionByZero = errors.New("division by zero")
)

// Evaluate parses and reduces an arithmetic expression (without its leading
// "="). Comma grouping inside numbers is ignored.
func Evaluate(expr string) (decimal.Decimal, error) {
	p := &parser{input: strings.ReplaceAll(expr, ",", "")}
	p.skipSpaces()
	if p.eof() {
		return decimal.Zero, ErrInvalidArithmetic
	}
	v, err := p.parseExpr()
	if err != nil {
		return decimal.Zero, err
	}
	p.skipSpaces()
	if !p.eof() {
		return decimal.Zero, ErrInvalidArithmetic
	}
	return v, nil
}

// FormatResult renders an evaluated value the way the field displays it:
// whole numbers without a fraction, everything else rounded to the paisa.
func FormatResult(v decimal.Decimal) string {
	if v.IsInteger() {
		return v.String()
	}
	return v.Round(2).String()
}

// parser is a recursive-descent parser over the restricted grammar:
//
//	expr   := term (('+' | '-') term)*
//	term   := unary (('*' | '/') unary)*
//	unary  := ('+' | '-') unary | factor
//	factor := NUMBER | '(' expr ')'
type parser struct {
	input string
	pos   int
}

func (p *parser) eof() bool { return p.pos >= len(p.input) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) skipSpaces() {
	for !p.eof() && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) parseExpr() (decimal.Decimal, error) {
	left, err := p.parseTerm()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		p.skipSpaces()
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Add(right)
		case '-':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Sub(right)
		default:
			return left, nil
		}
	}
}

func (p *parser) parseTerm() (decimal.Decimal, error) {
	left, err := p.parseUnary()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		p.skipSpaces()
		switch p.peek() {
		case '*':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Mul(right)
		case '/':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return decimal.Zero, err
			}
			if right.IsZero() {
				return decimal.Zero, ErrDivisionByZero
			}
			left = left.DivRound(right, 8)
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (decimal.Decimal, error) {
	p.skipSpaces()
	switch p.peek() {
	case '-':
		p.pos++
		v, err := p.parseUnary()
		if err != nil {
			return decimal.Zero, err
		}
		return v.Neg(), nil
	case '+':
		p.pos++
		return p.parseUnary()
	}
	return p.parseFactor()
}

func (p *parser) parseFactor() (decimal.Decimal, error) {
	p.skipSpaces()
	if p.peek() == '(' {
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return decimal.Zero, err
		}
		p.skipSpaces()
		if p.peek() != ')' {
			return decimal.Zero, ErrInvalidArithmetic
		}
		p.pos++
		return v, nil
	}
	return p.parseNumber()
}

func (p *parser) parseNumber() (decimal.Decimal, error) {
	start := p.pos
	seenDot := false
	for !p.eof() {
		c := p.input[p.pos]
		if c >= '0' && c <= '9' {
			p.pos++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return decimal.Zero, ErrInvalidArithmetic
	}
	v, err := decimal.NewFromString(p.input[start:p.pos])
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidArithmetic, p.input[start:p.pos])
	}
	return v, nil
}
