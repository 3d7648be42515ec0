package calc_test

import (
	"errors"
	"testing"

	"github.com/paydesk/taxdecl/internal/calc"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		expr string
		want string
	}{
		{"10000*10+5000", "105000"},
		{"2+3*4", "14"},
		{"(2+3)*4", "20"},
		{"100-25-25", "50"},
		{"1,50,000/2", "75000"},
		{"7/2", "3.5"},
		{"-5+10", "5"},
		{"2*(3+(4-1))", "12"},
		{"  12 * 12 ", "144"},
		{"0.5*3", "1.5"},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			v, err := calc.Evaluate(tc.expr)
			if err != nil {
				t.Fatalf("Evaluate(%q): %v", tc.expr, err)
			}
			if got := calc.FormatResult(v); got != tc.want {
				t.Errorf("Evaluate(%q) = %s, want %s", tc.expr, got, tc.want)
			}
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	for _, expr := range []string{"", "5+", "(2+3", "2++", "*4", "5..2", "abc"} {
		t.Run(expr, func(t *testing.T) {
			if _, err := calc.Evaluate(expr); !errors.Is(err, calc.ErrInvalidArithmetic) {
				t.Errorf("Evaluate(%q) err = %v, want ErrInvalidArithmetic", expr, err)
			}
		})
	}
	if _, err := calc.Evaluate("10/0"); !errors.Is(err, calc.ErrDivisionByZero) {
		t.Errorf("Evaluate(10/0) err = %v, want ErrDivisionByZero", err)
	}
	if _, err := calc.Evaluate("10/(3-3)"); !errors.Is(err, calc.ErrDivisionByZero) {
		t.Errorf("Evaluate(10/(3-3)) err = %v, want ErrDivisionByZero", err)
	}
}

func TestBuffer_ExpressionCommit(t *testing.T) {
	b := calc.NewBuffer("")
	b.SetInput("=10000*10+5000")
	if b.State() != calc.Composing {
		t.Fatalf("state = %v, want Composing", b.State())
	}
	got, err := b.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if got != "105000" {
		t.Errorf("committed %q, want 105000", got)
	}
	if b.State() != calc.Idle {
		t.Errorf("state after commit = %v, want Idle", b.State())
	}
}

// "5+5" without a leading "=" is rejected outright, not kept as text.
func TestBuffer_BareOperatorRejected(t *testing.T) {
	b := calc.NewBuffer("")
	b.SetInput("5+5")
	if b.State() != calc.Errored {
		t.Fatalf("state = %v, want Errored", b.State())
	}
	if !errors.Is(b.Err(), calc.ErrInvalidArithmetic) {
		t.Errorf("Err() = %v, want ErrInvalidArithmetic", b.Err())
	}
	if b.Text() != "5+5" {
		t.Errorf("raw text changed to %q", b.Text())
	}
	if _, err := b.Commit(); err == nil {
		t.Error("Commit of errored buffer succeeded")
	}
}

// A "=" typed after other characters restarts the buffer at the "=".
func TestBuffer_ResetAtEquals(t *testing.T) {
	b := calc.NewBuffer("")
	b.SetInput("0=2000*3")
	if b.State() != calc.Composing {
		t.Fatalf("state = %v, want Composing", b.State())
	}
	if b.Text() != "=2000*3" {
		t.Errorf("text = %q, want prefix discarded", b.Text())
	}
	got, err := b.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if got != "6000" {
		t.Errorf("committed %q, want 6000", got)
	}
}

// Division by zero leaves the field in error until the expression changes.
func TestBuffer_DivisionByZeroSticky(t *testing.T) {
	b := calc.NewBuffer("")
	b.SetInput("=10/0")
	if _, err := b.Commit(); !errors.Is(err, calc.ErrDivisionByZero) {
		t.Fatalf("Commit err = %v, want ErrDivisionByZero", err)
	}
	if b.State() != calc.Errored {
		t.Fatalf("state = %v, want Errored", b.State())
	}
	// Still errored on a second commit attempt.
	if _, err := b.Commit(); !errors.Is(err, calc.ErrDivisionByZero) {
		t.Errorf("second Commit err = %v", err)
	}
	// Editing the expression clears the error.
	b.SetInput("=10/2")
	if b.Err() != nil {
		t.Errorf("error survived input change: %v", b.Err())
	}
	got, err := b.Commit()
	if err != nil {
		t.Fatalf("Commit after edit: %v", err)
	}
	if got != "5" {
		t.Errorf("committed %q, want 5", got)
	}
}

func TestBuffer_DisallowedCharacter(t *testing.T) {
	b := calc.NewBuffer("")
	b.SetInput("=10+x")
	if b.State() != calc.Errored {
		t.Fatalf("state = %v, want Errored", b.State())
	}
}

func TestBuffer_PlainTextPassesThrough(t *testing.T) {
	b := calc.NewBuffer("")
	b.SetInput("42000")
	if b.State() != calc.Idle {
		t.Fatalf("state = %v, want Idle", b.State())
	}
	got, err := b.Commit()
	if err != nil || got != "42000" {
		t.Errorf("Commit = %q, %v", got, err)
	}
	// Leading minus is a sign, not an operator.
	b.SetInput("-500")
	if b.State() != calc.Idle {
		t.Errorf("negative literal: state = %v, want Idle", b.State())
	}
}

func TestFocusText(t *testing.T) {
	cases := []struct{ in, want string }{
		{"0", ""},
		{"₹0", ""},
		{"0.00", ""},
		{"", ""},
		{"1500", "1500"},
		{"=5+5", "=5+5"},
	}
	for _, tc := range cases {
		if got := calc.FocusText(tc.in); got != tc.want {
			t.Errorf("FocusText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
