package calc

import "strings"

// State of a single field's input buffer.
type State int

const (
	// Idle holds plain (non-expression) text.
	Idle State = iota
	// Composing holds a "="-prefixed expression still being typed.
	Composing
	// Errored holds input rejected as invalid arithmetic; the error sticks
	// until the input changes.
	Errored
)

// allowed characters after the leading "=" while composing.
const composingChars = "0123456789.,+-*/() "

// operatorChars flag bare arithmetic outside calculator mode.
const operatorChars = "+*/"

// Buffer is the per-field input state machine. The host feeds it the field's
// full value on every keystroke (SetInput) and asks it to commit on blur.
type Buffer struct {
	state State
	text  string
	err   error
}

func NewBuffer(initial string) *Buffer {
	b := &Buffer{}
	b.SetInput(initial)
	return b
}

func (b *Buffer) State() State { return b.state }
func (b *Buffer) Text() string { return b.text }

// Err returns the current field-local error, nil outside Errored.
func (b *Buffer) Err() error {
	if b.state != Errored {
		return nil
	}
	return b.err
}

// SetInput applies one keystroke's resulting value:
//
//   - Input containing "=" enters calculator mode. If the "=" is not the
//     first character, everything before it is discarded and the buffer
//     restarts at the "=". An accidental "0=" must not poison the
//     expression.
//   - While composing, only the restricted arithmetic characters are
//     accepted; anything else moves to Errored.
//   - Without a leading "=", bare arithmetic operators are rejected
//     outright: "5+5" is flagged, not silently kept as text.
//
// Any change of input clears a previous error.
func (b *Buffer) SetInput(raw string) {
	b.err = nil
	if i := strings.IndexByte(raw, '='); i >= 0 {
		expr := raw[i:]
		if !containsOnly(expr[1:], composingChars) {
			b.state, b.text, b.err = Errored, expr, ErrInvalidArithmetic
			return
		}
		b.state, b.text = Composing, expr
		return
	}
	// A leading '-' is an ordinary negative sign; any other operator
	// placement is arithmetic without calculator mode.
	if strings.ContainsAny(raw, operatorChars) || strings.ContainsRune(raw[min(1, len(raw)):], '-') {
		b.state, b.text, b.err = Errored, raw, ErrInvalidArithmetic
		return
	}
	b.state, b.text = Idle, raw
}

// Commit resolves the buffer on blur or an explicit evaluation request.
// A composing expression is evaluated; on success the buffer holds the
// formatted result and returns to Idle. On failure the buffer moves to
// Errored with the raw text unchanged, and the error sticks until the next
// SetInput. Idle text commits as-is.
func (b *Buffer) Commit() (string, error) {
	switch b.state {
	case Errored:
		return b.text, b.err
	case Composing:
		v, err := Evaluate(b.text[1:])
		if err != nil {
			b.state, b.err = Errored, err
			return b.text, err
		}
		b.state, b.text = Idle, FormatResult(v)
		return b.text, nil
	}
	return b.text, nil
}

// FocusText returns the text an amount field should show when it gains
// focus: zero placeholders clear to empty so the user can type an
// expression without deleting the "0" first.
func FocusText(display string) string {
	s := strings.TrimSpace(display)
	s = strings.TrimPrefix(s, "₹")
	s = strings.TrimSpace(s)
	switch s {
	case "0", "0.0", "0.00", "":
		return ""
	}
	return display
}

func containsOnly(s, set string) bool {
	for _, r := range s {
		if !strings.ContainsRune(set, r) {
			return false
		}
	}
	return true
}
