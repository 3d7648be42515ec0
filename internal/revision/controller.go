// Package revision drives one component's editing lifecycle: load the
// active record (or start from defaults), track per-field edits through the
// calculator buffers, classify advisory findings, and assemble the save
// request. Saving in Update mode rewrites the active revision in place;
// NewRevision mode closes its window and opens a dated successor, and is
// the only path with a blocking precondition (the effective date).
package revision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/paydesk/taxdecl/internal/calc"
	"github.com/paydesk/taxdecl/internal/domain"
	"github.com/paydesk/taxdecl/internal/form"
	"github.com/paydesk/taxdecl/internal/ports"
	"github.com/paydesk/taxdecl/internal/statute"
	"github.com/paydesk/taxdecl/internal/validate"
)

// Mode selects what a save does to revision history.
type Mode int

const (
	// Update rewrites the active revision's data in place.
	Update Mode = iota
	// NewRevision closes the active revision at the effective date and
	// inserts a new one from that date on.
	NewRevision
)

// Session edits one (employee, tax year, kind) component.
type Session struct {
	svc ports.ComponentService

	employeeID int64
	taxYear    string
	kind       domain.ComponentKind
	limits     *statute.YearLimits

	mu            sync.Mutex
	form          form.FlatForm
	buffers       map[string]*calc.Buffer
	mode          Mode
	effectiveFrom string
	notes         string
	age           int

	// loadGen guards against a slow load landing over a newer one.
	loadGen    int
	noExisting bool
}

// NewSession starts an unloaded session. The tax year picks the statutory
// table; an unknown year falls back to the default table.
func NewSession(svc ports.ComponentService, employeeID int64, taxYear string, kind domain.ComponentKind) *Session {
	limits, _ := statute.ForYear(taxYear)
	return &Session{
		svc:        svc,
		employeeID: employeeID,
		taxYear:    taxYear,
		kind:       kind,
		limits:     limits,
		form:       form.Defaults(kind),
		buffers:    map[string]*calc.Buffer{},
	}
}

// Load fetches the active record and flattens it into the form. A boundary
// answer of "no existing data" is not a failure: the session keeps its
// defaults and remembers that the save must insert rather than update. If
// another Load started after this one, the result is discarded.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loadGen++
	gen := s.loadGen
	s.mu.Unlock()

	rec, err := s.svc.GetComponent(ctx, s.employeeID, s.taxYear, s.kind)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.loadGen {
		return nil
	}
	if err != nil {
		if errors.Is(err, domain.ErrNoExistingData) {
			s.form = form.Defaults(s.kind)
			s.buffers = map[string]*calc.Buffer{}
			s.noExisting = true
			return nil
		}
		return fmt.Errorf("load %s: %w", s.kind, err)
	}
	f, err := form.Flatten(s.kind, rec)
	s.noExisting = errors.Is(err, domain.ErrNoExistingData)
	s.form = f
	s.buffers = map[string]*calc.Buffer{}
	return nil
}

// HasExistingData reports whether the last load found a stored record.
func (s *Session) HasExistingData() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.noExisting
}

func (s *Session) SetMode(m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}

func (s *Session) SetEffectiveFrom(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.effectiveFrom = date
}

func (s *Session) SetNotes(notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = notes
}

// SetAge records the employee's age for age-dependent ceilings.
func (s *Session) SetAge(age int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.age = age
}

// Field returns the current display value for a flat key: the live buffer
// text while the field is being edited, otherwise the committed form value.
func (s *Session) Field(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.buffers[key]; ok {
		return b.Text()
	}
	return fmt.Sprint(s.form[key])
}

// SetField applies a keystroke. Amount-typed fields route through their
// calculator buffer; everything else lands in the form directly.
func (s *Session) SetField(key string, raw any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	def, ok := form.FieldByKey(s.kind, key)
	if !ok {
		return
	}
	text, isText := raw.(string)
	if !isText || !validate.IsAmountField(def.Type) {
		s.form[key] = raw
		delete(s.buffers, key)
		return
	}
	b, ok := s.buffers[key]
	if !ok {
		b = calc.NewBuffer(text)
		s.buffers[key] = b
		return
	}
	b.SetInput(text)
}

// FocusField returns the text the field should show on focus: zero
// placeholders clear so an expression can be typed straight away.
func (s *Session) FocusField(key string) string {
	return calc.FocusText(s.Field(key))
}

// BlurField commits the field's buffer. A composing expression evaluates
// into the form; an errored buffer reports its error and keeps the raw text
// on screen until the input changes.
func (s *Session) BlurField(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buffers[key]
	if !ok {
		return fmt.Sprint(s.form[key]), nil
	}
	text, err := b.Commit()
	if err != nil {
		return text, err
	}
	s.form[key] = text
	delete(s.buffers, key)
	return text, nil
}

// ValidateField classifies the field's current value against the statutory
// table. Findings are advisory: nothing returned here blocks a save.
func (s *Session) ValidateField(key string) validate.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	def, ok := form.FieldByKey(s.kind, key)
	if !ok {
		return validate.Result{Severity: validate.None}
	}
	return validate.Validate(def.Type, s.displayValue(key), s.validationContext(def))
}

// Finding pairs a flat key with its classification.
type Finding struct {
	Key    string
	Result validate.Result
}

// ValidateAll classifies every field and returns the non-clean findings in
// schema order.
func (s *Session) ValidateAll() []Finding {
	s.mu.Lock()
	defer s.mu.Unlock()
	var findings []Finding
	for _, def := range form.Schema(s.kind) {
		r := validate.Validate(def.Type, s.displayValue(def.Key), s.validationContext(def))
		if r.Severity != validate.None {
			findings = append(findings, Finding{Key: def.Key, Result: r})
		}
	}
	return findings
}

// Save assembles and sends the save request. In NewRevision mode a missing
// effective date fails before anything reaches the boundary. Any still-open
// calculator buffer commits first; an expression error blocks the save. A
// failed save leaves the form exactly as it was.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == NewRevision && s.effectiveFrom == "" {
		return domain.ErrEffectiveFromRequired
	}
	// Commit into a scratch copy so an expression error, or a rejected
	// save, leaves s.form untouched.
	committed := s.form.Clone()
	for key, b := range s.buffers {
		text, err := b.Commit()
		if err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		committed[key] = text
	}

	req := &domain.SaveRequest{
		EmployeeID:       s.employeeID,
		TaxYear:          s.taxYear,
		Kind:             s.kind,
		Component:        form.Unflatten(s.kind, committed),
		ForceNewRevision: s.mode == NewRevision,
		Notes:            s.notes,
	}
	if s.mode == NewRevision {
		req.EffectiveFrom = s.effectiveFrom
	}

	saved, err := s.svc.SaveComponent(ctx, req)
	if err != nil {
		return fmt.Errorf("save %s: %w", s.kind, err)
	}
	s.form = committed
	s.buffers = make(map[string]*calc.Buffer)
	if f, ferr := form.Flatten(s.kind, saved); ferr == nil {
		s.form = f
	}
	s.noExisting = false
	s.mode = Update
	s.effectiveFrom = ""
	return nil
}

// displayValue is the raw text validation sees: live buffer text when the
// field is mid-edit, the committed value otherwise. Callers hold s.mu.
func (s *Session) displayValue(key string) string {
	if b, ok := s.buffers[key]; ok {
		return b.Text()
	}
	return fmt.Sprint(s.form[key])
}

// groupTotal sums the group's fields as they currently read on screen:
// uncommitted buffer text counts toward the total when it parses as a plain
// number, so a keystroke is validated against the aggregate it creates. An
// expression still being composed falls back to the committed value.
// Callers hold s.mu.
func (s *Session) groupTotal(group statute.AggregateGroup) decimal.Decimal {
	total := decimal.Zero
	for _, def := range form.Schema(s.kind) {
		if def.Group != group {
			continue
		}
		if b, ok := s.buffers[def.Key]; ok {
			if v, ok := parseAmount(b.Text()); ok {
				total = total.Add(v)
				continue
			}
		}
		total = total.Add(s.form.Amount(def.Key))
	}
	return total
}

// parseAmount reads a plain numeric field value, tolerating the rupee
// prefix and comma grouping.
func parseAmount(raw string) (decimal.Decimal, bool) {
	t := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "₹"))
	t = strings.ReplaceAll(t, ",", "")
	if t == "" {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(t)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

// validationContext builds the explicit context for one field: the year's
// table, the field's aggregate total including its own value, and the
// salary-side figures the HRA rule needs. Callers hold s.mu.
func (s *Session) validationContext(def form.FieldDef) validate.Context {
	ctx := validate.Context{
		Limits: s.limits,
		Group:  def.Group,
		Age:    s.age,
		City:   s.form.Str("city"),
	}
	if def.Group != "" {
		ctx.GroupTotal = s.groupTotal(def.Group)
	}
	if s.kind == domain.KindSalary {
		ctx.BasicPlusDA = s.form.Amount("basic_salary").Add(s.form.Amount("dearness_allowance"))
		ctx.RentPaid = s.form.Amount("rent_paid")
	}
	return ctx
}
