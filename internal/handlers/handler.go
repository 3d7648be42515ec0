package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/paydesk/taxdecl/internal/domain"
	"github.com/paydesk/taxdecl/internal/ports"
	"github.com/paydesk/taxdecl/internal/statute"
)

type Handler struct {
	repo ports.RevisionRepository
	gen  ports.StatementGenerator
}

func New(repo ports.RevisionRepository, gen ports.StatementGenerator) *Handler {
	return &Handler{repo: repo, gen: gen}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /employees/{id}/components/{kind}", h.getComponent)
	mux.HandleFunc("PUT /employees/{id}/components/{kind}", h.saveComponent)
	mux.HandleFunc("GET /employees/{id}/components/{kind}/history", h.history)
	mux.HandleFunc("GET /employees/{id}/statement", h.statement)
	return mux
}

func (h *Handler) getComponent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDetail(w, 400, "invalid employee id")
		return
	}
	kind, ok := pathKind(r)
	if !ok {
		writeDetail(w, 400, "unknown component kind")
		return
	}
	rec, err := h.repo.GetComponent(r.Context(), id, taxYear(r), kind)
	if errors.Is(err, domain.ErrNoExistingData) {
		writeDetail(w, 404, "no data declared for this component")
		return
	}
	if err != nil {
		writeDetail(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, map[string]any{"component_data": rec})
}

func (h *Handler) saveComponent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDetail(w, 400, "invalid employee id")
		return
	}
	kind, ok := pathKind(r)
	if !ok {
		writeDetail(w, 400, "unknown component kind")
		return
	}

	var body struct {
		TaxYear          string `json:"tax_year"`
		ForceNewRevision bool   `json:"force_new_revision"`
		EffectiveFrom    string `json:"effective_from"`
		Notes            string `json:"notes"`
	}
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeDetail(w, 400, "malformed request body")
		return
	}
	envelope, _ := json.Marshal(raw)
	if err := json.Unmarshal(envelope, &body); err != nil {
		writeDetail(w, 400, "malformed request body")
		return
	}
	var component domain.NestedRecord
	if data, ok := raw[string(kind)]; ok {
		if err := json.Unmarshal(data, &component); err != nil {
			writeDetail(w, 400, fmt.Sprintf("malformed %s data", kind))
			return
		}
	}
	if component == nil {
		writeDetail(w, 400, fmt.Sprintf("request carries no %s data", kind))
		return
	}
	if _, known := statute.ForYear(body.TaxYear); body.TaxYear == "" || !known {
		slog.Warn("unknown tax year on save, using default",
			"tax_year", body.TaxYear, "employee", id)
		body.TaxYear = domain.DefaultTaxYear
	}
	if body.ForceNewRevision && body.EffectiveFrom == "" {
		writeJSON(w, 422, domain.ErrorPayload{Detail: []domain.ValidationError{
			{Field: "effective_from", Detail: domain.ErrEffectiveFromRequired.Error()},
		}})
		return
	}

	rec, err := h.repo.SaveComponent(r.Context(), &domain.SaveRequest{
		EmployeeID:       id,
		TaxYear:          body.TaxYear,
		Kind:             kind,
		Component:        component,
		ForceNewRevision: body.ForceNewRevision,
		EffectiveFrom:    body.EffectiveFrom,
		Notes:            body.Notes,
	})
	if errors.Is(err, domain.ErrEffectiveFromRequired) {
		writeJSON(w, 422, domain.ErrorPayload{Detail: []domain.ValidationError{
			{Field: "effective_from", Detail: err.Error()},
		}})
		return
	}
	if err != nil {
		writeDetail(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, map[string]any{"component_data": rec})
}

// revisionView is the wire shape of one history entry.
type revisionView struct {
	ID            int64                `json:"id"`
	Kind          domain.ComponentKind `json:"kind"`
	EffectiveFrom string               `json:"effective_from"`
	EffectiveTill *string              `json:"effective_till"`
	Active        bool                 `json:"active"`
	Notes         string               `json:"notes"`
	Data          domain.NestedRecord  `json:"data"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDetail(w, 400, "invalid employee id")
		return
	}
	kind, ok := pathKind(r)
	if !ok {
		writeDetail(w, 400, "unknown component kind")
		return
	}
	revs, err := h.repo.History(r.Context(), id, taxYear(r), kind)
	if err != nil {
		writeDetail(w, 500, err.Error())
		return
	}
	views := make([]revisionView, 0, len(revs))
	for i := range revs {
		rev := &revs[i]
		v := revisionView{
			ID:            rev.ID,
			Kind:          rev.Kind,
			EffectiveFrom: rev.EffectiveFrom.Format("2006-01-02"),
			Active:        rev.Active(),
			Notes:         rev.Notes,
			Data:          rev.Data,
			CreatedAt:     rev.CreatedAt,
			UpdatedAt:     rev.UpdatedAt,
		}
		if rev.EffectiveTill != nil {
			till := rev.EffectiveTill.Format("2006-01-02")
			v.EffectiveTill = &till
		}
		views = append(views, v)
	}
	writeJSON(w, 200, map[string]any{"revisions": views})
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDetail(w, 400, "invalid employee id")
		return
	}
	year := taxYear(r)

	components := map[domain.ComponentKind]domain.NestedRecord{}
	for _, kind := range domain.Kinds() {
		rec, err := h.repo.GetComponent(r.Context(), id, year, kind)
		if errors.Is(err, domain.ErrNoExistingData) {
			continue
		}
		if err != nil {
			writeDetail(w, 500, err.Error())
			return
		}
		components[kind] = rec
	}
	if len(components) == 0 {
		writeDetail(w, 404, "nothing declared for this year")
		return
	}

	s := &domain.Statement{
		EmployeeID:   id,
		EmployeeName: r.URL.Query().Get("name"),
		TaxYear:      year,
		Components:   components,
		GeneratedAt:  time.Now(),
	}
	if s.EmployeeName == "" {
		s.EmployeeName = fmt.Sprintf("Employee %d", id)
	}

	var buf bytes.Buffer
	if err := h.gen.Generate(r.Context(), s, &buf); err != nil {
		writeDetail(w, 500, err.Error())
		return
	}
	filename := fmt.Sprintf("declaration_%d_%s.pdf", id, time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "err", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, domain.ErrorPayload{Detail: detail})
}

func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(r.PathValue(key), 10, 64)
}

func pathKind(r *http.Request) (domain.ComponentKind, bool) {
	kind := domain.ComponentKind(r.PathValue("kind"))
	return kind, kind.Valid()
}

// taxYear reads the tax_year query parameter, defaulting when absent.
func taxYear(r *http.Request) string {
	if y := r.URL.Query().Get("tax_year"); y != "" {
		return y
	}
	return domain.DefaultTaxYear
}
