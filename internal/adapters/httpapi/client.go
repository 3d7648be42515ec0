// Package httpapi is a ComponentService over a remote JSON boundary, for
// deployments where the revision store lives behind another service instead
// of the embedded sqlite adapter.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/paydesk/taxdecl/internal/domain"
)

type Client struct {
	base string
	http *http.Client
}

// New builds a client for the boundary at base (scheme://host[:port]).
func New(base string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: strings.TrimRight(base, "/"), http: httpClient}
}

type componentBody struct {
	ComponentData domain.NestedRecord `json:"component_data"`
}

func (c *Client) GetComponent(ctx context.Context, employeeID int64, taxYear string, kind domain.ComponentKind) (domain.NestedRecord, error) {
	u := fmt.Sprintf("%s/employees/%d/components/%s?tax_year=%s",
		c.base, employeeID, kind, url.QueryEscape(taxYear))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNoExistingData
	}
	if resp.StatusCode != http.StatusOK {
		return nil, boundaryError(resp)
	}
	var body componentBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return body.ComponentData, nil
}

func (c *Client) SaveComponent(ctx context.Context, save *domain.SaveRequest) (domain.NestedRecord, error) {
	// The component travels under its kind name alongside the envelope
	// fields, so marshal the envelope first and splice the data in.
	payload := map[string]any{
		"employee_id":        save.EmployeeID,
		"tax_year":           save.TaxYear,
		"force_new_revision": save.ForceNewRevision,
		"notes":              save.Notes,
		string(save.Kind):    save.Component,
	}
	if save.EffectiveFrom != "" {
		payload["effective_from"] = save.EffectiveFrom
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/employees/%d/components/%s", c.base, save.EmployeeID, save.Kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", save.Kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, boundaryError(resp)
	}
	var body componentBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode save response: %w", err)
	}
	return body.ComponentData, nil
}

// boundaryError turns a non-2xx response into an error carrying the
// boundary's detail payload, which may be a plain string or a field list.
func boundaryError(resp *http.Response) error {
	var payload domain.ErrorPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Detail == nil {
		return fmt.Errorf("boundary returned %s", resp.Status)
	}
	switch d := payload.Detail.(type) {
	case string:
		return fmt.Errorf("boundary returned %s: %s", resp.Status, d)
	default:
		raw, _ := json.Marshal(d)
		return fmt.Errorf("boundary returned %s: %s", resp.Status, raw)
	}
}
