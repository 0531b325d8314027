package terminology

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ehr/namaste/internal/platform/fallback"
)

// Registry endpoints and headers.
const (
	searchPath    = "/api/search"
	diagnosisPath = "/api/diagnosis"

	headerAPIKey        = "x-api-key"
	headerSkipBrowserWN = "ngrok-skip-browser-warning"
)

// RegistryClient talks to the external terminology registry. It performs no
// fallback of its own; failures are returned as errors for fallback.Do to
// classify.
type RegistryClient struct {
	http       *resty.Client
	configured bool
}

// NewRegistryClient creates a client for the registry at host. When host or
// apiKey is empty every call fails with fallback.ErrNotConfigured without
// touching the network.
func NewRegistryClient(host, apiKey string, timeout time.Duration) *RegistryClient {
	client := resty.New().
		SetBaseURL(host).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader(headerAPIKey, apiKey).
		SetHeader(headerSkipBrowserWN, "true").
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &RegistryClient{
		http:       client,
		configured: host != "" && apiKey != "",
	}
}

// Search issues GET /api/search?term=... and decodes a JSON array of entries.
func (c *RegistryClient) Search(ctx context.Context, term string) ([]Entry, error) {
	if !c.configured {
		return nil, fmt.Errorf("registry search: %w", fallback.ErrNotConfigured)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("term", term).
		Get(searchPath)
	if err != nil {
		return nil, fmt.Errorf("registry search: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &fallback.StatusError{Op: "registry search", StatusCode: resp.StatusCode()}
	}

	var raw []Entry
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, &fallback.MalformedError{Op: "registry search", Err: err}
	}
	if raw == nil {
		return nil, &fallback.MalformedError{Op: "registry search", Err: errNotAnArray}
	}

	// Entries without both codes cannot be dual-coded and are dropped. An
	// answer made only of such entries is treated as malformed.
	entries := make([]Entry, 0, len(raw))
	for _, e := range raw {
		e = e.normalized()
		if !e.complete() {
			continue
		}
		entries = append(entries, e)
	}
	if len(raw) > 0 && len(entries) == 0 {
		return nil, &fallback.MalformedError{Op: "registry search", Err: errNoCodedEntries}
	}
	return entries, nil
}

// submitResponse accepts both the current {accepted, message} shape and the
// older {success, message} one.
type submitResponse struct {
	Accepted *bool  `json:"accepted"`
	Success  *bool  `json:"success"`
	Message  string `json:"message"`
}

var (
	errNoVerdict      = errors.New("response carries neither accepted nor success")
	errNotAnArray     = errors.New("response body is not a JSON array")
	errNoCodedEntries = errors.New("no entry carries both a NAMASTE and an ICD code")
)

// SubmitDiagnosis issues POST /api/diagnosis with the payload as JSON.
func (c *RegistryClient) SubmitDiagnosis(ctx context.Context, payload *DiagnosisPayload) (*SubmitResult, error) {
	if !c.configured {
		return nil, fmt.Errorf("registry submit: %w", fallback.ErrNotConfigured)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post(diagnosisPath)
	if err != nil {
		return nil, fmt.Errorf("registry submit: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &fallback.StatusError{Op: "registry submit", StatusCode: resp.StatusCode()}
	}

	var body submitResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &fallback.MalformedError{Op: "registry submit", Err: err}
	}

	result := &SubmitResult{Message: body.Message}
	switch {
	case body.Accepted != nil:
		result.Accepted = *body.Accepted
	case body.Success != nil:
		result.Accepted = *body.Success
	default:
		return nil, &fallback.MalformedError{Op: "registry submit", Err: errNoVerdict}
	}
	return result, nil
}
