// Package openmrs is a thin client for the OpenMRS REST API. It covers the
// handful of resources the KPP extensions read and write: encounters,
// locations and patients.
package openmrs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var (
	// ErrNotFound is returned when OpenMRS answers 404.
	ErrNotFound = errors.New("openmrs: resource not found")
	// ErrNoFacilityLocation is returned when no location carries the facility tag.
	ErrNoFacilityLocation = errors.New("openmrs: no facility location")
)

// APIError is a non-2xx response from OpenMRS.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("openmrs: HTTP %d", e.Status)
	}
	return fmt.Sprintf("openmrs: HTTP %d: %s", e.Status, e.Message)
}

// Unwrap lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// Client talks to a single OpenMRS instance.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBasicAuth sets the service account used for every request.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client for the REST root at baseURL
// (e.g. http://emr/openmrs/ws/rest/v1).
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EncounterQuery filters the encounter list endpoint.
type EncounterQuery struct {
	Patient       string
	EncounterType string
	Limit         int
}

func (q EncounterQuery) values() url.Values {
	v := url.Values{}
	v.Set("patient", q.Patient)
	if q.EncounterType != "" {
		v.Set("encounterType", q.EncounterType)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	v.Set("v", EncounterRepresentation)
	return v
}

// EncountersURL is the absolute URL ListEncounters fetches for q. It doubles
// as the revalidation key for cached encounter lists.
func (c *Client) EncountersURL(q EncounterQuery) string {
	return c.baseURL + "/encounter?" + q.values().Encode()
}

// ListEncounters returns the encounters matching q.
func (c *Client) ListEncounters(ctx context.Context, q EncounterQuery) ([]Encounter, error) {
	var resp listResponse[Encounter]
	if err := c.do(ctx, http.MethodGet, "/encounter", q.values(), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return []Encounter{}, nil
	}
	return resp.Results, nil
}

// GetEncounter fetches a single encounter with its observations.
func (c *Client) GetEncounter(ctx context.Context, encounterUUID string) (*Encounter, error) {
	q := url.Values{}
	q.Set("v", EncounterRepresentation)
	var enc Encounter
	if err := c.do(ctx, http.MethodGet, "/encounter/"+url.PathEscape(encounterUUID), q, nil, &enc); err != nil {
		return nil, err
	}
	return &enc, nil
}

// SaveEncounter creates an encounter, or replaces the observations of an
// existing one when encounterUUID is set. OpenMRS uses POST for both.
func (c *Client) SaveEncounter(ctx context.Context, encounterUUID string, payload *EncounterPayload) (*Encounter, error) {
	path := "/encounter"
	if encounterUUID != "" {
		path += "/" + url.PathEscape(encounterUUID)
	}
	q := url.Values{}
	q.Set("v", EncounterRepresentation)
	var enc Encounter
	if err := c.do(ctx, http.MethodPost, path, q, payload, &enc); err != nil {
		return nil, err
	}
	return &enc, nil
}

// DeleteEncounter voids an encounter.
func (c *Client) DeleteEncounter(ctx context.Context, encounterUUID string) error {
	return c.do(ctx, http.MethodDelete, "/encounter/"+url.PathEscape(encounterUUID), nil, nil, nil)
}

// ListLocations searches locations by name.
func (c *Client) ListLocations(ctx context.Context, query string) ([]Location, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("v", "default")
	var resp listResponse[Location]
	if err := c.do(ctx, http.MethodGet, "/location", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// FacilityLocation returns the first location matching query that carries
// the given tag.
func (c *Client) FacilityLocation(ctx context.Context, query, tag string) (*Location, error) {
	locs, err := c.ListLocations(ctx, query)
	if err != nil {
		return nil, err
	}
	for i := range locs {
		if locs[i].HasTag(tag) {
			return &locs[i], nil
		}
	}
	return nil, ErrNoFacilityLocation
}

// GetPatient fetches the full patient record.
func (c *Client) GetPatient(ctx context.Context, patientUUID string) (*Patient, error) {
	q := url.Values{}
	q.Set("v", "full")
	var p Patient
	if err := c.do(ctx, http.MethodGet, "/patient/"+url.PathEscape(patientUUID), q, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Ping checks that OpenMRS is reachable and accepts the service credentials.
func (c *Client) Ping(ctx context.Context) error {
	var session struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := c.do(ctx, http.MethodGet, "/session", nil, nil, &session); err != nil {
		return err
	}
	if c.username != "" && !session.Authenticated {
		return errors.New("openmrs: service account not authenticated")
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("openmrs: rate limit: %w", err)
		}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("openmrs: encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("openmrs: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("openmrs: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("openmrs request")

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("openmrs: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope errorResponse
		if json.Unmarshal(data, &envelope) == nil {
			apiErr.Message = envelope.Error.Message
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("openmrs: decode response: %w", err)
	}
	return nil
}
