package poap

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// Client talks to the POAP events API. Only drop/event management lives
// here; code minting happens out-of-band (codes are uploaded as text).
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type CreateEventParams struct {
	Name           string
	Description    string
	City           string
	Country        string
	StartDate      time.Time
	EndDate        time.Time
	ExpiryDate     time.Time
	EventURL       string
	VirtualEvent   bool
	PrivateEvent   bool
	SecretCode     string
	Email          string
	RequestedCodes int
}

type Event struct {
	ID          int64  `json:"id"`
	FancyID     string `json:"fancy_id"`
	Name        string `json:"name"`
	ImageURL    string `json:"image_url"`
	ExpiryDate  string `json:"expiry_date"`
	Description string `json:"description"`
}

// CreateEvent registers a new drop with the issuer and returns its event.
func (c *Client) CreateEvent(ctx context.Context, params CreateEventParams) (*Event, error) {
	var body strings.Builder
	w := multipart.NewWriter(&body)

	fields := map[string]string{
		"name":              params.Name,
		"description":       params.Description,
		"city":              params.City,
		"country":           params.Country,
		"start_date":        params.StartDate.Format("2006-01-02"),
		"end_date":          params.EndDate.Format("2006-01-02"),
		"expiry_date":       params.ExpiryDate.Format("2006-01-02"),
		"year":              strconv.Itoa(params.StartDate.Year()),
		"event_url":         params.EventURL,
		"virtual_event":     strconv.FormatBool(params.VirtualEvent),
		"private_event":     strconv.FormatBool(params.PrivateEvent),
		"secret_code":       params.SecretCode,
		"event_template_id": "0",
		"email":             params.Email,
		"requested_codes":   strconv.Itoa(params.RequestedCodes),
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/events", strings.NewReader(body.String()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("event creation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("event creation rejected: status %d: %s", resp.StatusCode, string(msg))
	}

	var event Event
	if err := json.NewDecoder(resp.Body).Decode(&event); err != nil {
		return nil, fmt.Errorf("failed to decode event response: %w", err)
	}
	return &event, nil
}

// GetEvent fetches an existing event, used to validate an event identifier.
func (c *Client) GetEvent(ctx context.Context, eventID int64) (*Event, error) {
	url := fmt.Sprintf("%s/events/id/%d", c.baseURL, eventID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("event lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("event %d not found", eventID)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("event lookup rejected: status %d: %s", resp.StatusCode, string(msg))
	}

	var event Event
	if err := json.NewDecoder(resp.Body).Decode(&event); err != nil {
		return nil, fmt.Errorf("failed to decode event response: %w", err)
	}
	return &event, nil
}
