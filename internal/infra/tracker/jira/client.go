package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/accessibly/ticketsync/internal/domain/integrations"
	"github.com/accessibly/ticketsync/internal/domain/tickets"
)

// Client is a thin HTTP client for the Jira Cloud REST API v2, scoped to a
// single resolved integration. It handles basic auth, JSON marshaling, and
// the error taxonomy mapping (4xx → ValidationError, 5xx/network →
// TransportError, 404 on fetch → ErrTicketNotFound).
type Client struct {
	baseURL      string
	email        string
	token        string
	project      string
	issueType    string
	dashboardURL string
	httpClient   *http.Client
}

// New builds a client from a resolved integration config and its decrypted
// API token. dashboardURL is the product UI root used for deep links back to
// the originating scan; may be empty.
func New(cfg *integrations.Config, token, dashboardURL string) *Client {
	issueType := cfg.TicketType
	if issueType == "" {
		issueType = "Bug"
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		email:        cfg.Email,
		token:        token,
		project:      cfg.Project,
		issueType:    issueType,
		dashboardURL: strings.TrimRight(dashboardURL, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Provider() integrations.Provider { return integrations.ProviderJira }

// Create submits the issue-create payload. No automatic retry: a timeout here
// is indistinguishable from a slow success and the caller treats it as a
// retriable TransportError.
func (c *Client) Create(ctx context.Context, p tickets.Payload) (*tickets.Ticket, error) {
	var out createResponse
	if err := c.do(ctx, http.MethodPost, "/rest/api/2/issue", p, &out); err != nil {
		return nil, err
	}
	return &tickets.Ticket{ID: out.ID, Ref: out.Key, URL: c.BuildURL(out.Key)}, nil
}

// Fetch verifies a ticket still exists. Only an explicit 404 maps to
// ErrTicketNotFound; everything else is a transport failure the caller must
// treat as "can't confirm".
func (c *Client) Fetch(ctx context.Context, ref string) (*tickets.Ticket, error) {
	var out issueResponse
	path := "/rest/api/2/issue/" + url.PathEscape(ref) + "?fields=summary"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &tickets.Ticket{ID: out.ID, Ref: out.Key, URL: c.BuildURL(out.Key)}, nil
}

// BuildURL is pure: the browse link for a ticket key.
func (c *Client) BuildURL(ref string) string {
	return c.baseURL + "/browse/" + ref
}

var _ tickets.TrackerClient = (*Client)(nil)

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.email, c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &tickets.TransportError{Provider: integrations.ProviderJira, Err: err}
	}
	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return &tickets.TransportError{Provider: integrations.ProviderJira, Err: readErr}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return tickets.ErrTicketNotFound
	case resp.StatusCode >= 500:
		return &tickets.TransportError{
			Provider: integrations.ProviderJira,
			Err:      fmt.Errorf("status %d on %s %s", resp.StatusCode, method, path),
		}
	case resp.StatusCode >= 400:
		return &tickets.ValidationError{
			Provider: integrations.ProviderJira,
			Message:  validationMessage(resp.StatusCode, respBody),
		}
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}
	return nil
}

// validationMessage flattens Jira's error envelope into one line.
func validationMessage(status int, body []byte) string {
	var jiraErr ErrorResponse
	if json.Unmarshal(body, &jiraErr) == nil {
		parts := append([]string(nil), jiraErr.ErrorMessages...)
		for field, msg := range jiraErr.Errors {
			parts = append(parts, field+": "+msg)
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}
	return fmt.Sprintf("status %d: %s", status, strings.TrimSpace(string(body)))
}
