package azuredevops

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/accessibly/ticketsync/internal/domain/integrations"
	"github.com/accessibly/ticketsync/internal/domain/tickets"
)

const apiVersion = "7.0"

// Client talks to the Azure DevOps work item tracking REST API, scoped to a
// single resolved integration. Ticket refs are work item ids rendered as
// strings.
type Client struct {
	baseURL      string // organization URL, e.g. https://dev.azure.com/acme
	project      string
	pat          string
	workItemType string
	areaPath     string
	iteration    string
	dashboardURL string
	httpClient   *http.Client
}

// New builds a client from a resolved integration config and its decrypted
// personal access token.
func New(cfg *integrations.Config, pat, dashboardURL string) *Client {
	witType := cfg.TicketType
	if witType == "" {
		witType = "Issue"
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		project:      cfg.Project,
		pat:          pat,
		workItemType: witType,
		areaPath:     cfg.AreaPath,
		iteration:    cfg.IterationPath,
		dashboardURL: strings.TrimRight(dashboardURL, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Provider() integrations.Provider { return integrations.ProviderAzureDevOps }

// Create submits the JSON-patch document. No automatic retry.
func (c *Client) Create(ctx context.Context, p tickets.Payload) (*tickets.Ticket, error) {
	path := fmt.Sprintf("/%s/_apis/wit/workitems/$%s?api-version=%s",
		url.PathEscape(c.project), url.PathEscape(c.workItemType), apiVersion)
	var out workItemResponse
	if err := c.do(ctx, http.MethodPost, path, p, &out); err != nil {
		return nil, err
	}
	ref := strconv.Itoa(out.ID)
	return &tickets.Ticket{ID: ref, Ref: ref, URL: c.BuildURL(ref)}, nil
}

// Fetch verifies a work item still exists. Azure DevOps reports a deleted
// work item as 404.
func (c *Client) Fetch(ctx context.Context, ref string) (*tickets.Ticket, error) {
	path := fmt.Sprintf("/%s/_apis/wit/workitems/%s?api-version=%s",
		url.PathEscape(c.project), url.PathEscape(ref), apiVersion)
	var out workItemResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	id := strconv.Itoa(out.ID)
	return &tickets.Ticket{ID: id, Ref: id, URL: c.BuildURL(id)}, nil
}

// BuildURL is pure: the work item edit link.
func (c *Client) BuildURL(ref string) string {
	return c.baseURL + "/" + url.PathEscape(c.project) + "/_workitems/edit/" + ref
}

var _ tickets.TrackerClient = (*Client)(nil)

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	contentType := "application/json"
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
		if method == http.MethodPost {
			// Work item mutations take a patch document.
			contentType = "application/json-patch+json"
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth("", c.pat)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &tickets.TransportError{Provider: integrations.ProviderAzureDevOps, Err: err}
	}
	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return &tickets.TransportError{Provider: integrations.ProviderAzureDevOps, Err: readErr}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return tickets.ErrTicketNotFound
	case resp.StatusCode >= 500:
		return &tickets.TransportError{
			Provider: integrations.ProviderAzureDevOps,
			Err:      fmt.Errorf("status %d on %s %s", resp.StatusCode, method, path),
		}
	case resp.StatusCode >= 400:
		msg := fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		var adoErr errorResponse
		if json.Unmarshal(respBody, &adoErr) == nil && adoErr.Message != "" {
			msg = adoErr.Message
		}
		return &tickets.ValidationError{Provider: integrations.ProviderAzureDevOps, Message: msg}
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}
	return nil
}
