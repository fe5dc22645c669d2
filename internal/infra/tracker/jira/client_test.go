package jira

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/accessibly/ticketsync/internal/domain/integrations"
	"github.com/accessibly/ticketsync/internal/domain/tickets"
)

func testClient(serverURL string) *Client {
	return New(&integrations.Config{
		BaseURL: serverURL,
		Email:   "bot@acme.test",
		Project: "ACC",
	}, "secret-token", "https://app.acme.test")
}

func TestCreateSuccess(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rest/api/2/issue" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "bot@acme.test" || pass != "secret-token" {
			t.Errorf("basic auth: %q %q %v", user, pass, ok)
		}
		var body CreatePayload
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		if body.Fields.Project.Key != "ACC" {
			t.Errorf("project key: got %q", body.Fields.Project.Key)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(createResponse{ID: "10042", Key: "ACC-42"})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	ticket, err := c.Create(context.Background(), c.BuildPayload(sampleIssue(), tickets.Remediation{}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.ID != "10042" || ticket.Ref != "ACC-42" {
		t.Errorf("ticket: got %+v", ticket)
	}
	if want := srv.URL + "/browse/ACC-42"; ticket.URL != want {
		t.Errorf("URL: got %q, want %q", ticket.URL, want)
	}
}

func TestFetchNotFound(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background(), "ACC-404")
	if !errors.Is(err, tickets.ErrTicketNotFound) {
		t.Fatalf("got %v, want ErrTicketNotFound", err)
	}
}

func TestCreateValidationError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ErrorResponse{
			Errors: map[string]string{"project": "project is required"},
		})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Create(context.Background(), c.BuildPayload(sampleIssue(), tickets.Remediation{}))
	var valErr *tickets.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if valErr.Message != "project: project is required" {
		t.Errorf("message: got %q", valErr.Message)
	}
}

func TestCreateServerError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Create(context.Background(), c.BuildPayload(sampleIssue(), tickets.Remediation{}))
	var trErr *tickets.TransportError
	if !errors.As(err, &trErr) {
		t.Fatalf("got %v, want TransportError", err)
	}
}

func TestNetworkErrorIsTransport(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := testClient(srv.URL).Fetch(context.Background(), "ACC-1")
	var trErr *tickets.TransportError
	if !errors.As(err, &trErr) {
		t.Fatalf("got %v, want TransportError", err)
	}
}
