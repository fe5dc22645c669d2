package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	appsync "github.com/accessibly/ticketsync/internal/application/sync"
	"github.com/accessibly/ticketsync/internal/domain/integrations"
	"github.com/accessibly/ticketsync/internal/domain/issues"
	"github.com/accessibly/ticketsync/internal/domain/tickets"
	"github.com/accessibly/ticketsync/internal/middleware"
)

type Router struct {
	syncSvc *appsync.Service
}

// NewRouter mounts the two structurally identical endpoint pairs, one per
// provider. The orchestration behind them is shared; only the provider
// constant differs. healthHandler may be nil for a plain liveness response.
func NewRouter(syncSvc *appsync.Service, healthHandler http.HandlerFunc) http.Handler {
	r := &Router{syncSvc: syncSvc}
	mux := chi.NewRouter()

	if healthHandler == nil {
		healthHandler = func(w http.ResponseWriter, req *http.Request) {
			w.Write([]byte("ok"))
		}
	}
	mux.Get("/health", healthHandler)
	mux.Get("/ready", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/tickets", r.wrap(r.handleCreate(integrations.ProviderJira)))
		rt.Get("/tickets", r.wrap(r.handleLookup(integrations.ProviderJira)))
		rt.Post("/work-items", r.wrap(r.handleCreate(integrations.ProviderAzureDevOps)))
		rt.Get("/work-items", r.wrap(r.handleLookup(integrations.ProviderAzureDevOps)))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequestError marks caller mistakes that map to 400.
type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var badReq *badRequestError
		var valErr *tickets.ValidationError
		switch {
		case errors.As(err, &badReq):
			http.Error(w, badReq.msg, http.StatusBadRequest)
		case errors.As(err, &valErr):
			middleware.IncrementSyncsFailed()
			http.Error(w, valErr.Message, http.StatusBadRequest)
		case errors.Is(err, integrations.ErrNotConfigured),
			errors.Is(err, issues.ErrNotFound),
			errors.Is(err, sql.ErrNoRows):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			middleware.IncrementSyncsFailed()
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// POST /v1/{tenant}/tickets and /v1/{tenant}/work-items
// Body: {"issueId": "<id>"}
func (r *Router) handleCreate(provider integrations.Provider) handlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		tenant := chi.URLParam(req, "tenant")
		if err := middleware.ValidateTenantID(tenant); err != nil {
			return badRequest("%v", err)
		}

		var body struct {
			IssueID string `json:"issueId"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			return badRequest("invalid request body")
		}
		if err := middleware.ValidateIssueID(body.IssueID); err != nil {
			return badRequest("%v", err)
		}

		res, err := r.syncSvc.SyncIssue(req.Context(), tenant, issues.IssueID(body.IssueID), provider)
		if err != nil {
			return err
		}
		if res.Existing {
			middleware.IncrementTicketsExisting()
		} else {
			middleware.IncrementTicketsCreated()
		}

		ticket := map[string]any{
			"id":  res.TicketID,
			"url": res.URL,
		}
		// Jira refs are human-facing keys distinct from the numeric id.
		if res.TicketRef != res.TicketID {
			ticket["key"] = res.TicketRef
		}

		w.Header().Set("Content-Type", "application/json")
		return json.NewEncoder(w).Encode(map[string]any{
			"success":  true,
			"ticket":   ticket,
			"existing": res.Existing,
		})
	}
}

// GET /v1/{tenant}/tickets?issueId= and /v1/{tenant}/work-items?issueId=
func (r *Router) handleLookup(provider integrations.Provider) handlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		tenant := chi.URLParam(req, "tenant")
		if err := middleware.ValidateTenantID(tenant); err != nil {
			return badRequest("%v", err)
		}
		issueID := req.URL.Query().Get("issueId")
		if err := middleware.ValidateIssueID(issueID); err != nil {
			return badRequest("%v", err)
		}

		m, err := r.syncSvc.Lookup(req.Context(), tenant, issues.IssueID(issueID), provider)
		if err != nil {
			return err
		}

		resp := map[string]any{
			"success":   true,
			"hasTicket": m != nil,
		}
		if m != nil {
			resp["ticketRef"] = m.TicketRef
			resp["ticketUrl"] = m.URL
		}

		w.Header().Set("Content-Type", "application/json")
		return json.NewEncoder(w).Encode(resp)
	}
}
