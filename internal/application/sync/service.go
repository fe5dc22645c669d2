package sync

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/accessibly/ticketsync/internal/application"
	"github.com/accessibly/ticketsync/internal/domain/ai"
	"github.com/accessibly/ticketsync/internal/domain/integrations"
	"github.com/accessibly/ticketsync/internal/domain/issues"
	"github.com/accessibly/ticketsync/internal/domain/remediation"
	"github.com/accessibly/ticketsync/internal/domain/scans"
	"github.com/accessibly/ticketsync/internal/domain/tickets"
)

// Service implements the idempotent get-or-create sync for external tickets.
// Safe for concurrent use; correctness under concurrent calls for the same
// issue comes entirely from re-reading the mapping store before every
// decision point, never from locks.
type Service struct {
	Issues       issues.Repository
	Scans        scans.Repository
	Artifacts    scans.ArtifactStore
	Mappings     tickets.MappingStore
	Integrations integrations.Resolver
	Trackers     tickets.ClientFactory
	Suggest      ai.Client // optional
	Clock        application.Clock
}

// Result of a sync call. Existing reports whether the ticket predated this
// call.
type Result struct {
	TicketID  string `json:"id"`
	TicketRef string `json:"ref"`
	URL       string `json:"url"`
	Existing  bool   `json:"existing"`
}

// verification outcome of a Fetch against an existing mapping
type verification int

const (
	verifiedLive verification = iota
	verifiedGone
	verifyUnknown
)

// SyncIssue returns the external ticket for an issue, creating it when
// needed. Steady state guarantee: at most one live mapping per issue per
// provider. A concurrent loser may leave an orphan ticket in the external
// system; that is logged, never deleted.
func (s *Service) SyncIssue(ctx context.Context, tenant string, issueID issues.IssueID, provider integrations.Provider) (Result, error) {
	cfg, err := s.Integrations.Resolve(ctx, tenant, provider)
	if err != nil {
		return Result{}, err
	}
	client, err := s.Trackers.New(cfg)
	if err != nil {
		return Result{}, err
	}

	// Existing mapping: verify it still points at a live ticket. Only an
	// explicit not-found heals; an ambiguous failure must not delete a
	// mapping that may still be valid.
	m, err := s.Mappings.Get(ctx, tenant, issueID, provider)
	if err != nil {
		return Result{}, err
	}
	if m != nil {
		switch s.verify(ctx, client, m) {
		case verifiedLive, verifyUnknown:
			return existingResult(m), nil
		case verifiedGone:
			if err := s.Mappings.Delete(ctx, tenant, issueID, provider); err != nil {
				return Result{}, err
			}
			if err := s.Issues.ClearSync(ctx, tenant, issueID, provider); err != nil {
				log.Printf("sync: clearing stale sync flags for issue %s: %v", issueID, err)
			}
		}
	}

	issue, err := s.Issues.Get(ctx, tenant, issueID)
	if err != nil {
		return Result{}, err
	}
	rem := remediation.Extract(issue, s.loadScanResult(ctx, tenant, issue))
	s.enrichSuggestions(ctx, cfg, issue, &rem)
	payload := client.BuildPayload(issue, rem)

	// Pre-create re-check: a concurrent caller may have finished while we
	// were doing I/O above.
	if m, err := s.Mappings.Get(ctx, tenant, issueID, provider); err == nil && m != nil {
		switch s.verify(ctx, client, m) {
		case verifiedLive, verifyUnknown:
			return existingResult(m), nil
		case verifiedGone:
			if err := s.Mappings.Delete(ctx, tenant, issueID, provider); err != nil {
				return Result{}, err
			}
		}
	}

	// Once the external create starts it must run to completion: aborting
	// after a successful create without recording the mapping would lose
	// track of a live ticket.
	createCtx := context.WithoutCancel(ctx)
	created, err := client.Create(createCtx, payload)
	if err != nil {
		if perr := s.Issues.SetSyncError(createCtx, tenant, issueID, provider, err.Error()); perr != nil {
			log.Printf("sync: persisting sync error for issue %s: %v", issueID, perr)
		}
		return Result{}, err
	}

	// Post-create re-check: if a concurrent caller won the race our fresh
	// ticket is an orphan. Log it; tracker deletion is not assumed safe.
	if m, err := s.Mappings.Get(createCtx, tenant, issueID, provider); err == nil && m != nil {
		log.Printf("sync: orphan %s ticket %s for issue %s, concurrent caller won with %s",
			provider, created.Ref, issueID, m.TicketRef)
		return existingResult(m), nil
	}

	// Defensive idempotency before insert.
	if err := s.Mappings.Delete(createCtx, tenant, issueID, provider); err != nil {
		log.Printf("sync: pre-insert cleanup for issue %s: %v", issueID, err)
	}
	mapping := &tickets.Mapping{
		ID:        uuid.New().String(),
		TenantID:  tenant,
		IssueID:   issueID,
		Provider:  provider,
		TicketID:  created.ID,
		TicketRef: created.Ref,
		URL:       client.BuildURL(created.Ref),
		CreatedAt: s.Clock.Now(),
	}
	if err := s.Mappings.Insert(createCtx, mapping); err != nil {
		// The external ticket exists and the user-visible outcome is
		// correct; never fail the request over local bookkeeping. The next
		// call will not find a mapping and may create a second ticket.
		log.Printf("sync: mapping persistence failed for issue %s ticket %s: %v",
			issueID, created.Ref, err)
	} else if err := s.Issues.SetSyncSuccess(createCtx, tenant, issueID, provider, created.Ref); err != nil {
		log.Printf("sync: setting sync flags for issue %s: %v", issueID, err)
	}

	return Result{
		TicketID:  created.ID,
		TicketRef: created.Ref,
		URL:       mapping.URL,
		Existing:  false,
	}, nil
}

// Lookup reports whether an issue already has a mapped ticket. Read-only; no
// verification against the tracker.
func (s *Service) Lookup(ctx context.Context, tenant string, issueID issues.IssueID, provider integrations.Provider) (*tickets.Mapping, error) {
	return s.Mappings.Get(ctx, tenant, issueID, provider)
}

func (s *Service) verify(ctx context.Context, client tickets.TrackerClient, m *tickets.Mapping) verification {
	if _, err := client.Fetch(ctx, m.TicketRef); err != nil {
		if isNotFound(err) {
			return verifiedGone
		}
		log.Printf("sync: cannot verify %s ticket %s: %v", m.Provider, m.TicketRef, err)
		return verifyUnknown
	}
	return verifiedLive
}

// loadScanResult fetches the payload of the scan that first produced the
// issue. Every failure degrades to nil: the extractor has a fallback for a
// missing result and a sync must not fail on remediation context alone.
func (s *Service) loadScanResult(ctx context.Context, tenant string, issue *issues.Issue) *scans.Result {
	if issue.FirstSeenScanID == "" {
		return nil
	}
	scan, err := s.Scans.Get(ctx, tenant, scans.ScanID(issue.FirstSeenScanID))
	if err != nil {
		log.Printf("sync: loading scan %s for issue %s: %v", issue.FirstSeenScanID, issue.ID, err)
		return nil
	}
	data := []byte(scan.PayloadJSON)
	if len(data) == 0 && scan.ArtifactKey != "" && s.Artifacts != nil {
		data, err = s.Artifacts.Fetch(ctx, scan.ArtifactKey)
		if err != nil {
			log.Printf("sync: fetching scan artifact %s: %v", scan.ArtifactKey, err)
			return nil
		}
	}
	if len(data) == 0 {
		return nil
	}
	res, err := scans.ParseResult(data)
	if err != nil {
		log.Printf("sync: parsing scan payload for %s: %v", scan.ID, err)
		return nil
	}
	if res.Type == "" {
		res.Type = scan.Type
	}
	return res
}

// enrichSuggestions asks the AI client for fix guidance when the extractor
// found none and the integration opted in. Failures are logged and ignored.
func (s *Service) enrichSuggestions(ctx context.Context, cfg *integrations.Config, issue *issues.Issue, rem *tickets.Remediation) {
	if s.Suggest == nil || !cfg.SuggestAI || len(rem.Suggestions) > 0 {
		return
	}
	html := ""
	if len(rem.OffendingElements) > 0 {
		html = rem.OffendingElements[0].HTML
	}
	suggestions, err := s.Suggest.Suggest(ctx, issue.RuleName, issue.Description, html)
	if err != nil {
		log.Printf("sync: ai suggestions for issue %s: %v", issue.ID, err)
		return
	}
	rem.Suggestions = suggestions
}

func existingResult(m *tickets.Mapping) Result {
	return Result{
		TicketID:  m.TicketID,
		TicketRef: m.TicketRef,
		URL:       m.URL,
		Existing:  true,
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, tickets.ErrTicketNotFound)
}
