package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/accessibly/ticketsync/internal/domain/integrations"
	"github.com/accessibly/ticketsync/internal/domain/issues"
)

type IssueRepository struct {
	db *sql.DB
}

func NewIssueRepository(db *sql.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// Get by ID + Tenant
func (r *IssueRepository) Get(ctx context.Context, tenant string, id issues.IssueID) (*issues.Issue, error) {
	const q = `
SELECT id, tenant_id, rule_id, rule_name, description, impact, wcag_level, priority,
       occurrences, pages, notes, first_seen_scan_id,
       jira_synced, jira_ticket_ref, jira_sync_error,
       azure_devops_synced, azure_devops_ticket_ref, azure_devops_sync_error
FROM issues
WHERE tenant_id=? AND id=? LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, tenant, id)

	var i issues.Issue
	var pages []byte
	var wcag, prio, notes, scanID sql.NullString
	var jiraRef, jiraErr, adoRef, adoErr sql.NullString
	if err := row.Scan(
		&i.ID, &i.TenantID, &i.RuleID, &i.RuleName, &i.Description, &i.Impact, &wcag, &prio,
		&i.Occurrences, &pages, &notes, &scanID,
		&i.Jira.Synced, &jiraRef, &jiraErr,
		&i.AzureDevOps.Synced, &adoRef, &adoErr,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, issues.ErrNotFound
		}
		return nil, err
	}
	i.WCAGLevel = wcag.String
	i.Priority = prio.String
	i.Notes = notes.String
	i.FirstSeenScanID = scanID.String
	i.Pages = pagesFromJSON(pages)
	i.Jira.TicketRef = jiraRef.String
	i.Jira.SyncError = jiraErr.String
	i.AzureDevOps.TicketRef = adoRef.String
	i.AzureDevOps.SyncError = adoErr.String
	return &i, nil
}

// SetSyncSuccess marks the provider columns synced and clears the error.
func (r *IssueRepository) SetSyncSuccess(ctx context.Context, tenant string, id issues.IssueID, provider integrations.Provider, ticketRef string) error {
	synced, ref, errCol, err := syncColumns(provider)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(
		"UPDATE issues SET %s=1, %s=?, %s=NULL WHERE tenant_id=? AND id=?;",
		synced, ref, errCol,
	)
	_, err = r.db.ExecContext(ctx, q, ticketRef, tenant, id)
	return err
}

// SetSyncError records a failed sync attempt without touching the ref.
func (r *IssueRepository) SetSyncError(ctx context.Context, tenant string, id issues.IssueID, provider integrations.Provider, msg string) error {
	synced, _, errCol, err := syncColumns(provider)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(
		"UPDATE issues SET %s=0, %s=? WHERE tenant_id=? AND id=?;",
		synced, errCol,
	)
	_, err = r.db.ExecContext(ctx, q, msg, tenant, id)
	return err
}

// ClearSync resets all provider columns, used when a stale mapping is healed.
func (r *IssueRepository) ClearSync(ctx context.Context, tenant string, id issues.IssueID, provider integrations.Provider) error {
	synced, ref, errCol, err := syncColumns(provider)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(
		"UPDATE issues SET %s=0, %s=NULL, %s=NULL WHERE tenant_id=? AND id=?;",
		synced, ref, errCol,
	)
	_, err = r.db.ExecContext(ctx, q, tenant, id)
	return err
}
