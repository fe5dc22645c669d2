package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/accessibly/ticketsync/internal/domain/integrations"
	"github.com/accessibly/ticketsync/internal/domain/issues"
	"github.com/accessibly/ticketsync/internal/domain/tickets"
)

type MappingStore struct{ db *sql.DB }

func NewMappingStore(db *sql.DB) *MappingStore { return &MappingStore{db: db} }

// Get returns the authoritative mapping, or (nil, nil) when none exists.
func (r *MappingStore) Get(ctx context.Context, tenant string, issueID issues.IssueID, provider integrations.Provider) (*tickets.Mapping, error) {
	const q = `
SELECT id, tenant_id, issue_id, provider, ticket_id, ticket_ref, url, created_at
FROM ticket_mappings
WHERE tenant_id=$1 AND issue_id=$2 AND provider=$3
ORDER BY created_at DESC
LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, tenant, issueID, provider)
	var m tickets.Mapping
	if err := row.Scan(&m.ID, &m.TenantID, &m.IssueID, &m.Provider, &m.TicketID, &m.TicketRef, &m.URL, &m.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *MappingStore) Insert(ctx context.Context, m *tickets.Mapping) error {
	const q = `
INSERT INTO ticket_mappings
(id, tenant_id, issue_id, provider, ticket_id, ticket_ref, url, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`
	_, err := r.db.ExecContext(ctx, q, m.ID, m.TenantID, m.IssueID, m.Provider, m.TicketID, m.TicketRef, m.URL, m.CreatedAt)
	return err
}

func (r *MappingStore) Delete(ctx context.Context, tenant string, issueID issues.IssueID, provider integrations.Provider) error {
	const q = `DELETE FROM ticket_mappings WHERE tenant_id=$1 AND issue_id=$2 AND provider=$3;`
	_, err := r.db.ExecContext(ctx, q, tenant, issueID, provider)
	return err
}
