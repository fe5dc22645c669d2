package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/accessibly/ticketsync/internal/domain/integrations"
)

type IntegrationRepository struct{ db *sql.DB }

func NewIntegrationRepository(db *sql.DB) *IntegrationRepository {
	return &IntegrationRepository{db: db}
}

// Resolve walks user → team → organization scope and returns the nearest
// active config for the provider.
func (r *IntegrationRepository) Resolve(ctx context.Context, tenant string, provider integrations.Provider) (*integrations.Config, error) {
	const q = `
SELECT id, tenant_id, provider, scope, base_url, email, encrypted_credential,
       project, ticket_type, area_path, iteration_path, suggest_ai, created_at
FROM integrations
WHERE tenant_id=$1 AND provider=$2 AND active
ORDER BY CASE scope WHEN 'user' THEN 1 WHEN 'team' THEN 2 ELSE 3 END
LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, tenant, provider)
	var c integrations.Config
	var email, area, iteration sql.NullString
	if err := row.Scan(
		&c.ID, &c.TenantID, &c.Provider, &c.Scope, &c.BaseURL, &email, &c.EncryptedCredential,
		&c.Project, &c.TicketType, &area, &iteration, &c.SuggestAI, &c.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, integrations.ErrNotConfigured
		}
		return nil, err
	}
	c.Email = email.String
	c.AreaPath = area.String
	c.IterationPath = iteration.String
	c.Active = true
	return &c, nil
}
