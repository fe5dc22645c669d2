package issues

import (
	"context"
	"errors"

	"github.com/accessibly/ticketsync/internal/domain/integrations"
)

// ErrNotFound indicates the issue does not exist for the tenant
var ErrNotFound = errors.New("issue not found")

// Repository port (interface for persistence). The sync engine reads issues
// and writes only the per-provider sync flags.
type Repository interface {
	Get(ctx context.Context, tenant string, id IssueID) (*Issue, error)

	SetSyncSuccess(ctx context.Context, tenant string, id IssueID, provider integrations.Provider, ticketRef string) error
	SetSyncError(ctx context.Context, tenant string, id IssueID, provider integrations.Provider, msg string) error
	ClearSync(ctx context.Context, tenant string, id IssueID, provider integrations.Provider) error
}
