package postgres

import (
	"context"
	"database/sql"

	"github.com/accessibly/ticketsync/internal/domain/scans"
)

type ScanRepository struct{ db *sql.DB }

func NewScanRepository(db *sql.DB) *ScanRepository { return &ScanRepository{db: db} }

// Get by ID + Tenant
func (r *ScanRepository) Get(ctx context.Context, tenant string, id scans.ScanID) (*scans.Scan, error) {
	const q = `
SELECT id, tenant_id, scan_type, target, scanned_at, payload_json, artifact_key
FROM scans
WHERE tenant_id=$1 AND id=$2
LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, tenant, id)
	var s scans.Scan
	var target, payload, artifact sql.NullString
	if err := row.Scan(&s.ID, &s.TenantID, &s.Type, &target, &s.ScannedAt, &payload, &artifact); err != nil {
		return nil, err
	}
	s.Target = target.String
	s.PayloadJSON = payload.String
	s.ArtifactKey = artifact.String
	return &s, nil
}
