package scans

import "context"

// Repository port (read-only here; scan rows are owned by the scan pipeline)
type Repository interface {
	Get(ctx context.Context, tenant string, id ScanID) (*Scan, error)
}

// ArtifactStore port fetches offloaded scan payloads by key.
type ArtifactStore interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}
