package integrations

import (
	"context"
	"errors"
)

// ErrNotConfigured indicates no active integration resolves for the
// tenant/provider pair. User-fixable; surfaced as 404.
var ErrNotConfigured = errors.New("no active integration configured")

// Resolver port: supplies the active tracker configuration for a tenant.
type Resolver interface {
	Resolve(ctx context.Context, tenant string, provider Provider) (*Config, error)
}

// CredentialDecrypter unseals the credential stored on a Config. The sealing
// side lives in the credential service; this is the consume-only capability.
type CredentialDecrypter interface {
	Decrypt(ciphertext string) (string, error)
}
