package tickets

import (
	"errors"
	"fmt"

	"github.com/accessibly/ticketsync/internal/domain/integrations"
)

// ErrTicketNotFound indicates the provider explicitly reported the ticket as
// gone. Only this error triggers stale-mapping cleanup; transient failures
// must not delete a valid mapping.
var ErrTicketNotFound = errors.New("ticket not found")

// ValidationError: the provider rejected the payload (4xx-class response).
// Surfaced verbatim to the caller and persisted onto the issue's sync_error.
type ValidationError struct {
	Provider integrations.Provider
	Message  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s rejected the ticket: %s", e.Provider, e.Message)
}

// TransportError: network failure, timeout, or provider 5xx. Retriable by a
// future sync call.
type TransportError struct {
	Provider integrations.Provider
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
