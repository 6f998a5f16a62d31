// Package identity abstracts the credential service. The rest of the core
// only ever sees opaque principal ids; profiles reference them weakly and
// never own them.
package identity

import "context"

// Principal is what the provider hands back after a successful credential
// check.
type Principal struct {
	ID    string
	Email string
}

// Provider is the external identity collaborator contract.
type Provider interface {
	// Authenticate verifies credentials and returns the principal.
	Authenticate(ctx context.Context, email, password string) (*Principal, error)

	// RegisterPrincipal creates a new principal for the given credentials.
	RegisterPrincipal(ctx context.Context, email, password string) (*Principal, error)

	// DeletePrincipal removes a principal. Used as the compensating action
	// when onboarding fails after the principal was created.
	DeletePrincipal(ctx context.Context, principalID string) error
}
