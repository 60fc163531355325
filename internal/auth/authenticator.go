// Package auth registers and authenticates users and issues session tokens.
package auth

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// Registration is the profile and credential of a new account.
type Registration struct {
	Name       string
	Email      string
	Phone      string
	Credential string
}

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, passkeys, OAuth, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Register creates a new user account.
	// The credential format depends on the implementation.
	Register(ctx context.Context, reg Registration) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
