package identity

import (
	"context"
	"errors"
)

var ErrInvalidIdentity = errors.New("invalid identity token")

// Profile is the identity asserted by a federated provider. EmailVerified
// is true only when the provider vouches that Subject controls Email.
type Profile struct {
	Subject       string
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// Verifier checks a provider-issued token and returns the profile it
// asserts. Implementations return ErrInvalidIdentity (possibly wrapped) for
// any token that must not be trusted.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Profile, error)
}
