package identity

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"
)

// GoogleVerifier validates Google Sign-In ID tokens for one OAuth client.
type GoogleVerifier struct {
	clientID  string
	validator *idtoken.Validator
}

func NewGoogleVerifier(ctx context.Context, clientID string) (*GoogleVerifier, error) {
	v, err := idtoken.NewValidator(ctx)
	if err != nil {
		return nil, fmt.Errorf("create google token validator: %w", err)
	}
	return &GoogleVerifier{clientID: clientID, validator: v}, nil
}

func (g *GoogleVerifier) Verify(ctx context.Context, token string) (*Profile, error) {
	if g.clientID == "" {
		return nil, fmt.Errorf("%w: google sign-in is not configured", ErrInvalidIdentity)
	}

	payload, err := g.validator.Validate(ctx, token, g.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}

	return profileFromClaims(payload.Subject, payload.Claims)
}

func profileFromClaims(subject string, claims map[string]interface{}) (*Profile, error) {
	p := &Profile{
		Subject:       subject,
		Email:         strings.ToLower(strings.TrimSpace(stringClaim(claims, "email"))),
		Name:          strings.TrimSpace(stringClaim(claims, "name")),
		Picture:       stringClaim(claims, "picture"),
		EmailVerified: boolClaim(claims, "email_verified"),
	}
	if p.Subject == "" || p.Email == "" || p.Name == "" {
		return nil, fmt.Errorf("%w: profile is missing email, name or subject", ErrInvalidIdentity)
	}
	return p, nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

// boolClaim accepts both JSON booleans and the "true" string some Google
// token variants carry.
func boolClaim(claims map[string]interface{}, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}
