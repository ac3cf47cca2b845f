package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/apperror"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/config"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/dto"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/identity"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/repository"
)

type AuthService struct {
	users     repository.UserRepository
	tokens    *TokenService
	passwords *PasswordHasher
	verifier  identity.Verifier
	cfg       *config.Config
}

func NewAuthService(
	users repository.UserRepository,
	tokens *TokenService,
	passwords *PasswordHasher,
	verifier identity.Verifier,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		verifier:  verifier,
		cfg:       cfg,
	}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Internal("failed to look up user", err)
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Name:         req.Name,
		PasswordHash: &hash,
		City:         optionalString(req.City),
		Country:      optionalString(req.Country),
		IsAdmin:      s.cfg.IsAdminEmail(email),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, apperror.Internal("failed to create user", err)
	}

	slog.Info("user registered", "user_id", user.ID.String())
	return s.authResponse(user)
}

// Login never tells "no such user" apart from "wrong password". The one
// distinct failure is an account that only has Google sign-in.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperror.Internal("failed to look up user", err)
	}

	if !user.HasPassword() {
		return nil, ErrGoogleOnlyAccount
	}

	ok, err := s.passwords.Verify(req.Password, *user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.authResponse(user)
}

// GoogleSignIn resolves a Google identity to a user: by Google id first,
// then by email (linking the Google id to an existing password account),
// and finally by creating a new user.
func (s *AuthService) GoogleSignIn(ctx context.Context, idToken string) (*dto.GoogleAuthResponse, error) {
	profile, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		slog.Warn("google token verification failed", "error", err)
		return nil, ErrInvalidIdentity
	}

	user, isNew, err := s.resolveGoogleUser(ctx, profile)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperror.Internal("failed to issue token", err)
	}

	return &dto.GoogleAuthResponse{
		User:      toUserResponse(user),
		Token:     token,
		IsNewUser: isNew,
	}, nil
}

func (s *AuthService) resolveGoogleUser(ctx context.Context, p *identity.Profile) (*models.User, bool, error) {
	user, err := s.users.FindByGoogleID(ctx, p.Subject)
	switch {
	case err == nil:
		if p.Picture != "" && (user.AvatarURL == nil || *user.AvatarURL != p.Picture) {
			if err := s.users.Update(ctx, user.ID, map[string]interface{}{"avatar_url": p.Picture}); err != nil {
				return nil, false, apperror.Internal("failed to update avatar", err)
			}
			picture := p.Picture
			user.AvatarURL = &picture
		}
		return user, false, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, false, apperror.Internal("failed to look up user", err)
	}

	// Without the provider vouching for the address, neither linking nor
	// creating an account by email is safe.
	if !p.EmailVerified {
		return nil, false, ErrUnverifiedEmail
	}

	user, err = s.users.FindByEmail(ctx, p.Email)
	switch {
	case err == nil:
		// Email-match merge: whoever Google vouches for as the owner of this
		// address gains Google sign-in on the existing account.
		if err := s.users.Update(ctx, user.ID, map[string]interface{}{"google_id": p.Subject}); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, false, apperror.Conflict("google account is already linked to another user")
			}
			return nil, false, apperror.Internal("failed to link google account", err)
		}
		subject := p.Subject
		user.GoogleID = &subject
		slog.Info("google account linked", "user_id", user.ID.String())
		return user, false, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, false, apperror.Internal("failed to look up user", err)
	}

	subject := p.Subject
	user = &models.User{
		Email:     p.Email,
		Name:      p.Name,
		GoogleID:  &subject,
		AvatarURL: optionalString(p.Picture),
		IsAdmin:   s.cfg.IsAdminEmail(p.Email),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, false, apperror.Conflict("account was created concurrently, please retry")
		}
		return nil, false, apperror.Internal("failed to create user", err)
	}

	slog.Info("user registered via google", "user_id", user.ID.String())
	return user, true, nil
}

// Refresh exchanges a token whose signature is valid, even if expired, for
// a fresh one carrying the user's current admin flag.
func (s *AuthService) Refresh(ctx context.Context, token string) (string, error) {
	claims, err := s.tokens.ParseIgnoringExpiry(token)
	if err != nil {
		return "", err
	}

	userID, _ := claims.UserID()
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserGone
		}
		return "", apperror.Internal("failed to look up user", err)
	}

	fresh, err := s.tokens.Issue(user)
	if err != nil {
		return "", apperror.Internal("failed to issue token", err)
	}
	return fresh, nil
}

// VerifyToken checks signature and expiry, then reports the user as stored
// now rather than as the token remembers it.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*dto.VerifyResponse, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	userID, _ := claims.UserID()
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserGone
		}
		return nil, apperror.Internal("failed to look up user", err)
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return &dto.VerifyResponse{Valid: true, User: toUserResponse(user), ExpiresAt: expiresAt}, nil
}

func (s *AuthService) authResponse(user *models.User) (*dto.AuthResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperror.Internal("failed to issue token", err)
	}
	return &dto.AuthResponse{User: toUserResponse(user), Token: token}, nil
}
