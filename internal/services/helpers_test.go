package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/config"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

type testEnv struct {
	store     *testutil.Store
	verifier  *testutil.Verifier
	uploader  *testutil.Uploader
	tokens    *TokenService
	passwords *PasswordHasher
	auth      *AuthService
	users     *UserService
	reports   *ReportService
	votes     *VoteService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := testutil.NewStore()
	verifier := testutil.NewVerifier()
	uploader := testutil.NewUploader()
	tokens := NewTokenService(testSecret, time.Hour)
	passwords := NewPasswordHasher(bcrypt.MinCost)
	cfg := &config.Config{AdminEmails: []string{"boss@example.com"}}

	return &testEnv{
		store:     store,
		verifier:  verifier,
		uploader:  uploader,
		tokens:    tokens,
		passwords: passwords,
		auth:      NewAuthService(store.Users(), tokens, passwords, verifier, cfg),
		users:     NewUserService(store.Users(), passwords, uploader),
		reports:   NewReportService(store.Reports(), store.Votes(), uploader),
		votes:     NewVoteService(store.Reports(), store.Votes()),
	}
}

func (e *testEnv) user(t *testing.T, email string, admin bool) *models.User {
	t.Helper()
	hash, err := e.passwords.Hash("password123")
	require.NoError(t, err)
	u := e.store.PutUser(models.User{Email: email, Name: "User " + email, PasswordHash: &hash, IsAdmin: admin})
	return &u
}

func (e *testEnv) report(t *testing.T, owner *models.User, approval models.ApprovalStatus) models.Report {
	t.Helper()
	status := models.StatusSubmitted
	if approval == models.ApprovalApproved {
		status = models.StatusApproved
	}
	return e.store.PutReport(models.Report{
		Title:          "Broken streetlight",
		Description:    "The streetlight on the corner has been out for a week.",
		Category:       models.CategoryLighting,
		Latitude:       52.52,
		Longitude:      13.405,
		Address:        "Main St 1",
		Status:         status,
		ApprovalStatus: approval,
		UserID:         owner.ID,
	})
}

func bg() context.Context { return context.Background() }

func ptr[T any](v T) *T { return &v }
