package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/config"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/identity"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/services"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "routes-secret"

type server struct {
	app      *fiber.App
	store    *testutil.Store
	verifier *testutil.Verifier
	uploader *testutil.Uploader
	cfg      *config.Config
}

func newServer(t *testing.T, adjust ...func(*config.Config)) *server {
	t.Helper()
	cfg := &config.Config{
		Env:              "test",
		JWTSecret:        testSecret,
		JWTExpiry:        time.Hour,
		AdminEmails:      []string{"boss@example.com"},
		MaxUploadBytes:   1024,
		RateLimitWindow:  time.Minute,
		RateLimitGeneral: 1000,
		RateLimitAuth:    1000,
		RateLimitReports: 1000,
		RateLimitVotes:   1000,
	}
	for _, fn := range adjust {
		fn(cfg)
	}

	store := testutil.NewStore()
	verifier := testutil.NewVerifier()
	uploader := testutil.NewUploader()

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	passwords := services.NewPasswordHasher(bcrypt.MinCost)
	authService := services.NewAuthService(store.Users(), tokens, passwords, verifier, cfg)
	userService := services.NewUserService(store.Users(), passwords, uploader)
	reportService := services.NewReportService(store.Reports(), store.Votes(), uploader)
	voteService := services.NewVoteService(store.Reports(), store.Votes())

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(false)})
	Setup(app, cfg, tokens, store.Users(), nil, Handlers{
		Auth:   handlers.NewAuthHandler(authService, userService),
		Report: handlers.NewReportHandler(reportService, voteService),
		User:   handlers.NewUserHandler(userService),
		Upload: handlers.NewUploadHandler(uploader, userService, cfg.MaxUploadBytes),
		Health: handlers.NewHealthHandler(cfg.Env, func() error { return nil }),
	})

	return &server{app: app, store: store, verifier: verifier, uploader: uploader, cfg: cfg}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}

type result struct {
	status int
	body   envelope
}

func (r result) decode(t *testing.T, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body.Data, out))
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) result {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(t, req, token)
}

func (s *server) send(t *testing.T, req *http.Request, token string) result {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return result{status: resp.StatusCode, body: env}
}

type authData struct {
	Token string `json:"token"`
	User  struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		IsAdmin bool   `json:"isAdmin"`
	} `json:"user"`
}

func (s *server) register(t *testing.T, email string) authData {
	t.Helper()
	res := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": "password123", "name": "Name " + email,
	})
	require.Equal(t, http.StatusCreated, res.status, res.body.Error)
	var data authData
	res.decode(t, &data)
	return data
}

type reportData struct {
	ID             string  `json:"id"`
	ApprovalStatus string  `json:"approvalStatus"`
	Status         string  `json:"status"`
	Upvotes        int     `json:"upvotes"`
	Downvotes      int     `json:"downvotes"`
	UserVote       *string `json:"userVote"`
}

type reportList struct {
	Reports    []reportData `json:"reports"`
	Pagination struct {
		Total int64 `json:"total"`
	} `json:"pagination"`
}

func newReportBody() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Overflowing bins",
		"description": "The bins at the park entrance have not been emptied.",
		"category":    "waste",
		"latitude":    48.85,
		"longitude":   2.35,
		"address":     "Park entrance",
	}
}

func TestApproveAndVoteScenario(t *testing.T) {
	s := newServer(t)
	alice := s.register(t, "alice@example.com")
	bob := s.register(t, "bob@example.com")
	boss := s.register(t, "boss@example.com")
	require.True(t, boss.User.IsAdmin)

	res := s.do(t, http.MethodPost, "/api/reports", alice.Token, newReportBody())
	require.Equal(t, http.StatusCreated, res.status, res.body.Error)
	var created reportData
	res.decode(t, &created)
	assert.Equal(t, "pending", created.ApprovalStatus)
	path := "/api/reports/" + created.ID

	var list reportList
	res = s.do(t, http.MethodGet, "/api/reports", "", nil)
	require.Equal(t, http.StatusOK, res.status)
	res.decode(t, &list)
	assert.Empty(t, list.Reports)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, "", nil).status)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, bob.Token, nil).status)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, path, alice.Token, nil).status)

	approve := map[string]string{"action": "approve"}
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, path+"/admin-action", "", approve).status)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, path+"/admin-action", bob.Token, approve).status)

	res = s.do(t, http.MethodPost, path+"/admin-action", boss.Token, approve)
	require.Equal(t, http.StatusOK, res.status, res.body.Error)
	var approved reportData
	res.decode(t, &approved)
	assert.Equal(t, "approved", approved.ApprovalStatus)
	assert.Equal(t, "approved", approved.Status)

	res = s.do(t, http.MethodGet, "/api/reports", "", nil)
	res.decode(t, &list)
	require.Len(t, list.Reports, 1)
	assert.Equal(t, created.ID, list.Reports[0].ID)

	res = s.do(t, http.MethodPost, path+"/vote", bob.Token, map[string]string{"type": "up"})
	require.Equal(t, http.StatusOK, res.status, res.body.Error)
	var voted reportData
	res.decode(t, &voted)
	assert.Equal(t, 1, voted.Upvotes)
	require.NotNil(t, voted.UserVote)
	assert.Equal(t, "up", *voted.UserVote)

	res = s.do(t, http.MethodPost, path+"/vote", bob.Token, map[string]string{"type": "up"})
	require.Equal(t, http.StatusOK, res.status)
	voted = reportData{}
	res.decode(t, &voted)
	assert.Equal(t, 0, voted.Upvotes)
	assert.Nil(t, voted.UserVote)
}

func TestValidationEnvelope(t *testing.T) {
	s := newServer(t)
	alice := s.register(t, "alice@example.com")

	body := newReportBody()
	delete(body, "latitude")
	body["category"] = "parks"

	res := s.do(t, http.MethodPost, "/api/reports", alice.Token, body)
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.False(t, res.body.Success)
	assert.Equal(t, "VALIDATION_ERROR", res.body.Code)

	fields := map[string]bool{}
	for _, d := range res.body.Details {
		fields[d.Field] = true
	}
	assert.True(t, fields["latitude"])
	assert.True(t, fields["category"])

	res = s.do(t, http.MethodGet, "/api/reports/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "VALIDATION_ERROR", res.body.Code)

	res = s.do(t, http.MethodGet, "/api/reports?page=9223372036854775807", "", nil)
	assert.Equal(t, http.StatusBadRequest, res.status)
	require.Len(t, res.body.Details, 1)
	assert.Equal(t, "page", res.body.Details[0].Field)
	assert.Equal(t, "must be at most 10000", res.body.Details[0].Message)
}

func TestAuthFlows(t *testing.T) {
	s := newServer(t)
	s.register(t, "jane@example.com")

	res := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "JANE@example.com", "password": "password123", "name": "Jane",
	})
	assert.Equal(t, http.StatusConflict, res.status)
	assert.Equal(t, "CONFLICT", res.body.Code)

	res = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "jane@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, res.status)
	assert.Equal(t, "invalid email or password", res.body.Error)

	s.verifier.Add("google-token", identity.Profile{Subject: "g-1", Email: "jane@example.com", Name: "Jane", EmailVerified: true})
	res = s.do(t, http.MethodPost, "/api/auth/google", "", map[string]string{"idToken": "google-token"})
	require.Equal(t, http.StatusOK, res.status, res.body.Error)
	var google struct {
		authData
		IsNewUser bool `json:"isNewUser"`
	}
	res.decode(t, &google)
	assert.False(t, google.IsNewUser)
	assert.Equal(t, 1, s.store.UserCount())

	res = s.do(t, http.MethodGet, "/api/auth/me", google.Token, nil)
	require.Equal(t, http.StatusOK, res.status)

	res = s.do(t, http.MethodPost, "/api/auth/verify", google.Token, nil)
	require.Equal(t, http.StatusOK, res.status)
	var verify struct {
		Valid     bool      `json:"valid"`
		ExpiresAt time.Time `json:"expiresAt"`
		User      struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	res.decode(t, &verify)
	assert.True(t, verify.Valid)
	assert.Equal(t, "jane@example.com", verify.User.Email)
	assert.True(t, verify.ExpiresAt.After(time.Now()))

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/auth/me", "", nil).status)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/auth/logout", google.Token, nil).status)
}

func TestRefreshAcceptsExpiredToken(t *testing.T) {
	s := newServer(t)
	user := s.store.PutUser(models.User{Email: "x@example.com", Name: "X"})

	expired, err := services.NewTokenService(testSecret, -time.Minute).Issue(&user)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/auth/me", expired, nil).status)

	res := s.do(t, http.MethodPost, "/api/auth/refresh", expired, nil)
	require.Equal(t, http.StatusOK, res.status, res.body.Error)
	var fresh struct {
		Token string `json:"token"`
	}
	res.decode(t, &fresh)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/auth/me", fresh.Token, nil).status)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/auth/refresh", "", nil).status)
}

func TestAdminUserRoutes(t *testing.T) {
	s := newServer(t)
	boss := s.register(t, "boss@example.com")
	alice := s.register(t, "alice@example.com")

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/users", "", nil).status)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/users", alice.Token, nil).status)

	res := s.do(t, http.MethodGet, "/api/users?isAdmin=true", boss.Token, nil)
	require.Equal(t, http.StatusOK, res.status, res.body.Error)
	var users struct {
		Users []struct {
			Email string `json:"email"`
		} `json:"users"`
	}
	res.decode(t, &users)
	require.Len(t, users.Users, 1)
	assert.Equal(t, "boss@example.com", users.Users[0].Email)

	res = s.do(t, http.MethodPost, "/api/users/"+alice.User.ID+"/promote", boss.Token, nil)
	require.Equal(t, http.StatusOK, res.status)
	// alice's old token now passes the admin guard
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/users", alice.Token, nil).status)

	res = s.do(t, http.MethodPost, "/api/users/"+boss.User.ID+"/demote", boss.Token, nil)
	assert.Equal(t, http.StatusForbidden, res.status)

	res = s.do(t, http.MethodGet, "/api/users/"+alice.User.ID, "", nil)
	require.Equal(t, http.StatusOK, res.status)
	var public map[string]interface{}
	res.decode(t, &public)
	assert.Equal(t, alice.User.ID, public["id"])
	assert.NotContains(t, public, "email")
	assert.NotContains(t, public, "isAdmin")
}

func multipartRequest(t *testing.T, path, field string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, "upload.bin")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestUploads(t *testing.T) {
	s := newServer(t)
	alice := s.register(t, "alice@example.com")

	res := s.send(t, multipartRequest(t, "/api/upload/image", "image", pngBytes), alice.Token)
	require.Equal(t, http.StatusCreated, res.status, res.body.Error)
	var uploaded struct {
		URL string `json:"url"`
	}
	res.decode(t, &uploaded)
	assert.Contains(t, uploaded.URL, testutil.UploadBase+"reports/")
	assert.Contains(t, s.uploader.Objects, uploaded.URL)

	res = s.send(t, multipartRequest(t, "/api/upload/image", "image", []byte("just some text")), alice.Token)
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "VALIDATION_ERROR", res.body.Code)

	res = s.send(t, multipartRequest(t, "/api/upload/image", "image", bytes.Repeat(pngBytes, 100)), alice.Token)
	assert.Equal(t, http.StatusBadRequest, res.status)

	res = s.send(t, multipartRequest(t, "/api/upload/avatar", "avatar", pngBytes), alice.Token)
	require.Equal(t, http.StatusOK, res.status, res.body.Error)
	var profile struct {
		AvatarURL *string `json:"avatarUrl"`
	}
	res.decode(t, &profile)
	require.NotNil(t, profile.AvatarURL)
	assert.Contains(t, *profile.AvatarURL, "avatars/")

	assert.Equal(t, http.StatusUnauthorized, s.send(t, multipartRequest(t, "/api/upload/image", "image", pngBytes), "").status)
}

func TestAuthRateLimit(t *testing.T) {
	s := newServer(t, func(cfg *config.Config) { cfg.RateLimitAuth = 2 })
	creds := map[string]string{"email": "ghost@example.com", "password": "password123"}

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/auth/login", "", creds).status)
	}
	res := s.do(t, http.MethodPost, "/api/auth/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, res.status)
	assert.Equal(t, "RATE_LIMITED", res.body.Code)
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	for _, path := range []string{"/health", "/api/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp, err := s.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "test", body["environment"])
		resp.Body.Close()
	}
}
