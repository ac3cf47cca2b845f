package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "civic.db") + "?_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Report{}, &models.Vote{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

var (
	epoch  = time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	seeded int
)

func seedUser(t *testing.T, repo UserRepository, email, name string, admin bool) *models.User {
	t.Helper()
	seeded++
	u := &models.User{Email: email, Name: name, IsAdmin: admin, CreatedAt: epoch.Add(time.Duration(seeded) * time.Minute)}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func seedReport(t *testing.T, repo ReportRepository, owner *models.User, title string, cat models.Category, approval models.ApprovalStatus, age time.Duration) *models.Report {
	t.Helper()
	r := &models.Report{
		Title:          title,
		Description:    "Reported by a resident of the district.",
		Category:       cat,
		Latitude:       48.85,
		Longitude:      2.35,
		Address:        "Rue de Rivoli 1",
		Status:         models.StatusSubmitted,
		ApprovalStatus: approval,
		UserID:         owner.ID,
		CreatedAt:      epoch.Add(-age),
	}
	require.NoError(t, repo.Create(context.Background(), r))
	return r
}

func reportIDs(reports []models.Report) []uuid.UUID {
	ids := make([]uuid.UUID, len(reports))
	for i, r := range reports {
		ids[i] = r.ID
	}
	return ids
}

func TestGormReportRepository_List(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	reports := NewReportRepository(db)

	alice := seedUser(t, users, "alice@example.com", "Alice", false)
	bob := seedUser(t, users, "bob@example.com", "Bob", false)

	deep := seedReport(t, reports, alice, "Pothole 100% deep", models.CategoryRoads, models.ApprovalApproved, 3*time.Hour)
	dark := seedReport(t, reports, bob, "Dark corner", models.CategoryLighting, models.ApprovalApproved, 2*time.Hour)
	pending := seedReport(t, reports, alice, "Pothole near school", models.CategoryRoads, models.ApprovalPending, time.Hour)
	require.NoError(t, reports.UpdateVoteCounts(ctx, deep.ID, 5, 1, epoch))

	tests := []struct {
		name   string
		filter ReportFilter
		total  int64
		want   []uuid.UUID
	}{
		{"approved newest first", ReportFilter{ApprovalStatus: models.ApprovalApproved, Page: Page{Page: 1, Limit: 20}}, 2, []uuid.UUID{dark.ID, deep.ID}},
		{"oldest first", ReportFilter{Sort: SortOldest, Page: Page{Page: 1, Limit: 20}}, 3, []uuid.UUID{deep.ID, dark.ID, pending.ID}},
		{"top by upvotes", ReportFilter{ApprovalStatus: models.ApprovalApproved, Sort: SortTop, Page: Page{Page: 1, Limit: 20}}, 2, []uuid.UUID{deep.ID, dark.ID}},
		{"category", ReportFilter{Category: models.CategoryRoads, Page: Page{Page: 1, Limit: 20}}, 2, []uuid.UUID{pending.ID, deep.ID}},
		{"owner", ReportFilter{UserID: &bob.ID, Page: Page{Page: 1, Limit: 20}}, 1, []uuid.UUID{dark.ID}},
		{"search is case insensitive", ReportFilter{Search: "POTHOLE", Page: Page{Page: 1, Limit: 20}}, 2, []uuid.UUID{pending.ID, deep.ID}},
		{"percent matches literally", ReportFilter{Search: "%", Page: Page{Page: 1, Limit: 20}}, 1, []uuid.UUID{deep.ID}},
		{"underscore matches literally", ReportFilter{Search: "_", Page: Page{Page: 1, Limit: 20}}, 0, []uuid.UUID{}},
		{"second page keeps total", ReportFilter{Page: Page{Page: 2, Limit: 2}}, 3, []uuid.UUID{deep.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := reports.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)
			assert.Equal(t, tt.want, reportIDs(got))
			for _, r := range got {
				require.NotNil(t, r.User)
				assert.Equal(t, r.UserID, r.User.ID)
			}
		})
	}
}

func TestGormReportRepository_CountApprovedBy(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	reports := NewReportRepository(db)
	owner := seedUser(t, users, "owner@example.com", "Owner", false)

	seedReport(t, reports, owner, "Pothole", models.CategoryRoads, models.ApprovalApproved, 0)
	seedReport(t, reports, owner, "Crack", models.CategoryRoads, models.ApprovalApproved, 0)
	seedReport(t, reports, owner, "Dark corner", models.CategoryLighting, models.ApprovalApproved, 0)
	seedReport(t, reports, owner, "Pending one", models.CategoryLighting, models.ApprovalPending, 0)

	byCategory, err := reports.CountApprovedBy(ctx, "category")
	require.NoError(t, err)
	assert.Equal(t, []CategoryCount{
		{Key: string(models.CategoryLighting), Count: 1},
		{Key: string(models.CategoryRoads), Count: 2},
	}, byCategory)

	byStatus, err := reports.CountApprovedBy(ctx, "status")
	require.NoError(t, err)
	assert.Equal(t, []CategoryCount{{Key: "submitted", Count: 3}}, byStatus)
}

func TestGormReportRepository_UpdateAndDelete(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	reports := NewReportRepository(db)
	owner := seedUser(t, users, "owner@example.com", "Owner", false)
	report := seedReport(t, reports, owner, "Pothole", models.CategoryRoads, models.ApprovalPending, 0)

	require.NoError(t, reports.Update(ctx, report.ID, map[string]interface{}{
		"approval_status": models.ApprovalApproved,
		"approved_by":     owner.ID,
	}))
	got, err := reports.FindByID(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, got.ApprovalStatus)
	require.NotNil(t, got.ApprovedBy)
	assert.Equal(t, owner.ID, *got.ApprovedBy)
	require.NotNil(t, got.User)
	assert.Equal(t, "owner@example.com", got.User.Email)

	assert.ErrorIs(t, reports.Update(ctx, uuid.New(), map[string]interface{}{"title": "x"}), ErrNotFound)

	require.NoError(t, reports.Delete(ctx, report.ID))
	_, err = reports.FindByID(ctx, report.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, reports.Delete(ctx, report.ID), ErrNotFound)
}

func TestGormVoteRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	reports := NewReportRepository(db)
	votes := NewVoteRepository(db)

	owner := seedUser(t, users, "owner@example.com", "Owner", false)
	voter := seedUser(t, users, "voter@example.com", "Voter", false)
	first := seedReport(t, reports, owner, "Pothole", models.CategoryRoads, models.ApprovalApproved, 0)
	second := seedReport(t, reports, owner, "Dark corner", models.CategoryLighting, models.ApprovalApproved, 0)
	third := seedReport(t, reports, owner, "Overflowing bin", models.CategoryWaste, models.ApprovalApproved, 0)

	up := &models.Vote{ReportID: first.ID, UserID: voter.ID, Type: models.VoteUp}
	require.NoError(t, votes.Create(ctx, up))
	require.NoError(t, votes.Create(ctx, &models.Vote{ReportID: second.ID, UserID: voter.ID, Type: models.VoteDown}))
	require.NoError(t, votes.Create(ctx, &models.Vote{ReportID: first.ID, UserID: owner.ID, Type: models.VoteDown}))

	t.Run("one vote per user and report", func(t *testing.T) {
		err := votes.Create(ctx, &models.Vote{ReportID: first.ID, UserID: voter.ID, Type: models.VoteDown})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("find and flip", func(t *testing.T) {
		got, err := votes.Find(ctx, first.ID, voter.ID)
		require.NoError(t, err)
		assert.Equal(t, up.ID, got.ID)

		require.NoError(t, votes.UpdateType(ctx, up.ID, models.VoteDown))
		got, err = votes.Find(ctx, first.ID, voter.ID)
		require.NoError(t, err)
		assert.Equal(t, models.VoteDown, got.Type)

		assert.ErrorIs(t, votes.UpdateType(ctx, uuid.New(), models.VoteUp), ErrNotFound)
		_, err = votes.Find(ctx, third.ID, voter.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("user votes for a page of reports", func(t *testing.T) {
		got, err := votes.UserVotes(ctx, voter.ID, []uuid.UUID{first.ID, second.ID, third.ID})
		require.NoError(t, err)
		assert.Equal(t, map[uuid.UUID]models.VoteType{
			first.ID:  models.VoteDown,
			second.ID: models.VoteDown,
		}, got)

		empty, err := votes.UserVotes(ctx, voter.ID, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("list and delete", func(t *testing.T) {
		list, err := votes.ListByReport(ctx, first.ID)
		require.NoError(t, err)
		assert.Len(t, list, 2)

		require.NoError(t, votes.Delete(ctx, up.ID))
		list, err = votes.ListByReport(ctx, first.ID)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("deleting a user removes their reports and votes", func(t *testing.T) {
		require.NoError(t, users.Delete(ctx, owner.ID))

		_, err := reports.FindByID(ctx, first.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		left, err := votes.UserVotes(ctx, voter.ID, []uuid.UUID{first.ID, second.ID})
		require.NoError(t, err)
		assert.Empty(t, left)
	})
}

func TestGormUserRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)

	ann := seedUser(t, users, "ann@example.com", "Ann Lee", true)
	bob := seedUser(t, users, "bob_smith@example.com", "Bob", false)
	googleID := "google-sub-1"
	require.NoError(t, users.Update(ctx, bob.ID, map[string]interface{}{"google_id": googleID}))

	err := users.Create(ctx, &models.User{Email: "ann@example.com", Name: "Other Ann"})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := users.FindByEmail(ctx, "ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, ann.ID, got.ID)

	got, err = users.FindByGoogleID(ctx, googleID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, got.ID)

	_, err = users.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	admins := true
	tests := []struct {
		name   string
		filter UserFilter
		want   []uuid.UUID
	}{
		{"all", UserFilter{Page: Page{Page: 1, Limit: 20}}, []uuid.UUID{bob.ID, ann.ID}},
		{"admins", UserFilter{IsAdmin: &admins, Page: Page{Page: 1, Limit: 20}}, []uuid.UUID{ann.ID}},
		{"name search", UserFilter{Search: "lee", Page: Page{Page: 1, Limit: 20}}, []uuid.UUID{ann.ID}},
		{"underscore is literal", UserFilter{Search: "_", Page: Page{Page: 1, Limit: 20}}, []uuid.UUID{bob.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, total, err := users.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), total)
			ids := make([]uuid.UUID, len(list))
			for i, u := range list {
				ids[i] = u.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}
