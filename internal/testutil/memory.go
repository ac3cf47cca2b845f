// Package testutil provides in-memory stand-ins for the store, identity
// provider and object storage.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/repository"
	"github.com/google/uuid"
)

// Store holds users, reports and votes behind one lock and hands out
// repository views over them.
type Store struct {
	mu      sync.Mutex
	users   map[uuid.UUID]models.User
	reports map[uuid.UUID]models.Report
	votes   map[uuid.UUID]models.Vote
}

func NewStore() *Store {
	return &Store{
		users:   map[uuid.UUID]models.User{},
		reports: map[uuid.UUID]models.Report{},
		votes:   map[uuid.UUID]models.Vote{},
	}
}

func (s *Store) Users() repository.UserRepository     { return &userRepo{s} }
func (s *Store) Reports() repository.ReportRepository { return &reportRepo{s} }
func (s *Store) Votes() repository.VoteRepository     { return &voteRepo{s} }

// UserCount and VoteCount support assertions on row counts.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *Store) VoteCount(reportID uuid.UUID) (up, down int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.votes {
		if v.ReportID != reportID {
			continue
		}
		if v.Type == models.VoteUp {
			up++
		} else {
			down++
		}
	}
	return up, down
}

func (s *Store) Report(id uuid.UUID) (models.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	return r, ok
}

// PutUser inserts or replaces a user as-is.
func (s *Store) PutUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
		u.UpdatedAt = u.CreatedAt
	}
	s.users[u.ID] = u
	return u
}

// PutReport inserts or replaces a report as-is.
func (s *Store) PutReport(r models.Report) models.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
		r.UpdatedAt = r.CreatedAt
	}
	r.User = nil
	s.reports[r.ID] = r
	return r
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
		if u.GoogleID != nil && existing.GoogleID != nil && *existing.GoogleID == *u.GoogleID {
			return repository.ErrDuplicate
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = *u
	return nil
}

func (r *userRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == strings.ToLower(email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) FindByGoogleID(_ context.Context, googleID string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.GoogleID != nil && *u.GoogleID == googleID {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) Update(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	for col, val := range fields {
		switch col {
		case "name":
			u.Name = val.(string)
		case "email":
			u.Email = val.(string)
		case "password_hash":
			u.PasswordHash = strPtr(val)
		case "google_id":
			g := strPtr(val)
			for otherID, other := range r.s.users {
				if otherID != id && g != nil && other.GoogleID != nil && *other.GoogleID == *g {
					return repository.ErrDuplicate
				}
			}
			u.GoogleID = g
		case "avatar_url":
			u.AvatarURL = strPtr(val)
		case "city":
			u.City = strPtr(val)
		case "country":
			u.Country = strPtr(val)
		case "is_admin":
			u.IsAdmin = val.(bool)
		case "updated_at":
			u.UpdatedAt = val.(time.Time)
		default:
			return fmt.Errorf("testutil: unknown user column %q", col)
		}
	}
	r.s.users[id] = u
	return nil
}

func (r *userRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	// Mirror ON DELETE CASCADE.
	for rid, rep := range r.s.reports {
		if rep.UserID == id {
			delete(r.s.reports, rid)
		}
	}
	for vid, v := range r.s.votes {
		if v.UserID == id {
			delete(r.s.votes, vid)
		}
		if _, ok := r.s.reports[v.ReportID]; !ok {
			delete(r.s.votes, vid)
		}
	}
	return nil
}

func (r *userRepo) List(_ context.Context, f repository.UserFilter) ([]models.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []models.User
	search := strings.ToLower(f.Search)
	for _, u := range r.s.users {
		if search != "" && !strings.Contains(strings.ToLower(u.Name), search) && !strings.Contains(u.Email, search) {
			continue
		}
		if f.IsAdmin != nil && u.IsAdmin != *f.IsAdmin {
			continue
		}
		matched = append(matched, u)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, f.Page), int64(len(matched)), nil
}

type reportRepo struct{ s *Store }

func (r *reportRepo) Create(_ context.Context, rep *models.Report) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	now := time.Now()
	rep.CreatedAt, rep.UpdatedAt = now, now
	stored := *rep
	stored.User = nil
	r.s.reports[rep.ID] = stored
	return nil
}

func (r *reportRepo) withUser(rep models.Report) models.Report {
	if u, ok := r.s.users[rep.UserID]; ok {
		rep.User = &u
	}
	return rep
}

func (r *reportRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rep, ok := r.s.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rep = r.withUser(rep)
	return &rep, nil
}

func (r *reportRepo) Update(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rep, ok := r.s.reports[id]
	if !ok {
		return repository.ErrNotFound
	}
	for col, val := range fields {
		switch col {
		case "title":
			rep.Title = val.(string)
		case "description":
			rep.Description = val.(string)
		case "category":
			rep.Category = val.(models.Category)
		case "latitude":
			rep.Latitude = val.(float64)
		case "longitude":
			rep.Longitude = val.(float64)
		case "address":
			rep.Address = val.(string)
		case "image_url":
			rep.ImageURL = strPtr(val)
		case "status":
			rep.Status = val.(models.ReportStatus)
		case "approval_status":
			rep.ApprovalStatus = val.(models.ApprovalStatus)
		case "upvotes":
			rep.Upvotes = val.(int)
		case "downvotes":
			rep.Downvotes = val.(int)
		case "approved_by":
			rep.ApprovedBy = uuidPtr(val)
		case "approved_at":
			rep.ApprovedAt = timePtr(val)
		case "rejected_by":
			rep.RejectedBy = uuidPtr(val)
		case "rejected_at":
			rep.RejectedAt = timePtr(val)
		case "rejection_reason":
			rep.RejectionReason = strPtr(val)
		case "updated_at":
			rep.UpdatedAt = val.(time.Time)
		default:
			return fmt.Errorf("testutil: unknown report column %q", col)
		}
	}
	r.s.reports[id] = rep
	return nil
}

func (r *reportRepo) UpdateVoteCounts(ctx context.Context, id uuid.UUID, up, down int, at time.Time) error {
	return r.Update(ctx, id, map[string]interface{}{"upvotes": up, "downvotes": down, "updated_at": at})
}

func (r *reportRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reports[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.reports, id)
	for vid, v := range r.s.votes {
		if v.ReportID == id {
			delete(r.s.votes, vid)
		}
	}
	return nil
}

func (r *reportRepo) List(_ context.Context, f repository.ReportFilter) ([]models.Report, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []models.Report
	search := strings.ToLower(f.Search)
	for _, rep := range r.s.reports {
		switch {
		case f.ApprovalStatus != "" && rep.ApprovalStatus != f.ApprovalStatus,
			f.Status != "" && rep.Status != f.Status,
			f.Category != "" && rep.Category != f.Category,
			f.UserID != nil && rep.UserID != *f.UserID,
			search != "" && !strings.Contains(strings.ToLower(rep.Title), search) &&
				!strings.Contains(strings.ToLower(rep.Description), search):
			continue
		}
		matched = append(matched, r.withUser(rep))
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch f.Sort {
		case repository.SortOldest:
			return a.CreatedAt.Before(b.CreatedAt)
		case repository.SortTop:
			if a.Upvotes != b.Upvotes {
				return a.Upvotes > b.Upvotes
			}
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return paginate(matched, f.Page), int64(len(matched)), nil
}

func (r *reportRepo) CountApprovedBy(_ context.Context, column string) ([]repository.CategoryCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[string]int64{}
	for _, rep := range r.s.reports {
		if rep.ApprovalStatus != models.ApprovalApproved {
			continue
		}
		if column == "status" {
			counts[string(rep.Status)]++
		} else {
			counts[string(rep.Category)]++
		}
	}
	out := make([]repository.CategoryCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, repository.CategoryCount{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

type voteRepo struct{ s *Store }

func (r *voteRepo) Find(_ context.Context, reportID, userID uuid.UUID) (*models.Vote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.votes {
		if v.ReportID == reportID && v.UserID == userID {
			return &v, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *voteRepo) Create(_ context.Context, vote *models.Vote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.votes {
		if v.ReportID == vote.ReportID && v.UserID == vote.UserID {
			return repository.ErrDuplicate
		}
	}
	if vote.ID == uuid.Nil {
		vote.ID = uuid.New()
	}
	vote.CreatedAt = time.Now()
	r.s.votes[vote.ID] = *vote
	return nil
}

func (r *voteRepo) UpdateType(_ context.Context, id uuid.UUID, voteType models.VoteType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.votes[id]
	if !ok {
		return repository.ErrNotFound
	}
	v.Type = voteType
	r.s.votes[id] = v
	return nil
}

func (r *voteRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.votes, id)
	return nil
}

func (r *voteRepo) ListByReport(_ context.Context, reportID uuid.UUID) ([]models.Vote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Vote
	for _, v := range r.s.votes {
		if v.ReportID == reportID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *voteRepo) UserVotes(_ context.Context, userID uuid.UUID, reportIDs []uuid.UUID) (map[uuid.UUID]models.VoteType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := make(map[uuid.UUID]bool, len(reportIDs))
	for _, id := range reportIDs {
		wanted[id] = true
	}
	out := map[uuid.UUID]models.VoteType{}
	for _, v := range r.s.votes {
		if v.UserID == userID && wanted[v.ReportID] {
			out[v.ReportID] = v.Type
		}
	}
	return out, nil
}

func paginate[T any](items []T, p repository.Page) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := len(items)
	if p.Limit > 0 && start+p.Limit < end {
		end = start + p.Limit
	}
	return items[start:end]
}

func strPtr(v interface{}) *string {
	switch s := v.(type) {
	case string:
		return &s
	case *string:
		return s
	default:
		return nil
	}
}

func uuidPtr(v interface{}) *uuid.UUID {
	if id, ok := v.(uuid.UUID); ok {
		return &id
	}
	return nil
}

func timePtr(v interface{}) *time.Time {
	if t, ok := v.(time.Time); ok {
		return &t
	}
	return nil
}
