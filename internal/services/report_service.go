package services

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/apperror"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/dto"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/repository"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/storage"
	"github.com/google/uuid"
)

type ReportService struct {
	reports  repository.ReportRepository
	votes    repository.VoteRepository
	uploader storage.Uploader
}

func NewReportService(reports repository.ReportRepository, votes repository.VoteRepository, uploader storage.Uploader) *ReportService {
	return &ReportService{reports: reports, votes: votes, uploader: uploader}
}

func (s *ReportService) Create(ctx context.Context, author *models.User, req *dto.CreateReportRequest) (*dto.ReportResponse, error) {
	report := &models.Report{
		Title:          req.Title,
		Description:    req.Description,
		Category:       models.Category(req.Category),
		Latitude:       *req.Latitude,
		Longitude:      *req.Longitude,
		Address:        req.Address,
		ImageURL:       req.ImageURL,
		Status:         models.StatusSubmitted,
		ApprovalStatus: models.ApprovalPending,
		UserID:         author.ID,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, apperror.Internal("failed to create report", err)
	}
	report.User = author

	slog.Info("report created", "report_id", report.ID.String(), "user_id", author.ID.String())
	resp := toReportResponse(report, "")
	return &resp, nil
}

func (s *ReportService) load(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, apperror.Internal("failed to load report", err)
	}
	return report, nil
}

// Get hides reports the viewer may not see behind NotFound.
func (s *ReportService) Get(ctx context.Context, id uuid.UUID, viewer *models.User) (*dto.ReportResponse, error) {
	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(report, viewer) {
		return nil, ErrReportNotFound
	}
	return s.respond(ctx, report, viewer)
}

// List returns approved reports only, whoever asks.
func (s *ReportService) List(ctx context.Context, q *dto.ListReportsQuery, viewer *models.User) (*dto.ReportListResponse, error) {
	pq := q.PageQuery()
	filter := repository.ReportFilter{
		ApprovalStatus: models.ApprovalApproved,
		Status:         models.ReportStatus(q.Status),
		Category:       models.Category(q.Category),
		Search:         q.Search,
		Sort:           repository.ReportSort(q.Sort),
		Page:           repository.Page{Page: pq.Page, Limit: pq.Limit},
	}
	return s.list(ctx, filter, viewer)
}

// ListMine returns every report owned by viewer, in any approval state.
func (s *ReportService) ListMine(ctx context.Context, q *dto.ListReportsQuery, viewer *models.User) (*dto.ReportListResponse, error) {
	pq := q.PageQuery()
	filter := repository.ReportFilter{
		Status:   models.ReportStatus(q.Status),
		Category: models.Category(q.Category),
		UserID:   &viewer.ID,
		Search:   q.Search,
		Sort:     repository.ReportSort(q.Sort),
		Page:     repository.Page{Page: pq.Page, Limit: pq.Limit},
	}
	return s.list(ctx, filter, viewer)
}

// ListPending is the admin moderation queue, oldest first.
func (s *ReportService) ListPending(ctx context.Context, q *dto.PageQuery, viewer *models.User) (*dto.ReportListResponse, error) {
	pq := *q
	pq.Normalize()
	filter := repository.ReportFilter{
		ApprovalStatus: models.ApprovalPending,
		Sort:           repository.SortOldest,
		Page:           repository.Page{Page: pq.Page, Limit: pq.Limit},
	}
	return s.list(ctx, filter, viewer)
}

func (s *ReportService) list(ctx context.Context, filter repository.ReportFilter, viewer *models.User) (*dto.ReportListResponse, error) {
	reports, total, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal("failed to list reports", err)
	}

	userVotes := map[uuid.UUID]models.VoteType{}
	if viewer != nil && len(reports) > 0 {
		ids := make([]uuid.UUID, len(reports))
		for i := range reports {
			ids[i] = reports[i].ID
		}
		userVotes, err = s.votes.UserVotes(ctx, viewer.ID, ids)
		if err != nil {
			return nil, apperror.Internal("failed to load votes", err)
		}
	}

	out := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		out = append(out, toReportResponse(&reports[i], userVotes[reports[i].ID]))
	}
	return &dto.ReportListResponse{
		Reports:    out,
		Pagination: dto.NewPagination(filter.Page.Page, filter.Page.Limit, total),
	}, nil
}

// Update lets the owner or an admin edit content fields. Lifecycle fields
// change only through AdminAction and UpdateStatus.
func (s *ReportService) Update(ctx context.Context, id uuid.UUID, actor *models.User, req *dto.UpdateReportRequest) (*dto.ReportResponse, error) {
	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(report, actor) {
		return nil, ErrReportNotFound
	}
	if !canModify(report, actor) {
		return nil, ErrNotReportOwner
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Category != nil {
		fields["category"] = models.Category(*req.Category)
	}
	if req.Latitude != nil {
		fields["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		fields["longitude"] = *req.Longitude
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	replacedImage := req.ImageURL != nil && report.ImageURL != nil && *report.ImageURL != *req.ImageURL
	if req.ImageURL != nil {
		fields["image_url"] = *req.ImageURL
	}

	updated, err := s.apply(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if replacedImage {
		removeObject(ctx, s.uploader, report.ImageURL)
	}
	return s.respond(ctx, updated, actor)
}

func (s *ReportService) Delete(ctx context.Context, id uuid.UUID, actor *models.User) error {
	report, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !canView(report, actor) {
		return ErrReportNotFound
	}
	if !canModify(report, actor) {
		return ErrNotReportOwner
	}

	if err := s.reports.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReportNotFound
		}
		return apperror.Internal("failed to delete report", err)
	}
	removeObject(ctx, s.uploader, report.ImageURL)

	slog.Info("report deleted", "report_id", id.String(), "actor_id", actor.ID.String())
	return nil
}

// AdminAction approves or rejects a report. Repeating the current decision
// leaves the report untouched, and the work status is only moved while the
// report has not progressed past review.
func (s *ReportService) AdminAction(ctx context.Context, id uuid.UUID, admin *models.User, req *dto.AdminActionRequest) (*dto.ReportResponse, error) {
	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var (
		target approvalTarget
		fields map[string]interface{}
	)
	switch req.Action {
	case "approve":
		target = approvalTarget{
			approval: models.ApprovalApproved,
			status:   models.StatusApproved,
			from:     []models.ReportStatus{models.StatusSubmitted, models.StatusRejected},
		}
		fields = map[string]interface{}{
			"approval_status":  models.ApprovalApproved,
			"approved_by":      admin.ID,
			"approved_at":      now,
			"rejected_by":      nil,
			"rejected_at":      nil,
			"rejection_reason": nil,
		}
	case "reject":
		reason := optionalString(req.Reason)
		if reason == nil {
			return nil, ErrReasonRequired
		}
		target = approvalTarget{
			approval: models.ApprovalRejected,
			status:   models.StatusRejected,
			from:     []models.ReportStatus{models.StatusSubmitted, models.StatusApproved},
		}
		fields = map[string]interface{}{
			"approval_status":  models.ApprovalRejected,
			"rejected_by":      admin.ID,
			"rejected_at":      now,
			"rejection_reason": *reason,
			"approved_by":      nil,
			"approved_at":      nil,
		}
	default:
		return nil, apperror.Validation(apperror.FieldError{Field: "action", Message: "must be one of: approve, reject"})
	}

	if report.ApprovalStatus == target.approval {
		return s.respond(ctx, report, admin)
	}
	if target.movesStatus(report.Status) {
		fields["status"] = target.status
	}

	updated, err := s.apply(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	slog.Info("report moderated", "report_id", id.String(), "action", req.Action, "admin_id", admin.ID.String())
	return s.respond(ctx, updated, admin)
}

// approvalTarget is the state an admin decision moves a report into. The
// work status follows only from the review states in from.
type approvalTarget struct {
	approval models.ApprovalStatus
	status   models.ReportStatus
	from     []models.ReportStatus
}

func (t approvalTarget) movesStatus(current models.ReportStatus) bool {
	return slices.Contains(t.from, current)
}

// UpdateStatus moves a report along its work lifecycle.
func (s *ReportService) UpdateStatus(ctx context.Context, id uuid.UUID, admin *models.User, req *dto.UpdateStatusRequest) (*dto.ReportResponse, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	updated, err := s.apply(ctx, id, map[string]interface{}{"status": models.ReportStatus(req.Status)})
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, updated, admin)
}

func (s *ReportService) Stats(ctx context.Context) (*dto.ReportStatsResponse, error) {
	byCategory, err := s.reports.CountApprovedBy(ctx, "category")
	if err != nil {
		return nil, apperror.Internal("failed to count reports", err)
	}
	byStatus, err := s.reports.CountApprovedBy(ctx, "status")
	if err != nil {
		return nil, apperror.Internal("failed to count reports", err)
	}

	resp := &dto.ReportStatsResponse{
		ByCategory: make(map[string]int64, len(models.Categories)),
		ByStatus:   make(map[string]int64),
	}
	for _, c := range models.Categories {
		resp.ByCategory[string(c)] = 0
	}
	for _, row := range byCategory {
		resp.ByCategory[row.Key] = row.Count
		resp.Total += row.Count
	}
	for _, row := range byStatus {
		resp.ByStatus[row.Key] = row.Count
	}
	return resp, nil
}

func (s *ReportService) apply(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Report, error) {
	if len(fields) > 0 {
		fields["updated_at"] = time.Now()
		if err := s.reports.Update(ctx, id, fields); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrReportNotFound
			}
			return nil, apperror.Internal("failed to update report", err)
		}
	}
	return s.load(ctx, id)
}

func (s *ReportService) respond(ctx context.Context, report *models.Report, viewer *models.User) (*dto.ReportResponse, error) {
	var vote models.VoteType
	if viewer != nil {
		v, err := s.votes.Find(ctx, report.ID, viewer.ID)
		switch {
		case err == nil:
			vote = v.Type
		case !errors.Is(err, repository.ErrNotFound):
			return nil, apperror.Internal("failed to load vote", err)
		}
	}
	resp := toReportResponse(report, vote)
	return &resp, nil
}
