package repository

import (
	"context"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportSort string

const (
	SortNewest ReportSort = "newest"
	SortOldest ReportSort = "oldest"
	SortTop    ReportSort = "top"
)

type ReportFilter struct {
	ApprovalStatus models.ApprovalStatus
	Status         models.ReportStatus
	Category       models.Category
	UserID         *uuid.UUID
	Search         string
	Sort           ReportSort
	Page
}

// CategoryCount is one row of an aggregate over approved reports.
type CategoryCount struct {
	Key   string
	Count int64
}

type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	// FindByID loads the report with its author.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	UpdateVoteCounts(ctx context.Context, id uuid.UUID, upvotes, downvotes int, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ReportFilter) ([]models.Report, int64, error)
	CountApprovedBy(ctx context.Context, column string) ([]CategoryCount, error)
}

type gormReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &gormReportRepository{db: db}
}

func (r *gormReportRepository) Create(ctx context.Context, report *models.Report) error {
	return translate(r.db.WithContext(ctx).Create(report).Error)
}

func (r *gormReportRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).Preload("User").First(&report, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &report, nil
}

func (r *gormReportRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Report{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormReportRepository) UpdateVoteCounts(ctx context.Context, id uuid.UUID, upvotes, downvotes int, at time.Time) error {
	// Map updates so zero counts are written.
	return r.Update(ctx, id, map[string]interface{}{
		"upvotes":    upvotes,
		"downvotes":  downvotes,
		"updated_at": at,
	})
}

func (r *gormReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Report{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormReportRepository) List(ctx context.Context, filter ReportFilter) ([]models.Report, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Report{})
	if filter.ApprovalStatus != "" {
		query = query.Where("approval_status = ?", filter.ApprovalStatus)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Search != "" {
		pattern := likePattern(strings.ToLower(filter.Search))
		query = query.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []models.Report
	err := query.Preload("User").
		Order(orderClause(filter.Sort)).
		Limit(filter.Limit).
		Offset(filter.Offset()).
		Find(&reports).Error
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *gormReportRepository) CountApprovedBy(ctx context.Context, column string) ([]CategoryCount, error) {
	if column != "category" && column != "status" {
		column = "category"
	}

	var rows []CategoryCount
	err := r.db.WithContext(ctx).Model(&models.Report{}).
		Select(column+" AS key, COUNT(*) AS count").
		Where("approval_status = ?", models.ApprovalApproved).
		Group(column).
		Order(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func orderClause(sort ReportSort) string {
	switch sort {
	case SortOldest:
		return "created_at ASC"
	case SortTop:
		return "upvotes DESC, created_at DESC"
	default:
		return "created_at DESC"
	}
}
