package repository

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VoteRepository is the vote ledger.
type VoteRepository interface {
	Find(ctx context.Context, reportID, userID uuid.UUID) (*models.Vote, error)
	Create(ctx context.Context, vote *models.Vote) error
	UpdateType(ctx context.Context, id uuid.UUID, voteType models.VoteType) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByReport(ctx context.Context, reportID uuid.UUID) ([]models.Vote, error)
	// UserVotes returns the user's vote type keyed by report id for the
	// given reports.
	UserVotes(ctx context.Context, userID uuid.UUID, reportIDs []uuid.UUID) (map[uuid.UUID]models.VoteType, error)
}

type gormVoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &gormVoteRepository{db: db}
}

func (r *gormVoteRepository) Find(ctx context.Context, reportID, userID uuid.UUID) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Where("report_id = ? AND user_id = ?", reportID, userID).
		First(&vote).Error
	if err != nil {
		return nil, translate(err)
	}
	return &vote, nil
}

func (r *gormVoteRepository) Create(ctx context.Context, vote *models.Vote) error {
	return translate(r.db.WithContext(ctx).Create(vote).Error)
}

func (r *gormVoteRepository) UpdateType(ctx context.Context, id uuid.UUID, voteType models.VoteType) error {
	result := r.db.WithContext(ctx).Model(&models.Vote{}).Where("id = ?", id).Update("type", voteType)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormVoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(r.db.WithContext(ctx).Delete(&models.Vote{}, "id = ?", id).Error)
}

func (r *gormVoteRepository) ListByReport(ctx context.Context, reportID uuid.UUID) ([]models.Vote, error) {
	var votes []models.Vote
	if err := r.db.WithContext(ctx).Where("report_id = ?", reportID).Find(&votes).Error; err != nil {
		return nil, err
	}
	return votes, nil
}

func (r *gormVoteRepository) UserVotes(ctx context.Context, userID uuid.UUID, reportIDs []uuid.UUID) (map[uuid.UUID]models.VoteType, error) {
	result := make(map[uuid.UUID]models.VoteType, len(reportIDs))
	if len(reportIDs) == 0 {
		return result, nil
	}

	var votes []models.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND report_id IN ?", userID, reportIDs).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	for _, v := range votes {
		result[v.ReportID] = v.Type
	}
	return result, nil
}
