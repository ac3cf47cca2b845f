package services

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/apperror"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/dto"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/repository"
	"github.com/google/uuid"
)

// VoteService keeps one vote per user and report and derives the report's
// counters from the ledger. Counts are always recomputed from the vote rows,
// never incremented, so a failed write-back heals on the next vote.
type VoteService struct {
	reports repository.ReportRepository
	votes   repository.VoteRepository
}

func NewVoteService(reports repository.ReportRepository, votes repository.VoteRepository) *VoteService {
	return &VoteService{reports: reports, votes: votes}
}

// CastVote records voteType for voter: a first vote is inserted, the same
// type again removes it, and the opposite type flips it.
func (s *VoteService) CastVote(ctx context.Context, reportID uuid.UUID, voter *models.User, voteType models.VoteType) (*dto.ReportResponse, error) {
	report, err := s.reports.FindByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, apperror.Internal("failed to load report", err)
	}
	if !canView(report, voter) {
		return nil, ErrReportNotFound
	}

	current, err := s.apply(ctx, reportID, voter.ID, voteType)
	if err != nil {
		return nil, err
	}

	up, down, err := s.Recount(ctx, reportID)
	if err != nil {
		return nil, err
	}

	report.Upvotes = up
	report.Downvotes = down
	report.UpdatedAt = time.Now()
	resp := toReportResponse(report, current)
	return &resp, nil
}

// apply mutates the ledger and returns the voter's resulting vote type, or
// "" when the vote was toggled off.
func (s *VoteService) apply(ctx context.Context, reportID, userID uuid.UUID, voteType models.VoteType) (models.VoteType, error) {
	existing, err := s.votes.Find(ctx, reportID, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", apperror.Internal("failed to load vote", err)
	}

	switch {
	case existing == nil:
		vote := &models.Vote{ReportID: reportID, UserID: userID, Type: voteType}
		if err := s.votes.Create(ctx, vote); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return "", ErrVoteConflict
			}
			return "", apperror.Internal("failed to record vote", err)
		}
		return voteType, nil
	case existing.Type == voteType:
		if err := s.votes.Delete(ctx, existing.ID); err != nil {
			return "", apperror.Internal("failed to remove vote", err)
		}
		return "", nil
	default:
		if err := s.votes.UpdateType(ctx, existing.ID, voteType); err != nil {
			return "", apperror.Internal("failed to change vote", err)
		}
		return voteType, nil
	}
}

// Recount rescans the ledger for a report and overwrites its counters.
func (s *VoteService) Recount(ctx context.Context, reportID uuid.UUID) (up, down int, err error) {
	votes, err := s.votes.ListByReport(ctx, reportID)
	if err != nil {
		return 0, 0, apperror.Internal("failed to count votes", err)
	}
	for _, v := range votes {
		switch v.Type {
		case models.VoteUp:
			up++
		case models.VoteDown:
			down++
		}
	}

	if err := s.reports.UpdateVoteCounts(ctx, reportID, up, down, time.Now()); err != nil {
		return 0, 0, apperror.Internal("failed to update vote counts", err)
	}
	return up, down, nil
}
