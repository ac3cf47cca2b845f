package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/dto"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/storage"
)

func toUserResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		AvatarURL:   u.AvatarURL,
		City:        u.City,
		Country:     u.Country,
		IsAdmin:     u.IsAdmin,
		HasPassword: u.HasPassword(),
		HasGoogle:   u.GoogleID != nil,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func toPublicUserResponse(u *models.User) dto.PublicUserResponse {
	return dto.PublicUserResponse{
		ID:        u.ID,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		City:      u.City,
		Country:   u.Country,
		CreatedAt: u.CreatedAt,
	}
}

func toReportResponse(r *models.Report, userVote models.VoteType) dto.ReportResponse {
	resp := dto.ReportResponse{
		ID:              r.ID,
		Title:           r.Title,
		Description:     r.Description,
		Category:        string(r.Category),
		Latitude:        r.Latitude,
		Longitude:       r.Longitude,
		Address:         r.Address,
		ImageURL:        r.ImageURL,
		Status:          string(r.Status),
		ApprovalStatus:  string(r.ApprovalStatus),
		Upvotes:         r.Upvotes,
		Downvotes:       r.Downvotes,
		UserID:          r.UserID,
		ApprovedBy:      r.ApprovedBy,
		ApprovedAt:      r.ApprovedAt,
		RejectedBy:      r.RejectedBy,
		RejectedAt:      r.RejectedAt,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.User != nil {
		resp.Author = &dto.ReportAuthor{
			ID:        r.User.ID,
			Name:      r.User.Name,
			AvatarURL: r.User.AvatarURL,
		}
	}
	if userVote != "" {
		v := string(userVote)
		resp.UserVote = &v
	}
	return resp
}

// canView: approved reports are public; anything else is limited to its
// owner and admins.
func canView(r *models.Report, viewer *models.User) bool {
	if r.IsApproved() {
		return true
	}
	if viewer == nil {
		return false
	}
	return viewer.IsAdmin || viewer.ID == r.UserID
}

func canModify(r *models.Report, actor *models.User) bool {
	return actor != nil && (actor.IsAdmin || actor.ID == r.UserID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// removeObject deletes a replaced upload. Failures are logged and dropped
// since the primary operation has already succeeded.
func removeObject(ctx context.Context, uploader storage.Uploader, url *string) {
	if uploader == nil || url == nil || *url == "" {
		return
	}
	err := uploader.Delete(ctx, *url)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrForeignObject), errors.Is(err, storage.ErrNotConfigured):
		slog.Debug("skipping delete of external object", "url", *url)
	default:
		slog.Warn("failed to delete replaced object", "url", *url, "error", err)
	}
}
