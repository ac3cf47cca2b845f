package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/apperror"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/dto"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/repository"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/storage"
	"github.com/google/uuid"
)

type UserService struct {
	users     repository.UserRepository
	passwords *PasswordHasher
	uploader  storage.Uploader
}

func NewUserService(users repository.UserRepository, passwords *PasswordHasher, uploader storage.Uploader) *UserService {
	return &UserService{users: users, passwords: passwords, uploader: uploader}
}

func (s *UserService) find(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperror.Internal("failed to load user", err)
	}
	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *UserService) GetPublic(ctx context.Context, id uuid.UUID) (*dto.PublicUserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toPublicUserResponse(user)
	return &resp, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, user *models.User, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.City != nil {
		fields["city"] = optionalString(*req.City)
	}
	if req.Country != nil {
		fields["country"] = optionalString(*req.Country)
	}
	replacedAvatar := req.AvatarURL != nil && user.AvatarURL != nil && *user.AvatarURL != *req.AvatarURL
	if req.AvatarURL != nil {
		fields["avatar_url"] = *req.AvatarURL
	}

	resp, err := s.update(ctx, user.ID, fields)
	if err != nil {
		return nil, err
	}
	if replacedAvatar {
		removeObject(ctx, s.uploader, user.AvatarURL)
	}
	return resp, nil
}

// SetAvatar stores a freshly uploaded avatar and removes the previous one.
func (s *UserService) SetAvatar(ctx context.Context, user *models.User, url string) (*dto.UserResponse, error) {
	resp, err := s.update(ctx, user.ID, map[string]interface{}{"avatar_url": url})
	if err != nil {
		return nil, err
	}
	if user.AvatarURL != nil && *user.AvatarURL != url {
		removeObject(ctx, s.uploader, user.AvatarURL)
	}
	return resp, nil
}

// ChangePassword requires the current password when the account has one.
// Google-only accounts may set a first password this way.
func (s *UserService) ChangePassword(ctx context.Context, user *models.User, req *dto.ChangePasswordRequest) error {
	if user.HasPassword() {
		ok, err := s.passwords.Verify(req.CurrentPassword, *user.PasswordHash)
		if err != nil {
			return err
		}
		if !ok {
			return ErrWrongPassword
		}
	}

	hash, err := s.passwords.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	_, err = s.update(ctx, user.ID, map[string]interface{}{"password_hash": hash})
	return err
}

func (s *UserService) List(ctx context.Context, q *dto.ListUsersQuery) (*dto.UserListResponse, error) {
	pq := q.PageQuery()
	filter := repository.UserFilter{
		Search: q.Search,
		Page:   repository.Page{Page: pq.Page, Limit: pq.Limit},
	}
	if q.IsAdmin != "" {
		isAdmin := q.IsAdmin == "true"
		filter.IsAdmin = &isAdmin
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal("failed to list users", err)
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return &dto.UserListResponse{
		Users:      out,
		Pagination: dto.NewPagination(pq.Page, pq.Limit, total),
	}, nil
}

func (s *UserService) AdminUpdate(ctx context.Context, id uuid.UUID, req *dto.AdminUpdateUserRequest) (*dto.UserResponse, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.City != nil {
		fields["city"] = optionalString(*req.City)
	}
	if req.Country != nil {
		fields["country"] = optionalString(*req.Country)
	}
	return s.update(ctx, id, fields)
}

func (s *UserService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if actor.ID == id {
		return ErrSelfAdminAction
	}
	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return apperror.Internal("failed to delete user", err)
	}
	removeObject(ctx, s.uploader, user.AvatarURL)
	slog.Info("user deleted", "user_id", id.String(), "actor_id", actor.ID.String())
	return nil
}

// SetAdmin promotes or demotes a user. Admins cannot demote themselves.
func (s *UserService) SetAdmin(ctx context.Context, actor *models.User, id uuid.UUID, isAdmin bool) (*dto.UserResponse, error) {
	if actor.ID == id && !isAdmin {
		return nil, ErrSelfAdminAction
	}
	resp, err := s.update(ctx, id, map[string]interface{}{"is_admin": isAdmin})
	if err != nil {
		return nil, err
	}
	slog.Info("admin flag changed", "user_id", id.String(), "is_admin", isAdmin, "actor_id", actor.ID.String())
	return resp, nil
}

func (s *UserService) update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*dto.UserResponse, error) {
	if len(fields) > 0 {
		fields["updated_at"] = time.Now()
		if err := s.users.Update(ctx, id, fields); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, apperror.Internal("failed to update user", err)
		}
	}
	return s.GetProfile(ctx, id)
}
