package dto

import (
	"time"

	"github.com/google/uuid"
)

// PublicUserResponse omits contact and credential details.
type PublicUserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatarUrl"`
	City      *string   `json:"city"`
	Country   *string   `json:"country"`
	CreatedAt time.Time `json:"createdAt"`
}

type UpdateProfileRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=2,max=100"`
	City      *string `json:"city" validate:"omitempty,max=100"`
	Country   *string `json:"country" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url,max=1000"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

type AdminUpdateUserRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=2,max=100"`
	City    *string `json:"city" validate:"omitempty,max=100"`
	Country *string `json:"country" validate:"omitempty,max=100"`
}

type ListUsersQuery struct {
	Page    int    `query:"page" json:"page" validate:"omitempty,min=1,max=10000"`
	Limit   int    `query:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
	Search  string `query:"search" json:"search" validate:"omitempty,max=100"`
	IsAdmin string `query:"isAdmin" json:"isAdmin" validate:"omitempty,oneof=true false"`
}

func (q ListUsersQuery) PageQuery() PageQuery {
	pq := PageQuery{Page: q.Page, Limit: q.Limit}
	pq.Normalize()
	return pq
}

type UserListResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination Pagination     `json:"pagination"`
}

type UploadResponse struct {
	URL string `json:"url"`
}
