package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateReportRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=200"`
	Description string   `json:"description" validate:"required,min=10,max=5000"`
	Category    string   `json:"category" validate:"required,oneof=roads lighting waste water vandalism other"`
	Latitude    *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Address     string   `json:"address" validate:"required,min=1,max=500"`
	ImageURL    *string  `json:"imageUrl" validate:"omitempty,url,max=1000"`
}

type UpdateReportRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string  `json:"description" validate:"omitempty,min=10,max=5000"`
	Category    *string  `json:"category" validate:"omitempty,oneof=roads lighting waste water vandalism other"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Address     *string  `json:"address" validate:"omitempty,min=1,max=500"`
	ImageURL    *string  `json:"imageUrl" validate:"omitempty,url,max=1000"`
}

type VoteRequest struct {
	Type string `json:"type" validate:"required,oneof=up down"`
}

type AdminActionRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
	Reason string `json:"reason" validate:"required_if=Action reject,max=1000"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=submitted in-progress resolved"`
}

type ListReportsQuery struct {
	Page     int    `query:"page" json:"page" validate:"omitempty,min=1,max=10000"`
	Limit    int    `query:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
	Category string `query:"category" json:"category" validate:"omitempty,oneof=roads lighting waste water vandalism other"`
	Status   string `query:"status" json:"status" validate:"omitempty,oneof=submitted approved in-progress resolved rejected"`
	Search   string `query:"search" json:"search" validate:"omitempty,max=100"`
	Sort     string `query:"sort" json:"sort" validate:"omitempty,oneof=newest oldest top"`
}

type ReportAuthor struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatarUrl"`
}

type ReportResponse struct {
	ID              uuid.UUID     `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Category        string        `json:"category"`
	Latitude        float64       `json:"latitude"`
	Longitude       float64       `json:"longitude"`
	Address         string        `json:"address"`
	ImageURL        *string       `json:"imageUrl"`
	Status          string        `json:"status"`
	ApprovalStatus  string        `json:"approvalStatus"`
	Upvotes         int           `json:"upvotes"`
	Downvotes       int           `json:"downvotes"`
	UserID          uuid.UUID     `json:"userId"`
	Author          *ReportAuthor `json:"author,omitempty"`
	UserVote        *string       `json:"userVote"`
	ApprovedBy      *uuid.UUID    `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time    `json:"approvedAt,omitempty"`
	RejectedBy      *uuid.UUID    `json:"rejectedBy,omitempty"`
	RejectedAt      *time.Time    `json:"rejectedAt,omitempty"`
	RejectionReason *string       `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

type ReportListResponse struct {
	Reports    []ReportResponse `json:"reports"`
	Pagination Pagination       `json:"pagination"`
}

type ReportStatsResponse struct {
	Total      int64            `json:"total"`
	ByCategory map[string]int64 `json:"byCategory"`
	ByStatus   map[string]int64 `json:"byStatus"`
}

func (q ListReportsQuery) PageQuery() PageQuery {
	pq := PageQuery{Page: q.Page, Limit: q.Limit}
	pq.Normalize()
	return pq
}
