package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryRoads     Category = "roads"
	CategoryLighting  Category = "lighting"
	CategoryWaste     Category = "waste"
	CategoryWater     Category = "water"
	CategoryVandalism Category = "vandalism"
	CategoryOther     Category = "other"
)

var Categories = []Category{
	CategoryRoads, CategoryLighting, CategoryWaste,
	CategoryWater, CategoryVandalism, CategoryOther,
}

// ReportStatus is the operational lifecycle of a report.
type ReportStatus string

const (
	StatusSubmitted  ReportStatus = "submitted"
	StatusApproved   ReportStatus = "approved"
	StatusInProgress ReportStatus = "in-progress"
	StatusResolved   ReportStatus = "resolved"
	StatusRejected   ReportStatus = "rejected"
)

// ApprovalStatus is the moderation state of a report, tracked separately
// from ReportStatus.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Report is a citizen submission about a local problem. Upvotes and
// Downvotes mirror the votes table and are rewritten after every vote.
type Report struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string         `gorm:"not null;size:200" json:"title"`
	Description     string         `gorm:"type:text;not null" json:"description"`
	Category        Category       `gorm:"not null;size:20;index" json:"category"`
	Latitude        float64        `gorm:"not null" json:"latitude"`
	Longitude       float64        `gorm:"not null" json:"longitude"`
	Address         string         `gorm:"not null;size:500" json:"address"`
	ImageURL        *string        `gorm:"size:1000" json:"imageUrl"`
	Status          ReportStatus   `gorm:"not null;size:20;default:'submitted';index" json:"status"`
	ApprovalStatus  ApprovalStatus `gorm:"not null;size:20;default:'pending';index" json:"approvalStatus"`
	Upvotes         int            `gorm:"not null;default:0" json:"upvotes"`
	Downvotes       int            `gorm:"not null;default:0" json:"downvotes"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"userId"`
	ApprovedBy      *uuid.UUID     `gorm:"type:uuid" json:"approvedBy"`
	ApprovedAt      *time.Time     `json:"approvedAt"`
	RejectedBy      *uuid.UUID     `gorm:"type:uuid" json:"rejectedBy"`
	RejectedAt      *time.Time     `json:"rejectedAt"`
	RejectionReason *string        `gorm:"size:1000" json:"rejectionReason"`
	CreatedAt       time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	User            *User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (Report) TableName() string {
	return "reports"
}

func (r *Report) IsApproved() bool {
	return r.ApprovalStatus == ApprovalApproved
}
