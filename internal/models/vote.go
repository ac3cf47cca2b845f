package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

// Vote is one user's vote on one report; (ReportID, UserID) is unique.
type Vote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_report_user,priority:1" json:"reportId"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_report_user,priority:2;index" json:"userId"`
	Type      VoteType  `gorm:"not null;size:10" json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	Report    *Report   `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"-"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

func (Vote) TableName() string {
	return "votes"
}
