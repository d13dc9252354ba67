package model

import (
	"time"
)

type GroupRequestStatus string

const (
	RequestPending  GroupRequestStatus = "PENDING"
	RequestAccepted GroupRequestStatus = "ACCEPTED"
)

// GroupRequest is a player's pending request to join a group. Rejection
// deletes the row instead of keeping a rejected state, so a user may request
// again after being turned down. The composite unique index enforces at most
// one request per (group, user) pair even under concurrent creates.
type GroupRequest struct {
	ID        uint               `gorm:"primarykey" json:"id"`
	GroupID   uint               `gorm:"not null;uniqueIndex:idx_group_requests_group_user" json:"group_id"`
	UserID    uint               `gorm:"not null;uniqueIndex:idx_group_requests_group_user" json:"user_id"`
	Status    GroupRequestStatus `gorm:"type:varchar(20);default:'PENDING'" json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`

	Group *Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	User  *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (GroupRequest) TableName() string {
	return "group_requests"
}
