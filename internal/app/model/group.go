package model

import (
	"time"
)

// Group is a tabletop session group. Master is the owning user's id; the
// master is always one of Players from creation until the group is deleted.
type Group struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"not null" json:"description"`
	Chronic     string    `gorm:"size:255;not null" json:"chronic"`
	Schedule    string    `gorm:"size:255;not null" json:"schedule"`
	Location    string    `gorm:"size:255;not null" json:"location"`
	Master      uint      `gorm:"not null;index" json:"master"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	MasterUser *User  `gorm:"foreignKey:Master" json:"master_user,omitempty"`
	Players    []User `gorm:"many2many:group_players" json:"players,omitempty"`
}

func (Group) TableName() string {
	return "groups"
}

// GroupPlayer is the membership pivot between groups and users. The composite
// primary key guarantees a (group, user) pair exists at most once.
type GroupPlayer struct {
	GroupID   uint      `gorm:"primaryKey" json:"group_id"`
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (GroupPlayer) TableName() string {
	return "group_players"
}
