package service

import (
	"github.com/roleplayhq/roleplay-backend/internal/app/model"
)

// IsGroupMaster decides whether the acting user administers the group. Every
// master-only operation (accept/reject requests, update/delete group) goes
// through this single check.
func IsGroupMaster(actingUserID uint, group *model.Group) bool {
	return group != nil && group.Master == actingUserID
}
