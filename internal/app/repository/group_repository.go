package repository

import (
	"github.com/roleplayhq/roleplay-backend/internal/app/model"
	"github.com/roleplayhq/roleplay-backend/pkg/logger"
	"gorm.io/gorm"
)

// DefaultGroupPageSize is the page size applied when the filter does not
// specify one.
const DefaultGroupPageSize = 5

// GroupFilter narrows down group listings. UserID filters groups a user plays
// in, Text matches name or description. Zero values mean "no filter".
type GroupFilter struct {
	UserID uint
	Text   string
	Page   int
	Limit  int
}

type GroupRepository interface {
	Create(group *model.Group) error
	FindByID(id uint) (*model.Group, error)
	FindByIDWithPlayers(id uint) (*model.Group, error)
	Search(filter GroupFilter) ([]model.Group, int64, error)
	Update(group *model.Group) error
	Delete(id uint) error
	AddPlayer(groupID, userID uint) error
	RemovePlayer(groupID, userID uint) error
	HasPlayer(groupID, userID uint) (bool, error)
	ListPlayers(groupID uint) ([]model.User, error)
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

// Create persists a new group and attaches its master as the first player.
// Both writes happen in one transaction so master membership holds from
// creation onward.
func (r *groupRepository) Create(group *model.Group) error {
	logger.Debug("Creating group in database", map[string]interface{}{
		"name":   group.Name,
		"master": group.Master,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		return tx.Create(&model.GroupPlayer{
			GroupID: group.ID,
			UserID:  group.Master,
		}).Error
	})
	if err != nil {
		logger.Error("Failed to create group in database", err, map[string]interface{}{
			"name":   group.Name,
			"master": group.Master,
		})
		return err
	}

	logger.Debug("Group created in database", map[string]interface{}{
		"group_id": group.ID,
		"name":     group.Name,
	})
	return nil
}

func (r *groupRepository) FindByID(id uint) (*model.Group, error) {
	var group model.Group
	if err := r.db.First(&group, id).Error; err != nil {
		logger.Error("Failed to find group by ID in database", err, map[string]interface{}{
			"group_id": id,
		})
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) FindByIDWithPlayers(id uint) (*model.Group, error) {
	var group model.Group
	err := r.db.Preload("Players").Preload("MasterUser").First(&group, id).Error
	if err != nil {
		logger.Error("Failed to find group with players in database", err, map[string]interface{}{
			"group_id": id,
		})
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) Search(filter GroupFilter) ([]model.Group, int64, error) {
	query := r.db.Model(&model.Group{})

	if filter.UserID != 0 {
		query = query.Joins("JOIN group_players ON group_players.group_id = groups.id").
			Where("group_players.user_id = ?", filter.UserID)
	}
	if filter.Text != "" {
		pattern := "%" + filter.Text + "%"
		query = query.Where("groups.name LIKE ? OR groups.description LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count groups in database", err, nil)
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = DefaultGroupPageSize
	}

	var groups []model.Group
	err := query.
		Preload("Players").
		Preload("MasterUser").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&groups).Error
	if err != nil {
		logger.Error("Failed to search groups in database", err, map[string]interface{}{
			"user_id": filter.UserID,
			"text":    filter.Text,
		})
		return nil, 0, err
	}

	return groups, total, nil
}

func (r *groupRepository) Update(group *model.Group) error {
	logger.Debug("Updating group in database", map[string]interface{}{
		"group_id": group.ID,
	})

	if err := r.db.Save(group).Error; err != nil {
		logger.Error("Failed to update group in database", err, map[string]interface{}{
			"group_id": group.ID,
		})
		return err
	}
	return nil
}

// Delete removes the group together with its membership and join-request
// rows. All three deletes commit or roll back as one unit so no orphaned
// pivot rows survive.
func (r *groupRepository) Delete(id uint) error {
	logger.Debug("Deleting group from database", map[string]interface{}{
		"group_id": id,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&model.GroupRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&model.GroupPlayer{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Group{}, id).Error
	})
	if err != nil {
		logger.Error("Failed to delete group from database", err, map[string]interface{}{
			"group_id": id,
		})
		return err
	}

	logger.Debug("Group deleted from database", map[string]interface{}{
		"group_id": id,
	})
	return nil
}

func (r *groupRepository) AddPlayer(groupID, userID uint) error {
	logger.Debug("Adding player to group in database", map[string]interface{}{
		"group_id": groupID,
		"user_id":  userID,
	})

	err := r.db.Create(&model.GroupPlayer{GroupID: groupID, UserID: userID}).Error
	if err != nil {
		logger.Error("Failed to add player to group in database", err, map[string]interface{}{
			"group_id": groupID,
			"user_id":  userID,
		})
		return err
	}
	return nil
}

// RemovePlayer deletes the membership pair. Removing a pair that does not
// exist is not an error.
func (r *groupRepository) RemovePlayer(groupID, userID uint) error {
	logger.Debug("Removing player from group in database", map[string]interface{}{
		"group_id": groupID,
		"user_id":  userID,
	})

	err := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&model.GroupPlayer{}).Error
	if err != nil {
		logger.Error("Failed to remove player from group in database", err, map[string]interface{}{
			"group_id": groupID,
			"user_id":  userID,
		})
		return err
	}
	return nil
}

func (r *groupRepository) HasPlayer(groupID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.GroupPlayer{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check group membership in database", err, map[string]interface{}{
			"group_id": groupID,
			"user_id":  userID,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *groupRepository) ListPlayers(groupID uint) ([]model.User, error) {
	var users []model.User
	err := r.db.
		Joins("JOIN group_players ON group_players.user_id = users.id").
		Where("group_players.group_id = ?", groupID).
		Find(&users).Error
	if err != nil {
		logger.Error("Failed to list group players in database", err, map[string]interface{}{
			"group_id": groupID,
		})
		return nil, err
	}
	return users, nil
}
