package service

import (
	"errors"

	"github.com/roleplayhq/roleplay-backend/internal/app/model"
	"github.com/roleplayhq/roleplay-backend/internal/app/repository"
	"github.com/roleplayhq/roleplay-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrGroupNotFound      = errors.New("group not found")
	ErrNotGroupMaster     = errors.New("user is not the group master")
	ErrCannotRemoveMaster = errors.New("cannot remove master from group")
)

// CreateGroupInput carries the descriptive fields of a new group. Field
// validation happens at the HTTP layer; the service assumes well-formed
// input.
type CreateGroupInput struct {
	Name        string
	Description string
	Chronic     string
	Schedule    string
	Location    string
	Master      uint
}

// UpdateGroupInput carries updatable group fields. Empty strings leave the
// current value untouched.
type UpdateGroupInput struct {
	Name        string
	Description string
	Chronic     string
	Schedule    string
	Location    string
}

type GroupService interface {
	CreateGroup(input CreateGroupInput) (*model.Group, error)
	GetGroupByID(id uint) (*model.Group, error)
	ListGroups(filter repository.GroupFilter) ([]model.Group, int64, error)
	UpdateGroup(groupID, actingUserID uint, input UpdateGroupInput) (*model.Group, error)
	DeleteGroup(groupID, actingUserID uint) error
	RemovePlayer(groupID, playerID uint) error
}

type groupService struct {
	groupRepo repository.GroupRepository
}

func NewGroupService(groupRepo repository.GroupRepository) GroupService {
	return &groupService{groupRepo: groupRepo}
}

func (s *groupService) CreateGroup(input CreateGroupInput) (*model.Group, error) {
	logger.Info("Creating group", map[string]interface{}{
		"name":   input.Name,
		"master": input.Master,
	})

	group := &model.Group{
		Name:        input.Name,
		Description: input.Description,
		Chronic:     input.Chronic,
		Schedule:    input.Schedule,
		Location:    input.Location,
		Master:      input.Master,
	}

	if err := s.groupRepo.Create(group); err != nil {
		logger.Error("Failed to create group", err, map[string]interface{}{
			"name": input.Name,
		})
		return nil, err
	}

	// Reload with the master attached so callers see the full member set.
	created, err := s.groupRepo.FindByIDWithPlayers(group.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("Group created", map[string]interface{}{
		"group_id": created.ID,
		"name":     created.Name,
		"master":   created.Master,
	})
	return created, nil
}

func (s *groupService) GetGroupByID(id uint) (*model.Group, error) {
	group, err := s.groupRepo.FindByIDWithPlayers(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return group, nil
}

func (s *groupService) ListGroups(filter repository.GroupFilter) ([]model.Group, int64, error) {
	return s.groupRepo.Search(filter)
}

func (s *groupService) UpdateGroup(groupID, actingUserID uint, input UpdateGroupInput) (*model.Group, error) {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	if !IsGroupMaster(actingUserID, group) {
		logger.Warn("Group update rejected: caller is not the master", map[string]interface{}{
			"group_id":       groupID,
			"acting_user_id": actingUserID,
		})
		return nil, ErrNotGroupMaster
	}

	if input.Name != "" {
		group.Name = input.Name
	}
	if input.Description != "" {
		group.Description = input.Description
	}
	if input.Chronic != "" {
		group.Chronic = input.Chronic
	}
	if input.Schedule != "" {
		group.Schedule = input.Schedule
	}
	if input.Location != "" {
		group.Location = input.Location
	}

	if err := s.groupRepo.Update(group); err != nil {
		logger.Error("Failed to update group", err, map[string]interface{}{
			"group_id": groupID,
		})
		return nil, err
	}

	logger.Info("Group updated", map[string]interface{}{
		"group_id": groupID,
	})
	return group, nil
}

func (s *groupService) DeleteGroup(groupID, actingUserID uint) error {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return err
	}

	if !IsGroupMaster(actingUserID, group) {
		logger.Warn("Group deletion rejected: caller is not the master", map[string]interface{}{
			"group_id":       groupID,
			"acting_user_id": actingUserID,
		})
		return ErrNotGroupMaster
	}

	if err := s.groupRepo.Delete(groupID); err != nil {
		logger.Error("Failed to delete group", err, map[string]interface{}{
			"group_id": groupID,
		})
		return err
	}

	logger.Info("Group deleted", map[string]interface{}{
		"group_id":       groupID,
		"acting_user_id": actingUserID,
	})
	return nil
}

// RemovePlayer detaches a player from the group. The master can never be
// removed through this path; removing a user who is not a member succeeds
// without effect.
func (s *groupService) RemovePlayer(groupID, playerID uint) error {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return err
	}

	if playerID == group.Master {
		logger.Warn("Player removal rejected: target is the group master", map[string]interface{}{
			"group_id": groupID,
			"user_id":  playerID,
		})
		return ErrCannotRemoveMaster
	}

	if err := s.groupRepo.RemovePlayer(groupID, playerID); err != nil {
		logger.Error("Failed to remove player from group", err, map[string]interface{}{
			"group_id": groupID,
			"user_id":  playerID,
		})
		return err
	}

	logger.Info("Player removed from group", map[string]interface{}{
		"group_id": groupID,
		"user_id":  playerID,
	})
	return nil
}
