package repository

import (
	"github.com/roleplayhq/roleplay-backend/internal/app/model"
	"github.com/roleplayhq/roleplay-backend/pkg/logger"
	"gorm.io/gorm"
)

type GroupRequestRepository interface {
	Create(request *model.GroupRequest) error
	FindByIDAndGroup(id, groupID uint) (*model.GroupRequest, error)
	FindByGroupAndUser(groupID, userID uint) (*model.GroupRequest, error)
	ListPendingByMaster(masterID uint) ([]model.GroupRequest, error)
	Accept(request *model.GroupRequest) error
	Delete(id uint) error
}

type groupRequestRepository struct {
	db *gorm.DB
}

func NewGroupRequestRepository(db *gorm.DB) GroupRequestRepository {
	return &groupRequestRepository{db: db}
}

func (r *groupRequestRepository) Create(request *model.GroupRequest) error {
	logger.Debug("Creating group request in database", map[string]interface{}{
		"group_id": request.GroupID,
		"user_id":  request.UserID,
	})

	if request.Status == "" {
		request.Status = model.RequestPending
	}

	if err := r.db.Create(request).Error; err != nil {
		logger.Error("Failed to create group request in database", err, map[string]interface{}{
			"group_id": request.GroupID,
			"user_id":  request.UserID,
		})
		return err
	}

	logger.Debug("Group request created in database", map[string]interface{}{
		"request_id": request.ID,
		"group_id":   request.GroupID,
		"user_id":    request.UserID,
	})
	return nil
}

func (r *groupRequestRepository) FindByIDAndGroup(id, groupID uint) (*model.GroupRequest, error) {
	var request model.GroupRequest
	err := r.db.Where("id = ? AND group_id = ?", id, groupID).First(&request).Error
	if err != nil {
		logger.Error("Failed to find group request in database", err, map[string]interface{}{
			"request_id": id,
			"group_id":   groupID,
		})
		return nil, err
	}
	return &request, nil
}

func (r *groupRequestRepository) FindByGroupAndUser(groupID, userID uint) (*model.GroupRequest, error) {
	var request model.GroupRequest
	err := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ListPendingByMaster returns the PENDING requests of every group owned by
// masterID, with the group (name, master) and the requesting user's username
// preloaded for display.
func (r *groupRequestRepository) ListPendingByMaster(masterID uint) ([]model.GroupRequest, error) {
	var requests []model.GroupRequest
	err := r.db.
		Joins("JOIN groups ON groups.id = group_requests.group_id").
		Where("groups.master = ?", masterID).
		Where("group_requests.status = ?", model.RequestPending).
		Preload("Group", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "master")
		}).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username")
		}).
		Order("group_requests.created_at").
		Find(&requests).Error
	if err != nil {
		logger.Error("Failed to list pending group requests in database", err, map[string]interface{}{
			"master_id": masterID,
		})
		return nil, err
	}
	return requests, nil
}

// Accept marks the request ACCEPTED and inserts the membership pair. Both
// writes commit together; if either fails the whole acceptance rolls back.
func (r *groupRequestRepository) Accept(request *model.GroupRequest) error {
	logger.Debug("Accepting group request in database", map[string]interface{}{
		"request_id": request.ID,
		"group_id":   request.GroupID,
		"user_id":    request.UserID,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(request).Update("status", model.RequestAccepted).Error; err != nil {
			return err
		}
		return tx.Create(&model.GroupPlayer{
			GroupID: request.GroupID,
			UserID:  request.UserID,
		}).Error
	})
	if err != nil {
		logger.Error("Failed to accept group request in database", err, map[string]interface{}{
			"request_id": request.ID,
			"group_id":   request.GroupID,
		})
		return err
	}

	logger.Debug("Group request accepted in database", map[string]interface{}{
		"request_id": request.ID,
		"group_id":   request.GroupID,
		"user_id":    request.UserID,
	})
	return nil
}

func (r *groupRequestRepository) Delete(id uint) error {
	logger.Debug("Deleting group request from database", map[string]interface{}{
		"request_id": id,
	})

	if err := r.db.Delete(&model.GroupRequest{}, id).Error; err != nil {
		logger.Error("Failed to delete group request from database", err, map[string]interface{}{
			"request_id": id,
		})
		return err
	}
	return nil
}
