package service

import (
	"errors"
	"strings"

	"github.com/roleplayhq/roleplay-backend/internal/app/model"
	"github.com/roleplayhq/roleplay-backend/internal/app/repository"
	"github.com/roleplayhq/roleplay-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrRequestNotFound      = errors.New("group request not found")
	ErrRequestAlreadyExists = errors.New("group request already exists")
	ErrAlreadyInGroup       = errors.New("user is already in the group")
)

type GroupRequestService interface {
	ListPendingByMaster(masterID uint) ([]model.GroupRequest, error)
	CreateRequest(groupID, userID uint) (*model.GroupRequest, error)
	AcceptRequest(groupID, requestID, actingUserID uint) (*model.GroupRequest, error)
	RejectRequest(groupID, requestID, actingUserID uint) error
}

type groupRequestService struct {
	requestRepo repository.GroupRequestRepository
	groupRepo   repository.GroupRepository
}

func NewGroupRequestService(
	requestRepo repository.GroupRequestRepository,
	groupRepo repository.GroupRepository,
) GroupRequestService {
	return &groupRequestService{
		requestRepo: requestRepo,
		groupRepo:   groupRepo,
	}
}

func (s *groupRequestService) ListPendingByMaster(masterID uint) ([]model.GroupRequest, error) {
	return s.requestRepo.ListPendingByMaster(masterID)
}

// CreateRequest registers a user's wish to join a group. A user can hold at
// most one request per group regardless of status, and cannot request a
// group they already play in.
func (s *groupRequestService) CreateRequest(groupID, userID uint) (*model.GroupRequest, error) {
	logger.Info("Creating group request", map[string]interface{}{
		"group_id": groupID,
		"user_id":  userID,
	})

	if _, err := s.groupRepo.FindByID(groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	existing, err := s.requestRepo.FindByGroupAndUser(groupID, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing group request", err, map[string]interface{}{
			"group_id": groupID,
			"user_id":  userID,
		})
		return nil, err
	}
	if existing != nil {
		logger.Warn("Group request rejected: request already exists", map[string]interface{}{
			"group_id":   groupID,
			"user_id":    userID,
			"request_id": existing.ID,
		})
		return nil, ErrRequestAlreadyExists
	}

	member, err := s.groupRepo.HasPlayer(groupID, userID)
	if err != nil {
		return nil, err
	}
	if member {
		logger.Warn("Group request rejected: user already in group", map[string]interface{}{
			"group_id": groupID,
			"user_id":  userID,
		})
		return nil, ErrAlreadyInGroup
	}

	request := &model.GroupRequest{
		GroupID: groupID,
		UserID:  userID,
		Status:  model.RequestPending,
	}

	if err := s.requestRepo.Create(request); err != nil {
		// Two concurrent creates can both pass the pre-check; the unique
		// index on (group_id, user_id) decides the loser.
		if isDuplicateKeyError(err) {
			return nil, ErrRequestAlreadyExists
		}
		logger.Error("Failed to create group request", err, map[string]interface{}{
			"group_id": groupID,
			"user_id":  userID,
		})
		return nil, err
	}

	logger.Info("Group request created", map[string]interface{}{
		"request_id": request.ID,
		"group_id":   groupID,
		"user_id":    userID,
	})
	return request, nil
}

// AcceptRequest promotes a pending request into a membership. Only the
// group's master may accept; the status update and the membership insert
// commit as one transaction. Accepting an already-accepted request is a
// no-op so retries are safe.
func (s *groupRequestService) AcceptRequest(groupID, requestID, actingUserID uint) (*model.GroupRequest, error) {
	request, err := s.requestRepo.FindByIDAndGroup(requestID, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	group, err := s.groupRepo.FindByID(request.GroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	if !IsGroupMaster(actingUserID, group) {
		logger.Warn("Group request acceptance rejected: caller is not the master", map[string]interface{}{
			"request_id":     requestID,
			"group_id":       groupID,
			"acting_user_id": actingUserID,
		})
		return nil, ErrNotGroupMaster
	}

	if request.Status == model.RequestAccepted {
		return request, nil
	}

	if err := s.requestRepo.Accept(request); err != nil {
		logger.Error("Failed to accept group request", err, map[string]interface{}{
			"request_id": requestID,
			"group_id":   groupID,
		})
		return nil, err
	}
	request.Status = model.RequestAccepted

	logger.Info("Group request accepted", map[string]interface{}{
		"request_id": requestID,
		"group_id":   groupID,
		"user_id":    request.UserID,
	})
	return request, nil
}

// RejectRequest discards a request entirely. No membership is created and no
// rejected state is kept, so the user may request again later.
func (s *groupRequestService) RejectRequest(groupID, requestID, actingUserID uint) error {
	request, err := s.requestRepo.FindByIDAndGroup(requestID, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return err
	}

	group, err := s.groupRepo.FindByID(request.GroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return err
	}

	if !IsGroupMaster(actingUserID, group) {
		logger.Warn("Group request rejection rejected: caller is not the master", map[string]interface{}{
			"request_id":     requestID,
			"group_id":       groupID,
			"acting_user_id": actingUserID,
		})
		return ErrNotGroupMaster
	}

	if err := s.requestRepo.Delete(request.ID); err != nil {
		logger.Error("Failed to delete group request", err, map[string]interface{}{
			"request_id": requestID,
		})
		return err
	}

	logger.Info("Group request rejected", map[string]interface{}{
		"request_id": requestID,
		"group_id":   groupID,
		"user_id":    request.UserID,
	})
	return nil
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "unique constraint")
}
