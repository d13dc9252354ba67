package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/roleplayhq/roleplay-backend/internal/app/service"
	apperrors "github.com/roleplayhq/roleplay-backend/internal/errors"
	"github.com/roleplayhq/roleplay-backend/internal/middleware"
)

type GroupRequestController struct {
	requestService service.GroupRequestService
}

func NewGroupRequestController(requestService service.GroupRequestService) *GroupRequestController {
	return &GroupRequestController{requestService: requestService}
}

// ListRequests returns the pending requests for all groups mastered by the
// given user. The master query parameter is mandatory.
// GET /api/v1/requests?master=
func (ctrl *GroupRequestController) ListRequests(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	masterStr := c.Query("master")
	if masterStr == "" {
		log.Warn("List requests called without master filter", nil)
		apperrors.UnprocessableEntity(c, apperrors.RequestMasterRequired, "the master query parameter is required")
		return
	}

	masterID, err := strconv.ParseUint(masterStr, 10, 32)
	if err != nil {
		apperrors.UnprocessableEntity(c, apperrors.RequestMasterRequired, "the master query parameter must be a user id")
		return
	}

	requests, err := ctrl.requestService.ListPendingByMaster(uint(masterID))
	if err != nil {
		log.Error("Failed to list group requests", err, map[string]interface{}{
			"master": masterID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list group requests")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
	})
}

// CreateRequest registers the caller's wish to join a group
// POST /api/v1/groups/:groupId/requests
func (ctrl *GroupRequestController) CreateRequest(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "authentication required")
		return
	}

	groupID, ok := parseIDParam(c, "groupId")
	if !ok {
		return
	}

	request, err := ctrl.requestService.CreateRequest(groupID, userID)
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			apperrors.NotFound(c, apperrors.GroupNotFound, "group not found")
			return
		}
		if errors.Is(err, service.ErrRequestAlreadyExists) {
			log.Warn("Duplicate group request", map[string]interface{}{
				"group_id": groupID,
				"user_id":  userID,
			})
			apperrors.Conflict(c, apperrors.RequestAlreadyExists, "a request for this group already exists")
			return
		}
		if errors.Is(err, service.ErrAlreadyInGroup) {
			log.Warn("Group request from existing member", map[string]interface{}{
				"group_id": groupID,
				"user_id":  userID,
			})
			apperrors.UnprocessableEntity(c, apperrors.GroupAlreadyJoined, "you are already a member of this group")
			return
		}
		log.Error("Failed to create group request", err, map[string]interface{}{
			"group_id": groupID,
			"user_id":  userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create group request")
		return
	}

	log.Info("Group request created", map[string]interface{}{
		"request_id": request.ID,
		"group_id":   groupID,
		"user_id":    userID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Group request created successfully",
		"request": request,
	})
}

// AcceptRequest turns a pending request into a membership (master only)
// POST /api/v1/groups/:groupId/requests/:requestId/accept
func (ctrl *GroupRequestController) AcceptRequest(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "authentication required")
		return
	}

	groupID, ok := parseIDParam(c, "groupId")
	if !ok {
		return
	}
	requestID, ok := parseIDParam(c, "requestId")
	if !ok {
		return
	}

	request, err := ctrl.requestService.AcceptRequest(groupID, requestID, userID)
	if err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			apperrors.NotFound(c, apperrors.RequestNotFound, "group request not found")
			return
		}
		if errors.Is(err, service.ErrNotGroupMaster) {
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzMasterOnly, "only the group master can accept requests")
			return
		}
		log.Error("Failed to accept group request", err, map[string]interface{}{
			"request_id": requestID,
			"group_id":   groupID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "accept group request")
		return
	}

	log.Info("Group request accepted", map[string]interface{}{
		"request_id": requestID,
		"group_id":   groupID,
		"user_id":    request.UserID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Group request accepted",
		"request": request,
	})
}

// RejectRequest discards a pending request (master only)
// DELETE /api/v1/groups/:groupId/requests/:requestId
func (ctrl *GroupRequestController) RejectRequest(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "authentication required")
		return
	}

	groupID, ok := parseIDParam(c, "groupId")
	if !ok {
		return
	}
	requestID, ok := parseIDParam(c, "requestId")
	if !ok {
		return
	}

	if err := ctrl.requestService.RejectRequest(groupID, requestID, userID); err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			apperrors.NotFound(c, apperrors.RequestNotFound, "group request not found")
			return
		}
		if errors.Is(err, service.ErrNotGroupMaster) {
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzMasterOnly, "only the group master can reject requests")
			return
		}
		log.Error("Failed to reject group request", err, map[string]interface{}{
			"request_id": requestID,
			"group_id":   groupID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "reject group request")
		return
	}

	log.Info("Group request rejected", map[string]interface{}{
		"request_id": requestID,
		"group_id":   groupID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Group request rejected",
	})
}
