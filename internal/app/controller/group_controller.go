package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/roleplayhq/roleplay-backend/internal/app/repository"
	"github.com/roleplayhq/roleplay-backend/internal/app/service"
	apperrors "github.com/roleplayhq/roleplay-backend/internal/errors"
	"github.com/roleplayhq/roleplay-backend/internal/middleware"
)

type GroupController struct {
	groupService service.GroupService
}

func NewGroupController(groupService service.GroupService) *GroupController {
	return &GroupController{groupService: groupService}
}

type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Chronic     string `json:"chronic"`
	Schedule    string `json:"schedule" binding:"required"`
	Location    string `json:"location" binding:"required"`
}

type UpdateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Chronic     string `json:"chronic"`
	Schedule    string `json:"schedule"`
	Location    string `json:"location"`
}

// ListGroups returns groups matching the optional filters
// GET /api/v1/groups?user=&text=&page=&limit=
func (ctrl *GroupController) ListGroups(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter := repository.GroupFilter{
		Text: c.Query("text"),
	}

	if userStr := c.Query("user"); userStr != "" {
		userID, err := strconv.ParseUint(userStr, 10, 32)
		if err != nil {
			log.Warn("Invalid user filter", map[string]interface{}{
				"user": userStr,
			})
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid user filter")
			return
		}
		filter.UserID = uint(userID)
	}
	if pageStr := c.Query("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			filter.Page = page
		}
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}

	groups, total, err := ctrl.groupService.ListGroups(filter)
	if err != nil {
		log.Error("Failed to list groups", err, map[string]interface{}{
			"user": filter.UserID,
			"text": filter.Text,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list groups")
		return
	}

	page := filter.Page
	if page == 0 {
		page = 1
	}
	limit := filter.Limit
	if limit == 0 {
		limit = repository.DefaultGroupPageSize
	}

	c.JSON(http.StatusOK, gin.H{
		"groups": groups,
		"meta": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetGroup returns a single group with its players
// GET /api/v1/groups/:groupId
func (ctrl *GroupController) GetGroup(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	groupID, ok := parseIDParam(c, "groupId")
	if !ok {
		return
	}

	group, err := ctrl.groupService.GetGroupByID(groupID)
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			apperrors.NotFound(c, apperrors.GroupNotFound, "group not found")
			return
		}
		log.Error("Failed to get group", err, map[string]interface{}{
			"group_id": groupID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get group")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"group": group,
	})
}

// CreateGroup creates a new group mastered by the caller
// POST /api/v1/groups
func (ctrl *GroupController) CreateGroup(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "authentication required")
		return
	}

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create group request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid group data")
		return
	}

	group, err := ctrl.groupService.CreateGroup(service.CreateGroupInput{
		Name:        req.Name,
		Description: req.Description,
		Chronic:     req.Chronic,
		Schedule:    req.Schedule,
		Location:    req.Location,
		Master:      userID,
	})
	if err != nil {
		log.Error("Failed to create group", err, map[string]interface{}{
			"name":   req.Name,
			"master": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create group")
		return
	}

	log.Info("Group created", map[string]interface{}{
		"group_id": group.ID,
		"master":   userID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Group created successfully",
		"group":   group,
	})
}

// UpdateGroup updates a group's descriptive fields (master only)
// PATCH /api/v1/groups/:groupId
func (ctrl *GroupController) UpdateGroup(c *gin.Context) {
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

	var req UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update group request", map[string]interface{}{
			"group_id": groupID,
			"error":    err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid group data")
		return
	}

	group, err := ctrl.groupService.UpdateGroup(groupID, userID, service.UpdateGroupInput{
		Name:        req.Name,
		Description: req.Description,
		Chronic:     req.Chronic,
		Schedule:    req.Schedule,
		Location:    req.Location,
	})
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			apperrors.NotFound(c, apperrors.GroupNotFound, "group not found")
			return
		}
		if errors.Is(err, service.ErrNotGroupMaster) {
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzMasterOnly, "only the group master can update the group")
			return
		}
		log.Error("Failed to update group", err, map[string]interface{}{
			"group_id": groupID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update group")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Group updated successfully",
		"group":   group,
	})
}

// DeleteGroup deletes a group and its memberships and requests (master only)
// DELETE /api/v1/groups/:groupId
func (ctrl *GroupController) DeleteGroup(c *gin.Context) {
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

	if err := ctrl.groupService.DeleteGroup(groupID, userID); err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			apperrors.NotFound(c, apperrors.GroupNotFound, "group not found")
			return
		}
		if errors.Is(err, service.ErrNotGroupMaster) {
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzMasterOnly, "only the group master can delete the group")
			return
		}
		log.Error("Failed to delete group", err, map[string]interface{}{
			"group_id": groupID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete group")
		return
	}

	log.Info("Group deleted", map[string]interface{}{
		"group_id": groupID,
		"user_id":  userID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Group deleted successfully",
	})
}

// RemovePlayer removes a player from a group. The master cannot be removed.
// DELETE /api/v1/groups/:groupId/players/:playerId
func (ctrl *GroupController) RemovePlayer(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	groupID, ok := parseIDParam(c, "groupId")
	if !ok {
		return
	}
	playerID, ok := parseIDParam(c, "playerId")
	if !ok {
		return
	}

	if err := ctrl.groupService.RemovePlayer(groupID, playerID); err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			apperrors.NotFound(c, apperrors.GroupNotFound, "group not found")
			return
		}
		if errors.Is(err, service.ErrCannotRemoveMaster) {
			apperrors.BadRequest(c, apperrors.GroupCannotRemoveMaster, "the group master cannot be removed from the group")
			return
		}
		log.Error("Failed to remove player from group", err, map[string]interface{}{
			"group_id": groupID,
			"user_id":  playerID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "remove player")
		return
	}

	log.Info("Player removed from group", map[string]interface{}{
		"group_id": groupID,
		"user_id":  playerID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Player removed from group",
	})
}

// parseIDParam parses a numeric path parameter, responding with 400 on failure
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	idStr := c.Param(name)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
