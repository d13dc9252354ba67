package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/roleplayhq/roleplay-backend/internal/app/controller"
	"github.com/roleplayhq/roleplay-backend/internal/app/model"
	"github.com/roleplayhq/roleplay-backend/internal/app/repository"
	"github.com/roleplayhq/roleplay-backend/internal/app/service"
	"github.com/roleplayhq/roleplay-backend/internal/db"
	"github.com/roleplayhq/roleplay-backend/internal/middleware"
	"github.com/roleplayhq/roleplay-backend/pkg/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type TestServer struct {
	Router      *gin.Engine
	DB          *gorm.DB
	AuthService service.AuthService
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(testDB)
	groupRepo := repository.NewGroupRepository(testDB)
	requestRepo := repository.NewGroupRequestRepository(testDB)
	resetTokenRepo := repository.NewResetTokenRepository(testDB)

	authService := service.NewAuthService(
		userRepo,
		"test-secret",
		15*time.Minute,
		7*24*time.Hour,
	)
	groupService := service.NewGroupService(groupRepo)
	requestService := service.NewGroupRequestService(requestRepo, groupRepo)
	passwordResetService := service.NewPasswordResetService(resetTokenRepo, userRepo, mailer.NewLog(), testDB)

	authController := controller.NewAuthController(authService, passwordResetService, 15*time.Minute)
	groupController := controller.NewGroupController(groupService)
	requestController := controller.NewGroupRequestController(requestService)

	authMiddleware := middleware.NewAuthMiddleware("test-secret")

	router := gin.New()

	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/forgot-password", authController.ForgotPassword)
		auth.POST("/reset-password", authController.ResetPassword)
		auth.GET("/me", authMiddleware.Authenticate(), authController.GetMe)
	}

	groups := router.Group("/api/v1/groups")
	{
		groups.GET("", groupController.ListGroups)
		groups.GET("/:groupId", groupController.GetGroup)
		groups.POST("", authMiddleware.Authenticate(), groupController.CreateGroup)
		groups.PATCH("/:groupId", authMiddleware.Authenticate(), groupController.UpdateGroup)
		groups.DELETE("/:groupId", authMiddleware.Authenticate(), groupController.DeleteGroup)
		groups.DELETE("/:groupId/players/:playerId", authMiddleware.Authenticate(), groupController.RemovePlayer)
		groups.POST("/:groupId/requests", authMiddleware.Authenticate(), requestController.CreateRequest)
		groups.POST("/:groupId/requests/:requestId/accept", authMiddleware.Authenticate(), requestController.AcceptRequest)
		groups.DELETE("/:groupId/requests/:requestId", authMiddleware.Authenticate(), requestController.RejectRequest)
	}

	requests := router.Group("/api/v1/requests")
	requests.Use(authMiddleware.Authenticate())
	{
		requests.GET("", requestController.ListRequests)
	}

	return &TestServer{
		Router:      router,
		DB:          testDB,
		AuthService: authService,
	}
}

func (ts *TestServer) do(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w
}

func (ts *TestServer) registerUser(t *testing.T, username string) (uint, string) {
	w := ts.do(t, "POST", "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    fmt.Sprintf("%s@example.com", username),
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.User.ID, resp.Tokens.AccessToken
}

func (ts *TestServer) createGroup(t *testing.T, token, name string) uint {
	w := ts.do(t, "POST", "/api/v1/groups", token, map[string]string{
		"name":        name,
		"description": "A test campaign",
		"schedule":    "Fridays 19:00",
		"location":    "Online",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Group struct {
			ID uint `json:"id"`
		} `json:"group"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Group.ID
}

func TestJoinRequestWorkflow(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	masterID, masterToken := ts.registerUser(t, "alice")
	playerID, playerToken := ts.registerUser(t, "bob")
	_, outsiderToken := ts.registerUser(t, "carol")

	groupID := ts.createGroup(t, masterToken, "Curse of Strahd")

	// Bob asks to join
	w := ts.do(t, "POST", fmt.Sprintf("/api/v1/groups/%d/requests", groupID), playerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var createResp struct {
		Request struct {
			ID     uint   `json:"id"`
			Status string `json:"status"`
		} `json:"request"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &createResp))
	assert.Equal(t, "PENDING", createResp.Request.Status)
	requestID := createResp.Request.ID

	// A second request from the same user is a conflict
	w = ts.do(t, "POST", fmt.Sprintf("/api/v1/groups/%d/requests", groupID), playerToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// The master already plays in the group
	w = ts.do(t, "POST", fmt.Sprintf("/api/v1/groups/%d/requests", groupID), masterToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Only the master may accept
	w = ts.do(t, "POST", fmt.Sprintf("/api/v1/groups/%d/requests/%d/accept", groupID, requestID), outsiderToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, "POST", fmt.Sprintf("/api/v1/groups/%d/requests/%d/accept", groupID, requestID), masterToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Both master and player are now members
	w = ts.do(t, "GET", fmt.Sprintf("/api/v1/groups/%d", groupID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var groupResp struct {
		Group struct {
			Players []struct {
				ID uint `json:"id"`
			} `json:"players"`
		} `json:"group"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &groupResp))
	var memberIDs []uint
	for _, p := range groupResp.Group.Players {
		memberIDs = append(memberIDs, p.ID)
	}
	assert.ElementsMatch(t, []uint{masterID, playerID}, memberIDs)
}

func TestRejectRequestWorkflow(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	_, masterToken := ts.registerUser(t, "alice")
	playerID, playerToken := ts.registerUser(t, "bob")

	groupID := ts.createGroup(t, masterToken, "Curse of Strahd")

	w := ts.do(t, "POST", fmt.Sprintf("/api/v1/groups/%d/requests", groupID), playerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var createResp struct {
		Request struct {
			ID uint `json:"id"`
		} `json:"request"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &createResp))

	// Non-master cannot reject
	w = ts.do(t, "DELETE", fmt.Sprintf("/api/v1/groups/%d/requests/%d", groupID, createResp.Request.ID), playerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, "DELETE", fmt.Sprintf("/api/v1/groups/%d/requests/%d", groupID, createResp.Request.ID), masterToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Rejection leaves no membership behind
	var count int64
	require.NoError(t, ts.DB.Model(&model.GroupPlayer{}).
		Where("group_id = ? AND user_id = ?", groupID, playerID).
		Count(&count).Error)
	assert.Zero(t, count)

	// The user can apply again after rejection
	w = ts.do(t, "POST", fmt.Sprintf("/api/v1/groups/%d/requests", groupID), playerToken, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestListPendingRequests(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	masterID, masterToken := ts.registerUser(t, "alice")
	_, playerToken := ts.registerUser(t, "bob")

	groupID := ts.createGroup(t, masterToken, "Curse of Strahd")

	w := ts.do(t, "POST", fmt.Sprintf("/api/v1/groups/%d/requests", groupID), playerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// The master filter is mandatory
	w = ts.do(t, "GET", "/api/v1/requests", masterToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = ts.do(t, "GET", fmt.Sprintf("/api/v1/requests?master=%d", masterID), masterToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listResp struct {
		Requests []struct {
			ID   uint `json:"id"`
			User *struct {
				Username string `json:"username"`
			} `json:"user"`
		} `json:"requests"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	require.Len(t, listResp.Requests, 1)
	require.NotNil(t, listResp.Requests[0].User)
	assert.Equal(t, "bob", listResp.Requests[0].User.Username)
}

func TestRemovePlayerGuardsMaster(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	masterID, masterToken := ts.registerUser(t, "alice")
	_, playerToken := ts.registerUser(t, "bob")

	groupID := ts.createGroup(t, masterToken, "Curse of Strahd")

	// Removing the master is refused outright
	w := ts.do(t, "DELETE", fmt.Sprintf("/api/v1/groups/%d/players/%d", groupID, masterID), playerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var has int64
	require.NoError(t, ts.DB.Model(&model.GroupPlayer{}).
		Where("group_id = ? AND user_id = ?", groupID, masterID).
		Count(&has).Error)
	assert.Equal(t, int64(1), has)
}

func TestPasswordResetFlow(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	userID, _ := ts.registerUser(t, "alice")

	// Unknown email is a 404
	w := ts.do(t, "POST", "/api/v1/auth/forgot-password", "", map[string]string{
		"email": "nobody@example.com",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, "POST", "/api/v1/auth/forgot-password", "", map[string]string{
		"email": "alice@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Grab the issued token directly from storage (mail is log-only in tests)
	var reset model.ResetToken
	require.NoError(t, ts.DB.Where("user_id = ?", userID).First(&reset).Error)

	w = ts.do(t, "POST", "/api/v1/auth/reset-password", "", map[string]string{
		"token":        reset.Token,
		"new_password": "brandnewpass",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Old password no longer works, the new one does
	w = ts.do(t, "POST", "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, "POST", "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "brandnewpass",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// The consumed token is gone
	w = ts.do(t, "POST", "/api/v1/auth/reset-password", "", map[string]string{
		"token":        reset.Token,
		"new_password": "anotherpass",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExpiredResetTokenIsGone(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	userID, _ := ts.registerUser(t, "alice")

	w := ts.do(t, "POST", "/api/v1/auth/forgot-password", "", map[string]string{
		"email": "alice@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var reset model.ResetToken
	require.NoError(t, ts.DB.Where("user_id = ?", userID).First(&reset).Error)

	// Age the token past the recovery window
	require.NoError(t, ts.DB.Model(&model.ResetToken{}).
		Where("id = ?", reset.ID).
		Update("created_at", time.Now().Add(-3*time.Hour)).Error)

	w = ts.do(t, "POST", "/api/v1/auth/reset-password", "", map[string]string{
		"token":        reset.Token,
		"new_password": "brandnewpass",
	})
	assert.Equal(t, http.StatusGone, w.Code)
}

func TestGroupLifecycle(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	_, masterToken := ts.registerUser(t, "alice")
	_, outsiderToken := ts.registerUser(t, "bob")

	groupID := ts.createGroup(t, masterToken, "Curse of Strahd")

	// Only the master may update
	w := ts.do(t, "PATCH", fmt.Sprintf("/api/v1/groups/%d", groupID), outsiderToken, map[string]string{
		"name": "Hijacked",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, "PATCH", fmt.Sprintf("/api/v1/groups/%d", groupID), masterToken, map[string]string{
		"name": "Curse of Strahd: Revamped",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Listing finds the group by text
	w = ts.do(t, "GET", "/api/v1/groups?text=Revamped", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listResp struct {
		Groups []struct {
			ID uint `json:"id"`
		} `json:"groups"`
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Equal(t, int64(1), listResp.Meta.Total)

	// Delete and verify it is gone
	w = ts.do(t, "DELETE", fmt.Sprintf("/api/v1/groups/%d", groupID), masterToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, "GET", fmt.Sprintf("/api/v1/groups/%d", groupID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
