package service

import (
	"fmt"
	"testing"

	"github.com/roleplayhq/roleplay-backend/internal/app/model"
	"github.com/roleplayhq/roleplay-backend/internal/app/repository"
	"github.com/roleplayhq/roleplay-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupGroupServiceTest(t *testing.T) (*gorm.DB, GroupService, repository.GroupRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	groupRepo := repository.NewGroupRepository(testDB)
	return testDB, NewGroupService(groupRepo), groupRepo
}

func seedUser(t *testing.T, testDB *gorm.DB, username string) *model.User {
	user := &model.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "hashedpassword",
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func TestGroupService_CreateGroup(t *testing.T) {
	testDB, svc, _ := setupGroupServiceTest(t)
	defer db.CleanupTestDB(testDB)

	master := seedUser(t, testDB, "alice")

	group, err := svc.CreateGroup(CreateGroupInput{
		Name:        "Curse of Strahd",
		Description: "Gothic horror campaign",
		Schedule:    "Fridays 19:00",
		Location:    "Online",
		Master:      master.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, group.ID)
	assert.Equal(t, master.ID, group.Master)

	// The master is a member from creation on
	require.Len(t, group.Players, 1)
	assert.Equal(t, master.ID, group.Players[0].ID)
}

func TestGroupService_GetGroupByID(t *testing.T) {
	testDB, svc, _ := setupGroupServiceTest(t)
	defer db.CleanupTestDB(testDB)

	master := seedUser(t, testDB, "alice")
	group, err := svc.CreateGroup(CreateGroupInput{
		Name:        "Curse of Strahd",
		Description: "Gothic horror campaign",
		Master:      master.ID,
	})
	require.NoError(t, err)

	found, err := svc.GetGroupByID(group.ID)
	require.NoError(t, err)
	assert.Equal(t, group.Name, found.Name)

	_, err = svc.GetGroupByID(9999)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestGroupService_UpdateGroup(t *testing.T) {
	testDB, svc, _ := setupGroupServiceTest(t)
	defer db.CleanupTestDB(testDB)

	master := seedUser(t, testDB, "alice")
	outsider := seedUser(t, testDB, "bob")

	group, err := svc.CreateGroup(CreateGroupInput{
		Name:        "Curse of Strahd",
		Description: "Gothic horror campaign",
		Master:      master.ID,
	})
	require.NoError(t, err)

	tests := []struct {
		name         string
		groupID      uint
		actingUserID uint
		input        UpdateGroupInput
		wantErr      error
	}{
		{
			name:         "Master can update",
			groupID:      group.ID,
			actingUserID: master.ID,
			input:        UpdateGroupInput{Name: "Curse of Strahd: Revamped"},
			wantErr:      nil,
		},
		{
			name:         "Non-master is rejected",
			groupID:      group.ID,
			actingUserID: outsider.ID,
			input:        UpdateGroupInput{Name: "Hijacked"},
			wantErr:      ErrNotGroupMaster,
		},
		{
			name:         "Unknown group",
			groupID:      9999,
			actingUserID: master.ID,
			input:        UpdateGroupInput{Name: "Ghost"},
			wantErr:      ErrGroupNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := svc.UpdateGroup(tt.groupID, tt.actingUserID, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.input.Name, updated.Name)
				// Fields left empty keep their values
				assert.Equal(t, "Gothic horror campaign", updated.Description)
			}
		})
	}
}

func TestGroupService_DeleteGroup(t *testing.T) {
	testDB, svc, _ := setupGroupServiceTest(t)
	defer db.CleanupTestDB(testDB)

	master := seedUser(t, testDB, "alice")
	outsider := seedUser(t, testDB, "bob")

	group, err := svc.CreateGroup(CreateGroupInput{
		Name:   "Curse of Strahd",
		Master: master.ID,
	})
	require.NoError(t, err)

	err = svc.DeleteGroup(group.ID, outsider.ID)
	assert.ErrorIs(t, err, ErrNotGroupMaster)

	err = svc.DeleteGroup(group.ID, master.ID)
	require.NoError(t, err)

	_, err = svc.GetGroupByID(group.ID)
	assert.ErrorIs(t, err, ErrGroupNotFound)

	err = svc.DeleteGroup(group.ID, master.ID)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestGroupService_RemovePlayer(t *testing.T) {
	testDB, svc, groupRepo := setupGroupServiceTest(t)
	defer db.CleanupTestDB(testDB)

	master := seedUser(t, testDB, "alice")
	player := seedUser(t, testDB, "bob")

	group, err := svc.CreateGroup(CreateGroupInput{
		Name:   "Curse of Strahd",
		Master: master.ID,
	})
	require.NoError(t, err)
	require.NoError(t, groupRepo.AddPlayer(group.ID, player.ID))

	// The master can never be removed
	err = svc.RemovePlayer(group.ID, master.ID)
	assert.ErrorIs(t, err, ErrCannotRemoveMaster)

	err = svc.RemovePlayer(group.ID, player.ID)
	require.NoError(t, err)

	has, err := groupRepo.HasPlayer(group.ID, player.ID)
	require.NoError(t, err)
	assert.False(t, has)

	// Master membership survives the other removal
	has, err = groupRepo.HasPlayer(group.ID, master.ID)
	require.NoError(t, err)
	assert.True(t, has)

	err = svc.RemovePlayer(9999, player.ID)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestGroupService_ListGroups(t *testing.T) {
	testDB, svc, _ := setupGroupServiceTest(t)
	defer db.CleanupTestDB(testDB)

	alice := seedUser(t, testDB, "alice")
	bob := seedUser(t, testDB, "bob")

	_, err := svc.CreateGroup(CreateGroupInput{Name: "Curse of Strahd", Master: alice.ID})
	require.NoError(t, err)
	_, err = svc.CreateGroup(CreateGroupInput{Name: "Frostmaiden", Master: bob.ID})
	require.NoError(t, err)

	groups, total, err := svc.ListGroups(repository.GroupFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, groups, 2)

	groups, total, err = svc.ListGroups(repository.GroupFilter{UserID: alice.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, groups, 1)
	assert.Equal(t, "Curse of Strahd", groups[0].Name)
}
