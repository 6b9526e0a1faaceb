package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-todo-api/internal/models"
	"github.com/yukikurage/project-todo-api/internal/testutil"
	"github.com/yukikurage/project-todo-api/internal/utils"
	"gorm.io/gorm"
)

func roleIDs(t *testing.T, db *gorm.DB) (admin, user uint64) {
	t.Helper()

	var roles []models.Role
	require.NoError(t, db.Order("id").Find(&roles).Error)
	require.Len(t, roles, 2)
	return roles[0].ID, roles[1].ID
}

func TestUserRepository_UpdateReplacesRoles(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	adminID, userID := roleIDs(t, db)

	u := &models.User{Email: "a@example.com", Password: "x", FirstName: "A"}
	require.NoError(t, repo.Create(u))

	ids := []uint64{userID, userID, adminID, 999}
	require.NoError(t, repo.Update(u, &ids))

	stored, err := repo.FindByID(u.ID)
	require.NoError(t, err)
	require.Len(t, stored.Roles, 2)
	require.True(t, stored.HasRole("admin"))
	require.True(t, stored.HasRole("user"))

	only := []uint64{userID}
	require.NoError(t, repo.Update(stored, &only))

	stored, err = repo.FindByID(u.ID)
	require.NoError(t, err)
	require.Len(t, stored.Roles, 1)
	require.Equal(t, "user", stored.Roles[0].Slug)

	// nil keeps the current set
	stored.FirstName = "B"
	require.NoError(t, repo.Update(stored, nil))

	stored, err = repo.FindByID(u.ID)
	require.NoError(t, err)
	require.Equal(t, "B", stored.FirstName)
	require.Len(t, stored.Roles, 1)

	empty := []uint64{}
	require.NoError(t, repo.Update(stored, &empty))
	stored, err = repo.FindByID(u.ID)
	require.NoError(t, err)
	require.Empty(t, stored.Roles)
}

func TestUserRepository_EmailTaken(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)

	u := &models.User{Email: "taken@example.com", Password: "x"}
	require.NoError(t, repo.Create(u))

	taken, err := repo.EmailTaken("taken@example.com", 0)
	require.NoError(t, err)
	require.True(t, taken)

	taken, err = repo.EmailTaken("taken@example.com", u.ID)
	require.NoError(t, err)
	require.False(t, taken)
}

func TestUserRepository_ListPaginates(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)

	for _, email := range []string{"1@example.com", "2@example.com", "3@example.com"} {
		require.NoError(t, repo.Create(&models.User{Email: email, Password: "x"}))
	}

	users, total, err := repo.List(utils.PaginationParams{Page: 2, Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, users, 1)
	require.Equal(t, "3@example.com", users[0].Email)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	_, userRoleID := roleIDs(t, db)

	owner := &models.User{Email: "owner@example.com", Password: "x"}
	guest := &models.User{Email: "guest@example.com", Password: "x"}
	require.NoError(t, repo.Create(owner))
	require.NoError(t, repo.Create(guest))
	require.NoError(t, repo.AddRole(owner.ID, userRoleID))
	require.NoError(t, repo.AddRole(owner.ID, userRoleID))

	project := models.Project{Title: "Owned", OwnerID: owner.ID}
	require.NoError(t, db.Omit("Owner").Create(&project).Error)
	require.NoError(t, db.Create(&models.ProjectParticipant{ProjectID: project.ID, UserID: guest.ID}).Error)
	require.NoError(t, db.Omit("Project", "Invited", "Inviter").Create(&models.ProjectInvitation{
		ProjectID: project.ID, InvitedID: guest.ID, InviterID: owner.ID, Status: models.InvitationStatusPending,
	}).Error)

	require.NoError(t, repo.Delete(owner.ID))

	for _, model := range []interface{}{&models.Project{}, &models.ProjectParticipant{}, &models.ProjectInvitation{}, &models.UserRole{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		require.Zero(t, count)
	}

	_, err := repo.FindByID(guest.ID)
	require.NoError(t, err)

	require.ErrorIs(t, repo.Delete(owner.ID), gorm.ErrRecordNotFound)
}
