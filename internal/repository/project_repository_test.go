package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-todo-api/internal/models"
	"github.com/yukikurage/project-todo-api/internal/testutil"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	owner    models.User
	guest    models.User
	outsider models.User
	project  models.Project
	status   models.TaskStatus
	priority models.Priority
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	db := testutil.NewDB(t)
	f := fixture{
		db:       db,
		owner:    models.User{Email: "owner@example.com", Password: "x"},
		guest:    models.User{Email: "guest@example.com", Password: "x"},
		outsider: models.User{Email: "outsider@example.com", Password: "x"},
	}
	require.NoError(t, db.Create(&f.owner).Error)
	require.NoError(t, db.Create(&f.guest).Error)
	require.NoError(t, db.Create(&f.outsider).Error)

	f.project = models.Project{Title: "Alpha", OwnerID: f.owner.ID}
	require.NoError(t, db.Omit("Owner").Create(&f.project).Error)
	require.NoError(t, db.Create(&models.ProjectParticipant{ProjectID: f.project.ID, UserID: f.guest.ID}).Error)

	require.NoError(t, db.Order("id").First(&f.status).Error)
	require.NoError(t, db.Order("id").First(&f.priority).Error)

	return f
}

func TestProjectRepository_Membership(t *testing.T) {
	f := newFixture(t)
	repo := NewProjectRepository(f.db)

	other := models.Project{Title: "Beta", OwnerID: f.guest.ID}
	require.NoError(t, repo.Create(&other))

	owned, err := repo.ListForUser(f.owner.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)

	guestProjects, err := repo.ListForUser(f.guest.ID)
	require.NoError(t, err)
	require.Len(t, guestProjects, 2)

	ids, err := repo.MemberProjectIDs(f.outsider.ID)
	require.NoError(t, err)
	require.Empty(t, ids)

	ok, err := repo.IsParticipant(f.project.ID, f.guest.ID)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, repo.RemoveParticipant(f.project.ID, f.guest.ID))
	require.ErrorIs(t, repo.RemoveParticipant(f.project.ID, f.guest.ID), gorm.ErrRecordNotFound)
}

func TestProjectRepository_FindByIDPreloads(t *testing.T) {
	f := newFixture(t)
	repo := NewProjectRepository(f.db)

	project, err := repo.FindByID(f.project.ID, "Owner", "ParticipatingUsers")
	require.NoError(t, err)
	require.Equal(t, f.owner.Email, project.Owner.Email)
	require.True(t, project.HasParticipant(f.guest.ID))
	require.False(t, project.HasParticipant(f.outsider.ID))
}

func TestProjectRepository_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	repo := NewProjectRepository(f.db)

	task := models.Task{
		Title:       "Write docs",
		Deadline:    time.Now().Add(time.Hour),
		ProjectID:   f.project.ID,
		PerformerID: f.guest.ID,
		StatusID:    f.status.ID,
		PriorityID:  f.priority.ID,
	}
	require.NoError(t, NewTaskRepository(f.db).Create(&task))
	require.NoError(t, NewInvitationRepository(f.db).Create(&models.ProjectInvitation{
		ProjectID: f.project.ID, InvitedID: f.outsider.ID, InviterID: f.owner.ID, Status: models.InvitationStatusPending,
	}, nil))

	require.NoError(t, repo.Delete(f.project.ID))

	for _, model := range []interface{}{&models.Project{}, &models.ProjectParticipant{}, &models.ProjectInvitation{}, &models.Task{}} {
		var count int64
		require.NoError(t, f.db.Model(model).Count(&count).Error)
		require.Zero(t, count)
	}

	require.ErrorIs(t, repo.Delete(f.project.ID), gorm.ErrRecordNotFound)
}

func TestTaskRepository_ListFilters(t *testing.T) {
	f := newFixture(t)
	repo := NewTaskRepository(f.db)

	var done models.TaskStatus
	require.NoError(t, f.db.Where("slug = ?", "done").First(&done).Error)

	base := time.Now().Add(time.Hour)
	for i, statusID := range []uint64{f.status.ID, done.ID, f.status.ID} {
		require.NoError(t, repo.Create(&models.Task{
			Title:       "Task",
			Deadline:    base.Add(time.Duration(i) * time.Hour),
			ProjectID:   f.project.ID,
			PerformerID: f.owner.ID,
			StatusID:    statusID,
			PriorityID:  f.priority.ID,
		}))
	}

	all, total, err := repo.List(TaskFilter{ProjectIDs: []uint64{f.project.ID}})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, all, 3)
	require.Equal(t, f.owner.Email, all[0].Performer.Email)

	finished, total, err := repo.List(TaskFilter{ProjectIDs: []uint64{f.project.ID}, StatusSlug: "done"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "done", finished[0].Status.Slug)

	low, _, err := repo.List(TaskFilter{ProjectIDs: []uint64{f.project.ID}, PrioritySlug: "high"})
	require.NoError(t, err)
	require.Empty(t, low)

	page, total, err := repo.List(TaskFilter{ProjectIDs: []uint64{f.project.ID}, Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, page, 1)

	none, total, err := repo.List(TaskFilter{})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, none)
}
