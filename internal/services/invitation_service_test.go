package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-todo-api/internal/models"
)

func TestInvitationService_InviteAndAccept(t *testing.T) {
	env := setupServiceTestEnv(t)
	ann := env.createUser(t, "ann@example.com", "Ann", "Lee")
	bob := env.createUser(t, "bob@example.com", "Bob", "Ray")
	project := env.createProject(t, "Apollo", ann.ID)

	inv, err := env.invitations.Create(context.Background(), CreateInvitationInput{
		ProjectID: project.ID,
		InvitedID: bob.ID,
		InviterID: ann.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.InvitationStatusPending, inv.Status)

	msgs := env.gateway.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"bob@example.com"}, msgs[0].To)
	assert.Contains(t, msgs[0].Body, "Ann Lee invited you to Apollo")

	received, err := env.invitations.ListReceived(bob.ID)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "Apollo", received[0].Project.Title)

	sent, err := env.invitations.ListSent(ann.ID)
	require.NoError(t, err)
	require.Len(t, sent, 1)

	accepted, err := env.invitations.Accept(inv.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationStatusAccepted, accepted.Status)

	member, err := env.projects.IsMember(project.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, member)

	_, err = env.invitations.Decline(inv.ID, bob.ID)
	require.ErrorIs(t, err, ErrInvitationProcessed)
}

func TestInvitationService_CreateGuards(t *testing.T) {
	env := setupServiceTestEnv(t)
	ann := env.createUser(t, "ann@example.com", "Ann", "Lee")
	bob := env.createUser(t, "bob@example.com", "Bob", "Ray")
	cat := env.createUser(t, "cat@example.com", "Cat", "Fox")
	project := env.createProject(t, "Apollo", ann.ID)
	env.addParticipant(t, project, cat.ID)

	_, err := env.invitations.Create(context.Background(), CreateInvitationInput{ProjectID: project.ID, InvitedID: bob.ID, InviterID: ann.ID})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input CreateInvitationInput
		want  error
	}{
		{"missing project", CreateInvitationInput{ProjectID: 999, InvitedID: bob.ID, InviterID: ann.ID}, ErrProjectNotFound},
		{"inviter not owner", CreateInvitationInput{ProjectID: project.ID, InvitedID: bob.ID, InviterID: cat.ID}, ErrNotProjectOwner},
		{"missing invitee", CreateInvitationInput{ProjectID: project.ID, InvitedID: 999, InviterID: ann.ID}, ErrUserNotFound},
		{"self invite", CreateInvitationInput{ProjectID: project.ID, InvitedID: ann.ID, InviterID: ann.ID}, ErrCannotInviteSelf},
		{"already participant", CreateInvitationInput{ProjectID: project.ID, InvitedID: cat.ID, InviterID: ann.ID}, ErrAlreadyParticipant},
		{"pending exists", CreateInvitationInput{ProjectID: project.ID, InvitedID: bob.ID, InviterID: ann.ID}, ErrInvitationPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.invitations.Create(context.Background(), tt.input)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestInvitationService_DeliveryFailureRollsBack(t *testing.T) {
	env := setupServiceTestEnv(t)
	ann := env.createUser(t, "ann@example.com", "Ann", "Lee")
	bob := env.createUser(t, "bob@example.com", "Bob", "Ray")
	project := env.createProject(t, "Apollo", ann.ID)

	env.gateway.err = errSMTPDown

	_, err := env.invitations.Create(context.Background(), CreateInvitationInput{ProjectID: project.ID, InvitedID: bob.ID, InviterID: ann.ID})
	require.ErrorIs(t, err, ErrDeliveryFailed)

	var count int64
	require.NoError(t, env.db.Model(&models.ProjectInvitation{}).Count(&count).Error)
	assert.Zero(t, count)

	env.gateway.err = nil
	_, err = env.invitations.Create(context.Background(), CreateInvitationInput{ProjectID: project.ID, InvitedID: bob.ID, InviterID: ann.ID})
	require.NoError(t, err)
}

func TestInvitationService_AcceptGuards(t *testing.T) {
	env := setupServiceTestEnv(t)
	ann := env.createUser(t, "ann@example.com", "Ann", "Lee")
	bob := env.createUser(t, "bob@example.com", "Bob", "Ray")
	cat := env.createUser(t, "cat@example.com", "Cat", "Fox")
	project := env.createProject(t, "Apollo", ann.ID)

	inv, err := env.invitations.Create(context.Background(), CreateInvitationInput{ProjectID: project.ID, InvitedID: bob.ID, InviterID: ann.ID})
	require.NoError(t, err)

	_, err = env.invitations.Accept(999, bob.ID)
	require.ErrorIs(t, err, ErrInvitationNotFound)

	_, err = env.invitations.Accept(inv.ID, cat.ID)
	require.ErrorIs(t, err, ErrInvitationForbidden)

	declined, err := env.invitations.Decline(inv.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationStatusDeclined, declined.Status)

	_, err = env.invitations.Accept(inv.ID, bob.ID)
	require.ErrorIs(t, err, ErrInvitationProcessed)

	member, err := env.projects.IsMember(project.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, member)
}

func TestInvitationService_AcceptWhenAlreadyParticipant(t *testing.T) {
	env := setupServiceTestEnv(t)
	ann := env.createUser(t, "ann@example.com", "Ann", "Lee")
	bob := env.createUser(t, "bob@example.com", "Bob", "Ray")
	project := env.createProject(t, "Apollo", ann.ID)

	inv, err := env.invitations.Create(context.Background(), CreateInvitationInput{ProjectID: project.ID, InvitedID: bob.ID, InviterID: ann.ID})
	require.NoError(t, err)

	// Membership added out of band while the invitation is pending.
	require.NoError(t, env.db.Create(&models.ProjectParticipant{ProjectID: project.ID, UserID: bob.ID}).Error)

	accepted, err := env.invitations.Accept(inv.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationStatusAccepted, accepted.Status)

	var count int64
	require.NoError(t, env.db.Model(&models.ProjectParticipant{}).
		Where("project_id = ? AND user_id = ?", project.ID, bob.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestInvitationService_ConcurrentAccept(t *testing.T) {
	env := setupServiceTestEnv(t)
	ann := env.createUser(t, "ann@example.com", "Ann", "Lee")
	bob := env.createUser(t, "bob@example.com", "Bob", "Ray")
	project := env.createProject(t, "Apollo", ann.ID)

	inv, err := env.invitations.Create(context.Background(), CreateInvitationInput{ProjectID: project.ID, InvitedID: bob.ID, InviterID: ann.ID})
	require.NoError(t, err)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		processed int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.invitations.Accept(inv.ID, bob.ID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, ErrInvitationProcessed):
				processed++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, processed)

	var count int64
	require.NoError(t, env.db.Model(&models.ProjectParticipant{}).Where("project_id = ?", project.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
