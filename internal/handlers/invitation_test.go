package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-todo-api/internal/dto"
	apierrors "github.com/yukikurage/project-todo-api/internal/errors"
	"github.com/yukikurage/project-todo-api/internal/middleware"
	"github.com/yukikurage/project-todo-api/internal/models"
)

func (e *handlerTestEnv) invite(t *testing.T, project *models.Project, inviter, invited *models.User) *inviteResult {
	t.Helper()

	c, w := e.authContext(t, http.MethodPost, "/invitations", map[string]uint64{
		"project_id": project.ID,
		"invited_id": invited.ID,
	}, inviter)
	e.invitation.CreateInvitation(c)
	return &inviteResult{code: w.Code, body: w.Body.Bytes()}
}

type inviteResult struct {
	code int
	body []byte
}

func (e *handlerTestEnv) transition(t *testing.T, accept bool, invitationID uint64, user *models.User) (int, string) {
	t.Helper()

	id := fmt.Sprint(invitationID)
	c, w := e.authContext(t, http.MethodPost, "/invitations/"+id, nil, user)
	withParams(c, "id", id)
	if accept {
		e.invitation.Accept(c)
	} else {
		e.invitation.Decline(c)
	}

	var body struct {
		Code   string `json:"code"`
		Status string `json:"status"`
	}
	if w.Body.Len() > 0 {
		decode(t, w, &body)
	}
	if body.Code != "" {
		return w.Code, body.Code
	}
	return w.Code, body.Status
}

func TestCreateInvitation(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	guest := env.createUser(t, "guest@example.com")
	project := env.createProject(t, "Garden", owner)

	res := env.invite(t, project, owner, guest)

	require.Equal(t, http.StatusCreated, res.code, string(res.body))
	assert.Contains(t, string(res.body), `"status":"pending"`)

	env.gateway.mu.Lock()
	defer env.gateway.mu.Unlock()
	require.Len(t, env.gateway.bodies, 1)
	assert.Contains(t, env.gateway.bodies[0], "Garden")
}

func TestCreateInvitation_Rules(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	member := env.createUser(t, "member@example.com")
	guest := env.createUser(t, "guest@example.com")
	project := env.createProject(t, "Garden", owner)
	env.addParticipant(t, project, member)

	assert.Equal(t, http.StatusForbidden, env.invite(t, project, member, guest).code)
	assert.Equal(t, http.StatusBadRequest, env.invite(t, project, owner, owner).code)
	assert.Equal(t, http.StatusConflict, env.invite(t, project, owner, member).code)

	require.Equal(t, http.StatusCreated, env.invite(t, project, owner, guest).code)
	assert.Equal(t, http.StatusConflict, env.invite(t, project, owner, guest).code)

	missing := &models.Project{ID: project.ID + 100}
	assert.Equal(t, http.StatusNotFound, env.invite(t, missing, owner, guest).code)
}

func TestCreateInvitation_DeliveryFailureLeavesNothing(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	guest := env.createUser(t, "guest@example.com")
	project := env.createProject(t, "Garden", owner)
	env.gateway.err = errors.New("smtp down")

	res := env.invite(t, project, owner, guest)
	assert.Equal(t, http.StatusBadGateway, res.code)

	var count int64
	require.NoError(t, env.db.Model(&models.ProjectInvitation{}).Count(&count).Error)
	assert.Zero(t, count)

	env.gateway.err = nil
	assert.Equal(t, http.StatusCreated, env.invite(t, project, owner, guest).code)
}

func TestInvitationTransitions(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	guest := env.createUser(t, "guest@example.com")
	stranger := env.createUser(t, "stranger@example.com")
	project := env.createProject(t, "Garden", owner)

	res := env.invite(t, project, owner, guest)
	require.Equal(t, http.StatusCreated, res.code)
	invitation := decodeInvitation(t, res.body)

	code, status := env.transition(t, true, invitation.ID, stranger)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, apierrors.ErrCodeForbidden, status)

	code, status = env.transition(t, true, invitation.ID, guest)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, string(models.InvitationStatusAccepted), status)

	code, status = env.transition(t, false, invitation.ID, guest)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, apierrors.ErrCodeAlreadyProcessed, status)

	code, _ = env.transition(t, true, invitation.ID+100, guest)
	assert.Equal(t, http.StatusNotFound, code)

	isMember, err := env.projects.IsMember(project.ID, guest.ID)
	require.NoError(t, err)
	assert.True(t, isMember)
}

func TestDeclineInvitation_AllowsReinvite(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	guest := env.createUser(t, "guest@example.com")
	project := env.createProject(t, "Garden", owner)

	res := env.invite(t, project, owner, guest)
	require.Equal(t, http.StatusCreated, res.code)
	invitation := decodeInvitation(t, res.body)

	code, status := env.transition(t, false, invitation.ID, guest)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, string(models.InvitationStatusDeclined), status)

	isMember, err := env.projects.IsMember(project.ID, guest.ID)
	require.NoError(t, err)
	assert.False(t, isMember)

	assert.Equal(t, http.StatusCreated, env.invite(t, project, owner, guest).code)
}

func TestListInvitations(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	guest := env.createUser(t, "guest@example.com")
	project := env.createProject(t, "Garden", owner)
	require.Equal(t, http.StatusCreated, env.invite(t, project, owner, guest).code)

	c, w := env.authContext(t, http.MethodGet, "/invitations/received", nil, guest)
	env.invitation.ListReceived(c)
	require.Equal(t, http.StatusOK, w.Code)
	var received []dto.InvitationDTO
	decode(t, w, &received)
	require.Len(t, received, 1)
	require.NotNil(t, received[0].Project)
	assert.Equal(t, "Garden", received[0].Project.Title)

	c, w = env.authContext(t, http.MethodGet, "/invitations/sent", nil, owner)
	env.invitation.ListSent(c)
	require.Equal(t, http.StatusOK, w.Code)
	var sent []dto.InvitationDTO
	decode(t, w, &sent)
	require.Len(t, sent, 1)
	assert.Equal(t, guest.ID, sent[0].InvitedID)

	c, w = env.authContext(t, http.MethodGet, "/invitations/sent", nil, guest)
	env.invitation.ListSent(c)
	var none []dto.InvitationDTO
	decode(t, w, &none)
	assert.Empty(t, none)
}

// Walks the usual lifecycle: a project is created, a colleague is invited
// and joins, both work on tasks, then the colleague is removed.
func TestProjectCollaborationScenario(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	colleague := env.createUser(t, "colleague@example.com")

	c, w := env.authContext(t, http.MethodPost, "/projects", map[string]string{"title": "Website"}, owner)
	env.project.CreateProject(c)
	require.Equal(t, http.StatusCreated, w.Code)
	var project dto.ProjectDTO
	decode(t, w, &project)

	res := env.invite(t, &models.Project{ID: project.ID}, owner, colleague)
	require.Equal(t, http.StatusCreated, res.code)
	code, _ := env.transition(t, true, decodeInvitation(t, res.body).ID, colleague)
	require.Equal(t, http.StatusOK, code)

	deadline := time.Date(2030, 3, 1, 9, 0, 0, 0, time.UTC).Format(time.RFC3339)
	c, w = env.authContext(t, http.MethodPost, "/projects/tasks", map[string]interface{}{
		"title":        "Design landing page",
		"deadline":     deadline,
		"performer_id": colleague.ID,
	}, owner)
	c.Set(middleware.ContextKeyProjectID, project.ID)
	env.task.CreateTask(c)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	c, w = env.authContext(t, http.MethodGet, "/tasks?performer_id="+fmt.Sprint(colleague.ID), nil, colleague)
	env.task.ListTasks(c)
	require.Equal(t, http.StatusOK, w.Code)
	var tasks dto.TaskListResponse
	decode(t, w, &tasks)
	require.Len(t, tasks.Tasks, 1)
	assert.Equal(t, "Design landing page", tasks.Tasks[0].Title)

	id, colleagueID := fmt.Sprint(project.ID), fmt.Sprint(colleague.ID)
	c, w = env.authContext(t, http.MethodDelete, "/projects/"+id+"/participants/"+colleagueID, nil, owner)
	withParams(c, "id", id, "user_id", colleagueID)
	env.project.RemoveParticipant(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = env.authContext(t, http.MethodGet, "/tasks", nil, colleague)
	env.task.ListTasks(c)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &tasks)
	assert.Empty(t, tasks.Tasks)
}

func decodeInvitation(t *testing.T, body []byte) dto.InvitationDTO {
	t.Helper()

	var invitation dto.InvitationDTO
	require.NoError(t, json.Unmarshal(body, &invitation))
	return invitation
}
