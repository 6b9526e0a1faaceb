package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-todo-api/internal/constants"
	"github.com/yukikurage/project-todo-api/internal/media"
	"github.com/yukikurage/project-todo-api/internal/models"
	"github.com/yukikurage/project-todo-api/internal/repository"
	"github.com/yukikurage/project-todo-api/internal/services"
	"github.com/yukikurage/project-todo-api/internal/testutil"
	"gorm.io/gorm"
)

const testBaseURL = "http://api.test"

type recordingGateway struct {
	mu     sync.Mutex
	bodies []string
	err    error
}

func (g *recordingGateway) Send(_ context.Context, _ []string, _ string, htmlBody string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	g.bodies = append(g.bodies, htmlBody)
	return nil
}

type handlerTestEnv struct {
	db       *gorm.DB
	gateway  *recordingGateway
	store    *media.LocalStore
	tokens   *services.TokenService
	users    *services.UserService
	projects *services.ProjectService
	invites  *services.InvitationService

	auth        *AuthHandler
	user        *UserHandler
	role        *RoleHandler
	reference   *ReferenceHandler
	project     *ProjectHandler
	invitation  *InvitationHandler
	task        *TaskHandler
	taskService *services.TaskService
}

func setupHandlerTestEnv(t *testing.T) *handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	gateway := &recordingGateway{}
	store := media.NewLocalStore(t.TempDir())

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	tokens := services.NewTokenService("test-secret", 30*time.Minute, 168*time.Hour)
	users := services.NewUserService(userRepo, roleRepo)
	otps := services.NewOTPService(repository.NewOTPRepository(db), 300*time.Second)
	references := services.NewReferenceService(repository.NewReferenceRepository(db))
	projects := services.NewProjectService(projectRepo, userRepo)
	invitations := services.NewInvitationService(repository.NewInvitationRepository(db), projectRepo, userRepo, gateway, log)
	tasks := services.NewTaskService(repository.NewTaskRepository(db), projectRepo, projects, references, services.NewAIService(""))
	auth := services.NewAuthService(users, tokens, otps, gateway, log)

	return &handlerTestEnv{
		db:          db,
		gateway:     gateway,
		store:       store,
		tokens:      tokens,
		users:       users,
		projects:    projects,
		invites:     invitations,
		auth:        NewAuthHandler(auth, users, store, testBaseURL),
		user:        NewUserHandler(users, testBaseURL),
		role:        NewRoleHandler(services.NewRoleService(roleRepo)),
		reference:   NewReferenceHandler(references),
		project:     NewProjectHandler(projects, testBaseURL),
		invitation:  NewInvitationHandler(invitations, testBaseURL),
		task:        NewTaskHandler(tasks, testBaseURL),
		taskService: tasks,
	}
}

func (e *handlerTestEnv) createUser(t *testing.T, email string) *models.User {
	t.Helper()

	user, err := e.users.Create(services.CreateUserInput{
		Email:     email,
		Password:  "password123",
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(t, err)
	return user
}

func (e *handlerTestEnv) createProject(t *testing.T, title string, owner *models.User) *models.Project {
	t.Helper()

	project, err := e.projects.Create(title, owner.ID)
	require.NoError(t, err)
	return project
}

func (e *handlerTestEnv) addParticipant(t *testing.T, project *models.Project, user *models.User) {
	t.Helper()

	invitation, err := e.invites.Create(context.Background(), services.CreateInvitationInput{
		ProjectID: project.ID,
		InvitedID: user.ID,
		InviterID: project.OwnerID,
	})
	require.NoError(t, err)
	_, err = e.invites.Accept(invitation.ID, user.ID)
	require.NoError(t, err)
}

// authContext builds a context the way RequireAuth leaves it
func (e *handlerTestEnv) authContext(t *testing.T, method, url string, body interface{}, user *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	c, w := newTestContext(t, method, url, body)
	if user != nil {
		loaded, err := e.users.Get(user.ID)
		require.NoError(t, err)
		c.Set(constants.ContextKeyUserID, loaded.ID)
		c.Set(constants.ContextKeyUser, loaded)
	}
	return c, w
}

func newTestContext(t *testing.T, method, url string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, url, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Code string `json:"code"`
	}
	decode(t, w, &body)
	return body.Code
}
