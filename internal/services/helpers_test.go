package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-todo-api/internal/models"
	"github.com/yukikurage/project-todo-api/internal/repository"
	"github.com/yukikurage/project-todo-api/internal/testutil"
	"gorm.io/gorm"
)

type sentMessage struct {
	To      []string
	Subject string
	Body    string
}

// fakeGateway records messages and fails when err is set.
type fakeGateway struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (g *fakeGateway) Send(_ context.Context, to []string, subject, htmlBody string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.err != nil {
		return g.err
	}
	g.sent = append(g.sent, sentMessage{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (g *fakeGateway) messages() []sentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]sentMessage(nil), g.sent...)
}

var errSMTPDown = errors.New("smtp down")

type testEnv struct {
	db          *gorm.DB
	gateway     *fakeGateway
	users       *UserService
	roles       *RoleService
	references  *ReferenceService
	projects    *ProjectService
	invitations *InvitationService
	tasks       *TaskService
	auth        *AuthService
	otps        *OTPService
	tokens      *TokenService
}

func setupServiceTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	gateway := &fakeGateway{}

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	users := NewUserService(userRepo, roleRepo)
	references := NewReferenceService(repository.NewReferenceRepository(db))
	projects := NewProjectService(projectRepo, userRepo)
	otps := NewOTPService(repository.NewOTPRepository(db), 300*time.Second)
	tokens := NewTokenService("test-secret", 30*time.Minute, 168*time.Hour)

	return &testEnv{
		db:          db,
		gateway:     gateway,
		users:       users,
		roles:       NewRoleService(roleRepo),
		references:  references,
		projects:    projects,
		invitations: NewInvitationService(repository.NewInvitationRepository(db), projectRepo, userRepo, gateway, log),
		tasks:       NewTaskService(repository.NewTaskRepository(db), projectRepo, projects, references, NewAIService("")),
		auth:        NewAuthService(users, tokens, otps, gateway, log),
		otps:        otps,
		tokens:      tokens,
	}
}

func (e *testEnv) createUser(t *testing.T, email, first, last string) *models.User {
	t.Helper()

	user, err := e.users.Create(CreateUserInput{
		Email:     email,
		Password:  "password123",
		FirstName: first,
		LastName:  last,
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) createProject(t *testing.T, title string, ownerID uint64) *models.Project {
	t.Helper()

	project, err := e.projects.Create(title, ownerID)
	require.NoError(t, err)
	return project
}

// addParticipant invites and accepts so the membership goes through the real workflow.
func (e *testEnv) addParticipant(t *testing.T, project *models.Project, userID uint64) {
	t.Helper()

	inv, err := e.invitations.Create(context.Background(), CreateInvitationInput{
		ProjectID: project.ID,
		InvitedID: userID,
		InviterID: project.OwnerID,
	})
	require.NoError(t, err)

	_, err = e.invitations.Accept(inv.ID, userID)
	require.NoError(t, err)
}

func ptr[T any](v T) *T {
	return &v
}
