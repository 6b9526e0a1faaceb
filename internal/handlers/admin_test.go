package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-todo-api/internal/constants"
	"github.com/yukikurage/project-todo-api/internal/dto"
	"github.com/yukikurage/project-todo-api/internal/middleware"
)

func setupAdminRouter(env *handlerTestEnv) *gin.Engine {
	r := gin.New()
	r.POST("/auth/login", env.auth.Login)

	api := r.Group("")
	api.Use(middleware.RequireAuth(env.tokens, env.users))
	api.GET("/statuses", env.reference.ListStatuses)
	api.GET("/priorities", env.reference.ListPriorities)
	api.GET("/users/:id", env.user.GetUser)

	admin := api.Group("")
	admin.Use(middleware.RequireRole(constants.RoleAdmin))
	{
		admin.GET("/users", env.user.ListUsers)
		admin.POST("/users", env.user.CreateUser)
		admin.PATCH("/users/:id", env.user.PatchUser)
		admin.DELETE("/users/:id", env.user.DeleteUser)
		admin.GET("/roles", env.role.ListRoles)
		admin.POST("/roles", env.role.CreateRole)
		admin.DELETE("/roles/:id", env.role.DeleteRole)
		admin.POST("/statuses", env.reference.CreateStatus)
		admin.POST("/priorities", env.reference.CreatePriority)
	}

	return r
}

func adminToken(t *testing.T, env *handlerTestEnv, r *gin.Engine) string {
	t.Helper()

	env.createUser(t, "admin@example.com")
	require.NoError(t, env.users.EnsureRole("admin@example.com", constants.RoleAdmin))
	return login(t, r, "admin@example.com", "password123").AccessToken
}

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	env := setupHandlerTestEnv(t)
	r := setupAdminRouter(env)
	env.createUser(t, "plain@example.com")
	token := login(t, r, "plain@example.com", "password123").AccessToken

	w := doJSON(t, r, http.MethodGet, "/users", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPost, "/statuses", map[string]string{"title": "Blocked"}, token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodGet, "/statuses", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminUserManagement(t *testing.T) {
	env := setupHandlerTestEnv(t)
	r := setupAdminRouter(env)
	token := adminToken(t, env, r)

	w := doJSON(t, r, http.MethodPost, "/users", map[string]interface{}{
		"email":      "staff@example.com",
		"password":   "password123",
		"first_name": "Staff",
		"last_name":  "Member",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created dto.UserDTO
	decode(t, w, &created)

	w = doJSON(t, r, http.MethodPost, "/users", map[string]interface{}{
		"email":      "staff@example.com",
		"password":   "password123",
		"first_name": "Again",
		"last_name":  "Member",
	}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodGet, "/users?limit=1", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.UserListResponse
	decode(t, w, &list)
	assert.Len(t, list.Users, 1)
	assert.Equal(t, int64(2), list.Pagination.Total)

	url := fmt.Sprintf("/users/%d", created.ID)
	w = doJSON(t, r, http.MethodPatch, url, map[string]string{"last_name": "Lead"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	var patched dto.UserDTO
	decode(t, w, &patched)
	assert.Equal(t, "Staff", patched.FirstName)
	assert.Equal(t, "Lead", patched.LastName)

	w = doJSON(t, r, http.MethodDelete, url, nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, url, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminReferenceData(t *testing.T) {
	env := setupHandlerTestEnv(t)
	r := setupAdminRouter(env)
	token := adminToken(t, env, r)

	w := doJSON(t, r, http.MethodPost, "/statuses", map[string]string{"title": "On Hold"}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	var status dto.ReferenceDTO
	decode(t, w, &status)
	assert.Equal(t, "on-hold", status.Slug)

	w = doJSON(t, r, http.MethodPost, "/statuses", map[string]string{"title": "Done"}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/priorities", map[string]string{"title": "Urgent", "slug": "p0"}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/priorities", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var priorities []dto.ReferenceDTO
	decode(t, w, &priorities)
	assert.Len(t, priorities, 4)
}

func TestAdminRoles(t *testing.T) {
	env := setupHandlerTestEnv(t)
	r := setupAdminRouter(env)
	token := adminToken(t, env, r)

	w := doJSON(t, r, http.MethodPost, "/roles", map[string]string{"name": "Project Manager"}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	var role dto.RoleDTO
	decode(t, w, &role)
	assert.Equal(t, "project-manager", role.Slug)

	w = doJSON(t, r, http.MethodPost, "/roles", map[string]string{"name": "Admin"}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/roles/%d", role.ID), nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/roles", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var roles []dto.RoleDTO
	decode(t, w, &roles)
	assert.Len(t, roles, 2)
}
