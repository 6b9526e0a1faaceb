package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-todo-api/internal/models"
)

func TestMediaURL(t *testing.T) {
	assert.Nil(t, MediaURL("http://api.test", ""))

	got := MediaURL("http://api.test/", "/media/avatars/x.png")
	require.NotNil(t, got)
	assert.Equal(t, "http://api.test/media/avatars/x.png", *got)

	got = MediaURL("http://api.test", "https://cdn.test/x.png")
	require.NotNil(t, got)
	assert.Equal(t, "https://cdn.test/x.png", *got)
}

func TestToInvitationDTO_OmitsMissingRelations(t *testing.T) {
	inv := models.ProjectInvitation{ID: 1, ProjectID: 2, InvitedID: 3, InviterID: 4, Status: models.InvitationStatusPending}

	out := ToInvitationDTO(inv, "")
	assert.Nil(t, out.Project)
	assert.Nil(t, out.Invited)

	inv.Project = models.Project{ID: 2, Title: "Apollo"}
	out = ToInvitationDTO(inv, "")
	require.NotNil(t, out.Project)
	assert.Equal(t, "Apollo", out.Project.Title)
}

func TestToTaskListResponse_TotalPages(t *testing.T) {
	resp := ToTaskListResponse(nil, "", 1, 20, 41)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Empty(t, resp.Tasks)

	resp = ToTaskListResponse(nil, "", 1, 0, 5)
	assert.Equal(t, 0, resp.TotalPages)
}
