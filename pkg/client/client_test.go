package client

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOwner(f *fakeAPI) {
	f.users = []User{{ID: "u1", Role: RoleSuperAdmin, Name: "Owner", Username: "owner", CenterName: "Alpha"}}
}

func TestClient_LoginKeepsToken(t *testing.T) {
	f, c := newFakeAPI(t)
	seedOwner(f)
	ctx := context.Background()

	_, err := c.Me(ctx)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))

	res, err := c.Login(ctx, "owner", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tkn", res.Token)
	assert.Equal(t, "dev-1", res.CurrentDeviceID)
	assert.Equal(t, "tkn", c.Token())

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", me.ID)
}

func TestClient_InvalidCredentials(t *testing.T) {
	f, c := newFakeAPI(t)
	seedOwner(f)

	_, err := c.Login(context.Background(), "owner", "wrong")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid credentials", apiErr.Message)
	assert.Empty(t, c.Token())
}

func TestClient_UsernameSuggestions(t *testing.T) {
	f, c := newFakeAPI(t)
	seedOwner(f)

	_, err := c.CreateUser(context.Background(), NewUser{Name: "Other", Username: "owner", Password: "p", CenterName: "Beta"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, []string{"owner7", "owner2024", "owneruz"}, apiErr.Suggestions)
}

func TestClient_NonJSONErrorBody(t *testing.T) {
	_, c := newFakeAPI(t)

	err := c.do(context.Background(), http.MethodGet, "/broken", nil, nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestClient_BulkAttendance(t *testing.T) {
	f, c := newFakeAPI(t)
	seedOwner(f)
	f.students = []Student{{ID: "s1", Name: "Ali", Attendance: Attendance{"2024-05-01": {Status: StatusPresent}}}}
	c.SetToken("tkn")

	res, err := c.BulkAttendance(context.Background(), []AttendanceUpdate{
		{ID: "s1", Attendance: Attendance{"2024-05-02": {Status: StatusAbsent, Reason: "sick"}}},
		{ID: "s9", Attendance: Attendance{"2024-05-02": {Status: StatusPresent}}},
	})
	require.NoError(t, err)

	require.Len(t, res.Students, 1)
	assert.Len(t, res.Students[0].Attendance, 2, "dates not in the update are kept")
	assert.Equal(t, []AttendanceResult{{ID: "s9", Status: "skipped", Reason: "not found"}}, res.Skipped())
}
