package resources_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-waterres-client/internal/apitest"
	apperrors "github.com/jrsteele09/go-waterres-client/internal/errors"
	"github.com/jrsteele09/go-waterres-client/resources"
	"github.com/stretchr/testify/require"
)

func TestNameChecks(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	taken := func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name") + r.URL.Query().Get("code")
		if name == "taken" {
			apitest.WriteData(w, map[string]any{"available": false, "message": "name already in use"})
			return
		}
		apitest.WriteData(w, map[string]any{"available": true})
	}
	f.backend.Protected(http.MethodGet, resources.DepartmentsPath+"/check-name", taken)
	f.backend.Protected(http.MethodGet, resources.RolesPath+"/check-name", taken)
	f.backend.Protected(http.MethodGet, resources.PositionsPath+"/check-name", taken)
	f.backend.Protected(http.MethodGet, resources.PermissionsPath+"/check-code", taken)

	res, err := f.api.Departments.CheckName(ctx, "taken", 2, 0)
	require.NoError(t, err)
	require.False(t, res.Available)
	require.Equal(t, "name already in use", res.Message)
	rec, _ := f.backend.LastRequest(http.MethodGet, resources.DepartmentsPath+"/check-name")
	require.Equal(t, "2", rec.Query.Get("parentId"))
	require.False(t, rec.Query.Has("excludeId"))

	res, err = f.api.Roles.CheckName(ctx, "auditor", 4)
	require.NoError(t, err)
	require.True(t, res.Available)
	rec, _ = f.backend.LastRequest(http.MethodGet, resources.RolesPath+"/check-name")
	require.Equal(t, "4", rec.Query.Get("excludeId"))

	res, err = f.api.Positions.CheckName(ctx, "taken", 0)
	require.NoError(t, err)
	require.False(t, res.Available)

	res, err = f.api.Permissions.CheckCode(ctx, "system:user:view", 0)
	require.NoError(t, err)
	require.True(t, res.Available)
}

func TestAssignments(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.backend.Protected(http.MethodPut, resources.UsersPath+"/9/roles", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, nil)
	})
	f.backend.Protected(http.MethodGet, resources.UsersPath+"/9/roles", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, []map[string]any{{"id": 2, "name": "Operator"}})
	})
	f.backend.Protected(http.MethodPut, resources.RolesPath+"/2/permissions", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, true)
	})

	require.NoError(t, f.api.Users.AssignRoles(ctx, 9, []int64{2, 3}))
	var roleIDs []int64
	f.lastBody(t, http.MethodPut, resources.UsersPath+"/9/roles", &roleIDs)
	require.Equal(t, []int64{2, 3}, roleIDs)

	require.NoError(t, f.api.Users.AssignRoles(ctx, 9, nil))
	f.lastBody(t, http.MethodPut, resources.UsersPath+"/9/roles", &roleIDs)
	require.Empty(t, roleIDs)
	require.NotNil(t, roleIDs)

	roles, err := f.api.Users.Roles(ctx, 9)
	require.NoError(t, err)
	require.Equal(t, "Operator", roles[0].Name)

	require.NoError(t, f.api.Roles.AssignPermissions(ctx, 2, []int64{10, 11}))
	var permIDs []int64
	f.lastBody(t, http.MethodPut, resources.RolesPath+"/2/permissions", &permIDs)
	require.Equal(t, []int64{10, 11}, permIDs)
}

func TestUserInputValidation(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	_, err := f.api.Users.Create(ctx, resources.UserInput{Username: "ab"})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.api.Users.Create(ctx, resources.UserInput{Username: "operator", Email: "not-an-email"})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	require.Zero(t, f.backend.CallCount(http.MethodPost, resources.UsersPath))
}

func TestPermissionHelpers(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	tree := []map[string]any{{
		"id": 1, "name": "System", "code": "system", "type": "menu",
		"children": []map[string]any{{"id": 2, "name": "Users", "code": "system:user:view", "type": "menu", "parentId": 1}},
	}}
	f.backend.Protected(http.MethodGet, resources.PermissionsPath+"/tree", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, tree)
	})
	f.backend.Protected(http.MethodGet, resources.PermissionsPath+"/by-type", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, []map[string]any{{"id": 5, "code": "user:export", "type": r.URL.Query().Get("type")}})
	})
	f.backend.Protected(http.MethodPut, resources.PermissionsPath+"/2/move", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, nil)
	})
	f.backend.Protected(http.MethodPost, resources.PermissionsPath+"/2/copy", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		readJSON(t, r, &in)
		apitest.WriteData(w, map[string]any{"id": 12, "name": in["newName"], "code": in["newCode"], "type": "menu"})
	})
	f.backend.Protected(http.MethodGet, resources.PermissionsPath+"/export", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="permissions.xlsx"`)
		apitest.WriteBlob(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", []byte("xlsx-bytes"))
	})

	got, err := f.api.Permissions.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "system:user:view", got[0].Children[0].Code)

	buttons, err := f.api.Permissions.ByType(ctx, resources.PermissionButton)
	require.NoError(t, err)
	require.Equal(t, resources.PermissionButton, buttons[0].Type)

	require.NoError(t, f.api.Permissions.Move(ctx, 2, 0))
	var moved map[string]any
	f.lastBody(t, http.MethodPut, resources.PermissionsPath+"/2/move", &moved)
	require.Equal(t, map[string]any{"newParentId": float64(0)}, moved)

	_, err = f.api.Permissions.Copy(ctx, 2, "", "")
	require.ErrorIs(t, err, apperrors.ErrValidation)
	copied, err := f.api.Permissions.Copy(ctx, 2, "Users (copy)", "system:user:view:copy")
	require.NoError(t, err)
	require.EqualValues(t, 12, copied.ID)
	require.Equal(t, "system:user:view:copy", copied.Code)

	resp, err := f.api.Permissions.Export(ctx, resources.ListQuery{Keyword: "user"})
	require.NoError(t, err)
	require.True(t, resp.IsBlob())
	require.Equal(t, []byte("xlsx-bytes"), resp.Blob)
	require.Equal(t, "permissions.xlsx", resources.AttachmentName(resp, "export.bin"))
	rec, _ := f.backend.LastRequest(http.MethodGet, resources.PermissionsPath+"/export")
	require.Equal(t, "user", rec.Query.Get("keyword"))
}

func TestAttachmentNameFallback(t *testing.T) {
	require.Equal(t, "out.csv", resources.AttachmentName(nil, "out.csv"))

	f := setupTestFixture(t)
	f.backend.Protected(http.MethodGet, resources.PermissionsPath+"/export", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="../../etc/passwd"`)
		apitest.WriteBlob(w, "application/octet-stream", []byte("x"))
	})
	resp, err := f.api.Permissions.Export(context.Background(), resources.ListQuery{})
	require.NoError(t, err)
	require.Equal(t, "passwd", resources.AttachmentName(resp, "out.csv"))
}

func TestRegionsAndPositions(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.backend.Protected(http.MethodGet, resources.RegionsPath+"/tree", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, []map[string]any{{"id": 1, "name": "Province", "level": 1, "children": []map[string]any{{"id": 2, "name": "City", "level": 2, "parentId": 1}}}})
	})
	f.backend.Protected(http.MethodGet, resources.RegionsPath+"/level/2", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, []map[string]any{{"id": 2, "name": "City", "level": 2}})
	})
	f.backend.Protected(http.MethodGet, resources.PositionsPath+"/4/users", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, apitest.Page([]map[string]any{{"id": 8, "fullName": "Li Wei", "positionId": 4, "hireDate": "2021-04-01"}}, 1))
	})

	regions, err := f.api.Regions.Tree(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "City", regions[0].Children[0].Name)
	rec, _ := f.backend.LastRequest(http.MethodGet, resources.RegionsPath+"/tree")
	require.Equal(t, "2", rec.Query.Get("maxLevel"))

	cities, err := f.api.Regions.ByLevel(ctx, 2)
	require.NoError(t, err)
	require.Len(t, cities, 1)

	staff, err := f.api.Positions.Users(ctx, 4, resources.ListQuery{Page: 1, Size: 5})
	require.NoError(t, err)
	require.Equal(t, "Li Wei", staff.Items[0].FullName)
	require.Equal(t, "2021-04-01", staff.Items[0].HireDate.String())
}
