package tests

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/schoolsaas/apps/api/echo"
	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/user"
)

func Test_userApi_query(t *testing.T) {
	app := setup(t)

	path := func(search string, isActive *bool, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if isActive != nil {
			v.Add("isActive", strconv.FormatBool(*isActive))
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		v.Add("ordering", "email")
		return "/api/users?" + v.Encode()
	}
	bPtr := func(b bool) *bool { return &b }

	admin := app.createUser(t, "admin@test.in", user.RoleAdmin, true)
	principal := app.createUser(t, "principal@test.in", user.RolePrincipal, true)
	teacher := app.createNamedUser(t, "Ravi", "Kumar", "ravi@test.in", user.RoleTeacher)
	student := app.createUser(t, "hero@test.in", user.RoleStudent, true)
	naughty := app.createUser(t, "ndog@test.in", user.RoleStudent, false) // 😂

	emails := func(users ...user.User) []string {
		out := make([]string, len(users))
		for i, u := range users {
			out[i] = u.Email
		}
		return out
	}
	adminToken := app.token(t, admin)

	tests := []struct {
		name       string
		path       string
		token      string
		wantCode   int
		wantEmails []string
	}{
		{name: "auth required", path: "/api/users", wantCode: http.StatusUnauthorized},
		{name: "admin required", path: "/api/users", token: app.token(t, teacher), wantCode: http.StatusForbidden},
		{name: "get all", path: path("", nil), token: adminToken, wantEmails: emails(admin, student, naughty, principal, teacher)},
		{name: "search (unknown)", path: path("lol", nil), token: adminToken, wantEmails: []string{}},
		{name: "search by name", path: path("RAVI", nil), token: adminToken, wantEmails: emails(teacher)},
		{name: "search by email", path: path("princ", nil), token: adminToken, wantEmails: emails(principal)},
		{name: "role", path: path("", nil, user.RoleStudent), token: adminToken, wantEmails: emails(student, naughty)},
		{name: "roles", path: path("", nil, user.RoleAdmin, user.RolePrincipal), token: adminToken, wantEmails: emails(admin, principal)},
		{name: "isActive=false", path: path("", bPtr(false)), token: adminToken, wantEmails: emails(naughty)},
		{name: "combo", path: path("", bPtr(true), user.RoleStudent), token: adminToken, wantEmails: emails(student)},
		{name: "descending", path: "/api/users?ordering=-email&role=STUDENT", token: adminToken, wantEmails: emails(naughty, student)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.serve(newAuthRequest(http.MethodGet, tt.path, tt.token))
			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
				return
			}
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var page struct {
				Data  []user.User `json:"data"`
				Total int64       `json:"total"`
			}
			decodeEnvelope(t, rec, &page)
			assert.Equal(t, tt.wantEmails, emails(page.Data...))
			assert.EqualValues(t, len(tt.wantEmails), page.Total)
		})
	}

	t.Run("pagination coerces query strings", func(t *testing.T) {
		rec := app.serve(newAuthRequest(http.MethodGet, "/api/users?ordering=email&page=2&pageSize=2", adminToken))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var page struct {
			Data       []user.User `json:"data"`
			Total      int64       `json:"total"`
			Page       int         `json:"page"`
			PageSize   int         `json:"pageSize"`
			TotalPages int         `json:"totalPages"`
		}
		decodeEnvelope(t, rec, &page)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 2, page.PageSize)
		assert.EqualValues(t, 5, page.Total)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, emails(naughty, principal), emails(page.Data...))
	})
}

func Test_userApi_roles(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "hero@test.in", user.RoleStudent, true)

	app.run(t, []httpTest{
		{name: "auth required", path: "/api/users/roles", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{
			name: "roles", path: "/api/users/roles", token: app.token(t, usr), wantCode: http.StatusOK,
			wantData: marshallObj(t, Response{Success: true, Data: user.Roles}),
		},
	})
}

func Test_userApi_retrieve(t *testing.T) {
	app := setup(t)
	admin := app.createUser(t, "admin@test.in", user.RoleAdmin, true)
	student := app.createUser(t, "hero@test.in", user.RoleStudent, true)
	other := app.createUser(t, "other@test.in", user.RoleStudent, true)

	notFound := marshallObj(t, Response{Error: "not found"})
	app.run(t, []httpTest{
		{name: "auth required", path: "/api/users/" + student.ID, wantCode: http.StatusUnauthorized},
		{name: "self", path: "/api/users/" + student.ID, token: app.token(t, student), wantCode: http.StatusOK},
		{name: "someone else", path: "/api/users/" + other.ID, token: app.token(t, student), wantCode: http.StatusNotFound, wantData: notFound},
		{name: "admin", path: "/api/users/" + other.ID, token: app.token(t, admin), wantCode: http.StatusOK},
		{name: "unknown id", path: "/api/users/lol", token: app.token(t, admin), wantCode: http.StatusNotFound, wantData: notFound},
	})
}

func Test_userApi_update(t *testing.T) {
	app := setup(t)
	admin := app.createUser(t, "admin@test.in", user.RoleAdmin, true)
	principal := app.createUser(t, "principal@test.in", user.RolePrincipal, true)
	student := app.createUser(t, "hero@test.in", user.RoleStudent, true)

	app.run(t, []httpTest{
		{
			name: "self update", method: http.MethodPut, path: "/api/users/" + student.ID, token: app.token(t, student),
			body: []byte(`{"firstName": "Super", "city": "Pune"}`), wantCode: http.StatusOK,
		},
		{
			name: "self role change", method: http.MethodPut, path: "/api/users/" + student.ID, token: app.token(t, student),
			body: []byte(`{"role": "ADMIN"}`), wantCode: http.StatusForbidden, wantData: marshallObj(t, Response{Error: "permission denied"}),
		},
		{
			name: "role above own", method: http.MethodPut, path: "/api/users/" + student.ID, token: app.token(t, principal),
			body: []byte(`{"role": "ADMIN"}`), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, Response{Message: "validation failed", Error: map[string]string{"role": "not enough rights to set this role"}}),
		},
		{
			name: "edit higher role", method: http.MethodPut, path: "/api/users/" + admin.ID, token: app.token(t, principal),
			body: []byte(`{"isActive": false}`), wantCode: http.StatusForbidden, wantData: marshallObj(t, Response{Error: "permission denied"}),
		},
		{
			name: "email taken", method: http.MethodPut, path: "/api/users/" + student.ID, token: app.token(t, admin),
			body: []byte(`{"email": "principal@test.in"}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "deactivate", method: http.MethodPut, path: "/api/users/" + student.ID, token: app.token(t, admin),
			body: []byte(`{"isActive": "false"}`), wantCode: http.StatusOK,
		},
	})

	usr, err := app.Users.GetByID(context.Background(), student.ID)
	require.NoError(t, err)
	assert.False(t, usr.IsActive)
	assert.Equal(t, user.RoleStudent, usr.Role)
	require.NotNil(t, usr.Profile)
	assert.Equal(t, "Super", usr.Profile.FirstName)
	assert.Equal(t, "Pune", usr.Profile.City.String)

	adm, err := app.Users.GetByID(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.True(t, adm.IsActive)
}

func Test_userApi_update_roleRecords(t *testing.T) {
	app := setup(t)
	admin := app.createUser(t, "admin@test.in", user.RoleAdmin, true)
	tch := app.CreateTeacher(t, "teacher@test.in", "TCH001")
	free := app.createUser(t, "free@test.in", user.RoleTeacher, true)

	app.run(t, []httpTest{
		{
			name: "owns a teacher record", method: http.MethodPut, path: "/api/users/" + tch.UserID, token: app.token(t, admin),
			body: []byte(`{"role": "STUDENT"}`), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, Response{Message: user.ErrRoleInUse.Error(), Error: map[string]string{"role": user.ErrRoleInUse.Error()}}),
		},
		{
			name: "same role", method: http.MethodPut, path: "/api/users/" + tch.UserID, token: app.token(t, admin),
			body: []byte(`{"role": "TEACHER", "firstName": "Ravi"}`), wantCode: http.StatusOK,
		},
		{
			name: "no record", method: http.MethodPut, path: "/api/users/" + free.ID, token: app.token(t, admin),
			body: []byte(`{"role": "STUDENT"}`), wantCode: http.StatusOK,
		},
	})

	usr, err := app.Users.GetByID(context.Background(), tch.UserID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleTeacher, usr.Role)
	usr, err = app.Users.GetByID(context.Background(), free.ID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleStudent, usr.Role)
}

func Test_userApi_update_password(t *testing.T) {
	app := setup(t)
	student := app.createUser(t, "hero@test.in", user.RoleStudent, true)
	oldToken := app.token(t, student)

	app.run(t, []httpTest{
		{
			name: "change password", method: http.MethodPut, path: "/api/users/" + student.ID, token: oldToken,
			body: []byte(`{"password": "N3w-P@ssw0rd"}`), wantCode: http.StatusOK,
		},
		{name: "old token revoked", path: "/api/auth/me", token: oldToken, wantCode: http.StatusUnauthorized},
	})

	usr, err := app.Users.GetByID(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Equal(t, student.TokenVersion+1, usr.TokenVersion)
	assert.NoError(t, usr.CheckPassword("N3w-P@ssw0rd"))
	app.run(t, []httpTest{{name: "new token", path: "/api/auth/me", token: app.token(t, usr), wantCode: http.StatusOK}})
}

func Test_userApi_destroy(t *testing.T) {
	app := setup(t)
	admin := app.createUser(t, "admin@test.in", user.RoleAdmin, true)
	principal := app.createUser(t, "principal@test.in", user.RolePrincipal, true)
	student := app.createUser(t, "hero@test.in", user.RoleStudent, true)

	forbidden := marshallObj(t, Response{Error: "permission denied"})
	app.run(t, []httpTest{
		{name: "self", method: http.MethodDelete, path: "/api/users/" + student.ID, token: app.token(t, student), wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "suicide", method: http.MethodDelete, path: "/api/users/" + admin.ID, token: app.token(t, admin), wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "higher role", method: http.MethodDelete, path: "/api/users/" + admin.ID, token: app.token(t, principal), wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "deleted", method: http.MethodDelete, path: "/api/users/" + student.ID, token: app.token(t, admin), wantCode: http.StatusNoContent},
	})

	_, err := app.Users.GetByID(context.Background(), student.ID)
	assert.True(t, core.IsNotFound(err))
}
