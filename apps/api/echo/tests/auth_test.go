package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/schoolsaas/apps/api/echo"
	"github.com/trezcool/schoolsaas/core/user"
	"github.com/trezcool/schoolsaas/services/email"
)

func Test_authApi_login(t *testing.T) {
	app := setup(t)
	student := app.createUser(t, "hero@test.in", user.RoleStudent, true)
	app.createUser(t, "ndog@test.in", user.RoleStudent, false) // 😂

	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, Response{
				Message: "validation failed",
				Error:   map[string]string{"email": "this field is required", "password": "this field is required"},
			}),
		},
		{
			name: "unknown field", wantCode: http.StatusBadRequest,
			body: []byte(`{"email": "hero@test.in", "password": "LolC@t123", "remember": true}`),
			wantData: marshallObj(t, Response{
				Message: "validation failed",
				Error:   map[string]string{"remember": "unknown field"},
			}),
		},
		{
			name: "wrong password", wantCode: http.StatusUnauthorized,
			body:     []byte(`{"email": "hero@test.in", "password": "Wr0ng@pwd"}`),
			wantData: marshallObj(t, Response{Error: "invalid credentials"}),
		},
		{
			name: "unknown email", wantCode: http.StatusUnauthorized,
			body:     []byte(`{"email": "nobody@test.in", "password": "LolC@t123"}`),
			wantData: marshallObj(t, Response{Error: "invalid credentials"}),
		},
		{
			name: "deactivated account", wantCode: http.StatusForbidden,
			body:     []byte(`{"email": "ndog@test.in", "password": "LolC@t123"}`),
			wantData: marshallObj(t, Response{Error: "account deactivated"}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/api/auth/login"
	}
	app.run(t, tests)

	t.Run("logged in", func(t *testing.T) {
		rec := app.serve(newRequest(http.MethodPost, "/api/auth/login", []byte(`{"email": " HERO@test.in ", "password": "LolC@t123"}`)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var data AuthResponse
		env := decodeEnvelope(t, rec, &data)
		assert.True(t, env.Success)
		assert.Equal(t, student.ID, data.User.ID)
		assert.Equal(t, student.Email, data.User.Email)
		assert.True(t, data.User.LastLogin.Valid)
		assert.NotEmpty(t, data.AccessToken)
		assert.NotEmpty(t, data.RefreshToken)
		assert.NotContains(t, rec.Body.String(), "passwordHash")
	})
}

func Test_authApi_register(t *testing.T) {
	app := setup(t)
	admin := app.createUser(t, "admin@test.in", user.RoleAdmin, true)
	principal := app.createUser(t, "principal@test.in", user.RolePrincipal, true)
	teacher := app.createUser(t, "teacher@test.in", user.RoleTeacher, true)

	body := func(email, role string) []byte {
		return marshallObj(t, user.NewUser{Email: email, Password: "Sch00l#Pass", Role: role, FirstName: "New", LastName: "Comer"})
	}
	roleErr := marshallObj(t, Response{Message: "validation failed", Error: map[string]string{"role": "not enough rights to set this role"}})

	tests := []httpTest{
		{name: "anonymous student", body: body("student@test.in", user.RoleStudent), wantCode: http.StatusCreated},
		{name: "anonymous parent", body: body("parent@test.in", user.RoleParent), wantCode: http.StatusCreated},
		{name: "anonymous teacher", body: body("t2@test.in", user.RoleTeacher), wantCode: http.StatusBadRequest, wantData: roleErr},
		{name: "teacher cannot register staff", token: app.token(t, teacher), body: body("t3@test.in", user.RoleTeacher), wantCode: http.StatusBadRequest, wantData: roleErr},
		{name: "principal registers teacher", token: app.token(t, principal), body: body("t4@test.in", user.RoleTeacher), wantCode: http.StatusCreated},
		{name: "principal cannot register admin", token: app.token(t, principal), body: body("a2@test.in", user.RoleAdmin), wantCode: http.StatusBadRequest, wantData: roleErr},
		{name: "admin registers admin", token: app.token(t, admin), body: body("a3@test.in", user.RoleAdmin), wantCode: http.StatusCreated},
		{
			name: "duplicate email", body: body("admin@test.in", user.RoleStudent), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, Response{Message: user.ErrEmailExists.Error(), Error: map[string]string{"email": user.ErrEmailExists.Error()}}),
		},
		{
			name: "weak password", wantCode: http.StatusBadRequest,
			body: marshallObj(t, user.NewUser{Email: "weak@test.in", Password: "password", Role: user.RoleStudent, FirstName: "Weak", LastName: "Pwd"}),
		},
		{name: "invalid token", token: "lol", body: body("t5@test.in", user.RoleStudent), wantCode: http.StatusUnauthorized},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/api/auth/register"
	}
	app.run(t, tests)

	usr, err := app.Users.GetByEmail(context.Background(), "t4@test.in")
	require.NoError(t, err)
	assert.Equal(t, user.RoleTeacher, usr.Role)
	assert.True(t, usr.IsActive)
	_, err = app.Users.GetByEmail(context.Background(), "t2@test.in")
	assert.Error(t, err)
}

func Test_authApi_me(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "hero@test.in", user.RoleStudent, true)
	naughty := app.createUser(t, "ndog@test.in", user.RoleStudent, true)
	token := app.token(t, naughty)

	isActive := false
	_, err := app.Users.Update(context.Background(), naughty, user.UpdateUser{IsActive: &isActive})
	require.NoError(t, err)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "malformed token", token: "lol", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, Response{Error: "invalid or expired jwt"})},
		{name: "deactivated since", token: token, wantCode: http.StatusForbidden, wantData: marshallObj(t, Response{Error: "account deactivated"})},
		{name: "current user", token: app.token(t, usr), wantCode: http.StatusOK},
	}
	for i := range tests {
		tests[i].path = "/api/auth/me"
	}
	app.run(t, tests)
}

func Test_authApi_logout(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "hero@test.in", user.RoleStudent, true)
	token := app.token(t, usr)

	rec := app.serve(newAuthRequest(http.MethodPost, "/api/auth/logout", token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decodeEnvelope(t, rec).Success)

	// every token issued before is revoked
	rec = app.serve(newAuthRequest(http.MethodGet, "/api/auth/me", token))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	ok, err := jsonBytesEqual(rec.Body.Bytes(), marshallObj(t, Response{Error: "token has been revoked"}))
	require.NoError(t, err)
	assert.True(t, ok, rec.Body.String())

	// ... but new ones work
	usr, err = app.Users.GetByID(context.Background(), usr.ID)
	require.NoError(t, err)
	rec = app.serve(newAuthRequest(http.MethodGet, "/api/auth/me", app.token(t, usr)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_authApi_refresh(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "hero@test.in", user.RoleStudent, true)
	pair, err := app.tokens.Issue(usr)
	require.NoError(t, err)

	tests := []httpTest{
		{name: "required fields", wantCode: http.StatusBadRequest},
		{
			name: "access token rejected", body: marshallObj(t, RefreshRequest{RefreshToken: pair.AccessToken}),
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, Response{Error: "invalid or expired jwt"}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/api/auth/refresh"
	}
	app.run(t, tests)

	t.Run("refreshed", func(t *testing.T) {
		rec := app.serve(newRequest(http.MethodPost, "/api/auth/refresh", marshallObj(t, RefreshRequest{RefreshToken: pair.RefreshToken})))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var data AuthResponse
		decodeEnvelope(t, rec, &data)
		assert.Equal(t, usr.ID, data.User.ID)
		assert.NotEmpty(t, data.AccessToken)
		assert.NotEmpty(t, data.RefreshToken)
	})

	t.Run("revoked by logout", func(t *testing.T) {
		require.NoError(t, app.Users.Logout(context.Background(), usr))
		rec := app.serve(newRequest(http.MethodPost, "/api/auth/refresh", marshallObj(t, RefreshRequest{RefreshToken: pair.RefreshToken})))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func Test_authApi_forgotPassword(t *testing.T) {
	app := setup(t)
	app.createUser(t, "forgetful@test.in", user.RoleParent, true)

	success := Response{
		Success: true,
		Message: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	}

	tests := []struct {
		name      string
		body      []byte
		wantCode  int
		wantData  []byte
		emailSent bool
	}{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, Response{Message: "validation failed", Error: map[string]string{"email": "this field is required"}}),
		},
		{
			name: "invalid email", body: []byte(`{"email": "lol"}`), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, Response{Message: "validation failed", Error: map[string]string{"email": "email must be a valid email address"}}),
		},
		{name: "unknown email", body: []byte(`{"email": "nobody@test.in"}`), wantCode: http.StatusOK, wantData: marshallObj(t, success)},
		{name: "known email", body: []byte(`{"email": "Forgetful@test.in"}`), wantCode: http.StatusOK, wantData: marshallObj(t, success), emailSent: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.serve(newRequest(http.MethodPost, "/api/auth/forgot-password", tt.body))
			checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: tt.wantData}, rec)

			if tt.emailSent {
				msg, ok := emailsvc.LastMessageTo("forgetful@test.in")
				require.True(t, ok, "no email sent")
				assert.Equal(t, "Password Reset", msg.Subject)
			}
		})
	}
}

func Test_authApi_resetPassword(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "forgetful@test.in", user.RoleParent, true)
	token, err := user.MakeResetToken(app.Conf, usr)
	require.NoError(t, err)

	tests := []httpTest{
		{name: "required fields", wantCode: http.StatusBadRequest},
		{
			name: "invalid token", body: marshallObj(t, user.ResetUserPassword{Token: "lol", Password: "N3w#Secret"}),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, Response{Message: "invalid token", Error: map[string]string{"token": "invalid token"}}),
		},
		{name: "password reset", body: marshallObj(t, user.ResetUserPassword{Token: token, Password: "N3w#Secret"}), wantCode: http.StatusOK},
		{
			name: "token already used", body: marshallObj(t, user.ResetUserPassword{Token: token, Password: "N3w#Secret2"}),
			wantCode: http.StatusBadRequest,
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/api/auth/reset-password"
	}
	app.run(t, tests)

	_, err = app.Users.Authenticate(context.Background(), usr.Email, "N3w#Secret")
	assert.NoError(t, err)
}
