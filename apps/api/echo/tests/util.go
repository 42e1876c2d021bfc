package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/trezcool/schoolsaas/apps/api/echo"
	"github.com/trezcool/schoolsaas/core/user"
	"github.com/trezcool/schoolsaas/tests"
)

const testPassword = "LolC@t123"

var errMissingToken = Response{Error: "missing or malformed jwt"}

type testApp struct {
	*testutil.Env
	server Server
	tokens *Tokens
}

// setup wires a server over a fresh database.
func setup(t *testing.T) *testApp {
	t.Helper()
	env := testutil.NewEnv(t)
	return &testApp{
		Env: env,
		server: NewServer(ServerDeps{
			Conf:        env.Conf,
			Logger:      env.Logger,
			Validate:    env.Validate,
			Translator:  env.Translator,
			UserSvc:     env.Users,
			SchoolSvc:   env.School,
			PeopleSvc:   env.People,
			AcademicSvc: env.Academic,
			FinanceSvc:  env.Finance,
			MeetingSvc:  env.Meetings,
			NoticeSvc:   env.Notices,
		}),
		tokens: NewTokens(env.Conf),
	}
}

func (app *testApp) createUser(t *testing.T, email, role string, isActive bool) user.User {
	t.Helper()
	return testutil.CreateUser(t, app.UserRepo, "Test", "User", email, testPassword, role, isActive)
}

func (app *testApp) createNamedUser(t *testing.T, firstName, lastName, email, role string) user.User {
	t.Helper()
	return testutil.CreateUser(t, app.UserRepo, firstName, lastName, email, testPassword, role, true)
}

func (app *testApp) token(t *testing.T, usr user.User) string {
	t.Helper()
	pair, err := app.tokens.Issue(usr)
	require.NoError(t, err)
	return pair.AccessToken
}

func (app *testApp) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func (app *testApp) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			rec := app.serve(newAuthRequest(method, tt.path, tt.token, tt.body))
			checkCodeAndData(t, tt, rec)
		})
	}
}

func newAuthRequest(method, path, token string, data ...[]byte) *http.Request {
	var body *bytes.Reader
	if len(data) > 0 && data[0] != nil {
		body = bytes.NewReader(data[0])
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func newRequest(method, path string, data ...[]byte) *http.Request {
	return newAuthRequest(method, path, "", data...)
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	require.NoError(t, err, "marshallObj()")
	return data
}

// envelope is a decoded Response whose data is kept raw.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data ...interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data[0]), string(env.Data))
	}
	return env
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
