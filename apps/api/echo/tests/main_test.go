package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/coursebox/backend/apps"
	. "github.com/coursebox/backend/apps/api/echo"
	"github.com/coursebox/backend/core"
	"github.com/coursebox/backend/core/registereduser"
	"github.com/coursebox/backend/services/email"
	"github.com/coursebox/backend/tests"
)

const (
	superAdmin = "owner@example.com"
	secret     = "test-secret"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type env struct {
	app     Server
	conf    *core.Config
	mailSvc *emailsvc.ConsoleServiceMock
	users   *registereduser.Service
}

func setup(t *testing.T) *env {
	_, docs := testutil.PrepareDB(t)
	testutil.Clock(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))

	conf := &core.Config{
		Env:             "TEST",
		TestMode:        true,
		AppName:         "Coursebox",
		SecretKey:       secret,
		SuperAdminEmail: superAdmin,
		FrontendBaseURL: "http://localhost:3000",
		Server:          core.ServerConfig{JWTExpirationDelta: 24 * time.Hour},
	}

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	svcs := apps.NewServices(conf, docs, mailSvc, nil)

	// set up server
	app := NewServer(
		"",  /* addr */
		nil, /* shutdown */
		&Deps{
			Conf:         conf,
			Access:       svcs.Access,
			LessonSvc:    svcs.Lessons,
			ExamSvc:      svcs.Exams,
			ResultSvc:    svcs.Results,
			UserSvc:      svcs.Users,
			ContentSvc:   svcs.Content,
			TopicSvc:     svcs.Topics,
			DashboardSvc: svcs.Dashboard,
		},
	)
	return &env{app: app, conf: conf, mailSvc: mailSvc, users: svcs.Users}
}

// do serves one request and returns the recorded response.
func (e *env) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	e.app.ServeHTTP(rec, req)
	return rec
}

// approvedToken registers email as an approved learner and returns a token for it.
func (e *env) approvedToken(t *testing.T, email string) string {
	t.Helper()
	_, err := e.users.Invite(context.Background(), email, "", "", superAdmin)
	if err != nil {
		t.Fatalf("Invite(): %v", err)
	}
	return getToken(t, e.conf, email)
}

type httpErr struct {
	Error string `json:"error"`
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

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, conf *core.Config, email string) string {
	token, err := GenerateToken(NewClaims(conf, email, ""), conf.SecretKey)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("json.Unmarshal(%s): %v", rec.Body.String(), err)
	}
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
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data differs:\n%s", jsonDiff(tt.wantData, rec.Body.Bytes()))
	}
}

// jsonDiff renders a unified diff of the indented forms of want and got.
func jsonDiff(want, got []byte) string {
	indent := func(b []byte) []string {
		var buf bytes.Buffer
		if err := json.Indent(&buf, b, "", "  "); err != nil {
			return difflib.SplitLines(string(b))
		}
		return difflib.SplitLines(buf.String())
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        indent(want),
		B:        indent(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		return string(got)
	}
	return diff
}

func runHTTPTests(t *testing.T, e *env, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(tt.method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}
