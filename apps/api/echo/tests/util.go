package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	echoapi "github.com/trezcool/micportal/apps/api/echo"
	"github.com/trezcool/micportal/core"
	"github.com/trezcool/micportal/core/auth"
	"github.com/trezcool/micportal/core/content"
	"github.com/trezcool/micportal/core/invitation"
	"github.com/trezcool/micportal/core/store"
	"github.com/trezcool/micportal/core/submission"
	logsvc "github.com/trezcool/micportal/services/logger"
	"github.com/trezcool/micportal/services/portal"
	"github.com/trezcool/micportal/tests"
)

var (
	errMissingToken = httpErr{Error: "user not authenticated"}
	errForbidden    = httpErr{Error: "permission denied"}
)

type fixture struct {
	app     *echoapi.Server
	backend *testutil.Backend
	admin   string
	faculty string
	student string
}

// setup starts a portal backend and a console server talking to it.
func setup(t *testing.T) fixture {
	backend := testutil.NewBackend(t)
	conf := backend.Config()
	conf.Server.DisableReqLogs = true

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	submission.InitValidators(validate, translator)
	invitation.InitValidators(validate, translator)
	content.InitValidators(validate, translator)

	logger := logsvc.NewRollbarLogger(zaptest.NewLogger(t), conf)
	app := echoapi.NewServer(conf, logger, &echoapi.Deps{
		Portal:     portal.New(conf, nil),
		Validate:   validate,
		Translator: translator,
		Guard:      store.NewGuard(),
	})

	return fixture{
		app:     app,
		backend: backend,
		admin:   testutil.Token(t, auth.RoleAdmin, "admin-1"),
		faculty: testutil.Token(t, auth.RoleFaculty, "faculty-1"),
		student: testutil.Token(t, auth.RoleStudent, "student-1"),
	}
}

// serve runs tt against the console and checks the response code, returning the recorder.
func (f fixture) serve(t *testing.T, tt httpTest) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
	f.app.ServeHTTP(rec, req)
	require.Equalf(t, tt.wantCode, rec.Code, "body: %s", rec.Body.String())
	return rec
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

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode() failed: %v; body %s", err, rec.Body.String())
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
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// runTests runs table tests whose response body is fully known.
func (f fixture) runTests(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			f.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
