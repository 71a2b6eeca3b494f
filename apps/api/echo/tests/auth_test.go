package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/micportal/core/auth"
	"github.com/trezcool/micportal/core/chat"
	"github.com/trezcool/micportal/tests"
)

func Test_home(t *testing.T) {
	f := setup(t)
	req, rec := newAuthRequest(http.MethodGet, "/", "")
	f.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to the MIC Portal console!", rec.Body.String())
}

func Test_authApi_login(t *testing.T) {
	f := setup(t)
	admin := testutil.CreateAccount(f.backend, f.admin, "Admin", "admin@mic.test", "s3cret-pass", auth.RoleAdmin)
	testutil.CreateAccount(f.backend, f.student, "Stu", "stu@mic.test", "s3cret-pass", auth.RoleStudent)

	f.runTests(t, []httpTest{
		{
			name:     "valid credentials",
			method:   http.MethodPost,
			path:     "/v1/login",
			body:     []byte(`{"email":" admin@mic.test ","password":"s3cret-pass"}`),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, admin),
		},
		{
			name:     "wrong password",
			method:   http.MethodPost,
			path:     "/v1/login",
			body:     []byte(`{"email":"admin@mic.test","password":"nope"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "missing fields",
			method:   http.MethodPost,
			path:     "/v1/login",
			body:     []byte(`{"email":"admin"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"email":"email must be a valid email address","password":"this field is required"}`),
		},
		{
			name:     "students use the student site",
			method:   http.MethodPost,
			path:     "/v1/login",
			body:     []byte(`{"email":"stu@mic.test","password":"s3cret-pass"}`),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
	})
}

func Test_authApi_me(t *testing.T) {
	f := setup(t)
	rec := f.serve(t, httpTest{method: http.MethodGet, path: "/v1/me", token: f.faculty, wantCode: http.StatusOK})
	var claims auth.Claims
	decode(t, rec, &claims)
	assert.Equal(t, auth.RoleFaculty, claims.Role)
	assert.Equal(t, "faculty-1", claims.UserID)
}

func Test_chatApi(t *testing.T) {
	f := setup(t)

	// no token needed; the session id is echoed back
	req, rec := newAuthRequest(http.MethodPost, "/v1/chat", "", []byte(`{"message":"Hello"}`))
	req.Header.Set(chat.SessionHeader, "sess-1")
	f.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sess-1", rec.Header().Get(chat.SessionHeader))
	ok, err := jsonBytesEqual(rec.Body.Bytes(), []byte(`{"response":"You said: Hello","session_id":"sess-1"}`))
	assert.NoError(t, err)
	assert.True(t, ok, rec.Body.String())

	received := f.backend.Received()
	assert.Equal(t, "sess-1", received[len(received)-1].SessionID)

	// a new conversation gets a session id
	rec = f.serve(t, httpTest{method: http.MethodPost, path: "/v1/chat", body: []byte(`{"message":"Hi"}`), wantCode: http.StatusOK})
	var reply chat.Reply
	decode(t, rec, &reply)
	assert.NotEmpty(t, reply.SessionID)

	f.runTests(t, []httpTest{{
		name:     "blank message",
		method:   http.MethodPost,
		path:     "/v1/chat",
		body:     []byte(`{"message":"  "}`),
		wantCode: http.StatusBadRequest,
		wantData: []byte(`{"message":"this field is required"}`),
	}})
}

func Test_chatApi_unavailable(t *testing.T) {
	f := setup(t)
	f.backend.Lock()
	f.backend.FailWrites = http.StatusBadGateway
	f.backend.Unlock()

	req, rec := newAuthRequest(http.MethodPost, "/v1/chat", "", []byte(`{"message":"Hello","session_id":"sess-2"}`))
	f.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	ok, err := jsonBytesEqual(rec.Body.Bytes(), marchallObj(t, chat.Reply{Response: chat.UnavailableMsg, SessionID: "sess-2"}))
	assert.NoError(t, err)
	assert.True(t, ok, rec.Body.String())
}
