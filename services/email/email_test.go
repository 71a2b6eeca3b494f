package emailsvc

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/micportal/core"
	"github.com/trezcool/micportal/core/auth"
	"github.com/trezcool/micportal/core/submission"
	appfs "github.com/trezcool/micportal/fs"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func testConfig(t *testing.T) *core.Config {
	from, err := mail.ParseAddress("MIC Portal <noreply@mic.test>")
	require.NoError(t, err)
	conf := &core.Config{AppName: "MIC Portal", TestMode: true, DefaultFromEmail: *from, SendgridApiKey: "sg-key"}
	require.NoError(t, core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf))
	return conf
}

func digestMessage(t *testing.T) *core.EmailMessage {
	subs := []submission.Submission{
		{ID: "s1", Title: "Campus drone", Student: "Jane", Status: submission.StatusSubmitted, SubmittedOn: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "s2", Title: "Solar kiosks", Status: submission.StatusApproved, Stage: submission.StageFoundCompany},
	}
	d := submission.BuildDigest(subs, auth.RoleAdmin, time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC), 5)
	msg, err := d.Message(mail.Address{Name: "Admin", Address: "admin@mic.test"})
	require.NoError(t, err)
	return msg
}

func TestConsoleService(t *testing.T) {
	svc := NewConsoleServiceMock(testConfig(t))

	err := svc.SendMessages(context.Background(),
		digestMessage(t),
		&core.EmailMessage{Subject: "no recipient", BodyStr: "ignored"},
	)
	require.NoError(t, err)

	sent := svc.SentMessages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].TextContent, "Pending admin review:   1")
	assert.Contains(t, sent[0].TextContent, "Campus drone by Jane (Pending Review, since Jan 2, 2025)")
	assert.Contains(t, sent[0].HTMLContent, "Campus drone")
}

func TestConsoleService_MIME(t *testing.T) {
	svc := NewConsoleService(testConfig(t))
	var out strings.Builder
	svc.out = &out

	msg := &core.EmailMessage{To: []mail.Address{{Address: "a@mic.test"}}, Subject: "Hello", BodyStr: "Hi there"}
	require.NoError(t, msg.Attach(strings.NewReader("a,b\n1,2\n"), "report.csv", "text/csv"))
	require.NoError(t, svc.SendMessages(context.Background(), msg))

	doc := out.String()
	assert.Contains(t, doc, "Subject: [MIC Portal] Hello")
	assert.Contains(t, doc, "multipart/mixed")
	assert.Contains(t, doc, "Hi there")
	assert.Contains(t, doc, "filename=report.csv")
}

func TestSendgridService(t *testing.T) {
	var gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		if strings.Contains(gotBody, "bounce@mic.test") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	svc := NewSendgridService(testConfig(t), nopLogger{})
	svc.host = srv.URL

	require.NoError(t, svc.SendMessages(context.Background(), digestMessage(t)))
	assert.Equal(t, "Bearer sg-key", gotAuth)
	assert.Contains(t, gotBody, "[MIC Portal] Review digest: 1 submission(s) waiting")
	assert.Contains(t, gotBody, "admin@mic.test")
	assert.Contains(t, gotBody, `"filename":"review-queue.csv"`)

	err := svc.SendMessages(context.Background(), &core.EmailMessage{
		To:      []mail.Address{{Address: "bounce@mic.test"}},
		BodyStr: "hello",
	})
	assert.True(t, core.IsAPIStatus(err, http.StatusBadRequest))
}
