package main

import (
	"bytes"
	"encoding/json"
	"net/mail"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/micportal/core"
	"github.com/trezcool/micportal/core/auth"
	"github.com/trezcool/micportal/core/chat"
	"github.com/trezcool/micportal/core/content"
	"github.com/trezcool/micportal/core/invitation"
	"github.com/trezcool/micportal/core/store"
	"github.com/trezcool/micportal/core/submission"
	appfs "github.com/trezcool/micportal/fs"
	email "github.com/trezcool/micportal/services/email"
	logsvc "github.com/trezcool/micportal/services/logger"
	"github.com/trezcool/micportal/storage/state"
	"github.com/trezcool/micportal/tests"
)

type fixture struct {
	cli     *commandLine
	backend *testutil.Backend
	state   *state.File
	mailer  *email.ConsoleService
	out     *bytes.Buffer
	admin   string
	faculty string
}

func setup(t *testing.T) *fixture {
	backend := testutil.NewBackend(t)
	conf := backend.Config()
	conf.DefaultFromEmail = mail.Address{Name: "MIC Portal", Address: "noreply@mic.test"}
	require.NoError(t, core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf))

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	submission.InitValidators(validate, translator)
	invitation.InitValidators(validate, translator)

	st, err := state.Open(filepath.Join(t.TempDir(), "state.yml"))
	require.NoError(t, err)

	f := &fixture{
		backend: backend,
		state:   st,
		mailer:  email.NewConsoleServiceMock(conf),
		out:     new(bytes.Buffer),
		admin:   testutil.Token(t, auth.RoleAdmin, "admin-1"),
		faculty: testutil.Token(t, auth.RoleFaculty, "faculty-1"),
	}
	f.cli = &commandLine{
		conf:       conf,
		logger:     logsvc.NewRollbarLogger(zaptest.NewLogger(t), conf),
		validate:   validate,
		translator: translator,
		state:      st,
		mailer:     f.mailer,
		guard:      store.NewGuard(),
		out:        f.out,
	}
	mockPassword(t, "")
	return f
}

func mockPassword(t *testing.T, pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
	t.Cleanup(func() { readPasswordFunc = nil })
}

// runAs runs the command logged in with token, and returns what it printed.
func (f *fixture) runAs(t *testing.T, token string, args ...string) (string, error) {
	require.NoError(t, f.state.SetToken(token))
	f.out.Reset()
	err := f.cli.run(append([]string{"console"}, args...))
	return f.out.String(), err
}

func (f *fixture) mustRun(t *testing.T, token string, args ...string) string {
	out, err := f.runAs(t, token, args...)
	require.NoError(t, err, out)
	return out
}

func decodeOutput(t *testing.T, out string, v interface{}) {
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantCause  error
	wantErrStr string
}

func (f *fixture) runTests(t *testing.T, token string, tests []cliTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.runAs(t, token, tt.args...)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantCause != nil:
				require.Error(t, err)
				assert.Equal(t, tt.wantCause, errors.Cause(err), err.Error())
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Equal(t, tt.wantErrStr, err.Error())
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	f := setup(t)

	assert.Equal(t, errHelp, f.cli.run([]string{"console"}))
	f.runTests(t, f.admin, []cliTest{
		{name: "unknown command", args: []string{"lol"}, wantErrStr: `unknown command "lol" for "console"`},
		{name: "unknown output format", args: []string{"submissions", "-o", "xml"}, wantErrStr: `unknown output format "xml"`},
		{name: "login without email", args: []string{"login"}, wantErr: errHelp},
		{name: "faculty add without name", args: []string{"faculty", "add", "--email", "a@mic.test"}, wantErr: errHelp},
		{name: "chat without message", args: []string{"chat"}, wantErr: errHelp},
		{name: "remove without faculty", args: []string{"assign", "s1", "--remove"}, wantErr: errHelp},
	})
	f.runTests(t, "", []cliTest{
		{name: "not logged in", args: []string{"submissions"}, wantCause: core.ErrUnauthenticated},
	})
}

func Test_commandLine_login(t *testing.T) {
	f := setup(t)
	testutil.CreateAccount(f.backend, f.admin, "Admin", "admin@mic.test", "s3cret-pass", auth.RoleAdmin)
	testutil.CreateAccount(f.backend, "student-token", "Stu", "stu@mic.test", "s3cret-pass", auth.RoleStudent)

	mockPassword(t, "s3cret-pass")
	out := f.mustRun(t, "", "login", "--email", " Admin@MIC.test ")
	assert.Equal(t, "Logged in as Admin <admin@mic.test> (ADMIN)\n", out)
	assert.Equal(t, f.admin, f.state.Token())

	f.mustRun(t, f.admin, "logout")
	assert.Empty(t, f.state.Token())

	f.runTests(t, "", []cliTest{
		{name: "students use the student site", args: []string{"login", "--email", "stu@mic.test"}, wantCause: core.ErrForbidden},
		{name: "invalid email", args: []string{"login", "--email", "admin"}, wantErrStr: "email: email must be a valid email address"},
	})

	mockPassword(t, "nope")
	f.runTests(t, "", []cliTest{
		{name: "wrong password", args: []string{"login", "--email", "admin@mic.test"}, wantErrStr: "authentication failed"},
	})
	assert.Empty(t, f.state.Token())
}

func Test_commandLine_hashPassword(t *testing.T) {
	f := setup(t)
	mockPassword(t, "s3cret-pass")

	out := f.mustRun(t, "", "hashpassword")
	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret-pass")))
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, passwordHashCost, cost)
}

func Test_commandLine_submissions(t *testing.T) {
	f := setup(t)
	testutil.SeedReviewQueue(f.backend)

	out := f.mustRun(t, f.admin, "submissions", "--filter", "pending", "-o", "json")
	var listing submission.Listing
	decodeOutput(t, out, &listing)
	require.Len(t, listing.Items, 1)
	assert.Equal(t, "s1", listing.Items[0].Submission.ID)
	assert.Equal(t, 5, listing.Counts.All)

	out = f.mustRun(t, f.admin, "submissions")
	assert.Contains(t, out, "Campus drone delivery")
	assert.Contains(t, out, "Pending Faculty Review")

	out = f.mustRun(t, f.admin, "submissions", "s5", "-o", "yaml")
	assert.Contains(t, out, "id: s5")
	assert.Contains(t, out, "stage: looking_for_funding")

	out = f.mustRun(t, f.admin, "decide", "s1", "Approved", "-o", "json")
	var item submission.Item
	decodeOutput(t, out, &item)
	assert.Equal(t, submission.StatusAdminApproved, item.Submission.Status)

	f.runTests(t, f.admin, []cliTest{
		{name: "already decided", args: []string{"decide", "s3", "approved"}, wantCause: submission.ErrInvalidTransition},
		{name: "unknown submission", args: []string{"decide", "s9", "approved"}, wantCause: core.ErrNotFound},
		{name: "unknown filter", args: []string{"submissions", "--filter", "soon"}, wantCause: submission.ErrUnknownFilter},
	})
}

func Test_commandLine_tagsAndAssign(t *testing.T) {
	f := setup(t)
	testutil.SeedReviewQueue(f.backend)
	f.backend.Lock()
	f.backend.Faculty = []submission.Faculty{{ID: "f1", Name: "Dr Ada", Email: "ada@mic.test"}}
	f.backend.Unlock()

	f.mustRun(t, f.admin, "tags", "s1", "--domain", " Energy ", "--tag", "solar,solar", "--tag", " grid ")
	f.backend.Lock()
	assert.Equal(t, "Energy", f.backend.Submissions[0].Domain)
	assert.Equal(t, []string{"solar", "grid"}, f.backend.Submissions[0].Tags)
	f.backend.Unlock()

	out := f.mustRun(t, f.admin, "assign", "s2", "ADA@mic.test", "-o", "json")
	var assignments []submission.Assignment
	decodeOutput(t, out, &assignments)
	require.Len(t, assignments, 1)
	assert.Equal(t, "f1", assignments[0].FacultyID)

	out = f.mustRun(t, f.admin, "assign", "s2")
	assert.Contains(t, out, "Dr Ada")

	out = f.mustRun(t, f.admin, "assign", "s2", "f1", "--remove", "-o", "json")
	decodeOutput(t, out, &assignments)
	assert.Empty(t, assignments)

	f.runTests(t, f.faculty, []cliTest{
		{name: "faculty cannot tag", args: []string{"tags", "s2", "--tag", "x"}, wantCause: core.ErrForbidden},
		{name: "faculty cannot assign", args: []string{"assign", "s2", "f1"}, wantCause: core.ErrForbidden},
	})
	f.runTests(t, f.admin, []cliTest{
		{name: "unknown faculty", args: []string{"assign", "s2", "nobody@mic.test"}, wantCause: core.ErrNotFound},
	})
}

func Test_commandLine_incubation(t *testing.T) {
	f := setup(t)
	testutil.SeedReviewQueue(f.backend)

	f.mustRun(t, f.faculty, "decide", "s2", "approved")

	out := f.mustRun(t, f.faculty, "progress", "-o", "json")
	var report submission.ProgressReport
	decodeOutput(t, out, &report)
	require.Len(t, report.Items, 1)
	assert.Equal(t, "s2", report.Items[0].SubmissionID)

	out = f.mustRun(t, f.faculty, "incubation", "s2", "--stage", "looking_for_funding", "--progress", "40", "-o", "json")
	decodeOutput(t, out, &report)
	require.Len(t, report.Items, 1)
	assert.Equal(t, submission.StageLookingForFunding, report.Items[0].Stage)
	assert.Equal(t, 40, report.Average)

	out = f.mustRun(t, f.faculty, "progress")
	assert.Contains(t, out, "Looking for Funding")
	assert.Contains(t, out, "40%")

	f.runTests(t, f.faculty, []cliTest{
		{name: "progress out of range", args: []string{"incubation", "s2", "--progress", "140"}, wantErrStr: "progress_percent: progress_percent must be 100 or less"},
	})
	f.runTests(t, f.admin, []cliTest{
		{name: "admins have no progress", args: []string{"progress"}, wantCause: core.ErrForbidden},
	})
}

func Test_commandLine_invitations(t *testing.T) {
	f := setup(t)
	orig := invitation.NowFunc
	invitation.NowFunc = func() time.Time { return time.Date(2025, 2, 1, 12, 0, 0, 0, time.Local) }
	t.Cleanup(func() { invitation.NowFunc = orig })
	testutil.CreateInvitation(f.backend, "i1", "Demo day", "2025-03-01", invitation.StatusPending)
	testutil.CreateInvitation(f.backend, "i2", "Kick-off", "2025-01-10", invitation.StatusAccepted)

	out := f.mustRun(t, f.faculty, "invitations", "--filter", "upcoming", "-o", "yaml")
	assert.Contains(t, out, "filter: upcoming")
	assert.Contains(t, out, "invitation_id: i1")
	assert.NotContains(t, out, "invitation_id: i2")

	out = f.mustRun(t, f.faculty, "rsvp", "i1", "accepted")
	assert.Equal(t, "Demo day (2025-03-01): You have accepted\n", out)

	f.runTests(t, f.faculty, []cliTest{
		{name: "answers are final", args: []string{"rsvp", "i1", "declined"}, wantCause: invitation.ErrTerminal},
		{name: "unknown answer", args: []string{"rsvp", "i1", "maybe"}, wantCause: invitation.ErrUnknownAction},
		{name: "unknown filter", args: []string{"invitations", "--filter", "soon"}, wantCause: invitation.ErrUnknownFilter},
	})
	f.runTests(t, f.admin, []cliTest{
		{name: "admins have no invitations", args: []string{"invitations"}, wantCause: core.ErrForbidden},
	})
}

func Test_commandLine_faculty(t *testing.T) {
	f := setup(t)

	mockPassword(t, "c0b0l-Rocks")
	out := f.mustRun(t, f.admin, "faculty", "add", "--name", "Grace Hopper", "--email", " Grace@MIC.test ", "-o", "json")
	var members []submission.Faculty
	decodeOutput(t, out, &members)
	require.Len(t, members, 1)
	assert.Equal(t, "grace@mic.test", members[0].Email)

	mockPassword(t, "N3w-secret!")
	out = f.mustRun(t, f.admin, "faculty", "passwd", "grace@mic.test")
	assert.Equal(t, "Password of Grace Hopper <grace@mic.test> updated\n", out)
	f.backend.Lock()
	assert.Equal(t, "N3w-secret!", f.backend.Accounts["grace@mic.test"].Password)
	f.backend.Unlock()

	out = f.mustRun(t, f.admin, "faculty")
	assert.Contains(t, out, "Grace Hopper")

	mockPassword(t, "12345678")
	f.runTests(t, f.admin, []cliTest{
		{name: "weak password", args: []string{"faculty", "add", "--name", "Alan", "--email", "alan@mic.test"}, wantErrStr: "password: password cannot be entirely numeric"},
		{name: "unknown member", args: []string{"faculty", "passwd", "alan@mic.test"}, wantCause: core.ErrNotFound},
	})
	f.runTests(t, f.faculty, []cliTest{
		{name: "faculty cannot manage faculty", args: []string{"faculty"}, wantCause: core.ErrForbidden},
	})
}

func Test_commandLine_companies(t *testing.T) {
	f := setup(t)

	out := f.mustRun(t, f.admin, "companies", "add", " Globex ", "--logo", "https://globex.test/logo.png", "-o", "json")
	var companies []submission.Company
	decodeOutput(t, out, &companies)
	require.Len(t, companies, 1)
	assert.Equal(t, "Globex", companies[0].Name)

	out = f.mustRun(t, f.admin, "companies", "rm", companies[0].ID, "-o", "json")
	decodeOutput(t, out, &companies)
	assert.Empty(t, companies)

	f.runTests(t, f.admin, []cliTest{
		{name: "blank name", args: []string{"companies", "add", "  "}, wantErrStr: "name: this field is required"},
	})
}

func Test_commandLine_chat(t *testing.T) {
	f := setup(t)

	out := f.mustRun(t, "", "chat", "Hello", "there")
	assert.Contains(t, out, "You said: Hello there")
	sessionID := f.state.ChatSessionID()
	require.NotEmpty(t, sessionID)

	out = f.mustRun(t, "", "chat", "Again", "-o", "json")
	var reply chat.Reply
	decodeOutput(t, out, &reply)
	assert.Equal(t, sessionID, reply.SessionID)
	received := f.backend.Received()
	assert.Equal(t, sessionID, received[len(received)-1].SessionID)

	f.mustRun(t, "", "chat", "--reset")
	assert.Empty(t, f.state.ChatSessionID())

	f.backend.Lock()
	f.backend.FailWrites = 502
	f.backend.Unlock()
	out = f.mustRun(t, "", "chat", "Hello", "-o", "json")
	decodeOutput(t, out, &reply)
	assert.Equal(t, chat.UnavailableMsg, reply.Response)
}

func Test_commandLine_digest(t *testing.T) {
	f := setup(t)
	testutil.SeedReviewQueue(f.backend)

	out := f.mustRun(t, f.admin, "digest", "--to", "ops@mic.test", "--limit", "1")
	assert.Contains(t, out, "Campus drone delivery")
	assert.NotContains(t, out, "Smart irrigation")

	sent := f.mailer.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "ops@mic.test", sent[0].To[0].Address)
	assert.Equal(t, submission.DigestTemplate, sent[0].TemplateName)
	require.Len(t, sent[0].Attachments, 1)
	assert.Equal(t, submission.DigestAttachment, sent[0].Attachments[0].Filename)

	_, err := f.runAs(t, f.admin, "digest", "--to", "ops")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), `invalid recipient "ops"`), err.Error())
	assert.Len(t, f.mailer.SentMessages(), 1)
}

func Test_commandLine_site(t *testing.T) {
	f := setup(t)
	f.backend.Lock()
	f.backend.Contents = []content.Content{
		{ID: "r1", Type: content.TypeResource, Title: "Pitch deck template", IsActive: true, Data: content.Data{}},
		{ID: "e1", Type: content.TypeEvent, Title: "Demo day", IsActive: true, Data: content.Data{"event_date": "2025-03-01", "venue": "Hall A"}},
	}
	f.backend.Unlock()

	// the public site needs no login
	out := f.mustRun(t, "", "site")
	assert.Contains(t, out, "Site: resources")
	assert.Contains(t, out, "Pitch deck template")

	out = f.mustRun(t, "", "site", "events/all", "-o", "json")
	var listing content.SiteListing
	decodeOutput(t, out, &listing)
	require.Len(t, listing.Items, 1)
	assert.Equal(t, "2025-03-01", listing.Items[0].EventDate)
	assert.Equal(t, "Hall A", listing.Items[0].Venue)

	f.runTests(t, "", []cliTest{
		{name: "unknown section", args: []string{"site", "news"}, wantCause: content.ErrUnknownSection},
	})
}
