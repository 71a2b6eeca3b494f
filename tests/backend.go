package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/micportal/core"
	"github.com/trezcool/micportal/core/auth"
	"github.com/trezcool/micportal/core/chat"
	"github.com/trezcool/micportal/core/content"
	"github.com/trezcool/micportal/core/invitation"
	"github.com/trezcool/micportal/core/submission"
)

// Account is a user the backend lets log in.
type Account struct {
	Password string
	Login    auth.LoginResponse
}

// Request is a request received by the backend.
type Request struct {
	Method    string
	Path      string
	Auth      string
	SessionID string
	Body      string
}

// Backend is an in-memory portal API, served over HTTP. It applies the writes the way the real
// portal does, so that clients can be tested against their refetches.
type Backend struct {
	mu     sync.Mutex
	server *httptest.Server
	nextID int

	Accounts    map[string]Account // by email
	Submissions []submission.Submission
	Assignments map[string][]submission.Assignment
	Work        []submission.WorkItem
	Companies   []submission.Company
	Faculty     []submission.Faculty
	Progress    []submission.ProgressItem
	Invitations []invitation.Invitation
	Contents    []content.Content
	Feedback    []submission.FeedbackRequest
	Profile     submission.Profile
	Requests    []Request

	// FailWrites, when set, is the status answered to every write.
	FailWrites int
}

// NewBackend starts a backend, closed at the end of the test.
func NewBackend(t *testing.T) *Backend {
	b := &Backend{
		Accounts:    make(map[string]Account),
		Assignments: make(map[string][]submission.Assignment),
	}
	e := echo.New()
	e.HideBanner = true
	b.routes(e)
	b.server = httptest.NewServer(e)
	t.Cleanup(b.server.Close)
	return b
}

func (b *Backend) URL() string { return b.server.URL }

// Config is a test configuration pointing at the backend.
func (b *Backend) Config() *core.Config {
	conf := &core.Config{AppName: "MIC Portal", Env: "TEST", TestMode: true}
	conf.Portal.BaseURL = b.server.URL
	conf.Portal.Timeout = 5 * time.Second
	return conf
}

// Lock is held while the test changes the backend data.
func (b *Backend) Lock()   { b.mu.Lock() }
func (b *Backend) Unlock() { b.mu.Unlock() }

func (b *Backend) Received() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.Requests))
	copy(out, b.Requests)
	return out
}

// Token returns a bearer token for a user of the role, valid for an hour.
func Token(t *testing.T, role auth.Role, userID string) string {
	claims := auth.Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
		UserID: userID,
		Role:   role,
		Email:  strings.ToLower(string(role)) + "@mic.test",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("Token() failed: %v", err)
	}
	return token
}

func (b *Backend) id() string {
	b.nextID++
	return fmt.Sprintf("gen-%d", b.nextID)
}

func (b *Backend) routes(e *echo.Echo) {
	e.Use(b.record)

	e.POST("/api/login", b.login)
	e.POST("/api/chat", b.chat)
	e.GET("/api/submissions/incubation", b.pipeline)
	for _, sec := range content.Sections {
		e.GET("/api/content/"+string(sec), b.siteSection(sec))
	}

	api := e.Group("/api", b.requireToken)
	api.GET("/admin/submissions/all", b.list(func() interface{} { return b.Submissions }))
	api.POST("/admin/submissions/:id/decision", b.adminDecide)
	api.GET("/admin/submissions/:id/faculty", b.assigned)
	api.POST("/admin/submissions/:id/assign-faculty", b.assign)
	api.DELETE("/admin/submissions/:id/assign-faculty/:facultyId", b.unassign)
	api.PUT("/admin/submissions/:id/tags", b.tags)

	api.GET("/admin/work", b.list(func() interface{} { return b.Work }))
	api.PUT("/admin/work/:id", b.updateWork)
	api.DELETE("/admin/work/:id", b.deleteWork)
	api.GET("/admin/companies", b.list(func() interface{} { return b.Companies }))
	api.POST("/admin/companies", b.addCompany)
	api.DELETE("/admin/companies/:id", b.deleteCompany)

	api.GET("/admin/faculty", b.list(func() interface{} { return b.Faculty }))
	api.POST("/admin/faculty", b.createFaculty)
	api.PUT("/admin/faculty/:id", b.updateFaculty)
	api.DELETE("/admin/faculty/:id", b.deleteFaculty)

	api.GET("/faculty/reviews", b.reviews)
	api.GET("/faculty/reviews/:id", b.review)
	api.POST("/faculty/reviews/:id/decision", b.facultyDecide)
	api.POST("/faculty/feedback", b.feedback)
	api.GET("/faculty/progress", b.list(func() interface{} { return b.Progress }))
	api.GET("/faculty/incubation", b.list(func() interface{} { return b.Progress }))
	api.GET("/faculty/companies", b.list(func() interface{} { return b.Companies }))
	api.POST("/faculty/incubation/:id", b.incubation)
	api.GET("/profile/me", func(c echo.Context) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		return c.JSON(http.StatusOK, b.Profile)
	})
	api.GET("/faculty/events/invitations", b.list(func() interface{} { return b.Invitations }))
	api.POST("/faculty/events/invitations/:id/rsvp", b.rsvp)

	api.GET("/contents", b.list(func() interface{} { return b.Contents }))
	api.POST("/create-content", b.createContent)
	api.PUT("/contents/:id", b.updateContent)
	api.DELETE("/contents/:id", b.deleteContent)
}

func (b *Backend) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		var body []byte
		if req.Body != nil {
			body, _ = io.ReadAll(req.Body)
			req.Body = io.NopCloser(strings.NewReader(string(body)))
		}
		b.mu.Lock()
		b.Requests = append(b.Requests, Request{
			Method:    req.Method,
			Path:      req.URL.Path,
			Auth:      req.Header.Get("Authorization"),
			SessionID: req.Header.Get(chat.SessionHeader),
			Body:      string(body),
		})
		failWrites := b.FailWrites
		b.mu.Unlock()

		if failWrites != 0 && req.Method != http.MethodGet && req.URL.Path != "/api/login" {
			return c.JSON(failWrites, map[string]string{"error": http.StatusText(failWrites)})
		}
		return next(c)
	}
}

func (b *Backend) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
		if _, err := auth.ParseToken(token); err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		return next(c)
	}
}

func (b *Backend) list(items func() interface{}) echo.HandlerFunc {
	return func(c echo.Context) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		return c.JSON(http.StatusOK, items())
	}
}

func badRequest(c echo.Context, msg string) error {
	return c.String(http.StatusBadRequest, msg)
}

func notFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
}

func (b *Backend) login(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.Accounts[req.Email]
	if !ok || acc.Password != req.Password {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}
	return c.JSON(http.StatusOK, acc.Login)
}

func (b *Backend) chat(c echo.Context) error {
	var req chat.Request
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	sid := c.Request().Header.Get(chat.SessionHeader)
	if sid == "" {
		sid = req.SessionID
	}
	return c.JSON(http.StatusOK, chat.Reply{Response: "You said: " + req.Message, SessionID: sid})
}

func (b *Backend) pipeline(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []submission.Submission{}
	for _, s := range b.Submissions {
		if submission.ModeOf(s) == submission.ModeIncubating {
			out = append(out, s)
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (b *Backend) findSubmission(id string) *submission.Submission {
	for i := range b.Submissions {
		if b.Submissions[i].ID == id {
			return &b.Submissions[i]
		}
	}
	return nil
}

func (b *Backend) adminDecide(c echo.Context) error {
	var req submission.DecisionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.findSubmission(c.Param("id"))
	if s == nil {
		return notFound(c)
	}
	if s.Status != submission.StatusSubmitted {
		return badRequest(c, "submission already reviewed")
	}
	switch req.Decision {
	case submission.DecisionApproved:
		s.Status = submission.StatusAdminApproved
	case submission.DecisionRejected:
		s.Status = submission.StatusAdminRejected
	default:
		return badRequest(c, "invalid decision")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": string(s.Status)})
}

func (b *Backend) reviews(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []submission.Submission{}
	for _, s := range b.Submissions {
		if s.Status == submission.StatusAdminApproved {
			out = append(out, s)
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (b *Backend) review(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.findSubmission(c.Param("id"))
	if s == nil {
		return notFound(c)
	}
	return c.JSON(http.StatusOK, s)
}

func (b *Backend) facultyDecide(c echo.Context) error {
	var req submission.DecisionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.findSubmission(c.Param("id"))
	if s == nil {
		return notFound(c)
	}
	if s.Status != submission.StatusAdminApproved {
		return badRequest(c, "submission not awaiting faculty review")
	}
	s.Status = submission.Status(req.Decision)
	if s.Status == submission.StatusApproved {
		b.Progress = append(b.Progress, submission.ProgressItem{
			SubmissionID: s.ID,
			Title:        s.Title,
			Student:      s.Student,
			AcceptedAt:   time.Now().UTC(),
			Stage:        submission.StageUnderIncubation,
		})
	}
	return c.NoContent(http.StatusOK)
}

func (b *Backend) assigned(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.Assignments[c.Param("id")]
	if out == nil {
		out = []submission.Assignment{}
	}
	return c.JSON(http.StatusOK, out)
}

func (b *Backend) assign(c echo.Context) error {
	var req struct {
		FacultyID string `json:"faculty_id"`
	}
	if err := c.Bind(&req); err != nil || req.FacultyID == "" {
		return badRequest(c, "faculty_id is required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := c.Param("id")
	name := req.FacultyID
	for _, f := range b.Faculty {
		if f.ID == req.FacultyID {
			name = f.Name
		}
	}
	b.Assignments[id] = append(b.Assignments[id], submission.Assignment{
		ID:           b.id(),
		SubmissionID: id,
		FacultyID:    req.FacultyID,
		FacultyName:  name,
		AssignedAt:   time.Now().UTC(),
	})
	return c.NoContent(http.StatusCreated)
}

func (b *Backend) unassign(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := c.Param("id")
	kept := []submission.Assignment{}
	for _, a := range b.Assignments[id] {
		if a.FacultyID != c.Param("facultyId") {
			kept = append(kept, a)
		}
	}
	b.Assignments[id] = kept
	return c.NoContent(http.StatusNoContent)
}

func (b *Backend) tags(c echo.Context) error {
	var upd submission.TagsUpdate
	if err := c.Bind(&upd); err != nil {
		return badRequest(c, "invalid body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.findSubmission(c.Param("id"))
	if s == nil {
		return notFound(c)
	}
	s.Domain, s.Tags = upd.Domain, upd.Tags
	return c.NoContent(http.StatusOK)
}

func (b *Backend) updateWork(c echo.Context) error {
	var upd submission.WorkUpdate
	if err := c.Bind(&upd); err != nil {
		return badRequest(c, "invalid body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.Work {
		if b.Work[i].ID == c.Param("id") {
			w := &b.Work[i]
			w.Title, w.Description, w.Stage, w.ProgressPercent = upd.Title, upd.Description, upd.Stage, upd.ProgressPercent
			w.CompanyID, w.CompanyName = "", ""
			if upd.CompanyID != nil {
				w.CompanyID = *upd.CompanyID
				for _, co := range b.Companies {
					if co.ID == w.CompanyID {
						w.CompanyName = co.Name
					}
				}
			}
			return c.NoContent(http.StatusOK)
		}
	}
	return notFound(c)
}

func (b *Backend) deleteWork(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.Work[:0]
	for _, w := range b.Work {
		if w.ID != c.Param("id") {
			kept = append(kept, w)
		}
	}
	b.Work = kept
	return c.NoContent(http.StatusNoContent)
}

func (b *Backend) addCompany(c echo.Context) error {
	var nc submission.NewCompany
	if err := c.Bind(&nc); err != nil || nc.Name == "" {
		return badRequest(c, "name is required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	co := submission.Company{ID: b.id(), Name: nc.Name, LogoURL: nc.LogoURL}
	b.Companies = append(b.Companies, co)
	return c.JSON(http.StatusCreated, co)
}

func (b *Backend) deleteCompany(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := c.Param("id")
	kept := b.Companies[:0]
	for _, co := range b.Companies {
		if co.ID != id {
			kept = append(kept, co)
		}
	}
	b.Companies = kept
	for i := range b.Work {
		if b.Work[i].CompanyID == id {
			b.Work[i].CompanyID, b.Work[i].CompanyName, b.Work[i].CompanyLogo = "", "", ""
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"id": id})
}

func (b *Backend) createFaculty(c echo.Context) error {
	var nf submission.NewFaculty
	if err := c.Bind(&nf); err != nil {
		return badRequest(c, "invalid body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, f := range b.Faculty {
		if f.Email == nf.Email {
			return c.JSON(http.StatusConflict, map[string]string{"error": "email already in use"})
		}
	}
	f := submission.Faculty{ID: b.id(), Name: nf.Name, Email: nf.Email}
	b.Faculty = append(b.Faculty, f)
	b.Accounts[nf.Email] = Account{
		Password: nf.Password,
		Login:    auth.LoginResponse{ID: f.ID, Name: f.Name, Email: f.Email, Role: auth.RoleFaculty},
	}
	return c.JSON(http.StatusCreated, f)
}

func (b *Backend) updateFaculty(c echo.Context) error {
	var uf submission.UpdateFaculty
	if err := c.Bind(&uf); err != nil {
		return badRequest(c, "invalid body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.Faculty {
		if b.Faculty[i].ID == c.Param("id") {
			b.Faculty[i].Name, b.Faculty[i].Email = uf.Name, uf.Email
			if uf.Password != "" {
				acc := b.Accounts[uf.Email]
				acc.Password = uf.Password
				b.Accounts[uf.Email] = acc
			}
			return c.NoContent(http.StatusOK)
		}
	}
	return notFound(c)
}

func (b *Backend) deleteFaculty(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.Faculty[:0]
	for _, f := range b.Faculty {
		if f.ID != c.Param("id") {
			kept = append(kept, f)
		}
	}
	b.Faculty = kept
	return c.NoContent(http.StatusNoContent)
}

func (b *Backend) feedback(c echo.Context) error {
	var fb submission.FeedbackRequest
	if err := c.Bind(&fb); err != nil {
		return badRequest(c, "invalid body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Feedback = append(b.Feedback, fb)
	return c.NoContent(http.StatusCreated)
}

func (b *Backend) incubation(c echo.Context) error {
	var upd struct {
		Stage           submission.Stage `json:"stage"`
		ProgressPercent int              `json:"progress_percent"`
		CompanyID       *string          `json:"company_id"`
	}
	if err := c.Bind(&upd); err != nil {
		return badRequest(c, "invalid body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.Progress {
		if b.Progress[i].SubmissionID == c.Param("id") {
			b.Progress[i].Stage, b.Progress[i].ProgressPercent = upd.Stage, upd.ProgressPercent
			if s := b.findSubmission(c.Param("id")); s != nil {
				s.Stage, s.ProgressPercent = upd.Stage, upd.ProgressPercent
			}
			return c.NoContent(http.StatusOK)
		}
	}
	return notFound(c)
}

func (b *Backend) rsvp(c echo.Context) error {
	var req invitation.RSVPRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Status != invitation.StatusAccepted && req.Status != invitation.StatusDeclined {
		return badRequest(c, "invalid status")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.Invitations {
		inv := &b.Invitations[i]
		if inv.ID == c.Param("id") && inv.Status == invitation.StatusPending {
			inv.Status = req.Status
			return c.NoContent(http.StatusOK)
		}
	}
	return badRequest(c, "invalid invitation or already responded")
}

func (b *Backend) createContent(c echo.Context) error {
	var in content.Input
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	ct := contentFromInput(b.id(), in)
	b.Contents = append(b.Contents, ct)
	return c.JSON(http.StatusCreated, ct)
}

func (b *Backend) updateContent(c echo.Context) error {
	var in content.Input
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.Contents {
		if b.Contents[i].ID == c.Param("id") {
			b.Contents[i] = contentFromInput(b.Contents[i].ID, in)
			return c.NoContent(http.StatusOK)
		}
	}
	return notFound(c)
}

func (b *Backend) deleteContent(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.Contents[:0]
	for _, ct := range b.Contents {
		if ct.ID != c.Param("id") {
			kept = append(kept, ct)
		}
	}
	b.Contents = kept
	return c.NoContent(http.StatusNoContent)
}

func contentFromInput(id string, in content.Input) content.Content {
	ct := content.Content{
		ID:         id,
		Type:       in.Type,
		Title:      in.Title,
		OrderIndex: in.OrderIndex,
		IsActive:   in.IsActive,
		Data:       in.Data,
	}
	if in.Description != nil {
		ct.Description = *in.Description
	}
	if in.ImageURL != nil {
		ct.ImageURL = *in.ImageURL
	}
	return ct
}

// siteSection answers with the active blocks of the section, shaped the way the portal serves them:
// about cards and features, resources and events are projected, other sections are raw content rows.
func (b *Backend) siteSection(sec content.Section) echo.HandlerFunc {
	return func(c echo.Context) error {
		b.mu.Lock()
		defer b.mu.Unlock()

		var rows []content.Content
		for _, ct := range b.Contents {
			if ct.IsActive && ct.Type == sec.Type() {
				rows = append(rows, ct)
			}
		}
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].OrderIndex < rows[j].OrderIndex })
		if sec.Type() == content.TypeEvent {
			sort.SliceStable(rows, func(i, j int) bool { return eventKey(rows[i]) < eventKey(rows[j]) })
		}
		if n := sec.Limit(); n > 0 && len(rows) > n {
			rows = rows[:n]
		}

		out := make([]interface{}, 0, len(rows))
		for _, ct := range rows {
			switch sec.Type() {
			case content.TypeAboutCard, content.TypeAboutFeature:
				out = append(out, map[string]interface{}{
					"id": ct.ID, "title": ct.Title, "is_active": true, "order": ct.OrderIndex, "description": ct.Description,
				})
			case content.TypeResource:
				out = append(out, map[string]interface{}{
					"id": ct.ID, "title": ct.Title, "is_active": true, "order": ct.OrderIndex,
					"description": ct.Description, "file_url": ct.ImageURL, "download_count": 0,
				})
			case content.TypeEvent:
				day, _ := time.Parse("2006-01-02", ct.Data.String("event_date"))
				price := ct.Data.String("price")
				if price == "" {
					price = "Free"
				}
				out = append(out, map[string]interface{}{
					"id": ct.ID, "title": ct.Title, "is_active": false, "order": ct.OrderIndex,
					"description": ct.Description, "event_date": day, "venue": ct.Data.String("venue"),
					"price": price, "image_url": ct.ImageURL, "status": "upcoming",
					"registration_link": ct.Data.String("registration_link"),
				})
			default:
				out = append(out, ct)
			}
		}
		return c.JSON(http.StatusOK, out)
	}
}

// eventKey orders events by date, undated events last.
func eventKey(ct content.Content) string {
	day := ct.Data.String("event_date")
	if _, err := time.Parse("2006-01-02", day); err != nil {
		return "9999-12-31"
	}
	return day
}
