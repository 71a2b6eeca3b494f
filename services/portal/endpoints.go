package portal

import (
	"context"

	"github.com/sendgrid/rest"

	"github.com/trezcool/micportal/core/auth"
	"github.com/trezcool/micportal/core/chat"
	"github.com/trezcool/micportal/core/content"
	"github.com/trezcool/micportal/core/invitation"
	"github.com/trezcool/micportal/core/submission"
)

var (
	_ submission.ReviewPortal   = (*Client)(nil)
	_ submission.AdminPortal    = (*Client)(nil)
	_ submission.PipelinePortal = (*Client)(nil)
	_ invitation.Portal         = (*Client)(nil)
	_ content.Portal            = (*Client)(nil)
	_ content.SitePortal        = (*Client)(nil)
	_ chat.Portal               = (*Client)(nil)
)

func (c *Client) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	var resp auth.LoginResponse
	err := c.do(ctx, call{method: rest.Post, route: "/api/login", in: req, out: &resp})
	return resp, err
}

// Admin review

func (c *Client) AdminSubmissions(ctx context.Context) ([]submission.Submission, error) {
	var subs []submission.Submission
	err := c.get(ctx, "/api/admin/submissions/all", &subs)
	return subs, err
}

func (c *Client) AdminDecide(ctx context.Context, id string, req submission.DecisionRequest) error {
	return c.send(ctx, rest.Post, "/api/admin/submissions/{id}/decision", req, id)
}

func (c *Client) AssignedFaculty(ctx context.Context, id string) ([]submission.Assignment, error) {
	var assignments []submission.Assignment
	err := c.get(ctx, "/api/admin/submissions/{id}/faculty", &assignments, id)
	return assignments, err
}

func (c *Client) AssignFaculty(ctx context.Context, id, facultyID string) error {
	body := map[string]string{"faculty_id": facultyID}
	return c.send(ctx, rest.Post, "/api/admin/submissions/{id}/assign-faculty", body, id)
}

func (c *Client) RemoveFaculty(ctx context.Context, id, facultyID string) error {
	return c.send(ctx, rest.Delete, "/api/admin/submissions/{id}/assign-faculty/{facultyId}", nil, id, facultyID)
}

func (c *Client) UpdateTags(ctx context.Context, id string, upd submission.TagsUpdate) error {
	return c.send(ctx, rest.Put, "/api/admin/submissions/{id}/tags", upd, id)
}

// Admin pipeline

func (c *Client) Work(ctx context.Context) ([]submission.WorkItem, error) {
	var items []submission.WorkItem
	err := c.get(ctx, "/api/admin/work", &items)
	return items, err
}

func (c *Client) UpdateWork(ctx context.Context, id string, upd submission.WorkUpdate) error {
	return c.send(ctx, rest.Put, "/api/admin/work/{id}", upd, id)
}

func (c *Client) DeleteWork(ctx context.Context, id string) error {
	return c.send(ctx, rest.Delete, "/api/admin/work/{id}", nil, id)
}

func (c *Client) Companies(ctx context.Context) ([]submission.Company, error) {
	var companies []submission.Company
	err := c.get(ctx, "/api/admin/companies", &companies)
	return companies, err
}

func (c *Client) AddCompany(ctx context.Context, nc submission.NewCompany) error {
	return c.send(ctx, rest.Post, "/api/admin/companies", nc)
}

func (c *Client) DeleteCompany(ctx context.Context, id string) error {
	return c.send(ctx, rest.Delete, "/api/admin/companies/{id}", nil, id)
}

// Admin faculty accounts

func (c *Client) FacultyMembers(ctx context.Context) ([]submission.Faculty, error) {
	var members []submission.Faculty
	err := c.get(ctx, "/api/admin/faculty", &members)
	return members, err
}

func (c *Client) CreateFaculty(ctx context.Context, nf submission.NewFaculty) error {
	return c.send(ctx, rest.Post, "/api/admin/faculty", nf)
}

func (c *Client) UpdateFaculty(ctx context.Context, id string, uf submission.UpdateFaculty) error {
	return c.send(ctx, rest.Put, "/api/admin/faculty/{id}", uf, id)
}

func (c *Client) DeleteFaculty(ctx context.Context, id string) error {
	return c.send(ctx, rest.Delete, "/api/admin/faculty/{id}", nil, id)
}

// Faculty

func (c *Client) FacultyReviews(ctx context.Context) ([]submission.Submission, error) {
	var subs []submission.Submission
	err := c.get(ctx, "/api/faculty/reviews", &subs)
	return subs, err
}

func (c *Client) FacultyReview(ctx context.Context, id string) (submission.Submission, error) {
	var s submission.Submission
	err := c.get(ctx, "/api/faculty/reviews/{id}", &s, id)
	return s, err
}

func (c *Client) FacultyDecide(ctx context.Context, id string, req submission.DecisionRequest) error {
	return c.send(ctx, rest.Post, "/api/faculty/reviews/{id}/decision", req, id)
}

func (c *Client) SubmitFeedback(ctx context.Context, fb submission.FeedbackRequest) error {
	return c.send(ctx, rest.Post, "/api/faculty/feedback", fb)
}

func (c *Client) FacultyProgress(ctx context.Context) ([]submission.ProgressItem, error) {
	var items []submission.ProgressItem
	err := c.get(ctx, "/api/faculty/progress", &items)
	return items, err
}

func (c *Client) FacultyPortfolio(ctx context.Context) ([]submission.ProgressItem, error) {
	var items []submission.ProgressItem
	err := c.get(ctx, "/api/faculty/incubation", &items)
	return items, err
}

func (c *Client) FacultyCompanies(ctx context.Context) ([]submission.Company, error) {
	var companies []submission.Company
	err := c.get(ctx, "/api/faculty/companies", &companies)
	return companies, err
}

func (c *Client) UpdateIncubation(ctx context.Context, id string, upd submission.IncubationUpdate) error {
	body := struct {
		Stage           submission.Stage `json:"stage"`
		ProgressPercent int              `json:"progress_percent"`
		CompanyID       *string          `json:"company_id"`
	}{Stage: upd.Stage, ProgressPercent: upd.ProgressPercent}
	if upd.CompanyID != "" {
		body.CompanyID = &upd.CompanyID
	}
	return c.send(ctx, rest.Post, "/api/faculty/incubation/{id}", body, id)
}

func (c *Client) Profile(ctx context.Context) (submission.Profile, error) {
	var p submission.Profile
	err := c.get(ctx, "/api/profile/me", &p)
	return p, err
}

func (c *Client) Invitations(ctx context.Context) ([]invitation.Invitation, error) {
	var invs []invitation.Invitation
	err := c.get(ctx, "/api/faculty/events/invitations", &invs)
	return invs, err
}

func (c *Client) RSVP(ctx context.Context, id string, req invitation.RSVPRequest) error {
	return c.send(ctx, rest.Post, "/api/faculty/events/invitations/{id}/rsvp", req, id)
}

// Public site

func (c *Client) IncubationPipeline(ctx context.Context) ([]submission.Submission, error) {
	var subs []submission.Submission
	err := c.get(ctx, "/api/submissions/incubation", &subs)
	return subs, err
}

// SiteSection lists the active blocks of a public site section.
func (c *Client) SiteSection(ctx context.Context, sec content.Section) ([]content.Block, error) {
	var blocks []content.Block
	err := c.get(ctx, "/api/content/"+string(sec), &blocks)
	return blocks, err
}

func (c *Client) Contents(ctx context.Context) ([]content.Content, error) {
	var contents []content.Content
	err := c.get(ctx, "/api/contents", &contents)
	return contents, err
}

func (c *Client) CreateContent(ctx context.Context, in content.Input) error {
	return c.send(ctx, rest.Post, "/api/create-content", in)
}

func (c *Client) UpdateContent(ctx context.Context, id string, in content.Input) error {
	return c.send(ctx, rest.Put, "/api/contents/{id}", in, id)
}

func (c *Client) DeleteContent(ctx context.Context, id string) error {
	return c.send(ctx, rest.Delete, "/api/contents/{id}", nil, id)
}

func (c *Client) Chat(ctx context.Context, req chat.Request) (chat.Reply, error) {
	var reply chat.Reply
	err := c.do(ctx, call{
		method:  rest.Post,
		route:   "/api/chat",
		headers: map[string]string{chat.SessionHeader: req.SessionID},
		in:      req,
		out:     &reply,
	})
	return reply, err
}
