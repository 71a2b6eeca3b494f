package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/micportal/core/submission"
	"github.com/trezcool/micportal/tests"
)

type reportResponse struct {
	State   string                   `json:"state"`
	Items   []submission.ProgressRow `json:"items"`
	Average int                      `json:"average_progress"`
}

func Test_facultyApi_incubation(t *testing.T) {
	f := setup(t)
	testutil.SeedReviewQueue(f.backend)

	// approving s2 puts it in the faculty's progress list
	f.serve(t, httpTest{
		method:   http.MethodPost,
		path:     "/v1/submissions/s2/decision",
		body:     []byte(`{"decision":"approved"}`),
		token:    f.faculty,
		wantCode: http.StatusOK,
	})

	rec := f.serve(t, httpTest{method: http.MethodGet, path: "/v1/progress", token: f.faculty, wantCode: http.StatusOK})
	var report reportResponse
	decode(t, rec, &report)
	require.Len(t, report.Items, 1)
	assert.Equal(t, "s2", report.Items[0].SubmissionID)
	assert.Equal(t, "Under Incubation", report.Items[0].StageLabel)

	rec = f.serve(t, httpTest{
		method:   http.MethodPost,
		path:     "/v1/incubation/s2",
		body:     []byte(`{"stage":"looking_for_funding","progress_percent":40}`),
		token:    f.faculty,
		wantCode: http.StatusOK,
	})
	decode(t, rec, &report)
	require.Len(t, report.Items, 1)
	assert.Equal(t, submission.StageLookingForFunding, report.Items[0].Stage)
	assert.Equal(t, 40, report.Average)

	rec = f.serve(t, httpTest{method: http.MethodGet, path: "/v1/incubation", token: f.faculty, wantCode: http.StatusOK})
	var pf submission.Portfolio
	decode(t, rec, &pf)
	require.Len(t, pf.Stages, 3)
	assert.Empty(t, pf.Stages[0].Items)
	require.Len(t, pf.Stages[1].Items, 1)
	assert.Equal(t, "s2", pf.Stages[1].Items[0].SubmissionID)

	f.runTests(t, []httpTest{
		{
			name:     "progress out of range",
			method:   http.MethodPost,
			path:     "/v1/incubation/s2",
			body:     []byte(`{"stage":"looking_for_funding","progress_percent":140}`),
			token:    f.faculty,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"progress_percent":"progress_percent must be 100 or less"}`),
		},
		{
			name:     "admins have no portfolio",
			method:   http.MethodGet,
			path:     "/v1/incubation",
			token:    f.admin,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
	})
}

func Test_facultyApi_profile(t *testing.T) {
	f := setup(t)
	profile := submission.Profile{UserID: "faculty-1", Name: "Dr Ada", Email: "ada@mic.test", Department: "CS"}
	f.backend.Lock()
	f.backend.Profile = profile
	f.backend.Unlock()

	f.runTests(t, []httpTest{{
		name:     "own profile",
		method:   http.MethodGet,
		path:     "/v1/profile",
		token:    f.faculty,
		wantCode: http.StatusOK,
		wantData: marchallObj(t, profile),
	}})
}

func Test_facultyApi_pipeline(t *testing.T) {
	f := setup(t)
	testutil.SeedReviewQueue(f.backend)

	// public: no token needed
	rec := f.serve(t, httpTest{method: http.MethodGet, path: "/v1/pipeline", wantCode: http.StatusOK})
	var p submission.Pipeline
	decode(t, rec, &p)
	assert.Equal(t, 1, p.Total)
	require.NotNil(t, p.Featured)
	assert.Equal(t, "s5", p.Featured.ID)
}
