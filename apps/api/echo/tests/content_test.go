package tests

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/micportal/core/content"
	"github.com/trezcool/micportal/core/store"
)

type contentListing struct {
	State string         `json:"state"`
	Tab   string         `json:"tab"`
	Items []content.Item `json:"items"`
}

func Test_contentApi(t *testing.T) {
	f := setup(t)
	f.backend.Lock()
	f.backend.Contents = []content.Content{
		{ID: "r2", Type: content.TypeResource, Title: "Pitch deck template", OrderIndex: 2, IsActive: true, Data: content.Data{}},
		{ID: "r1", Type: content.TypeResource, Title: "Business model canvas", OrderIndex: 1, IsActive: true, Data: content.Data{}},
		{ID: "t1", Type: content.TypeTeamMember, Title: "Jane Doe", Data: content.Data{"role": "Director"}},
	}
	f.backend.Unlock()

	rec := f.serve(t, httpTest{method: http.MethodGet, path: "/v1/contents", token: f.admin, wantCode: http.StatusOK})
	var listing contentListing
	decode(t, rec, &listing)
	assert.Equal(t, "resources", listing.Tab)
	require.Len(t, listing.Items, 2)
	assert.Equal(t, "r1", listing.Items[0].Content.ID)
	assert.Equal(t, "Resource", listing.Items[0].TypeLabel)

	rec = f.serve(t, httpTest{method: http.MethodGet, path: "/v1/contents?tab=events", token: f.admin, wantCode: http.StatusOK})
	decode(t, rec, &listing)
	assert.Equal(t, "empty", listing.State)

	// creating an event answers with the events tab, carrying every event field
	rec = f.serve(t, httpTest{
		method:   http.MethodPost,
		path:     "/v1/contents",
		body:     []byte(`{"content_type":"event","title":" Demo day ","description":"  ","content_data":{"venue":"Hall A","icon":"x"}}`),
		token:    f.admin,
		wantCode: http.StatusCreated,
	})
	decode(t, rec, &listing)
	assert.Equal(t, "events", listing.Tab)
	require.Len(t, listing.Items, 1)
	ev := listing.Items[0].Content
	assert.Equal(t, "Demo day", ev.Title)
	assert.Empty(t, ev.Description)
	assert.Equal(t, content.Data{"event_date": "", "venue": "Hall A", "price": "", "registration_link": ""}, ev.Data)

	rec = f.serve(t, httpTest{
		method:   http.MethodPut,
		path:     "/v1/contents/t1",
		body:     []byte(`{"content_type":"team_member","title":"Jane Doe","content_data":{"role":"Founder"}}`),
		token:    f.admin,
		wantCode: http.StatusOK,
	})
	decode(t, rec, &listing)
	assert.Equal(t, "about", listing.Tab)
	require.Len(t, listing.Items, 1)
	assert.Equal(t, "Founder", listing.Items[0].Content.Data.String("role"))

	rec = f.serve(t, httpTest{method: http.MethodDelete, path: "/v1/contents/r1?tab=resources", token: f.admin, wantCode: http.StatusOK})
	decode(t, rec, &listing)
	require.Len(t, listing.Items, 1)
	assert.Equal(t, "r2", listing.Items[0].Content.ID)

	f.runTests(t, []httpTest{
		{
			name:     "unknown type",
			method:   http.MethodPost,
			path:     "/v1/contents",
			body:     []byte(`{"content_type":"banner","title":"Hello"}`),
			token:    f.admin,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"content_type":"unknown content type"}`),
		},
		{
			name:     "unknown tab",
			method:   http.MethodGet,
			path:     "/v1/contents?tab=news",
			token:    f.admin,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "unknown content tab"}),
		},
		{
			name:     "faculty is forbidden",
			method:   http.MethodGet,
			path:     "/v1/contents",
			token:    f.faculty,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
	})
}

func Test_siteApi(t *testing.T) {
	f := setup(t)
	f.backend.Lock()
	f.backend.Contents = []content.Content{
		{ID: "r1", Type: content.TypeResource, Title: "Business model canvas", OrderIndex: 1, IsActive: true, ImageURL: "https://mic.test/bmc.pdf", Data: content.Data{}},
		{ID: "r2", Type: content.TypeResource, Title: "Draft", OrderIndex: 0, Data: content.Data{}},
		{ID: "e1", Type: content.TypeEvent, Title: "Demo day", IsActive: true, Data: content.Data{"event_date": "2025-03-01", "venue": "Hall A"}},
		{ID: "e2", Type: content.TypeEvent, Title: "Meetup", IsActive: true, Data: content.Data{"event_date": "soon"}},
		{ID: "e3", Type: content.TypeEvent, Title: "Kick-off", IsActive: true, Data: content.Data{"event_date": "2025-01-15", "price": "5 USD"}},
		{ID: "t1", Type: content.TypeTeamMember, Title: "Jane Doe", IsActive: true, Data: content.Data{"role": "Director"}},
		{ID: "c1", Type: content.TypeAboutCard, Title: "Mission", Description: "Grow founders", IsActive: true, Data: content.Data{}},
	}
	f.backend.Unlock()

	// public: no token needed, inactive blocks are hidden
	rec := f.serve(t, httpTest{method: http.MethodGet, path: "/v1/site/resources", wantCode: http.StatusOK})
	var listing content.SiteListing
	decode(t, rec, &listing)
	assert.Equal(t, content.SectionResources, listing.Section)
	require.Len(t, listing.Items, 1)
	assert.Equal(t, "https://mic.test/bmc.pdf", listing.Items[0].ImageURL)

	// events are ordered by date, undated last
	rec = f.serve(t, httpTest{method: http.MethodGet, path: "/v1/site/events/upcoming", wantCode: http.StatusOK})
	listing = content.SiteListing{}
	decode(t, rec, &listing)
	require.Len(t, listing.Items, 3)
	assert.Equal(t, content.Block{ID: "e3", Title: "Kick-off", EventDate: "2025-01-15", Price: "5 USD"}, listing.Items[0])
	assert.Equal(t, content.Block{ID: "e1", Title: "Demo day", EventDate: "2025-03-01", Venue: "Hall A", Price: "Free"}, listing.Items[1])
	assert.Equal(t, "e2", listing.Items[2].ID)
	assert.Empty(t, listing.Items[2].EventDate)

	rec = f.serve(t, httpTest{method: http.MethodGet, path: "/v1/site/about", wantCode: http.StatusOK})
	var about content.About
	decode(t, rec, &about)
	require.Len(t, about.Cards, 1)
	assert.Equal(t, "Grow founders", about.Cards[0].Description)
	require.Len(t, about.Team, 1)
	assert.Equal(t, "Director", about.Team[0].Data.String("role"))
	assert.Empty(t, about.Stats)

	rec = f.serve(t, httpTest{method: http.MethodGet, path: "/v1/site/about/stats", wantCode: http.StatusOK})
	listing = content.SiteListing{}
	decode(t, rec, &listing)
	assert.Equal(t, store.StateEmpty, listing.State)

	for _, req := range f.backend.Received() {
		if strings.HasPrefix(req.Path, "/api/content/") {
			assert.Empty(t, req.Auth, req.Path)
		}
	}
}
