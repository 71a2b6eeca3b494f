package invitation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/micportal/core"
	"github.com/trezcool/micportal/core/store"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type fakePortal struct {
	mu       sync.Mutex
	invs     []Invitation
	posted   []RSVPRequest
	writeErr error
	block    chan struct{}
}

func (p *fakePortal) Invitations(context.Context) ([]Invitation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Invitation, len(p.invs))
	copy(out, p.invs)
	return out, nil
}

func (p *fakePortal) RSVP(_ context.Context, id string, req RSVPRequest) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeErr != nil {
		return p.writeErr
	}
	p.posted = append(p.posted, req)
	for i := range p.invs {
		if p.invs[i].ID == id {
			if p.invs[i].Status != StatusPending {
				return &core.APIError{Status: 400, Message: "invalid invitation or already responded"}
			}
			p.invs[i].Status = req.Status
		}
	}
	return nil
}

func newService(portal Portal) *Service {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return NewService(portal, validate, store.NewGuard(), nopLogger{})
}

func TestService_List(t *testing.T) {
	portal := &fakePortal{invs: []Invitation{
		{ID: "1", Date: "2025-04-01", Status: StatusPending},
		{ID: "2", Date: "2025-03-01", Status: StatusAccepted},
	}}
	svc := newService(portal)

	listing, err := svc.List(context.Background(), FilterUpcoming, now)
	require.NoError(t, err)
	assert.Equal(t, store.StateReady, listing.State)
	require.Len(t, listing.Items, 1)
	assert.Equal(t, "1", listing.Items[0].Invitation.ID)
	assert.True(t, listing.Items[0].View.Can(ActionAccept))
	assert.Equal(t, 2, listing.Counts.All)

	portal.invs = nil
	listing, err = svc.List(context.Background(), FilterAll, now)
	require.NoError(t, err)
	assert.Equal(t, store.StateEmpty, listing.State)
	assert.Empty(t, listing.Items)
}

func TestService_Respond(t *testing.T) {
	NowFunc = func() time.Time { return now }
	defer func() { NowFunc = time.Now }()

	portal := &fakePortal{invs: []Invitation{{ID: "1", Date: "2025-04-01", Status: StatusPending}}}
	svc := newService(portal)
	ctx := context.Background()

	item, err := svc.Respond(ctx, "1", ActionAccept)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, item.Invitation.Status)
	assert.Equal(t, "You have accepted", item.View.Label)
	assert.False(t, item.View.Can(ActionDecline))

	// already terminal: refused before reaching the portal
	_, err = svc.Respond(ctx, "1", ActionDecline)
	assert.Equal(t, ErrTerminal, errors.Cause(err))
	assert.Equal(t, []RSVPRequest{{Status: StatusAccepted}}, portal.posted)
	assert.Equal(t, StatusAccepted, svc.Invitations().Snapshot().Items[0].Status)

	_, err = svc.Respond(ctx, "404", ActionAccept)
	assert.Equal(t, core.ErrNotFound, errors.Cause(err))
}

func TestService_RespondStaleList(t *testing.T) {
	portal := &fakePortal{invs: []Invitation{{ID: "1", Date: "2025-04-01", Status: StatusPending}}}
	guard := store.NewGuard()
	first, second := newService(portal), newService(portal)
	first.guard, second.guard = guard, guard
	ctx := context.Background()

	// second still lists the invitation as pending when first accepts it
	_, err := second.Load(ctx)
	require.NoError(t, err)
	_, err = first.Respond(ctx, "1", ActionAccept)
	require.NoError(t, err)

	_, err = second.Respond(ctx, "1", ActionDecline)
	assert.Equal(t, ErrTerminal, errors.Cause(err))
	assert.Equal(t, []RSVPRequest{{Status: StatusAccepted}}, portal.posted)
	assert.Equal(t, StatusAccepted, second.Invitations().Snapshot().Items[0].Status)
}

func TestService_RespondFailedWrite(t *testing.T) {
	portal := &fakePortal{invs: []Invitation{{ID: "1", Status: StatusPending}}, writeErr: &core.APIError{Status: 500}}
	svc := newService(portal)

	_, err := svc.Respond(context.Background(), "1", ActionDecline)
	require.Error(t, err)
	assert.True(t, core.IsAPIStatus(err, 500))
	assert.Equal(t, StatusPending, svc.Invitations().Snapshot().Items[0].Status)
}

func TestService_RespondInFlight(t *testing.T) {
	portal := &fakePortal{invs: []Invitation{{ID: "1", Status: StatusPending}}, block: make(chan struct{})}
	svc := newService(portal)
	ctx := context.Background()
	_, err := svc.Load(ctx)
	require.NoError(t, err)

	done := make(chan error)
	go func() {
		_, err := svc.Respond(ctx, "1", ActionAccept)
		done <- err
	}()
	assert.Eventually(t, func() bool { return svc.guard.Busy("rsvp:1") }, time.Second, time.Millisecond)

	_, err = svc.Respond(ctx, "1", ActionDecline)
	assert.Equal(t, store.ErrInFlight, errors.Cause(err))

	close(portal.block)
	require.NoError(t, <-done)
}
