package chat

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/micportal/core"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type memSessions struct{ id string }

func (m *memSessions) ChatSessionID() string { return m.id }
func (m *memSessions) SetChatSessionID(id string) error {
	m.id = id
	return nil
}

type portalFunc func(ctx context.Context, req Request) (Reply, error)

func (f portalFunc) Chat(ctx context.Context, req Request) (Reply, error) { return f(ctx, req) }

func newService(portal Portal, sessions SessionStore) *Service {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	return NewService(portal, sessions, validate, nopLogger{})
}

func TestService_Send(t *testing.T) {
	var got []Request
	portal := portalFunc(func(_ context.Context, req Request) (Reply, error) {
		got = append(got, req)
		return Reply{Response: "Hello!"}, nil
	})
	sessions := &memSessions{}
	svc := newService(portal, sessions)

	reply, err := svc.Send(context.Background(), "  hi  ")
	require.NoError(t, err)
	assert.Equal(t, "Hello!", reply.Response)
	_, err = uuid.Parse(sessions.id)
	require.NoError(t, err, "a v4 session id is generated and kept")
	assert.Equal(t, sessions.id, reply.SessionID)

	_, err = svc.Send(context.Background(), "again")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "hi", got[0].Message)
	assert.Equal(t, got[0].SessionID, got[1].SessionID)
}

func TestService_SendKeepsServerSession(t *testing.T) {
	portal := portalFunc(func(context.Context, Request) (Reply, error) {
		return Reply{SessionID: "server-session"}, nil
	})
	sessions := &memSessions{id: "local"}
	svc := newService(portal, sessions)

	reply, err := svc.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, reply.Response)
	assert.Equal(t, "server-session", sessions.id)
}

func TestService_SendErrors(t *testing.T) {
	boom := &core.APIError{Status: 503}
	svc := newService(portalFunc(func(context.Context, Request) (Reply, error) {
		return Reply{}, boom
	}), &memSessions{id: "s"})

	_, err := svc.Send(context.Background(), "hi")
	assert.Equal(t, boom, errors.Cause(err))

	_, err = svc.Send(context.Background(), "   ")
	var vErrs validator.ValidationErrors
	assert.ErrorAs(t, err, &vErrs)
}
