// Package chat sends the messages of the site's chat widget, carrying the conversation's session id.
package chat

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/micportal/core"
)

const (
	SessionHeader  = "X-Session-ID"
	FallbackReply  = "Sorry, I could not process your request."
	UnavailableMsg = "I'm having trouble connecting right now. Please try again in a moment."
)

type (
	Request struct {
		Message   string `json:"message" validate:"required,notblank"`
		SessionID string `json:"session_id"`
	}

	Reply struct {
		Response  string `json:"response"`
		SessionID string `json:"session_id"`
	}
)

// Portal posts a chat message; the session id travels both in the body and in the X-Session-ID header.
type Portal interface {
	Chat(ctx context.Context, req Request) (Reply, error)
}

// SessionStore persists the session id between runs.
type SessionStore interface {
	ChatSessionID() string
	SetChatSessionID(id string) error
}

type Service struct {
	portal   Portal
	sessions SessionStore
	validate *validator.Validate
	logger   core.Logger
	mu       sync.Mutex
}

func NewService(portal Portal, sessions SessionStore, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{portal: portal, sessions: sessions, validate: validate, logger: logger}
}

// Session returns the persisted session id, starting a new session when there is none.
func (svc *Service) Session() (string, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if id := svc.sessions.ChatSessionID(); id != "" {
		return id, nil
	}
	id := uuid.NewString()
	return id, errors.Wrap(svc.sessions.SetChatSessionID(id), "saving chat session")
}

// Send posts message within the persisted session and keeps the session id the portal answers with.
func (svc *Service) Send(ctx context.Context, message string) (Reply, error) {
	sessionID, err := svc.Session()
	if err != nil {
		return Reply{}, err
	}
	reply, err := svc.SendAs(ctx, sessionID, message)
	if err != nil {
		return reply, err
	}
	if reply.SessionID != sessionID {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		if err = svc.sessions.SetChatSessionID(reply.SessionID); err != nil {
			return reply, errors.Wrap(err, "saving chat session")
		}
	}
	return reply, nil
}

// SendAs posts message within the given session; a blank session id starts a new one.
func (svc *Service) SendAs(ctx context.Context, sessionID, message string) (Reply, error) {
	req := Request{Message: core.CleanString(message), SessionID: core.CleanString(sessionID)}
	if err := svc.validate.Struct(req); err != nil {
		return Reply{}, err
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	reply, err := svc.portal.Chat(ctx, req)
	if err != nil {
		svc.logger.Error("sending chat message", err, map[string]interface{}{"session_id": req.SessionID})
		return Reply{}, errors.Wrap(err, "sending chat message")
	}
	if reply.SessionID == "" {
		reply.SessionID = req.SessionID
	}
	if reply.Response == "" {
		reply.Response = FallbackReply
	}
	return reply, nil
}
