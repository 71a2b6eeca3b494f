package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/micportal/core"
	"github.com/trezcool/micportal/core/chat"
)

type (
	chatApi struct {
		svc *chat.Service
	}

	// noSessions keeps no chat session: the widget sends its session id with each message.
	noSessions struct{}
)

func (noSessions) ChatSessionID() string             { return "" }
func (noSessions) SetChatSessionID(id string) error { return nil }

func registerChatAPI(g *echo.Group, deps *Deps, logger core.Logger) {
	api := chatApi{svc: chat.NewService(deps.Portal, noSessions{}, deps.Validate, logger)}
	g.POST("/chat", api.send)
}

// Handlers

// send relays a chat message. When the portal cannot answer, the widget still gets a reply to display.
func (api *chatApi) send(ctx echo.Context) error {
	var data chat.Request
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to chat.Request")
	}
	sessionID := ctx.Request().Header.Get(chat.SessionHeader)
	if sessionID == "" {
		sessionID = data.SessionID
	}

	reply, err := api.svc.SendAs(ctx.Request().Context(), sessionID, data.Message)
	if err != nil {
		if _, invalid := errors.Cause(err).(validator.ValidationErrors); invalid {
			return err
		}
		reply = chat.Reply{Response: chat.UnavailableMsg, SessionID: sessionID}
	}
	ctx.Response().Header().Set(chat.SessionHeader, reply.SessionID)
	return ctx.JSON(http.StatusOK, reply)
}
