package echoapi

import (
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/facexem/backend/core/admin"
)

const (
	sessionName     = "session"
	sessionTokenKey = "admin_token"
)

// cookieSession exposes the request's cookie session to the admin gate.
type cookieSession struct {
	ctx  echo.Context
	sess *sessions.Session
}

var _ admin.Session = (*cookieSession)(nil)

// getSession returns the request's cookie session wrapped as an
// admin.Session, or nil when the session store is unavailable. A cookie that
// fails to decode still yields the fresh session gorilla hands back.
func getSession(ctx echo.Context) admin.Session {
	sess, _ := session.Get(sessionName, ctx)
	if sess == nil {
		return nil
	}
	return &cookieSession{ctx: ctx, sess: sess}
}

func (s *cookieSession) Token() string {
	token, _ := s.sess.Values[sessionTokenKey].(string)
	return token
}

func (s *cookieSession) SetToken(token string) error {
	s.sess.Values[sessionTokenKey] = token
	return s.sess.Save(s.ctx.Request(), s.ctx.Response())
}
