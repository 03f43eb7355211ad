package auth

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "nexus-session"
	userIDKey   = "user_id"
	usernameKey = "username"
)

// Notice is a one-shot message surfaced to the user on the next rendered
// page.
type Notice struct {
	Level string
	Text  string
}

func init() {
	gob.Register(Notice{})
}

// SessionManager binds request identity to a signed session cookie.
type SessionManager struct {
	store *sessions.CookieStore
}

// NewSessionManager builds a cookie-backed session manager signed with the
// given secret.
func NewSessionManager(secret string, maxAge int) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store}
}

// Establish binds the user to the session cookie.
func (m *SessionManager) Establish(w http.ResponseWriter, r *http.Request, userID int, username string) error {
	session, _ := m.store.Get(r, sessionName)
	session.Values[userIDKey] = userID
	session.Values[usernameKey] = username
	return session.Save(r, w)
}

// Clear tears the session down.
func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := m.store.Get(r, sessionName)
	delete(session.Values, userIDKey)
	delete(session.Values, usernameKey)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// CurrentUser resolves the identity attached to the request, if any.
func (m *SessionManager) CurrentUser(r *http.Request) (int, string, bool) {
	session, err := m.store.Get(r, sessionName)
	if err != nil {
		return 0, "", false
	}
	userID, ok := session.Values[userIDKey].(int)
	if !ok || userID == 0 {
		return 0, "", false
	}
	username, _ := session.Values[usernameKey].(string)
	return userID, username, true
}

// AddFlash queues a notice for the next rendered page.
func (m *SessionManager) AddFlash(w http.ResponseWriter, r *http.Request, level, text string) {
	session, _ := m.store.Get(r, sessionName)
	session.AddFlash(Notice{Level: level, Text: text})
	_ = session.Save(r, w)
}

// Flashes drains queued notices.
func (m *SessionManager) Flashes(w http.ResponseWriter, r *http.Request) []Notice {
	session, _ := m.store.Get(r, sessionName)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = session.Save(r, w)

	notices := make([]Notice, 0, len(raw))
	for _, f := range raw {
		if n, ok := f.(Notice); ok {
			notices = append(notices, n)
		}
	}
	return notices
}
