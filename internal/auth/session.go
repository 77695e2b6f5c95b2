package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/antonlindstrom/pgstore"
	"github.com/gorilla/sessions"

	"promptforge/models"
)

const (
	sessionName     = "promptforge.sid"
	sessionLifetime = 7 * 24 * time.Hour
	cleanupInterval = 5 * time.Minute
)

// ErrNoSession is returned when the request carries no authenticated session.
var ErrNoSession = errors.New("no active session")

// SessionUser is the identity carried by an authenticated session.
type SessionUser struct {
	ID    int64
	Email string
	Name  *string
}

// SessionManager issues and validates cookie-backed sessions persisted in
// Postgres. The backing table is created on first use; expired rows are
// swept by a background cleanup goroutine until Close is called.
type SessionManager struct {
	store *pgstore.PGStore
	quit  chan<- struct{}
	done  <-chan struct{}
}

// NewSessionManager connects the session store to the database. The secret
// signs session cookies; secure controls the cookie's Secure attribute.
func NewSessionManager(databaseURL, secret string, secure bool) (*SessionManager, error) {
	store, err := pgstore.NewPGStore(databaseURL, []byte(secret))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionLifetime.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	quit, done := store.Cleanup(cleanupInterval)

	return &SessionManager{store: store, quit: quit, done: done}, nil
}

// Establish writes a fresh session for the user and sets the cookie.
func (m *SessionManager) Establish(w http.ResponseWriter, r *http.Request, user *models.User) error {
	session, err := m.store.Get(r, sessionName)
	if err != nil {
		// A stale or tampered cookie still yields a usable new session.
		if session == nil {
			return fmt.Errorf("failed to open session: %w", err)
		}
	}

	session.Values["userID"] = user.ID
	session.Values["email"] = user.Email
	if user.Name != nil {
		session.Values["name"] = *user.Name
	} else {
		delete(session.Values, "name")
	}

	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Current resolves the session on the request, or ErrNoSession.
func (m *SessionManager) Current(r *http.Request) (*SessionUser, error) {
	session, err := m.store.Get(r, sessionName)
	if err != nil || session.IsNew {
		return nil, ErrNoSession
	}

	id, ok := session.Values["userID"].(int64)
	if !ok {
		return nil, ErrNoSession
	}

	user := &SessionUser{ID: id}
	if email, ok := session.Values["email"].(string); ok {
		user.Email = email
	}
	if name, ok := session.Values["name"].(string); ok {
		user.Name = &name
	}
	return user, nil
}

// Destroy invalidates the session and expires the cookie.
func (m *SessionManager) Destroy(w http.ResponseWriter, r *http.Request) error {
	session, err := m.store.Get(r, sessionName)
	if err != nil && session == nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// Close stops the cleanup goroutine and releases the store's connection.
func (m *SessionManager) Close() {
	m.store.StopCleanup(m.quit, m.done)
	m.store.Close()
}
