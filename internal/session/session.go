// Package session tracks which user is signed in on this device.
//
// The identity lives in a KeyStore (secure storage) and the login-state
// flag in Preferences, so a session survives process restarts until
// Logout clears both.
package session

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

const (
	userIDKey     = "currentUserId"
	emailKey      = "userEmail"
	isLoggedInKey = "isLoggedIn"
)

// ErrIncompleteSession is returned by Create when some of the identity
// material could not be persisted. The session is active regardless.
var ErrIncompleteSession = errors.New("session creation incomplete")

// ErrKeyNotFound is what a KeyStore returns from Get for a missing key
var ErrKeyNotFound = errors.New("key not found")

// Session is the identity every task operation is scoped to.
// The zero value means nobody is signed in.
type Session struct {
	UserID string
	Email  string
}

// Active reports whether a user is signed in
func (s Session) Active() bool {
	return s.UserID != ""
}

// KeyStore is durable secure key/value storage
type KeyStore interface {
	Save(key, value string) error
	// Get returns an error wrapping ErrKeyNotFound when key is absent
	Get(key string) (string, error)
	// Delete is a no-op for missing keys
	Delete(key string) error
	DeleteAll() error
}

// Preferences stores the non-secret login-state flag
type Preferences interface {
	Bool(key string) (bool, error)
	SetBool(key string, value bool) error
}

// Store owns the single active-session slot
type Store struct {
	keys  KeyStore
	prefs Preferences
	log   *zap.Logger

	mu      sync.RWMutex
	current Session
}

// NewStore creates a store with no active session. Call Restore to pick up
// a session persisted by a previous run.
func NewStore(keys KeyStore, prefs Preferences, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{keys: keys, prefs: prefs, log: log}
}

// Current returns the active session, or the zero Session
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) set(sess Session) {
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
}

// Create persists the identity and makes it the active session.
// Partial persistence failures are not rolled back: the returned session
// is active and the error wraps ErrIncompleteSession.
func (s *Store) Create(userID, email string) (Session, error) {
	if userID == "" {
		return Session{}, errors.New("user id is required")
	}

	var errs []error
	if err := s.keys.Save(userIDKey, userID); err != nil {
		errs = append(errs, fmt.Errorf("save user id: %w", err))
	}
	if err := s.keys.Save(emailKey, email); err != nil {
		errs = append(errs, fmt.Errorf("save email: %w", err))
	}
	if err := s.prefs.SetBool(isLoggedInKey, true); err != nil {
		errs = append(errs, fmt.Errorf("save login state: %w", err))
	}

	sess := Session{UserID: userID, Email: email}
	s.set(sess)

	if len(errs) > 0 {
		err := errors.Join(append([]error{ErrIncompleteSession}, errs...)...)
		s.log.Warn("session created with missing identity material",
			zap.String("user_id", userID), zap.Error(err))
		return sess, err
	}

	s.log.Debug("session created", zap.String("user_id", userID))
	return sess, nil
}

// Restore re-activates the persisted session, if any. It never fails:
// storage problems are logged and treated as "no session".
func (s *Store) Restore() (Session, bool) {
	loggedIn, err := s.prefs.Bool(isLoggedInKey)
	if err != nil {
		s.log.Warn("could not read login state", zap.Error(err))
		return Session{}, false
	}
	if !loggedIn {
		return Session{}, false
	}

	userID, err := s.keys.Get(userIDKey)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			s.log.Warn("could not read stored user id", zap.Error(err))
		}
		return Session{}, false
	}
	if userID == "" {
		return Session{}, false
	}

	// email is informational; a missing one does not block the restore
	email, err := s.keys.Get(emailKey)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		s.log.Warn("could not read stored email", zap.Error(err))
	}

	sess := Session{UserID: userID, Email: email}
	s.set(sess)
	s.log.Debug("session restored", zap.String("user_id", userID))
	return sess, true
}

// Logout clears the persisted identity and the active session.
// Calling it without a session is a successful no-op.
func (s *Store) Logout() error {
	var errs []error
	if err := s.keys.Delete(userIDKey); err != nil {
		errs = append(errs, fmt.Errorf("delete user id: %w", err))
	}
	if err := s.keys.Delete(emailKey); err != nil {
		errs = append(errs, fmt.Errorf("delete email: %w", err))
	}
	if err := s.prefs.SetBool(isLoggedInKey, false); err != nil {
		errs = append(errs, fmt.Errorf("clear login state: %w", err))
	}

	s.set(Session{})

	if err := errors.Join(errs...); err != nil {
		s.log.Error("logout left identity material behind", zap.Error(err))
		return err
	}
	return nil
}

// DeleteAccount logs out and then purges everything in the key store.
// Task records are not touched here.
func (s *Store) DeleteAccount() error {
	logoutErr := s.Logout()
	if err := s.keys.DeleteAll(); err != nil {
		s.log.Error("failed to purge key store", zap.Error(err))
		return errors.Join(logoutErr, fmt.Errorf("purge key store: %w", err))
	}
	return logoutErr
}
