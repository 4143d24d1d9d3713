// Package auth implements sign-up, sign-in and account removal on top of
// the user repository and the session store.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/daylist/daylist/internal/db"
	"github.com/daylist/daylist/internal/models"
	"github.com/daylist/daylist/internal/session"
	"github.com/daylist/daylist/internal/validate"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrNotSignedIn        = errors.New("not signed in")
)

// Service ties accounts to the session store
type Service struct {
	users *db.UserRepository
	tasks *db.TaskRepository
	store *session.Store
	cost  int
	log   *zap.Logger
}

// NewService creates the account service. cost is the bcrypt work factor.
func NewService(users *db.UserRepository, tasks *db.TaskRepository, store *session.Store, cost int, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{users: users, tasks: tasks, store: store, cost: cost, log: log}
}

// SignUpRequest is the sign-up form
type SignUpRequest struct {
	Username string
	Email    string
	Password string
	Confirm  string
}

// SignUp validates the form, creates the account and signs it in.
// An ErrIncompleteSession error comes back with a usable user and session.
func (s *Service) SignUp(req SignUpRequest) (*models.User, session.Session, error) {
	if err := validate.Username(req.Username); err != nil {
		return nil, session.Session{}, err
	}
	if err := validate.Email(req.Email); err != nil {
		return nil, session.Session{}, err
	}
	if err := validate.Password(req.Password); err != nil {
		return nil, session.Session{}, err
	}
	if req.Password != req.Confirm {
		return nil, session.Session{}, ErrPasswordMismatch
	}

	hash, err := HashPassword(req.Password, s.cost)
	if err != nil {
		return nil, session.Session{}, err
	}

	user, err := s.users.Create(strings.TrimSpace(req.Username), strings.TrimSpace(req.Email), hash)
	if err != nil {
		return nil, session.Session{}, err
	}
	s.log.Info("account created", zap.String("user_id", user.ID))

	sess, err := s.store.Create(user.ID, user.Email)
	return user, sess, err
}

// SignIn checks credentials and starts a session
func (s *Service) SignIn(email, password string) (*models.User, session.Session, error) {
	if err := validate.Email(email); err != nil {
		return nil, session.Session{}, err
	}
	if password == "" {
		return nil, session.Session{}, validate.ErrPasswordEmpty
	}

	user, err := s.users.FindByEmail(email)
	if errors.Is(err, db.ErrUserNotFound) {
		return nil, session.Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, session.Session{}, err
	}
	if !CheckPassword(password, user.PasswordHash) {
		s.log.Info("rejected sign-in", zap.String("user_id", user.ID))
		return nil, session.Session{}, ErrInvalidCredentials
	}

	sess, err := s.store.Create(user.ID, user.Email)
	return user, sess, err
}

// SignOut ends the active session
func (s *Service) SignOut() error {
	return s.store.Logout()
}

// CurrentUser returns the account behind sess
func (s *Service) CurrentUser(sess session.Session) (*models.User, error) {
	if !sess.Active() {
		return nil, ErrNotSignedIn
	}
	return s.users.Get(sess.UserID)
}

// Rename changes the display name of the signed-in account
func (s *Service) Rename(sess session.Session, name string) (*models.User, error) {
	if !sess.Active() {
		return nil, ErrNotSignedIn
	}
	if err := validate.Username(name); err != nil {
		return nil, err
	}
	return s.users.UpdateName(sess.UserID, name)
}

// DeleteAccount removes the signed-in account and its stored identity.
// Tasks are kept unless purgeTasks is set.
func (s *Service) DeleteAccount(sess session.Session, purgeTasks bool) error {
	if !sess.Active() {
		return ErrNotSignedIn
	}

	if purgeTasks {
		n, err := s.tasks.DeleteAll(sess)
		if err != nil {
			return fmt.Errorf("failed to purge tasks: %w", err)
		}
		s.log.Info("purged tasks", zap.String("user_id", sess.UserID), zap.Int64("count", n))
	}

	if err := s.users.Delete(sess.UserID); err != nil && !errors.Is(err, db.ErrUserNotFound) {
		return err
	}
	return s.store.DeleteAccount()
}

// HashPassword turns a plaintext password into a bcrypt hash
func HashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword verifies a plaintext password against a bcrypt hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
