package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/daylist/daylist/internal/models"
)

// UserRepository stores accounts
type UserRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewUserRepository creates a repository on top of db
func NewUserRepository(db *gorm.DB, log *zap.Logger) *UserRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserRepository{db: db, log: log}
}

// Create inserts a new user. Emails are compared case-insensitively.
func (r *UserRepository) Create(name, email, passwordHash string) (*models.User, error) {
	email = normalizeEmail(email)

	existing, err := r.FindByEmail(email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrEmailTaken, email)
	}

	now := time.Now()
	user := models.User{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		UpdatedAt:    now,
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := r.db.Create(&user).Error; err != nil {
		r.log.Error("failed to create user", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// Get retrieves a user by id
func (r *UserRepository) Get(id string) (*models.User, error) {
	return r.take("id = ?", id)
}

// FindByEmail retrieves a user by email
func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	return r.take("email = ?", normalizeEmail(email))
}

// UpdateName changes the display name, the only mutable user field
func (r *UserRepository) UpdateName(id, name string) (*models.User, error) {
	user, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	user.Name = strings.TrimSpace(name)
	if err := r.db.Save(user).Error; err != nil {
		r.log.Error("failed to update user", zap.String("user_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete removes a user record. Tasks owned by the user are left alone.
func (r *UserRepository) Delete(id string) error {
	res := r.db.Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		r.log.Error("failed to delete user", zap.String("user_id", id), zap.Error(res.Error))
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	return nil
}

func (r *UserRepository) take(query string, arg string) (*models.User, error) {
	var user models.User
	err := r.db.Where(query, arg).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, arg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
