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
	"github.com/daylist/daylist/internal/parser"
	"github.com/daylist/daylist/internal/session"
)

// TaskOptions configures a TaskRepository
type TaskOptions struct {
	// AllowOrphans lets Create store tasks with no owner when nobody is
	// signed in. When false such calls fail with ErrNoSession.
	AllowOrphans bool
	// Now is the clock used for creation, update and completion stamps
	Now func() time.Time
}

// TaskRepository is CRUD over tasks, scoped to the session passed to each call
type TaskRepository struct {
	db           *gorm.DB
	log          *zap.Logger
	allowOrphans bool
	now          func() time.Time
}

// NewTaskRepository creates a repository on top of db
func NewTaskRepository(db *gorm.DB, log *zap.Logger, opts TaskOptions) *TaskRepository {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &TaskRepository{
		db:           db,
		log:          log,
		allowOrphans: opts.AllowOrphans,
		now:          opts.Now,
	}
}

// NewTask holds the data needed to create a task
type NewTask struct {
	Title        string
	Description  *string
	Due          *time.Time
	SubtaskCount int
	ListName     *string
	TagColor     *string
}

// TaskUpdate is a partial update: nil fields keep their stored value.
// An empty string clears an optional text field.
type TaskUpdate struct {
	Title        *string
	Description  *string
	Due          *time.Time
	ClearDue     bool
	SubtaskCount *int
	ListName     *string
	TagColor     *string
	Completed    *bool
}

// Create stores a new task owned by sess. The title is stored as given;
// callers validate it.
func (r *TaskRepository) Create(sess session.Session, req NewTask) (*models.Task, error) {
	if !sess.Active() && !r.allowOrphans {
		return nil, ErrNoSession
	}

	now := r.now()
	if err := r.checkDue(req.Due, now); err != nil {
		return nil, err
	}
	if req.SubtaskCount < 0 {
		return nil, ErrInvalidSubtaskCount
	}
	tagColor, err := normalizeColor(req.TagColor)
	if err != nil {
		return nil, err
	}

	task := models.Task{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		UpdatedAt:    now,
		UserID:       sess.UserID,
		Title:        req.Title,
		Description:  optional(req.Description),
		Due:          req.Due,
		SubtaskCount: req.SubtaskCount,
		ListName:     optional(req.ListName),
		TagColor:     tagColor,
	}

	if !sess.Active() {
		r.log.Warn("creating task without an active session", zap.String("task_id", task.ID))
	}

	if err := r.db.Create(&task).Error; err != nil {
		return nil, r.storageErr("create task", err)
	}

	r.log.Debug("task created", zap.String("task_id", task.ID), zap.String("user_id", task.UserID))
	return &task, nil
}

// List returns the tasks owned by sess, newest first.
// Without an active session the result is empty.
func (r *TaskRepository) List(sess session.Session) ([]models.Task, error) {
	tasks := []models.Task{}
	if !sess.Active() {
		return tasks, nil
	}

	err := r.db.Where("user_id = ?", sess.UserID).
		Order("created_at DESC").
		Order("rowid DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, r.storageErr("list tasks", err)
	}
	return tasks, nil
}

// ListNames summarises the list labels used by sess's tasks
func (r *TaskRepository) ListNames(sess session.Session) ([]models.ListSummary, error) {
	lists := []models.ListSummary{}
	if !sess.Active() {
		return lists, nil
	}

	err := r.db.Model(&models.Task{}).
		Select("list_name AS name, COUNT(*) AS total, SUM(CASE WHEN completed THEN 0 ELSE 1 END) AS open").
		Where("user_id = ? AND list_name IS NOT NULL", sess.UserID).
		Group("list_name").
		Order("list_name").
		Scan(&lists).Error
	if err != nil {
		return nil, r.storageErr("summarise lists", err)
	}
	return lists, nil
}

// Get retrieves one of sess's tasks by id
func (r *TaskRepository) Get(sess session.Session, id string) (*models.Task, error) {
	return r.find(r.db, sess, id)
}

// Resolve finds one of sess's tasks by full id or unique id prefix
func (r *TaskRepository) Resolve(sess session.Session, ref string) (*models.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.ContainsAny(ref, "%_") {
		return nil, fmt.Errorf("%w: %q", ErrTaskNotFound, ref)
	}

	task, err := r.find(r.db, sess, ref)
	if !errors.Is(err, ErrTaskNotFound) {
		return task, err
	}

	var matches []models.Task
	err = r.db.Where("user_id = ? AND id LIKE ?", sess.UserID, ref+"%").
		Limit(2).
		Find(&matches).Error
	if err != nil {
		return nil, r.storageErr("resolve task", err)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrTaskNotFound, ref)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousID, ref)
	}
}

// Update applies the supplied fields to one of sess's tasks. Nothing
// changes, in storage or in the returned value, unless the commit succeeds.
func (r *TaskRepository) Update(sess session.Session, id string, upd TaskUpdate) (*models.Task, error) {
	var updated models.Task

	now := r.now()

	err := r.db.Transaction(func(tx *gorm.DB) error {
		task, err := r.find(tx, sess, id)
		if err != nil {
			return err
		}

		next := *task
		if err := r.apply(&next, upd, now); err != nil {
			return err
		}
		next.UpdatedAt = now

		// gorm stamps UpdatedAt on Save from its own clock
		stamped := tx.Session(&gorm.Session{NowFunc: func() time.Time { return now }})
		if err := stamped.Save(&next).Error; err != nil {
			return r.storageErr("update task", err)
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Debug("task updated", zap.String("task_id", updated.ID))
	return &updated, nil
}

// SetCompleted marks a task done or not done
func (r *TaskRepository) SetCompleted(sess session.Session, id string, done bool) (*models.Task, error) {
	return r.Update(sess, id, TaskUpdate{Completed: &done})
}

// ToggleCompleted flips the completion flag
func (r *TaskRepository) ToggleCompleted(sess session.Session, id string) (*models.Task, error) {
	task, err := r.Get(sess, id)
	if err != nil {
		return nil, err
	}
	return r.SetCompleted(sess, id, !task.Completed)
}

// Delete permanently removes one of sess's tasks
func (r *TaskRepository) Delete(sess session.Session, id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		task, err := r.find(tx, sess, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.Task{}, "id = ?", task.ID).Error; err != nil {
			return r.storageErr("delete task", err)
		}
		r.log.Debug("task deleted", zap.String("task_id", task.ID))
		return nil
	})
}

// DeleteAll removes every task List(sess) would return, in one
// transaction: either all of them go or none do.
func (r *TaskRepository) DeleteAll(sess session.Session) (int64, error) {
	if !sess.Active() {
		return 0, nil
	}

	var deleted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ?", sess.UserID).Delete(&models.Task{})
		if res.Error != nil {
			return r.storageErr("delete all tasks", res.Error)
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.log.Debug("tasks deleted", zap.String("user_id", sess.UserID), zap.Int64("count", deleted))
	return deleted, nil
}

// find loads a task and checks that sess owns it. Tasks created without a
// session are only reachable by listing, never by id.
func (r *TaskRepository) find(tx *gorm.DB, sess session.Session, id string) (*models.Task, error) {
	if !sess.Active() {
		return nil, ErrNoSession
	}

	var task models.Task
	err := tx.Where("id = ?", id).Take(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, r.storageErr("get task", err)
	}

	if task.UserID != sess.UserID {
		r.log.Warn("rejected access to another user's task",
			zap.String("task_id", task.ID), zap.String("user_id", sess.UserID))
		return nil, fmt.Errorf("%w: %q", ErrForbidden, id)
	}
	return &task, nil
}

// apply copies the supplied fields of upd onto task
func (r *TaskRepository) apply(task *models.Task, upd TaskUpdate, now time.Time) error {
	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = optional(upd.Description)
	}
	if upd.ClearDue {
		task.Due = nil
	} else if upd.Due != nil {
		if err := r.checkDue(upd.Due, now); err != nil {
			return err
		}
		due := *upd.Due
		task.Due = &due
	}
	if upd.SubtaskCount != nil {
		if *upd.SubtaskCount < 0 {
			return ErrInvalidSubtaskCount
		}
		task.SubtaskCount = *upd.SubtaskCount
	}
	if upd.ListName != nil {
		task.ListName = optional(upd.ListName)
	}
	if upd.TagColor != nil {
		color, err := normalizeColor(upd.TagColor)
		if err != nil {
			return err
		}
		task.TagColor = color
	}
	if upd.Completed != nil && *upd.Completed != task.Completed {
		task.Completed = *upd.Completed
		if task.Completed {
			task.CompletedAt = &now
		} else {
			task.CompletedAt = nil
		}
	}
	return nil
}

// checkDue rejects due dates before the start of today
func (r *TaskRepository) checkDue(due *time.Time, now time.Time) error {
	if due == nil {
		return nil
	}
	if due.Before(parser.StartOfDay(now)) {
		return fmt.Errorf("%w: %s", ErrPastDueDate, due.Format("02/01/2006"))
	}
	return nil
}

func (r *TaskRepository) storageErr(op string, err error) error {
	r.log.Error("storage failure", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("failed to %s: %w", op, err)
}

// optional turns blank strings into nil
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func normalizeColor(s *string) (*string, error) {
	c := optional(s)
	if c == nil {
		return nil, nil
	}
	if !parser.IsHexColor(*c) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTagColor, *c)
	}
	upper := strings.ToUpper(*c)
	return &upper, nil
}
