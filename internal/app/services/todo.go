package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kalpovskii/todolist/internal/app/models"
	"github.com/kalpovskii/todolist/internal/app/repositories"
	"github.com/sirupsen/logrus"
)

const (
	todoTTL     = 60 * time.Second
	todoListTTL = 15 * time.Second
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// EventPublisher receives a notification after every successful mutation.
type EventPublisher interface {
	Publish(ctx context.Context, event models.TodoEvent)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, models.TodoEvent) {}

type TodoService struct {
	// mu serializes writers against cache fills so a reader never caches a
	// record older than the last committed write.
	mu     sync.RWMutex
	repo   repositories.TodoRepository
	cache  repositories.TodoCache
	events EventPublisher
	log    logrus.FieldLogger
	now    func() time.Time
}

// NewTodoService wires the service. A nil cache, publisher or logger is
// replaced by a no-op.
func NewTodoService(repo repositories.TodoRepository, cache repositories.TodoCache, events EventPublisher, log logrus.FieldLogger) *TodoService {
	if cache == nil {
		cache = repositories.NopTodoCache{}
	}
	if events == nil {
		events = nopPublisher{}
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &TodoService{
		repo:   repo,
		cache:  cache,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

func (s *TodoService) List(ctx context.Context, filter models.TodoFilter) ([]models.Todo, error) {
	todos, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	if filter.Completed == nil {
		return todos, nil
	}

	matched := make([]models.Todo, 0, len(todos))
	for _, todo := range todos {
		if filter.Match(todo) {
			matched = append(matched, todo)
		}
	}
	return matched, nil
}

func (s *TodoService) all(ctx context.Context) ([]models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if todos, err := s.cache.GetTodoList(ctx); err == nil && todos != nil {
		return todos, nil
	} else if err != nil {
		s.log.WithError(err).Warn("todo list cache read failed")
	}

	todos, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	if err := s.cache.SetTodoList(ctx, todos, todoListTTL); err != nil {
		s.log.WithError(err).Warn("todo list cache write failed")
	}
	return todos, nil
}

func (s *TodoService) Get(ctx context.Context, id string) (*models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if todo, err := s.cache.GetTodo(ctx, id); err == nil && todo != nil {
		return todo, nil
	} else if err != nil {
		s.log.WithError(err).WithField("id", id).Warn("todo cache read failed")
	}

	todo, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}

	if err := s.cache.SetTodo(ctx, todo, todoTTL); err != nil {
		s.log.WithError(err).WithField("id", id).Warn("todo cache write failed")
	}
	return todo, nil
}

func (s *TodoService) Create(ctx context.Context, title, description string) (*models.Todo, error) {
	if title == "" || description == "" {
		return nil, ErrInvalidInput
	}

	todo := &models.Todo{
		Title:       title,
		Description: description,
		Completed:   false,
	}

	s.mu.Lock()
	err := s.repo.Create(ctx, todo)
	if err == nil {
		s.invalidate(ctx, "")
	}
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}

	s.log.WithField("id", todo.ID).Info("todo created")
	s.publish(ctx, models.EventCreated, todo)
	return todo, nil
}

// Update merges patch into the stored record. Title and description are
// replaced only by non-empty values; completed is replaced whenever it is
// present, so an explicit false applies.
func (s *TodoService) Update(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error) {
	s.mu.Lock()
	todo, err := s.repo.Get(ctx, id)
	if err != nil {
		s.mu.Unlock()
		return nil, notFound(err, id)
	}

	if patch.Title != nil && *patch.Title != "" {
		todo.Title = *patch.Title
	}
	if patch.Description != nil && *patch.Description != "" {
		todo.Description = *patch.Description
	}
	if patch.Completed != nil {
		todo.Completed = *patch.Completed
	}

	err = s.repo.Update(ctx, todo)
	if err == nil {
		s.invalidate(ctx, id)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, notFound(err, id)
	}

	s.log.WithField("id", id).Info("todo updated")
	s.publish(ctx, models.EventUpdated, todo)
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	err := s.repo.Delete(ctx, id)
	if err == nil {
		s.invalidate(ctx, id)
	}
	s.mu.Unlock()
	if err != nil {
		return notFound(err, id)
	}

	s.log.WithField("id", id).Info("todo deleted")
	s.publish(ctx, models.EventDeleted, &models.Todo{ID: id})
	return nil
}

// invalidate drops the list entry and, when id is set, the record entry.
// Callers hold s.mu.
func (s *TodoService) invalidate(ctx context.Context, id string) {
	if id != "" {
		if err := s.cache.DeleteTodo(ctx, id); err != nil {
			s.log.WithError(err).WithField("id", id).Warn("todo cache invalidation failed")
		}
	}
	if err := s.cache.DeleteTodoList(ctx); err != nil {
		s.log.WithError(err).Warn("todo list cache invalidation failed")
	}
}

func (s *TodoService) publish(ctx context.Context, action string, todo *models.Todo) {
	s.events.Publish(ctx, models.TodoEvent{
		Action: action,
		TodoID: todo.ID,
		Title:  todo.Title,
		At:     s.now().UTC(),
	})
}

func notFound(err error, id string) error {
	if errors.Is(err, repositories.ErrTodoNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("todo %s: %w", id, err)
}
