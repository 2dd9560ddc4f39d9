package repositories

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kalpovskii/todolist/internal/app/models"
)

var (
	ErrTodoNotFound = errors.New("todo not found")
	ErrTodoExists   = errors.New("todo already exists")
)

type TodoRepository interface {
	Create(ctx context.Context, todo *models.Todo) error
	List(ctx context.Context) ([]models.Todo, error)
	Get(ctx context.Context, id string) (*models.Todo, error)
	Update(ctx context.Context, todo *models.Todo) error
	Delete(ctx context.Context, id string) error
}

// MemoryTodoRepo keeps todos in insertion order in process memory.
type MemoryTodoRepo struct {
	mu    sync.RWMutex
	todos []models.Todo
	now   func() time.Time
}

func NewMemoryTodoRepo() *MemoryTodoRepo {
	return &MemoryTodoRepo{
		todos: make([]models.Todo, 0),
		now:   time.Now,
	}
}

// WithClock replaces the clock used to stamp CreatedAt.
func (r *MemoryTodoRepo) WithClock(now func() time.Time) *MemoryTodoRepo {
	r.now = now
	return r
}

func (r *MemoryTodoRepo) Create(_ context.Context, todo *models.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if todo.ID == "" {
		todo.ID = uuid.New().String()
	}
	if r.indexOf(todo.ID) >= 0 {
		return ErrTodoExists
	}
	todo.CreatedAt = models.NewTimestamp(r.now())
	r.todos = append(r.todos, *todo)
	return nil
}

func (r *MemoryTodoRepo) List(_ context.Context) ([]models.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	todos := make([]models.Todo, len(r.todos))
	copy(todos, r.todos)
	return todos, nil
}

func (r *MemoryTodoRepo) Get(_ context.Context, id string) (*models.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrTodoNotFound
	}
	todo := r.todos[i]
	return &todo, nil
}

// Update replaces the stored record with the same ID, keeping its position
// and its creation time.
func (r *MemoryTodoRepo) Update(_ context.Context, todo *models.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(todo.ID)
	if i < 0 {
		return ErrTodoNotFound
	}
	todo.CreatedAt = r.todos[i].CreatedAt
	r.todos[i] = *todo
	return nil
}

func (r *MemoryTodoRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrTodoNotFound
	}
	r.todos = append(r.todos[:i], r.todos[i+1:]...)
	return nil
}

func (r *MemoryTodoRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.todos)
}

func (r *MemoryTodoRepo) indexOf(id string) int {
	for i := range r.todos {
		if r.todos[i].ID == id {
			return i
		}
	}
	return -1
}
