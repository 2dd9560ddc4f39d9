package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/kalpovskii/todolist/internal/app/models"
	"github.com/redis/go-redis/v9"
)

type TodoCache interface {
	GetTodo(ctx context.Context, id string) (*models.Todo, error)
	SetTodo(ctx context.Context, todo *models.Todo, ttl time.Duration) error

	GetTodoList(ctx context.Context) ([]models.Todo, error)
	SetTodoList(ctx context.Context, todos []models.Todo, ttl time.Duration) error

	DeleteTodo(ctx context.Context, id string) error
	DeleteTodoList(ctx context.Context) error
}

// RedisTodoCache stores every todo under its own key. The list is cached
// as an index of ids in insertion order; reading it resolves each id
// through the record keys, so dropping a single record also invalidates
// any cached list containing it.
type RedisTodoCache struct {
	rdb *redis.Client
}

func NewRedisTodoCache(rdb *redis.Client) *RedisTodoCache {
	return &RedisTodoCache{rdb: rdb}
}

func todoKey(id string) string {
	return "todo:" + id
}

const todoIndexKey = "todos:index"

func (r *RedisTodoCache) GetTodo(ctx context.Context, id string) (*models.Todo, error) {
	val, err := r.rdb.Get(ctx, todoKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var todo models.Todo
	if err := json.Unmarshal(val, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *RedisTodoCache) SetTodo(ctx context.Context, todo *models.Todo, ttl time.Duration) error {
	data, err := json.Marshal(todo)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, todoKey(todo.ID), data, ttl).Err()
}

func (r *RedisTodoCache) DeleteTodo(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, todoKey(id)).Err()
}

func (r *RedisTodoCache) DeleteTodoList(ctx context.Context) error {
	return r.rdb.Del(ctx, todoIndexKey).Err()
}

// GetTodoList returns nil, nil on a miss, including when any indexed
// record has expired or been dropped since the index was written.
func (r *RedisTodoCache) GetTodoList(ctx context.Context) ([]models.Todo, error) {
	raw, err := r.rdb.Get(ctx, todoIndexKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, err
	}
	todos := make([]models.Todo, 0, len(ids))
	if len(ids) == 0 {
		return todos, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = todoKey(id)
	}
	vals, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			return nil, nil
		}
		var todo models.Todo
		if err := json.Unmarshal([]byte(s), &todo); err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, nil
}

// SetTodoList writes every record and the id index in one transaction.
func (r *RedisTodoCache) SetTodoList(ctx context.Context, todos []models.Todo, ttl time.Duration) error {
	ids := make([]string, len(todos))
	records := make([][]byte, len(todos))
	for i := range todos {
		data, err := json.Marshal(&todos[i])
		if err != nil {
			return err
		}
		ids[i] = todos[i].ID
		records[i] = data
	}
	index, err := json.Marshal(ids)
	if err != nil {
		return err
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			pipe.Set(ctx, todoKey(id), records[i], ttl)
		}
		pipe.Set(ctx, todoIndexKey, index, ttl)
		return nil
	})
	return err
}

// NopTodoCache is used when no Redis address is configured. Every lookup
// is a miss.
type NopTodoCache struct{}

func (NopTodoCache) GetTodo(context.Context, string) (*models.Todo, error) { return nil, nil }

func (NopTodoCache) SetTodo(context.Context, *models.Todo, time.Duration) error { return nil }

func (NopTodoCache) GetTodoList(context.Context) ([]models.Todo, error) { return nil, nil }

func (NopTodoCache) SetTodoList(context.Context, []models.Todo, time.Duration) error { return nil }

func (NopTodoCache) DeleteTodo(context.Context, string) error { return nil }

func (NopTodoCache) DeleteTodoList(context.Context) error { return nil }
