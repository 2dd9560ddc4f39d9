package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/kalpovskii/todolist/internal/app/models"
	"github.com/kalpovskii/todolist/internal/app/services"
	"github.com/sirupsen/logrus"
)

const (
	msgNotFound       = "To-Do not found"
	msgRequired       = "Title and description are required"
	msgDeleted        = "To-Do deleted successfully"
	msgInvalidBody    = "Invalid request body"
	msgInternalServer = "Internal server error"
)

// TodoService is the behaviour the handlers need from the service layer.
type TodoService interface {
	List(ctx context.Context, filter models.TodoFilter) ([]models.Todo, error)
	Get(ctx context.Context, id string) (*models.Todo, error)
	Create(ctx context.Context, title, description string) (*models.Todo, error)
	Update(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error)
	Delete(ctx context.Context, id string) error
}

// Response is the envelope of every todo endpoint.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type CreateTodoRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
}

type TodoHandler struct {
	service TodoService
	log     logrus.FieldLogger
}

func NewTodoHandler(service TodoService, log logrus.FieldLogger) *TodoHandler {
	return &TodoHandler{service: service, log: log}
}

// Index lists the auxiliary paths of the API.
func (h *TodoHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"paths": []gin.H{
			{"swagger-ui": docsPath},
		},
	})
}

// List godoc
// @Summary List todos
// @Description Returns every todo in insertion order, optionally filtered by completion status
// @Tags todos
// @Produce json
// @Param isDone query bool false "only todos with this completion status"
// @Success 200 {object} Response{data=[]models.Todo}
// @Router /todos [get]
func (h *TodoHandler) List(c *gin.Context) {
	var filter models.TodoFilter
	if raw, ok := c.GetQuery("isDone"); ok {
		if done, err := strconv.ParseBool(raw); err == nil {
			filter.Completed = &done
		} else {
			h.log.WithField("isDone", raw).Debug("ignoring unrecognised isDone filter")
		}
	}

	todos, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: todos})
}

// Get godoc
// @Summary Get a todo
// @Tags todos
// @Produce json
// @Param id path string true "todo id"
// @Success 200 {object} Response{data=models.Todo}
// @Failure 404 {object} Response
// @Router /todos/{id} [get]
func (h *TodoHandler) Get(c *gin.Context) {
	todo, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: todo})
}

// Create godoc
// @Summary Create a todo
// @Tags todos
// @Accept json
// @Produce json
// @Param todo body CreateTodoRequest true "new todo"
// @Success 201 {object} Response{data=models.Todo}
// @Failure 400 {object} Response
// @Router /todos [post]
func (h *TodoHandler) Create(c *gin.Context) {
	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.WithError(err).Debug("create todo: bad request")
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: msgRequired})
		return
	}

	todo, err := h.service.Create(c.Request.Context(), req.Title, req.Description)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: todo})
}

// Update godoc
// @Summary Update a todo
// @Description Empty title or description keep the stored value; completed applies whenever present
// @Tags todos
// @Accept json
// @Produce json
// @Param id path string true "todo id"
// @Param todo body models.TodoPatch true "fields to change"
// @Success 200 {object} Response{data=models.Todo}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /todos/{id} [put]
func (h *TodoHandler) Update(c *gin.Context) {
	var patch models.TodoPatch
	if err := c.ShouldBindJSON(&patch); err != nil && !errors.Is(err, io.EOF) {
		h.log.WithError(err).Debug("update todo: bad request")
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: msgInvalidBody})
		return
	}

	todo, err := h.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: todo})
}

// Delete godoc
// @Summary Delete a todo
// @Tags todos
// @Produce json
// @Param id path string true "todo id"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /todos/{id} [delete]
func (h *TodoHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Message: msgDeleted})
}

func (h *TodoHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Message: msgNotFound})
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: msgRequired})
	default:
		_ = c.Error(err)
		h.log.WithError(err).Error("todo request failed")
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		c.JSON(http.StatusInternalServerError, Response{Success: false, Message: msgInternalServer})
	}
}
