package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simgebenzerr/planner-core/internal/application/services"
	"github.com/simgebenzerr/planner-core/internal/domain/entities"
	"github.com/simgebenzerr/planner-core/internal/infrastructure/config"
	"github.com/simgebenzerr/planner-core/internal/infrastructure/logger"
	"github.com/simgebenzerr/planner-core/internal/ports"
)

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}
	return e
}

// memTaskRepo is an in-memory TaskRepository for handler tests.
type memTaskRepo struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*entities.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: make(map[uuid.UUID]*entities.Task)}
}

func (r *memTaskRepo) Create(ctx context.Context, task *entities.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *memTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, entities.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (r *memTaskRepo) Update(ctx context.Context, task *entities.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return entities.ErrTaskNotFound
	}
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *memTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return entities.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *memTaskRepo) ListByDue(ctx context.Context) ([]*entities.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entities.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		copied := *task
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Due.Before(out[j].Due) })
	return out, nil
}

func (r *memTaskRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.tasks)), nil
}

// recordingCenter records scheduled requests.
type recordingCenter struct {
	mu    sync.Mutex
	added []ports.NotificationRequest
}

func (c *recordingCenter) RequestAuthorization(ctx context.Context, opts ports.AuthorizationOptions) error {
	return nil
}

func (c *recordingCenter) AddRequest(ctx context.Context, req ports.NotificationRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.added = append(c.added, req)
	return nil
}

func (c *recordingCenter) RemoveRequest(ctx context.Context, id string) error {
	return nil
}

func newTestTaskHandler() (*TaskHandler, *recordingCenter) {
	taskService := services.NewTaskService(newMemTaskRepo(), logger.NewNop())
	center := &recordingCenter{}
	notifications := services.NewNotificationService(center, config.NotificationsConfig{Alert: true}, logger.NewNop())
	return NewTaskHandler(taskService, notifications, logger.NewNop()), center
}

func postJSON(e *echo.Echo, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCreateTaskRejectsEmptyTitle(t *testing.T) {
	e := newTestEcho()
	handler, center := newTestTaskHandler()

	c, _ := postJSON(e, "/api/v1/tasks", `{"title":"","due":"2026-09-01T10:00:00Z","notify":true}`)

	err := handler.CreateTask(c)
	require.Error(t, err)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	assert.Empty(t, center.added, "rejected input must not schedule an alert")
}

func TestCreateTaskSchedulesAlertWhenRequested(t *testing.T) {
	e := newTestEcho()
	handler, center := newTestTaskHandler()

	c, rec := postJSON(e, "/api/v1/tasks", `{"title":"Water plants","due":"2026-09-01T10:30:00Z","notify":true}`)

	require.NoError(t, handler.CreateTask(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, center.added, 1)
	assert.Equal(t, "Plan Reminder", center.added[0].Content.Title)
	assert.Equal(t, "Water plants", center.added[0].Content.Subtitle)
	assert.Equal(t, 30, center.added[0].Trigger.Minute)
}

func TestCreateTaskSkipsAlertWhenNotRequested(t *testing.T) {
	e := newTestEcho()
	handler, center := newTestTaskHandler()

	c, rec := postJSON(e, "/api/v1/tasks", `{"title":"No alert","due":"2026-09-01T10:00:00Z","notify":false}`)

	require.NoError(t, handler.CreateTask(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, center.added)
}

func TestDeleteTaskLeavesAlertRegistered(t *testing.T) {
	e := newTestEcho()
	handler, center := newTestTaskHandler()

	c, rec := postJSON(e, "/api/v1/tasks", `{"title":"Doomed","due":"2026-09-01T10:00:00Z","notify":true}`)
	require.NoError(t, handler.CreateTask(c))

	var created entities.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/tasks/"+created.ID.String(), nil)
	delRec := httptest.NewRecorder()
	delCtx := e.NewContext(req, delRec)
	delCtx.SetParamNames("id")
	delCtx.SetParamValues(created.ID.String())

	require.NoError(t, handler.DeleteTask(delCtx))
	assert.Equal(t, http.StatusNoContent, delRec.Code)

	// Deleting the task does not retract its scheduled alert.
	assert.Len(t, center.added, 1)
}

func TestUpdateTaskRejectsEmptyTitle(t *testing.T) {
	e := newTestEcho()
	handler, _ := newTestTaskHandler()

	id := uuid.New()
	c, _ := postJSON(e, "/api/v1/tasks/"+id.String(), `{"title":""}`)
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	err := handler.UpdateTask(c)
	require.Error(t, err)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestGetTaskInvalidID(t *testing.T) {
	e := newTestEcho()
	handler, _ := newTestTaskHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/not-a-uuid", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := handler.GetTask(c)
	require.Error(t, err)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestThemeHandlerRoundTrip(t *testing.T) {
	e := newTestEcho()

	themeService, err := services.NewThemeService(context.Background(), memSettings{}, logger.NewNop())
	require.NoError(t, err)
	handler := NewThemeHandler(themeService, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/theme", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, handler.GetTheme(e.NewContext(req, rec)))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(entities.ThemeDark), body["theme"])
	assert.Equal(t, "dark", body["display_mode"])

	c, setRec := postJSON(e, "/api/v1/theme", `{"theme":1}`)
	require.NoError(t, handler.SetTheme(c))

	require.NoError(t, json.Unmarshal(setRec.Body.Bytes(), &body))
	assert.Equal(t, "light", body["display_mode"])
}

func TestSetThemeRejectsInvalidValue(t *testing.T) {
	e := newTestEcho()

	themeService, err := services.NewThemeService(context.Background(), memSettings{}, logger.NewNop())
	require.NoError(t, err)
	handler := NewThemeHandler(themeService, logger.NewNop())

	c, _ := postJSON(e, "/api/v1/theme", `{"theme":9}`)

	err = handler.SetTheme(c)
	require.Error(t, err)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

// memSettings is a throwaway SettingsRepository; values do not survive the
// service instance, which is all these tests need.
type memSettings map[string]int

func (m memSettings) GetInt(ctx context.Context, key string) (int, error) { return m[key], nil }
func (m memSettings) SetInt(ctx context.Context, key string, value int) error {
	m[key] = value
	return nil
}
