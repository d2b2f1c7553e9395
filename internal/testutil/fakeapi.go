package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/idilsaglam/taskmgr/internal/model"
)

// RecordedRequest is one request seen by FakeAPI.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   string
}

type cannedResponse struct {
	status int
	body   string
}

// FakeAPI is a gin-backed stand-in for the /api/v1 server.
// Projects are listed in a {"data": [...]} envelope, tasks as a bare array.
type FakeAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	projects []model.Project
	tasks    []model.Task
	requests []RecordedRequest
	canned   map[string]cannedResponse

	// Token, when non-empty, is the only Authorization value accepted.
	Token string
}

// NewFakeAPI starts a fake server that is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &FakeAPI{canned: make(map[string]cannedResponse)}
	router := gin.New()
	router.Use(f.record, f.cannedOrAuth)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/projects", f.listProjects)
		v1.POST("/projects", f.createProject)
		v1.GET("/tasks", f.listTasks)
		v1.POST("/tasks", f.createTask)
		v1.PUT("/tasks/:id", f.updateTask)
		v1.DELETE("/tasks/:id", f.deleteTask)
	}

	f.Server = httptest.NewServer(router)
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the server root, without /api/v1.
func (f *FakeAPI) URL() string { return f.Server.URL }

// AddProject seeds a project.
func (f *FakeAPI) AddProject(p model.Project) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects = append(f.projects, p)
}

// AddTask seeds a task.
func (f *FakeAPI) AddTask(t model.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, t)
}

// Respond makes every request matching method and full path (e.g.
// "/api/v1/tasks") answer with status and a raw body.
func (f *FakeAPI) Respond(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canned[method+" "+path] = cannedResponse{status: status, body: body}
}

// Requests returns every request received so far.
func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// LastRequest returns the most recent request.
func (f *FakeAPI) LastRequest() RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return RecordedRequest{}
	}
	return f.requests[len(f.requests)-1]
}

func (f *FakeAPI) record(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}
	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Header: c.Request.Header.Clone(),
		Body:   string(body),
	})
	f.mu.Unlock()
	c.Next()
}

func (f *FakeAPI) cannedOrAuth(c *gin.Context) {
	f.mu.Lock()
	cr, ok := f.canned[c.Request.Method+" "+c.Request.URL.Path]
	token := f.Token
	f.mu.Unlock()

	if ok {
		c.Data(cr.status, "application/json", []byte(cr.body))
		c.Abort()
		return
	}
	if token != "" && c.GetHeader("Authorization") != token {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		c.Abort()
		return
	}
	c.Next()
}

func (f *FakeAPI) listProjects(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"data": f.projects})
}

func (f *FakeAPI) createProject(c *gin.Context) {
	var in model.NewProject
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	p := model.Project{ID: uuid.NewString(), Name: in.Name, Description: in.Description}
	f.mu.Lock()
	f.projects = append(f.projects, p)
	f.mu.Unlock()
	c.JSON(http.StatusCreated, p)
}

func (f *FakeAPI) listTasks(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tasks := f.tasks
	if tasks == nil {
		tasks = []model.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

func (f *FakeAPI) createTask(c *gin.Context) {
	var in model.NewTask
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	status := in.Status
	if status == "" {
		status = model.StatusPending
	}
	t := model.Task{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Priority:    in.Priority,
		Status:      status,
		ProjectID:   in.ProjectID,
	}
	f.mu.Lock()
	f.tasks = append(f.tasks, t)
	f.mu.Unlock()
	c.JSON(http.StatusCreated, t)
}

func (f *FakeAPI) updateTask(c *gin.Context) {
	var in struct {
		Status model.Status `json:"status"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	id := c.Param("id")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Status = in.Status
			c.JSON(http.StatusOK, f.tasks[i])
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "task not found"})
}

func (f *FakeAPI) deleteTask(c *gin.Context) {
	id := c.Param("id")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "task not found"})
}
