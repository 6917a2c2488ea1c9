package http

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/hr-assistant/internal/domain/entity"
	"github.com/garyjia/hr-assistant/internal/domain/event"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 200
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	deps   Deps
	logger Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(deps Deps, logger Logger) *Handlers {
	return &Handlers{
		deps:   deps,
		logger: logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// UtteranceRequest carries one question or command
type UtteranceRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

// ReplyResponse carries the assistant's answer
type ReplyResponse struct {
	Reply string `json:"reply"`
}

// EmployeeResponse represents an employee in API responses
type EmployeeResponse struct {
	ID         int64        `json:"id"`
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	Title      string       `json:"title"`
	Department string       `json:"department"`
	Status     string       `json:"status"`
	JoinDate   string       `json:"join_date,omitempty"`
	Manager    *ManagerInfo `json:"manager,omitempty"`
}

// ManagerInfo identifies an employee's manager
type ManagerInfo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// Ask handles POST /api/ask, routing the text through the classifier
func (h *Handlers) Ask(c *gin.Context) {
	h.reply(c, func(text string) string {
		return h.deps.Assistant.Handle(c.Request.Context(), text)
	})
}

// Query handles POST /api/query, answering the text as a question
func (h *Handlers) Query(c *gin.Context) {
	h.reply(c, func(text string) string {
		return h.deps.Queries.Answer(c.Request.Context(), text)
	})
}

// Command handles POST /api/command, executing the text as a command
func (h *Handlers) Command(c *gin.Context) {
	h.reply(c, func(text string) string {
		return h.deps.Actions.Execute(c.Request.Context(), text)
	})
}

func (h *Handlers) reply(c *gin.Context, answer func(text string) string) {
	var req UtteranceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "text is required",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    ReplyResponse{Reply: answer(req.Text)},
	})
}

// GetEmployee handles GET /api/employees/:id
func (h *Handlers) GetEmployee(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.logger.Error("Invalid employee ID", "id", idStr, "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid employee ID",
		})
		return
	}

	ctx := c.Request.Context()
	emp, err := h.deps.Employees.FindEmployeeByID(ctx, id)
	if err != nil {
		h.logger.Error("Failed to get employee", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to load employee",
		})
		return
	}
	if emp == nil {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   "employee not found",
		})
		return
	}

	resp := toEmployeeResponse(emp)
	manager, err := h.deps.Employees.ManagerOf(ctx, emp)
	if err != nil {
		h.logger.Error("Failed to get manager", "id", id, "error", err)
	} else if manager != nil {
		resp.Manager = &ManagerInfo{ID: manager.ID, Name: manager.Name, Title: manager.Title}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    resp,
	})
}

// ExportLeaveBalances handles GET /api/leave-balances/export
func (h *Handlers) ExportLeaveBalances(c *gin.Context) {
	var buf bytes.Buffer
	n, err := h.deps.Exporter.ExportLeaveBalances(c.Request.Context(), &buf)
	if err != nil {
		h.logger.Error("Leave balance export failed", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "export failed: " + err.Error(),
		})
		return
	}

	h.logger.Info("Leave balances exported", "employees", n)
	c.Header("Content-Disposition", `attachment; filename="leave_balances.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// toEmployeeResponse converts domain entity to API response
func toEmployeeResponse(emp *entity.Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:         emp.ID,
		Name:       emp.Name,
		Email:      emp.Email,
		Title:      emp.Title,
		Department: emp.Department,
		Status:     emp.Status,
	}
	if !emp.JoinDate.IsZero() {
		resp.JoinDate = emp.JoinDate.Format(time.DateOnly)
	}
	return resp
}

// ActivityResponse lists recent events, newest first
type ActivityResponse struct {
	Events []*event.Event `json:"events"`
}

// RecentActivity handles GET /api/activity?limit=N
func (h *Handlers) RecentActivity(c *gin.Context) {
	limit, ok := h.activityLimit(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    ActivityResponse{Events: h.deps.Activity.Recent(limit)},
	})
}

// EmployeeActivity handles GET /api/employees/:id/activity?limit=N
func (h *Handlers) EmployeeActivity(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid employee ID",
		})
		return
	}
	limit, ok := h.activityLimit(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    ActivityResponse{Events: h.deps.Activity.ForEmployee(id, limit)},
	})
}

// activityLimit parses the limit query parameter and writes a 400 when it is invalid
func (h *Handlers) activityLimit(c *gin.Context) (int, bool) {
	raw := c.DefaultQuery("limit", strconv.Itoa(defaultActivityLimit))
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxActivityLimit {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "limit must be between 1 and " + strconv.Itoa(maxActivityLimit),
		})
		return 0, false
	}
	return limit, true
}
