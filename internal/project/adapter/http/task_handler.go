package http

import (
	"edwin/internal/project/domain/model"
	"edwin/internal/project/usecase"
	"edwin/internal/shared/pagination"
	"edwin/internal/shared/response"
	"edwin/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// CreateTask handles POST /projects/:id/tasks.
func (h *ProjectHandler) CreateTask(c *fiber.Ctx) error {
	callerID, projectID, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	var req usecase.CreateTaskRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return response.Error(c, err)
	}
	task, err := h.uc.Tasks.Create(c.UserContext(), projectID, callerID, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, task)
}

// ListTasks handles GET /projects/:id/tasks.
func (h *ProjectHandler) ListTasks(c *fiber.Ctx) error {
	callerID, projectID, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	page := pagination.Parse(c)
	q := usecase.TaskQuery{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Assignee: c.Query("assignee"),
	}
	items, total, err := h.uc.Tasks.List(c.UserContext(), projectID, callerID, q, page)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, items, pagination.NewPagination(page, total))
}

// GetTask handles GET /tasks/:id.
func (h *ProjectHandler) GetTask(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	task, err := h.uc.Tasks.Get(c.UserContext(), id, callerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, task)
}

// UpdateTask handles PATCH /tasks/:id.
func (h *ProjectHandler) UpdateTask(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	var update model.TaskUpdate
	if err := utils.ParseBody(c, &update); err != nil {
		return response.Error(c, err)
	}
	task, err := h.uc.Tasks.Update(c.UserContext(), id, callerID, update)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, task)
}

// DeleteTask handles DELETE /tasks/:id.
func (h *ProjectHandler) DeleteTask(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.uc.Tasks.Delete(c.UserContext(), id, callerID); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, fiber.Map{"deleted": true})
}
