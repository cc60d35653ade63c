package http

import (
	"edwin/internal/project/domain/model"
	"edwin/internal/project/usecase"
	"edwin/internal/shared/database"
	"edwin/internal/shared/pagination"
	"edwin/internal/shared/response"
	"edwin/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// Usecases bundles everything the project routes call into.
type Usecases struct {
	Projects   *usecase.ProjectUsecase
	Tasks      *usecase.TaskUsecase
	Objectives *usecase.ObjectiveUsecase
	Ideas      *usecase.IdeaUsecase
	Routines   *usecase.RoutineUsecase
	SecureIDs  *usecase.SecureIDUsecase
}

// ProjectHandler serves projects and everything nested under them.
type ProjectHandler struct {
	uc Usecases
}

// NewProjectHandler creates the handler.
func NewProjectHandler(uc Usecases) *ProjectHandler {
	return &ProjectHandler{uc: uc}
}

// RegisterRoutes mounts the routes on an authenticated router.
func (h *ProjectHandler) RegisterRoutes(api fiber.Router) {
	api.Post("/workspaces/:id/projects", h.Create)
	api.Get("/workspaces/:id/projects", h.List)

	p := api.Group("/projects")
	p.Get("/:id", h.Get)
	p.Patch("/:id", h.Update)
	p.Delete("/:id", h.Delete)
	p.Post("/:id/members", h.AddMember)
	p.Delete("/:id/members/:userId", h.RemoveMember)

	p.Post("/:id/tasks", h.CreateTask)
	p.Get("/:id/tasks", h.ListTasks)
	api.Get("/tasks/:id", h.GetTask)
	api.Patch("/tasks/:id", h.UpdateTask)
	api.Delete("/tasks/:id", h.DeleteTask)

	p.Post("/:id/objectives", h.CreateObjective)
	p.Get("/:id/objectives", h.ListObjectives)
	api.Get("/objectives/:id", h.GetObjective)
	api.Patch("/objectives/:id", h.UpdateObjective)
	api.Delete("/objectives/:id", h.DeleteObjective)

	p.Post("/:id/ideas", h.CreateIdea)
	p.Get("/:id/ideas", h.ListIdeas)
	api.Get("/ideas/:id", h.GetIdea)
	api.Patch("/ideas/:id", h.UpdateIdea)
	api.Delete("/ideas/:id", h.DeleteIdea)
	api.Post("/ideas/:id/vote", h.VoteIdea)

	p.Post("/:id/routines", h.CreateRoutine)
	p.Get("/:id/routines", h.ListRoutines)
	api.Get("/routines/:id", h.GetRoutine)
	api.Patch("/routines/:id", h.UpdateRoutine)
	api.Delete("/routines/:id", h.DeleteRoutine)
	api.Post("/routines/:id/complete", h.CompleteRoutine)

	p.Post("/:id/secure-ids", h.CreateSecureID)
	p.Get("/:id/secure-ids", h.ListSecureIDs)
	api.Get("/secure-ids/:id", h.GetSecureID)
	api.Get("/secure-ids/:id/reveal", h.RevealSecureID)
	api.Patch("/secure-ids/:id", h.UpdateSecureID)
	api.Delete("/secure-ids/:id", h.DeleteSecureID)
}

// Create handles POST /workspaces/:id/projects.
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	callerID, err := utils.CallerID(c)
	if err != nil {
		return response.Error(c, err)
	}
	workspaceID, err := utils.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	var req usecase.CreateProjectRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return response.Error(c, err)
	}
	p, err := h.uc.Projects.Create(c.UserContext(), workspaceID, callerID, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, p)
}

// List handles GET /workspaces/:id/projects.
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	callerID, err := utils.CallerID(c)
	if err != nil {
		return response.Error(c, err)
	}
	workspaceID, err := utils.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	page := pagination.Parse(c)
	items, total, err := h.uc.Projects.List(c.UserContext(), workspaceID, callerID, c.Query("status"), page)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, items, pagination.NewPagination(page, total))
}

// Get handles GET /projects/:id.
func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	p, err := h.uc.Projects.Get(c.UserContext(), id, callerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, p)
}

// Update handles PATCH /projects/:id.
func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	var update model.ProjectUpdate
	if err := utils.ParseBody(c, &update); err != nil {
		return response.Error(c, err)
	}
	p, err := h.uc.Projects.Update(c.UserContext(), id, callerID, update)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, p)
}

// Delete handles DELETE /projects/:id.
func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.uc.Projects.Delete(c.UserContext(), id, callerID); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, fiber.Map{"deleted": true})
}

type memberRequest struct {
	UserID string `json:"userId"`
}

// AddMember handles POST /projects/:id/members.
func (h *ProjectHandler) AddMember(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	var req memberRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return response.Error(c, err)
	}
	targetID, err := database.ParseObjectID("userId", req.UserID)
	if err != nil {
		return response.Error(c, err)
	}
	p, err := h.uc.Projects.AddMember(c.UserContext(), id, callerID, targetID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, p)
}

// RemoveMember handles DELETE /projects/:id/members/:userId.
func (h *ProjectHandler) RemoveMember(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	targetID, err := utils.ParamID(c, "userId")
	if err != nil {
		return response.Error(c, err)
	}
	p, err := h.uc.Projects.RemoveMember(c.UserContext(), id, callerID, targetID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, p)
}
