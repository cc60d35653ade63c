package http

import (
	"edwin/internal/drive/domain/model"
	"edwin/internal/drive/usecase"
	"edwin/internal/shared/response"
	"edwin/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DriveHandler serves project files and folders.
type DriveHandler struct {
	uc *usecase.DriveUsecase
}

func NewDriveHandler(uc *usecase.DriveUsecase) *DriveHandler {
	return &DriveHandler{uc: uc}
}

// RegisterRoutes mounts the routes on an authenticated router.
func (h *DriveHandler) RegisterRoutes(api fiber.Router) {
	api.Get("/projects/:id/drive", h.List)
	api.Post("/projects/:id/drive/files", h.Upload)
	api.Post("/projects/:id/drive/folders", h.CreateFolder)

	d := api.Group("/drive")
	d.Get("/files/:id/download", h.Download)
	d.Patch("/files/:id", h.UpdateFile)
	d.Delete("/files/:id", h.DeleteFile)
	d.Delete("/folders/:id", h.DeleteFolder)
}

func callerAndID(c *fiber.Ctx) (primitive.ObjectID, primitive.ObjectID, error) {
	callerID, err := utils.CallerID(c)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	return callerID, id, nil
}

// List handles GET /projects/:id/drive?folderId=.
func (h *DriveHandler) List(c *fiber.Ctx) error {
	callerID, projectID, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	listing, err := h.uc.List(c.UserContext(), projectID, callerID, c.Query("folderId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, listing)
}

// Upload handles POST /projects/:id/drive/files as multipart with a "file"
// part and an optional "folderId" field.
func (h *DriveHandler) Upload(c *fiber.Ctx) error {
	callerID, projectID, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, model.ErrFileRequired)
	}
	body, err := fh.Open()
	if err != nil {
		return response.Error(c, model.ErrFileRequired)
	}
	defer body.Close()

	file, err := h.uc.Upload(c.UserContext(), projectID, callerID, usecase.UploadRequest{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Body:        body,
		FolderID:    c.FormValue("folderId"),
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, file)
}

// Download handles GET /drive/files/:id/download.
func (h *DriveHandler) Download(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	link, err := h.uc.Download(c.UserContext(), id, callerID)
	if err != nil {
		return response.Error(c, err)
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return response.OK(c, link)
}

// UpdateFile handles PATCH /drive/files/:id.
func (h *DriveHandler) UpdateFile(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	var req usecase.UpdateFileRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return response.Error(c, err)
	}
	file, err := h.uc.UpdateFile(c.UserContext(), id, callerID, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, file)
}

// DeleteFile handles DELETE /drive/files/:id.
func (h *DriveHandler) DeleteFile(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.uc.DeleteFile(c.UserContext(), id, callerID); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, fiber.Map{"deleted": true})
}

// CreateFolder handles POST /projects/:id/drive/folders.
func (h *DriveHandler) CreateFolder(c *fiber.Ctx) error {
	callerID, projectID, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	var req usecase.CreateFolderRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return response.Error(c, err)
	}
	folder, err := h.uc.CreateFolder(c.UserContext(), projectID, callerID, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, folder)
}

// DeleteFolder handles DELETE /drive/folders/:id.
func (h *DriveHandler) DeleteFolder(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.uc.DeleteFolder(c.UserContext(), id, callerID); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, fiber.Map{"deleted": true})
}
