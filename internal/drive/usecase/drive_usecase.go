package usecase

import (
	"context"
	"io"
	"time"
	"unicode/utf8"

	"edwin/internal/drive/domain/model"
	"edwin/internal/drive/domain/repository"
	projectusecase "edwin/internal/project/usecase"
	"edwin/internal/shared/database"
	apperrors "edwin/internal/shared/errors"
	"edwin/internal/shared/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxNameLength = 255

// ProjectAccess resolves a project for a caller.
type ProjectAccess interface {
	Access(ctx context.Context, projectID, userID primitive.ObjectID) (*projectusecase.Scope, error)
}

// Config bounds uploads and download links.
type Config struct {
	MaxUploadSize int64
	PresignTTL    time.Duration
}

// UploadRequest is a single multipart file.
type UploadRequest struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
	FolderID    string
}

// UpdateFileRequest is the body of PATCH /drive/files/:id. An empty
// folderId moves the file to the root; an absent one leaves it in place.
type UpdateFileRequest struct {
	Name     *string `json:"name"`
	FolderID *string `json:"folderId"`
}

// CreateFolderRequest is the body of POST /projects/:id/drive/folders.
type CreateFolderRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parentId"`
}

// DriveUsecase stores project files in the blob store and indexes them in
// MongoDB.
type DriveUsecase struct {
	folders repository.FolderRepository
	files   repository.FileRepository
	blobs   repository.BlobStore
	access  ProjectAccess
	cfg     Config
	log     logger.Logger
	now     func() time.Time
}

// NewDriveUsecase wires the drive usecase.
func NewDriveUsecase(
	folders repository.FolderRepository,
	files repository.FileRepository,
	blobs repository.BlobStore,
	access ProjectAccess,
	cfg Config,
	log logger.Logger,
) *DriveUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &DriveUsecase{
		folders: folders,
		files:   files,
		blobs:   blobs,
		access:  access,
		cfg:     cfg,
		log:     log.WithComponent("drive"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func validName(field, name string) (string, error) {
	name = model.CleanFileName(name)
	if name == "" {
		return "", apperrors.NewValidationError(field + " is required").WithDetail("field", field)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", apperrors.NewValidationError(field + " must be at most 255 characters").WithDetail("field", field)
	}
	return name, nil
}

// resolveFolder checks a folder id from the request belongs to projectID.
// An empty id is the root.
func (uc *DriveUsecase) resolveFolder(ctx context.Context, projectID primitive.ObjectID, field, hex string) (*primitive.ObjectID, error) {
	if hex == "" {
		return nil, nil
	}
	id, err := database.ParseObjectID(field, hex)
	if err != nil {
		return nil, err
	}
	folder, err := uc.folders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if folder.Project != projectID {
		return nil, model.ErrFolderMismatch
	}
	return &folder.ID, nil
}

// Upload puts the blob first and then records the row. If the row cannot be
// written the blob is removed again.
func (uc *DriveUsecase) Upload(ctx context.Context, projectID, userID primitive.ObjectID, req UploadRequest) (*model.File, error) {
	scope, err := uc.access.Access(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if req.Body == nil {
		return nil, model.ErrFileRequired
	}
	if uc.cfg.MaxUploadSize > 0 && req.Size > uc.cfg.MaxUploadSize {
		return nil, model.ErrFileTooLarge
	}
	name, err := validName("name", req.Name)
	if err != nil {
		return nil, err
	}
	folder, err := uc.resolveFolder(ctx, projectID, "folderId", req.FolderID)
	if err != nil {
		return nil, err
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	file := &model.File{
		Project:    projectID,
		Workspace:  scope.Project.Workspace,
		Folder:     folder,
		Name:       name,
		Size:       req.Size,
		MimeType:   contentType,
		Key:        model.BlobKey(scope.Project.Workspace, projectID, uuid.NewString(), name),
		UploadedBy: userID,
	}
	if err := uc.blobs.Put(ctx, file.Key, req.Body, req.Size, contentType); err != nil {
		return nil, apperrors.WrapError(err, "failed to store file")
	}
	if err := uc.files.Create(ctx, file); err != nil {
		if rmErr := uc.blobs.Remove(context.WithoutCancel(ctx), file.Key); rmErr != nil {
			uc.log.WithContext(ctx).WithFields(map[string]interface{}{"key": file.Key}).
				Errorf("failed to roll back blob after insert error: %v", rmErr)
		}
		return nil, err
	}
	return file, nil
}

// List returns the folders and files directly under folderID. File rows
// whose blob has disappeared are pruned first; if the blob store cannot be
// listed the rows are returned as stored.
func (uc *DriveUsecase) List(ctx context.Context, projectID, userID primitive.ObjectID, folderID string) (*model.Listing, error) {
	scope, err := uc.access.Access(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	folder, err := uc.resolveFolder(ctx, projectID, "folderId", folderID)
	if err != nil {
		return nil, err
	}
	folders, err := uc.folders.ListChildren(ctx, projectID, folder)
	if err != nil {
		return nil, err
	}
	files, err := uc.files.ListInFolder(ctx, projectID, folder)
	if err != nil {
		return nil, err
	}
	files = uc.reconcile(ctx, scope.Project.Workspace, projectID, files)
	return &model.Listing{Folders: folders, Files: files}, nil
}

func (uc *DriveUsecase) reconcile(ctx context.Context, workspaceID, projectID primitive.ObjectID, files []*model.File) []*model.File {
	if len(files) == 0 {
		return files
	}
	log := uc.log.WithContext(ctx).WithFields(map[string]interface{}{"project": projectID.Hex()})
	keys, err := uc.blobs.ListKeys(ctx, model.ProjectPrefix(workspaceID, projectID))
	if err != nil {
		log.Warnf("drive reconciliation skipped: %v", err)
		return files
	}

	kept := make([]*model.File, 0, len(files))
	var stale []primitive.ObjectID
	for _, f := range files {
		if _, ok := keys[f.Key]; ok {
			kept = append(kept, f)
			continue
		}
		stale = append(stale, f.ID)
	}
	if len(stale) == 0 {
		return files
	}
	if err := uc.files.DeleteByIDs(ctx, stale); err != nil {
		log.Warnf("failed to prune %d stale drive rows: %v", len(stale), err)
		return files
	}
	log.Infof("pruned %d drive rows with missing blobs", len(stale))
	return kept
}

func (uc *DriveUsecase) loadFile(ctx context.Context, id, userID primitive.ObjectID) (*model.File, error) {
	f, err := uc.files.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := uc.access.Access(ctx, f.Project, userID); err != nil {
		return nil, err
	}
	return f, nil
}

// Download presigns a GET for the blob.
func (uc *DriveUsecase) Download(ctx context.Context, id, userID primitive.ObjectID) (*model.Download, error) {
	f, err := uc.loadFile(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	expires := uc.now().Add(uc.cfg.PresignTTL)
	link, err := uc.blobs.PresignGet(ctx, f.Key, f.Name, uc.cfg.PresignTTL)
	if err != nil {
		return nil, apperrors.WrapError(err, "failed to create download link")
	}
	return &model.Download{URL: link, ExpiresAt: expires}, nil
}

// UpdateFile renames and/or moves a file.
func (uc *DriveUsecase) UpdateFile(ctx context.Context, id, userID primitive.ObjectID, req UpdateFileRequest) (*model.File, error) {
	f, err := uc.loadFile(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	var update model.FileUpdate
	if req.Name != nil {
		name, err := validName("name", *req.Name)
		if err != nil {
			return nil, err
		}
		update.Name = &name
	}
	if req.FolderID != nil {
		folder, err := uc.resolveFolder(ctx, f.Project, "folderId", *req.FolderID)
		if err != nil {
			return nil, err
		}
		update.Folder = folder
		update.MoveToRoot = folder == nil
	}
	return uc.files.Update(ctx, id, update)
}

// DeleteFile removes the blob and then the row.
func (uc *DriveUsecase) DeleteFile(ctx context.Context, id, userID primitive.ObjectID) error {
	f, err := uc.loadFile(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := uc.blobs.Remove(ctx, f.Key); err != nil {
		return apperrors.WrapError(err, "failed to delete file")
	}
	return uc.files.Delete(ctx, id)
}

// CreateFolder adds a folder under parentId, or at the root.
func (uc *DriveUsecase) CreateFolder(ctx context.Context, projectID, userID primitive.ObjectID, req CreateFolderRequest) (*model.Folder, error) {
	if _, err := uc.access.Access(ctx, projectID, userID); err != nil {
		return nil, err
	}
	name, err := validName("name", req.Name)
	if err != nil {
		return nil, err
	}
	parent, err := uc.resolveFolder(ctx, projectID, "parentId", req.ParentID)
	if err != nil {
		return nil, err
	}
	folder := &model.Folder{Project: projectID, Name: name, Parent: parent, CreatedBy: userID}
	if err := uc.folders.Create(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// DeleteFolder removes an empty folder.
func (uc *DriveUsecase) DeleteFolder(ctx context.Context, id, userID primitive.ObjectID) error {
	folder, err := uc.folders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := uc.access.Access(ctx, folder.Project, userID); err != nil {
		return err
	}
	files, err := uc.files.CountInFolder(ctx, id)
	if err != nil {
		return err
	}
	children, err := uc.folders.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if files > 0 || children > 0 {
		return model.ErrFolderNotEmpty
	}
	return uc.folders.Delete(ctx, id)
}

// DeleteProjectData removes every blob, file row and folder of a project.
func (uc *DriveUsecase) DeleteProjectData(ctx context.Context, workspaceID, projectID primitive.ObjectID) error {
	if err := uc.blobs.RemovePrefix(ctx, model.ProjectPrefix(workspaceID, projectID)); err != nil {
		return err
	}
	if err := uc.files.DeleteByProject(ctx, projectID); err != nil {
		return err
	}
	return uc.folders.DeleteByProject(ctx, projectID)
}
