package drive

import (
	"context"
	"fmt"
	"time"

	drivehttp "edwin/internal/drive/adapter/http"
	"edwin/internal/drive/adapter/persistence/mongodb"
	"edwin/internal/drive/domain/repository"
	"edwin/internal/drive/usecase"
	"edwin/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// DriveModule stores project files in object storage.
type DriveModule struct {
	usecase *usecase.DriveUsecase
	handler *drivehttp.DriveHandler
}

// NewDriveModule wires the module on top of an already connected blob store.
func NewDriveModule(
	ctx context.Context,
	db *mongo.Database,
	blobs repository.BlobStore,
	access usecase.ProjectAccess,
	maxUploadSize int64,
	presignTTL time.Duration,
	log logger.Logger,
) (*DriveModule, error) {
	folders, err := mongodb.NewMongoFolderRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create folder repository: %w", err)
	}
	files, err := mongodb.NewMongoFileRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create file repository: %w", err)
	}

	uc := usecase.NewDriveUsecase(folders, files, blobs, access, usecase.Config{
		MaxUploadSize: maxUploadSize,
		PresignTTL:    presignTTL,
	}, log)
	return &DriveModule{usecase: uc, handler: drivehttp.NewDriveHandler(uc)}, nil
}

// RegisterRoutes mounts the module on an authenticated router.
func (m *DriveModule) RegisterRoutes(api fiber.Router) {
	m.handler.RegisterRoutes(api)
}

// Usecase is registered as a project deletion hook.
func (m *DriveModule) Usecase() *usecase.DriveUsecase { return m.usecase }
