package model

import (
	"fmt"
	"path"
	"strings"
	"time"

	apperrors "edwin/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Folder groups files inside a project's drive. A nil Parent is the root.
type Folder struct {
	ID        primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Project   primitive.ObjectID  `json:"project" bson:"project"`
	Name      string              `json:"name" bson:"name"`
	Parent    *primitive.ObjectID `json:"parent" bson:"parent"`
	CreatedBy primitive.ObjectID  `json:"createdBy" bson:"createdBy"`
	CreatedAt time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// File is a blob stored under Key in the object store.
type File struct {
	ID         primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Project    primitive.ObjectID  `json:"project" bson:"project"`
	Workspace  primitive.ObjectID  `json:"workspace" bson:"workspace"`
	Folder     *primitive.ObjectID `json:"folder" bson:"folder"`
	Name       string              `json:"name" bson:"name"`
	Size       int64               `json:"size" bson:"size"`
	MimeType   string              `json:"mimeType" bson:"mimeType"`
	Key        string              `json:"key" bson:"key"`
	UploadedBy primitive.ObjectID  `json:"uploadedBy" bson:"uploadedBy"`
	CreatedAt  time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// Listing is the response of a folder listing.
type Listing struct {
	Folders []*Folder `json:"folders"`
	Files   []*File   `json:"files"`
}

// Download is a time-limited link to a file.
type Download struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// FileUpdate carries a rename and/or a move. MoveToRoot moves the file out
// of any folder.
type FileUpdate struct {
	Name       *string
	Folder     *primitive.ObjectID
	MoveToRoot bool
}

// ProjectPrefix is the key prefix of every blob in a project.
func ProjectPrefix(workspaceID, projectID primitive.ObjectID) string {
	return fmt.Sprintf("%s/%s/", workspaceID.Hex(), projectID.Hex())
}

// BlobKey builds <workspace>/<project>/<unique>-<name>.
func BlobKey(workspaceID, projectID primitive.ObjectID, unique, name string) string {
	return ProjectPrefix(workspaceID, projectID) + unique + "-" + name
}

// CleanFileName strips directory components and control characters.
func CleanFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

var (
	ErrFolderNotFound = apperrors.NewNotFoundError("folder")
	ErrFileNotFound   = apperrors.NewNotFoundError("file")
	ErrFolderNotEmpty = apperrors.NewConflictError("folder is not empty")
	ErrFileRequired   = apperrors.NewValidationError("a file is required").WithDetail("field", "file")
	ErrFileTooLarge   = apperrors.NewValidationError("file exceeds the maximum upload size").WithDetail("field", "file")
	ErrFolderMismatch = apperrors.NewValidationError("folder belongs to a different project").WithDetail("field", "folderId")
)
