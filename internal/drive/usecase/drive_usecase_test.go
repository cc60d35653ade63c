package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"edwin/internal/drive/domain/model"
	"edwin/internal/drive/usecase"
	projectmodel "edwin/internal/project/domain/model"
	apperrors "edwin/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DriveUsecaseTestSuite struct {
	suite.Suite
	ctx     context.Context
	folders *memFolders
	files   *memFiles
	blobs   *memBlobs
	project *projectmodel.Project
	user    primitive.ObjectID
	uc      *usecase.DriveUsecase
}

func (s *DriveUsecaseTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.folders = newMemFolders()
	s.files = newMemFiles()
	s.blobs = newMemBlobs()
	s.user = primitive.NewObjectID()
	s.project = &projectmodel.Project{
		ID:        primitive.NewObjectID(),
		Workspace: primitive.NewObjectID(),
		Members:   []primitive.ObjectID{s.user},
	}
	s.uc = usecase.NewDriveUsecase(s.folders, s.files, s.blobs, &projectGate{project: s.project},
		usecase.Config{MaxUploadSize: 1 << 10, PresignTTL: 15 * time.Minute}, nil)
}

func TestDriveUsecaseTestSuite(t *testing.T) {
	suite.Run(t, new(DriveUsecaseTestSuite))
}

func (s *DriveUsecaseTestSuite) upload(name, folderID string) *model.File {
	f, err := s.uc.Upload(s.ctx, s.project.ID, s.user, usecase.UploadRequest{
		Name:     name,
		Size:     5,
		Body:     strings.NewReader("hello"),
		FolderID: folderID,
	})
	s.Require().NoError(err)
	return f
}

func (s *DriveUsecaseTestSuite) TestUpload_StoresBlobUnderProjectPrefix() {
	f := s.upload("../../report.pdf", "")

	s.Equal("report.pdf", f.Name)
	s.Equal("application/octet-stream", f.MimeType)
	s.True(strings.HasPrefix(f.Key, model.ProjectPrefix(s.project.Workspace, s.project.ID)))
	s.True(strings.HasSuffix(f.Key, "-report.pdf"))
	s.True(s.blobs.has(f.Key))
	s.Equal(s.project.Workspace, f.Workspace)
}

func (s *DriveUsecaseTestSuite) TestUpload_TooLarge() {
	_, err := s.uc.Upload(s.ctx, s.project.ID, s.user, usecase.UploadRequest{
		Name: "big.bin", Size: 2 << 10, Body: strings.NewReader("x"),
	})
	s.ErrorIs(err, model.ErrFileTooLarge)
	s.Empty(s.blobs.objects)
}

func (s *DriveUsecaseTestSuite) TestUpload_RequiresBody() {
	_, err := s.uc.Upload(s.ctx, s.project.ID, s.user, usecase.UploadRequest{Name: "a.txt"})
	s.ErrorIs(err, model.ErrFileRequired)
}

func (s *DriveUsecaseTestSuite) TestUpload_RollsBackBlobWhenInsertFails() {
	s.files.createErr = errors.New("insert failed")
	_, err := s.uc.Upload(s.ctx, s.project.ID, s.user, usecase.UploadRequest{
		Name: "a.txt", Size: 5, Body: strings.NewReader("hello"),
	})
	s.Error(err)
	s.Empty(s.blobs.objects)
}

func (s *DriveUsecaseTestSuite) TestUpload_FolderFromOtherProject() {
	other := &model.Folder{Project: primitive.NewObjectID(), Name: "elsewhere"}
	s.Require().NoError(s.folders.Create(s.ctx, other))

	_, err := s.uc.Upload(s.ctx, s.project.ID, s.user, usecase.UploadRequest{
		Name: "a.txt", Size: 5, Body: strings.NewReader("hello"), FolderID: other.ID.Hex(),
	})
	s.ErrorIs(err, model.ErrFolderMismatch)
}

func (s *DriveUsecaseTestSuite) TestUpload_NonMemberDenied() {
	_, err := s.uc.Upload(s.ctx, s.project.ID, primitive.NewObjectID(), usecase.UploadRequest{
		Name: "a.txt", Size: 5, Body: strings.NewReader("hello"),
	})
	s.ErrorIs(err, projectmodel.ErrProjectAccess)
}

func (s *DriveUsecaseTestSuite) TestList_PrunesRowsWithMissingBlobs() {
	kept := s.upload("kept.txt", "")
	gone := s.upload("gone.txt", "")
	s.Require().NoError(s.blobs.Remove(s.ctx, gone.Key))

	listing, err := s.uc.List(s.ctx, s.project.ID, s.user, "")
	s.Require().NoError(err)
	s.Require().Len(listing.Files, 1)
	s.Equal(kept.ID, listing.Files[0].ID)

	_, err = s.files.GetByID(s.ctx, gone.ID)
	s.ErrorIs(err, model.ErrFileNotFound)
}

func (s *DriveUsecaseTestSuite) TestList_KeepsRowsWhenStorageUnavailable() {
	s.upload("a.txt", "")
	s.blobs.listErr = errBlobsDown

	listing, err := s.uc.List(s.ctx, s.project.ID, s.user, "")
	s.Require().NoError(err)
	s.Len(listing.Files, 1)
}

func (s *DriveUsecaseTestSuite) TestList_ScopedToFolder() {
	folder, err := s.uc.CreateFolder(s.ctx, s.project.ID, s.user, usecase.CreateFolderRequest{Name: "Docs"})
	s.Require().NoError(err)
	s.upload("root.txt", "")
	s.upload("inside.txt", folder.ID.Hex())

	root, err := s.uc.List(s.ctx, s.project.ID, s.user, "")
	s.Require().NoError(err)
	s.Len(root.Folders, 1)
	s.Require().Len(root.Files, 1)
	s.Equal("root.txt", root.Files[0].Name)

	inside, err := s.uc.List(s.ctx, s.project.ID, s.user, folder.ID.Hex())
	s.Require().NoError(err)
	s.Empty(inside.Folders)
	s.Require().Len(inside.Files, 1)
	s.Equal("inside.txt", inside.Files[0].Name)
}

func (s *DriveUsecaseTestSuite) TestDownload_ReturnsExpiringLink() {
	f := s.upload("a.txt", "")
	before := time.Now()

	link, err := s.uc.Download(s.ctx, f.ID, s.user)
	s.Require().NoError(err)
	s.Contains(link.URL, f.Key)
	s.WithinDuration(before.Add(15*time.Minute), link.ExpiresAt, 5*time.Second)
}

func (s *DriveUsecaseTestSuite) TestUpdateFile_RenameAndMove() {
	folder, err := s.uc.CreateFolder(s.ctx, s.project.ID, s.user, usecase.CreateFolderRequest{Name: "Docs"})
	s.Require().NoError(err)
	f := s.upload("a.txt", "")

	name := "b.txt"
	target := folder.ID.Hex()
	updated, err := s.uc.UpdateFile(s.ctx, f.ID, s.user, usecase.UpdateFileRequest{Name: &name, FolderID: &target})
	s.Require().NoError(err)
	s.Equal("b.txt", updated.Name)
	s.Require().NotNil(updated.Folder)
	s.Equal(folder.ID, *updated.Folder)

	root := ""
	updated, err = s.uc.UpdateFile(s.ctx, f.ID, s.user, usecase.UpdateFileRequest{FolderID: &root})
	s.Require().NoError(err)
	s.Nil(updated.Folder)
}

func (s *DriveUsecaseTestSuite) TestUpdateFile_EmptyName() {
	f := s.upload("a.txt", "")
	blank := "  "
	_, err := s.uc.UpdateFile(s.ctx, f.ID, s.user, usecase.UpdateFileRequest{Name: &blank})
	s.True(apperrors.IsValidation(err))
}

func (s *DriveUsecaseTestSuite) TestDeleteFile_RemovesBlobAndRow() {
	f := s.upload("a.txt", "")

	s.Require().NoError(s.uc.DeleteFile(s.ctx, f.ID, s.user))
	s.False(s.blobs.has(f.Key))
	_, err := s.files.GetByID(s.ctx, f.ID)
	s.ErrorIs(err, model.ErrFileNotFound)
}

func (s *DriveUsecaseTestSuite) TestDeleteFolder_RejectsNonEmpty() {
	folder, err := s.uc.CreateFolder(s.ctx, s.project.ID, s.user, usecase.CreateFolderRequest{Name: "Docs"})
	s.Require().NoError(err)
	child, err := s.uc.CreateFolder(s.ctx, s.project.ID, s.user, usecase.CreateFolderRequest{Name: "Sub", ParentID: folder.ID.Hex()})
	s.Require().NoError(err)

	s.ErrorIs(s.uc.DeleteFolder(s.ctx, folder.ID, s.user), model.ErrFolderNotEmpty)

	s.Require().NoError(s.uc.DeleteFolder(s.ctx, child.ID, s.user))
	f := s.upload("a.txt", folder.ID.Hex())
	s.ErrorIs(s.uc.DeleteFolder(s.ctx, folder.ID, s.user), model.ErrFolderNotEmpty)

	s.Require().NoError(s.uc.DeleteFile(s.ctx, f.ID, s.user))
	s.NoError(s.uc.DeleteFolder(s.ctx, folder.ID, s.user))
}

func (s *DriveUsecaseTestSuite) TestDeleteProjectData_ClearsEverything() {
	_, err := s.uc.CreateFolder(s.ctx, s.project.ID, s.user, usecase.CreateFolderRequest{Name: "Docs"})
	s.Require().NoError(err)
	s.upload("a.txt", "")
	s.Require().NoError(s.blobs.Put(s.ctx, "other/prefix/keep", strings.NewReader("x"), 1, ""))

	s.Require().NoError(s.uc.DeleteProjectData(s.ctx, s.project.Workspace, s.project.ID))

	s.Empty(s.files.rows)
	s.Empty(s.folders.rows)
	s.True(s.blobs.has("other/prefix/keep"))
	s.Len(s.blobs.objects, 1)
}

func TestCleanFileName(t *testing.T) {
	cases := map[string]string{
		"report.pdf":          "report.pdf",
		"../../etc/passwd":    "passwd",
		`C:\Users\me\pic.png`: "pic.png",
		"bad\x00name.txt":     "badname.txt",
		"   ":                 "",
	}
	for in, want := range cases {
		require.Equal(t, want, model.CleanFileName(in), in)
	}
	assert.Equal(t, "", model.CleanFileName("/"))
}
