package usecase_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"edwin/internal/drive/domain/model"
	projectmodel "edwin/internal/project/domain/model"
	projectusecase "edwin/internal/project/usecase"
	wsmodel "edwin/internal/workspace/domain/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sameParent(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type memFolders struct {
	mu   sync.Mutex
	rows map[primitive.ObjectID]*model.Folder
}

func newMemFolders() *memFolders {
	return &memFolders{rows: map[primitive.ObjectID]*model.Folder{}}
}

func (m *memFolders) Create(_ context.Context, f *model.Folder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.ID = primitive.NewObjectID()
	f.CreatedAt = time.Now()
	f.UpdatedAt = f.CreatedAt
	m.rows[f.ID] = f
	return nil
}

func (m *memFolders) GetByID(_ context.Context, id primitive.ObjectID) (*model.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.rows[id]
	if !ok {
		return nil, model.ErrFolderNotFound
	}
	return f, nil
}

func (m *memFolders) ListChildren(_ context.Context, projectID primitive.ObjectID, parent *primitive.ObjectID) ([]*model.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Folder{}
	for _, f := range m.rows {
		if f.Project == projectID && sameParent(f.Parent, parent) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memFolders) CountChildren(_ context.Context, id primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, f := range m.rows {
		if f.Parent != nil && *f.Parent == id {
			n++
		}
	}
	return n, nil
}

func (m *memFolders) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return model.ErrFolderNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memFolders) DeleteByProject(_ context.Context, projectID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, f := range m.rows {
		if f.Project == projectID {
			delete(m.rows, id)
		}
	}
	return nil
}

type memFiles struct {
	mu        sync.Mutex
	rows      map[primitive.ObjectID]*model.File
	createErr error
}

func newMemFiles() *memFiles {
	return &memFiles{rows: map[primitive.ObjectID]*model.File{}}
}

func (m *memFiles) Create(_ context.Context, f *model.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	f.ID = primitive.NewObjectID()
	m.rows[f.ID] = f
	return nil
}

func (m *memFiles) GetByID(_ context.Context, id primitive.ObjectID) (*model.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.rows[id]
	if !ok {
		return nil, model.ErrFileNotFound
	}
	return f, nil
}

func (m *memFiles) ListInFolder(_ context.Context, projectID primitive.ObjectID, folder *primitive.ObjectID) ([]*model.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.File{}
	for _, f := range m.rows {
		if f.Project == projectID && sameParent(f.Folder, folder) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memFiles) CountInFolder(_ context.Context, folderID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, f := range m.rows {
		if f.Folder != nil && *f.Folder == folderID {
			n++
		}
	}
	return n, nil
}

func (m *memFiles) Update(_ context.Context, id primitive.ObjectID, update model.FileUpdate) (*model.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.rows[id]
	if !ok {
		return nil, model.ErrFileNotFound
	}
	if update.Name != nil {
		f.Name = *update.Name
	}
	if update.Folder != nil {
		f.Folder = update.Folder
	}
	if update.MoveToRoot {
		f.Folder = nil
	}
	return f, nil
}

func (m *memFiles) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return model.ErrFileNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memFiles) DeleteByIDs(_ context.Context, ids []primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.rows, id)
	}
	return nil
}

func (m *memFiles) DeleteByProject(_ context.Context, projectID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, f := range m.rows {
		if f.Project == projectID {
			delete(m.rows, id)
		}
	}
	return nil
}

var errBlobsDown = errors.New("storage unavailable")

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	listErr error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: map[string][]byte{}}
}

func (m *memBlobs) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memBlobs) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memBlobs) RemovePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			delete(m.objects, k)
		}
	}
	return nil
}

func (m *memBlobs) ListKeys(_ context.Context, prefix string) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := map[string]struct{}{}
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out[k] = struct{}{}
		}
	}
	return out, nil
}

func (m *memBlobs) PresignGet(_ context.Context, key, fileName string, _ time.Duration) (string, error) {
	return "https://blobs.test/" + key + "?filename=" + fileName, nil
}

func (m *memBlobs) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

type projectGate struct {
	project *projectmodel.Project
}

func (g *projectGate) Access(_ context.Context, projectID, userID primitive.ObjectID) (*projectusecase.Scope, error) {
	if projectID != g.project.ID {
		return nil, projectmodel.ErrProjectNotFound
	}
	if !g.project.IsMember(userID) {
		return nil, projectmodel.ErrProjectAccess
	}
	return &projectusecase.Scope{
		Project:   g.project,
		Workspace: &wsmodel.Workspace{ID: g.project.Workspace},
		Caller:    userID,
	}, nil
}
