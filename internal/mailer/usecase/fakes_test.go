package usecase_test

import (
	"context"
	"sync"
	"time"

	authmodel "edwin/internal/auth/domain/model"
	"edwin/internal/mailer/domain/model"
	"edwin/internal/shared/pagination"
	wsmodel "edwin/internal/workspace/domain/model"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memTemplates struct {
	mu   sync.Mutex
	rows map[primitive.ObjectID]*model.EmailTemplate
}

func newMemTemplates() *memTemplates {
	return &memTemplates{rows: map[primitive.ObjectID]*model.EmailTemplate{}}
}

func (m *memTemplates) Create(_ context.Context, t *model.EmailTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Name == t.Name {
			return model.ErrTemplateNameTaken
		}
	}
	t.ID = primitive.NewObjectID()
	m.rows[t.ID] = t
	return nil
}

func (m *memTemplates) GetByID(_ context.Context, id primitive.ObjectID) (*model.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok {
		return nil, model.ErrTemplateNotFound
	}
	return t, nil
}

func (m *memTemplates) GetByName(_ context.Context, name string) (*model.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.rows {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, model.ErrTemplateNotFound
}

func (m *memTemplates) List(_ context.Context) ([]*model.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.EmailTemplate{}
	for _, t := range m.rows {
		out = append(out, t)
	}
	return out, nil
}

func (m *memTemplates) Update(_ context.Context, id primitive.ObjectID, in model.TemplateInput) (*model.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok {
		return nil, model.ErrTemplateNotFound
	}
	if in.Name != nil {
		t.Name = *in.Name
	}
	if in.Subject != nil {
		t.Subject = *in.Subject
	}
	if in.HTMLBody != nil {
		t.HTMLBody = *in.HTMLBody
	}
	return t, nil
}

func (m *memTemplates) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return model.ErrTemplateNotFound
	}
	delete(m.rows, id)
	return nil
}

type memCampaigns struct {
	mu   sync.Mutex
	rows map[primitive.ObjectID]*model.EmailCampaign
}

func newMemCampaigns() *memCampaigns {
	return &memCampaigns{rows: map[primitive.ObjectID]*model.EmailCampaign{}}
}

func (m *memCampaigns) Create(_ context.Context, c *model.EmailCampaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = primitive.NewObjectID()
	m.rows[c.ID] = c
	return nil
}

func (m *memCampaigns) GetByID(_ context.Context, id primitive.ObjectID) (*model.EmailCampaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, model.ErrCampaignNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCampaigns) List(_ context.Context, _ pagination.Params) ([]*model.EmailCampaign, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.EmailCampaign{}
	for _, c := range m.rows {
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (m *memCampaigns) UpdateDraft(_ context.Context, id primitive.ObjectID, ch model.CampaignChanges) (*model.EmailCampaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, model.ErrCampaignNotFound
	}
	if c.Status != model.CampaignDraft {
		return nil, model.ErrCampaignNotDraft
	}
	if ch.Name != nil {
		c.Name = *ch.Name
	}
	if ch.Template != nil {
		c.Template = *ch.Template
	}
	if ch.Subject != nil {
		c.Subject = *ch.Subject
	}
	if ch.Audience != nil {
		c.Audience = *ch.Audience
	}
	return c, nil
}

func (m *memCampaigns) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memCampaigns) SetStatus(_ context.Context, id primitive.ObjectID, from, to string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	return true, nil
}

func (m *memCampaigns) Finish(_ context.Context, id primitive.ObjectID, status string, stats model.CampaignStats, sentAt time.Time) (*model.EmailCampaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, model.ErrCampaignNotFound
	}
	c.Status = status
	c.Stats = stats
	c.SentAt = &sentAt
	return c, nil
}

func (m *memCampaigns) CountByTemplate(_ context.Context, templateID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.rows {
		if c.Template == templateID {
			n++
		}
	}
	return n, nil
}

type memLogs struct {
	mu      sync.Mutex
	entries []*model.EmailSendLog
	since   time.Time
}

func (m *memLogs) Create(_ context.Context, l *model.EmailSendLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, l)
	return nil
}

func (m *memLogs) Analytics(_ context.Context, since time.Time) (*model.Analytics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.since = since
	return &model.Analytics{}, nil
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, msg model.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type directory struct {
	users      []*authmodel.User
	workspaces []*wsmodel.Workspace
}

func (d *directory) ListAll(context.Context) ([]*authmodel.User, error) {
	return d.users, nil
}

func (d *directory) GetByID(_ context.Context, id primitive.ObjectID) (*authmodel.User, error) {
	for _, u := range d.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, authmodel.ErrUserNotFound
}

func (d *directory) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]*authmodel.User, error) {
	out := []*authmodel.User{}
	for _, u := range d.users {
		for _, id := range ids {
			if u.ID == id {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

type workspaceDirectory struct {
	*directory
}

func (w workspaceDirectory) GetByID(_ context.Context, id primitive.ObjectID) (*wsmodel.Workspace, error) {
	for _, ws := range w.workspaces {
		if ws.ID == id {
			return ws, nil
		}
	}
	return nil, wsmodel.ErrWorkspaceNotFound
}

func (w workspaceDirectory) ListByPlan(_ context.Context, plan string) ([]*wsmodel.Workspace, error) {
	out := []*wsmodel.Workspace{}
	for _, ws := range w.workspaces {
		if ws.Subscription.Plan == plan {
			out = append(out, ws)
		}
	}
	return out, nil
}
