package repository

import (
	"context"
	"time"

	"edwin/internal/mailer/domain/model"
	"edwin/internal/shared/pagination"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TemplateRepository persists email templates. Names are unique.
type TemplateRepository interface {
	Create(ctx context.Context, t *model.EmailTemplate) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.EmailTemplate, error)
	GetByName(ctx context.Context, name string) (*model.EmailTemplate, error)
	List(ctx context.Context) ([]*model.EmailTemplate, error)
	Update(ctx context.Context, id primitive.ObjectID, in model.TemplateInput) (*model.EmailTemplate, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CampaignRepository persists campaigns.
type CampaignRepository interface {
	Create(ctx context.Context, c *model.EmailCampaign) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.EmailCampaign, error)
	List(ctx context.Context, page pagination.Params) ([]*model.EmailCampaign, int64, error)
	// UpdateDraft applies changes only while the campaign is a draft.
	UpdateDraft(ctx context.Context, id primitive.ObjectID, changes model.CampaignChanges) (*model.EmailCampaign, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// SetStatus moves a campaign from one status to another and reports
	// whether it was still in the from status.
	SetStatus(ctx context.Context, id primitive.ObjectID, from, to string) (bool, error)
	Finish(ctx context.Context, id primitive.ObjectID, status string, stats model.CampaignStats, sentAt time.Time) (*model.EmailCampaign, error)
	CountByTemplate(ctx context.Context, templateID primitive.ObjectID) (int64, error)
}

// SendLogRepository records deliveries and aggregates them.
type SendLogRepository interface {
	Create(ctx context.Context, l *model.EmailSendLog) error
	Analytics(ctx context.Context, since time.Time) (*model.Analytics, error)
}

// Sender delivers one rendered email.
type Sender interface {
	Send(ctx context.Context, msg model.Message) error
}
