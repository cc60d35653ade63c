package model

import (
	"time"

	apperrors "edwin/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audience types.
const (
	AudienceAll        = "all"
	AudienceWorkspace  = "workspace"
	AudiencePlan       = "plan"
	AudienceExpression = "expression"
)

// Campaign statuses.
const (
	CampaignDraft   = "draft"
	CampaignSending = "sending"
	CampaignSent    = "sent"
	CampaignFailed  = "failed"
)

// Send log kinds and statuses.
const (
	KindCampaign      = "campaign"
	KindTransactional = "transactional"

	SendSent   = "sent"
	SendFailed = "failed"
)

// SampleSize caps the recipients returned by an audience preview.
const SampleSize = 10

// EmailTemplate is an html/template body rendered with TemplateData.
type EmailTemplate struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Subject   string             `json:"subject" bson:"subject"`
	HTMLBody  string             `json:"htmlBody" bson:"htmlBody"`
	CreatedBy primitive.ObjectID `json:"createdBy" bson:"createdBy"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// TemplateInput is used for create and PATCH.
type TemplateInput struct {
	Name     *string `json:"name"`
	Subject  *string `json:"subject"`
	HTMLBody *string `json:"htmlBody"`
}

// TemplateData is what a template body can reference.
type TemplateData struct {
	Name    string
	Email   string
	AppName string
}

// Audience selects campaign recipients.
type Audience struct {
	Type       string              `json:"type" bson:"type"`
	Workspace  *primitive.ObjectID `json:"workspaceId,omitempty" bson:"workspace,omitempty"`
	Plan       string              `json:"plan,omitempty" bson:"plan,omitempty"`
	Expression string              `json:"expression,omitempty" bson:"expression,omitempty"`
}

// CampaignStats is stored once a send finishes.
type CampaignStats struct {
	Total  int `json:"total" bson:"total"`
	Sent   int `json:"sent" bson:"sent"`
	Failed int `json:"failed" bson:"failed"`
}

// EmailCampaign is a bulk send of one template to an audience.
type EmailCampaign struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Template  primitive.ObjectID `json:"templateId" bson:"template"`
	Subject   string             `json:"subject,omitempty" bson:"subject,omitempty"`
	Audience  Audience           `json:"audience" bson:"audience"`
	Status    string             `json:"status" bson:"status"`
	Stats     CampaignStats      `json:"stats" bson:"stats"`
	SentAt    *time.Time         `json:"sentAt,omitempty" bson:"sentAt,omitempty"`
	CreatedBy primitive.ObjectID `json:"createdBy" bson:"createdBy"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CampaignChanges is a validated PATCH of a draft.
type CampaignChanges struct {
	Name     *string
	Template *primitive.ObjectID
	Subject  *string
	Audience *Audience
}

// EmailSendLog records one delivery attempt.
type EmailSendLog struct {
	ID        primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Campaign  *primitive.ObjectID `json:"campaignId,omitempty" bson:"campaign,omitempty"`
	Kind      string              `json:"kind" bson:"kind"`
	To        string              `json:"to" bson:"to"`
	User      *primitive.ObjectID `json:"userId,omitempty" bson:"user,omitempty"`
	Subject   string              `json:"subject" bson:"subject"`
	Status    string              `json:"status" bson:"status"`
	Error     string              `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt time.Time           `json:"createdAt" bson:"createdAt"`
}

// Recipient is one resolved audience member.
type Recipient struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// AudiencePreview is returned by preview-audience.
type AudiencePreview struct {
	Count  int         `json:"count"`
	Sample []Recipient `json:"sample"`
}

// SendTotals counts outcomes.
type SendTotals struct {
	Sent   int64 `json:"sent" bson:"sent"`
	Failed int64 `json:"failed" bson:"failed"`
}

// CampaignTotals is one row of the per-campaign breakdown.
type CampaignTotals struct {
	CampaignID primitive.ObjectID `json:"campaignId" bson:"_id"`
	Name       string             `json:"name" bson:"name"`
	Sent       int64              `json:"sent" bson:"sent"`
	Failed     int64              `json:"failed" bson:"failed"`
}

// DailyTotals is one row of the per-day breakdown, date as YYYY-MM-DD.
type DailyTotals struct {
	Date   string `json:"date" bson:"_id"`
	Sent   int64  `json:"sent" bson:"sent"`
	Failed int64  `json:"failed" bson:"failed"`
}

// Analytics summarises send logs over a window.
type Analytics struct {
	Totals     SendTotals       `json:"totals"`
	ByCampaign []CampaignTotals `json:"byCampaign"`
	Daily      []DailyTotals    `json:"daily"`
}

// Message is a rendered email ready for a Sender.
type Message struct {
	To       string
	ToName   string
	Subject  string
	HTMLBody string
	TextBody string
}

var (
	ErrTemplateNotFound  = apperrors.NewNotFoundError("email template")
	ErrCampaignNotFound  = apperrors.NewNotFoundError("email campaign")
	ErrTemplateNameTaken = apperrors.NewConflictError("an email template with this name already exists")
	ErrTemplateInUse     = apperrors.NewConflictError("email template is used by a campaign")
	ErrCampaignNotDraft  = apperrors.NewConflictError("only draft campaigns can be changed or sent")
)
