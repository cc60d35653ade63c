package usecase

import (
	"context"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"edwin/internal/mailer/adapter/audience"
	"edwin/internal/mailer/domain/model"
	"edwin/internal/mailer/domain/repository"
	"edwin/internal/shared/database"
	apperrors "edwin/internal/shared/errors"
	"edwin/internal/shared/logger"
	"edwin/internal/shared/pagination"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxTemplateName  = 100
	maxSubjectLength = 200
	defaultDays      = 30
	maxAnalyticsDays = 365
)

// CampaignInput is the body of campaign create and PATCH.
type CampaignInput struct {
	Name       *string         `json:"name"`
	TemplateID *string         `json:"templateId"`
	Subject    *string         `json:"subject"`
	Audience   *model.Audience `json:"audience"`
}

// MailerUsecase manages templates and campaigns and sends mail.
type MailerUsecase struct {
	templates  repository.TemplateRepository
	campaigns  repository.CampaignRepository
	logs       repository.SendLogRepository
	sender     repository.Sender
	users      UserDirectory
	workspaces WorkspaceDirectory
	compiler   *audience.Compiler
	appName    string
	log        logger.Logger
	now        func() time.Time
}

// NewMailerUsecase wires the mailer.
func NewMailerUsecase(
	templates repository.TemplateRepository,
	campaigns repository.CampaignRepository,
	logs repository.SendLogRepository,
	sender repository.Sender,
	users UserDirectory,
	workspaces WorkspaceDirectory,
	compiler *audience.Compiler,
	appName string,
	log logger.Logger,
) *MailerUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &MailerUsecase{
		templates:  templates,
		campaigns:  campaigns,
		logs:       logs,
		sender:     sender,
		users:      users,
		workspaces: workspaces,
		compiler:   compiler,
		appName:    appName,
		log:        log.WithComponent("mailer"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func requiredText(field, value string, max int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperrors.NewValidationError(field + " is required")
	}
	if utf8.RuneCountInString(value) > max {
		return "", apperrors.NewValidationError(field + " is too long")
	}
	return value, nil
}

// --- templates ---

func (uc *MailerUsecase) CreateTemplate(ctx context.Context, callerID primitive.ObjectID, in model.TemplateInput) (*model.EmailTemplate, error) {
	if in.Name == nil || in.Subject == nil || in.HTMLBody == nil {
		return nil, apperrors.NewValidationError("name, subject and htmlBody are required")
	}
	name, err := requiredText("name", *in.Name, maxTemplateName)
	if err != nil {
		return nil, err
	}
	subject, err := requiredText("subject", *in.Subject, maxSubjectLength)
	if err != nil {
		return nil, err
	}
	if _, err := parseTemplate(name, *in.HTMLBody); err != nil {
		return nil, err
	}

	t := &model.EmailTemplate{Name: name, Subject: subject, HTMLBody: *in.HTMLBody, CreatedBy: callerID}
	if err := uc.templates.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (uc *MailerUsecase) ListTemplates(ctx context.Context) ([]*model.EmailTemplate, error) {
	return uc.templates.List(ctx)
}

func (uc *MailerUsecase) GetTemplate(ctx context.Context, id primitive.ObjectID) (*model.EmailTemplate, error) {
	return uc.templates.GetByID(ctx, id)
}

func (uc *MailerUsecase) UpdateTemplate(ctx context.Context, id primitive.ObjectID, in model.TemplateInput) (*model.EmailTemplate, error) {
	if in.Name != nil {
		name, err := requiredText("name", *in.Name, maxTemplateName)
		if err != nil {
			return nil, err
		}
		in.Name = &name
	}
	if in.Subject != nil {
		subject, err := requiredText("subject", *in.Subject, maxSubjectLength)
		if err != nil {
			return nil, err
		}
		in.Subject = &subject
	}
	if in.HTMLBody != nil {
		if _, err := parseTemplate("body", *in.HTMLBody); err != nil {
			return nil, err
		}
	}
	return uc.templates.Update(ctx, id, in)
}

// DeleteTemplate refuses while any campaign still points at the template.
func (uc *MailerUsecase) DeleteTemplate(ctx context.Context, id primitive.ObjectID) error {
	n, err := uc.campaigns.CountByTemplate(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return model.ErrTemplateInUse
	}
	return uc.templates.Delete(ctx, id)
}

// --- campaigns ---

func (uc *MailerUsecase) CreateCampaign(ctx context.Context, callerID primitive.ObjectID, in CampaignInput) (*model.EmailCampaign, error) {
	if in.Name == nil || in.TemplateID == nil || in.Audience == nil {
		return nil, apperrors.NewValidationError("name, templateId and audience are required")
	}
	changes, err := uc.campaignChanges(ctx, in)
	if err != nil {
		return nil, err
	}

	c := &model.EmailCampaign{
		Name:      *changes.Name,
		Template:  *changes.Template,
		Audience:  *changes.Audience,
		Status:    model.CampaignDraft,
		CreatedBy: callerID,
	}
	if changes.Subject != nil {
		c.Subject = *changes.Subject
	}
	if err := uc.campaigns.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// campaignChanges validates the fields present in in.
func (uc *MailerUsecase) campaignChanges(ctx context.Context, in CampaignInput) (model.CampaignChanges, error) {
	var changes model.CampaignChanges
	if in.Name != nil {
		name, err := requiredText("name", *in.Name, maxTemplateName)
		if err != nil {
			return changes, err
		}
		changes.Name = &name
	}
	if in.TemplateID != nil {
		id, err := database.ParseObjectID("templateId", *in.TemplateID)
		if err != nil {
			return changes, err
		}
		if _, err := uc.templates.GetByID(ctx, id); err != nil {
			return changes, err
		}
		changes.Template = &id
	}
	if in.Subject != nil {
		subject := strings.TrimSpace(*in.Subject)
		if utf8.RuneCountInString(subject) > maxSubjectLength {
			return changes, apperrors.NewValidationError("subject is too long")
		}
		changes.Subject = &subject
	}
	if in.Audience != nil {
		a := *in.Audience
		if err := uc.validateAudience(&a); err != nil {
			return changes, err
		}
		changes.Audience = &a
	}
	return changes, nil
}

func (uc *MailerUsecase) ListCampaigns(ctx context.Context, page pagination.Params) ([]*model.EmailCampaign, int64, error) {
	return uc.campaigns.List(ctx, page)
}

func (uc *MailerUsecase) GetCampaign(ctx context.Context, id primitive.ObjectID) (*model.EmailCampaign, error) {
	return uc.campaigns.GetByID(ctx, id)
}

// UpdateCampaign edits a draft. Other statuses give ErrCampaignNotDraft.
func (uc *MailerUsecase) UpdateCampaign(ctx context.Context, id primitive.ObjectID, in CampaignInput) (*model.EmailCampaign, error) {
	changes, err := uc.campaignChanges(ctx, in)
	if err != nil {
		return nil, err
	}
	return uc.campaigns.UpdateDraft(ctx, id, changes)
}

// DeleteCampaign removes a campaign unless a send is in progress.
func (uc *MailerUsecase) DeleteCampaign(ctx context.Context, id primitive.ObjectID) error {
	c, err := uc.campaigns.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.Status == model.CampaignSending {
		return apperrors.NewConflictError("campaign is being sent")
	}
	return uc.campaigns.Delete(ctx, id)
}

// PreviewAudience resolves the audience without sending anything.
func (uc *MailerUsecase) PreviewAudience(ctx context.Context, id primitive.ObjectID) (*model.AudiencePreview, error) {
	c, err := uc.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	recipients, err := uc.resolveAudience(ctx, c.Audience)
	if err != nil {
		return nil, err
	}
	sample := recipients
	if len(sample) > model.SampleSize {
		sample = sample[:model.SampleSize]
	}
	return &model.AudiencePreview{Count: len(recipients), Sample: sample}, nil
}

// Send delivers a draft campaign to its audience, one recipient at a time.
// A campaign in any other status gives ErrCampaignNotDraft.
func (uc *MailerUsecase) Send(ctx context.Context, id primitive.ObjectID) (*model.EmailCampaign, error) {
	c, err := uc.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != model.CampaignDraft {
		return nil, model.ErrCampaignNotDraft
	}
	tmpl, err := uc.templates.GetByID(ctx, c.Template)
	if err != nil {
		return nil, err
	}
	parsed, err := parseTemplate(tmpl.Name, tmpl.HTMLBody)
	if err != nil {
		return nil, err
	}
	recipients, err := uc.resolveAudience(ctx, c.Audience)
	if err != nil {
		return nil, err
	}

	moved, err := uc.campaigns.SetStatus(ctx, id, model.CampaignDraft, model.CampaignSending)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, model.ErrCampaignNotDraft
	}

	subject := c.Subject
	if subject == "" {
		subject = tmpl.Subject
	}
	log := uc.log.WithContext(ctx).WithFields(map[string]interface{}{"campaign": id.Hex(), "recipients": len(recipients)})
	log.Info("campaign send started")

	// The send outlives a dropped client so the campaign always settles.
	sendCtx := context.WithoutCancel(ctx)
	stats := model.CampaignStats{Total: len(recipients)}
	campaignID := id
	for _, r := range recipients {
		err := uc.deliver(sendCtx, parsed, subject, r)
		entry := &model.EmailSendLog{
			Campaign: &campaignID,
			Kind:     model.KindCampaign,
			To:       r.Email,
			User:     userRef(r.ID),
			Subject:  subject,
			Status:   model.SendSent,
		}
		if err != nil {
			stats.Failed++
			entry.Status = model.SendFailed
			entry.Error = err.Error()
			log.WithFields(map[string]interface{}{"to": r.Email}).Warnf("campaign email failed: %v", err)
		} else {
			stats.Sent++
		}
		if err := uc.logs.Create(sendCtx, entry); err != nil {
			log.Errorf("failed to write send log: %v", err)
		}
	}

	status := model.CampaignSent
	if stats.Total > 0 && stats.Sent == 0 {
		status = model.CampaignFailed
	}
	done, err := uc.campaigns.Finish(sendCtx, id, status, stats, uc.now())
	if err != nil {
		return nil, err
	}
	log.WithFields(map[string]interface{}{"sent": stats.Sent, "failed": stats.Failed}).Info("campaign send finished")
	return done, nil
}

func (uc *MailerUsecase) deliver(ctx context.Context, t *template.Template, subject string, r model.Recipient) error {
	html, text, err := render(t, model.TemplateData{Name: r.Name, Email: r.Email, AppName: uc.appName})
	if err != nil {
		return err
	}
	return uc.sender.Send(ctx, model.Message{
		To:       r.Email,
		ToName:   r.Name,
		Subject:  subject,
		HTMLBody: html,
		TextBody: text,
	})
}

func userRef(id primitive.ObjectID) *primitive.ObjectID {
	if id.IsZero() {
		return nil
	}
	return &id
}

// Analytics aggregates send logs of the last days days. Zero or negative
// selects the default window.
func (uc *MailerUsecase) Analytics(ctx context.Context, days int) (*model.Analytics, error) {
	if days <= 0 {
		days = defaultDays
	}
	if days > maxAnalyticsDays {
		days = maxAnalyticsDays
	}
	now := uc.now()
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(days - 1))
	return uc.logs.Analytics(ctx, since)
}
