package usecase

import (
	"bytes"
	"context"
	"html/template"

	authmodel "edwin/internal/auth/domain/model"
	"edwin/internal/mailer/domain/model"
	apperrors "edwin/internal/shared/errors"
	wsusecase "edwin/internal/workspace/usecase"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WelcomeTemplateName is the stored template that replaces the built-in
// welcome email when it exists.
const WelcomeTemplateName = "welcome"

var (
	welcomeTemplate    = template.Must(template.New("welcome").Parse(welcomeBody))
	invitationTemplate = template.Must(template.New("invitation").Parse(invitationBody))
)

type invitationData struct {
	AppName       string
	WorkspaceName string
	InviterName   string
	Role          string
	AcceptURL     string
	ExpiresAt     string
}

// SendWelcome sends the welcome email to a newly registered user.
func (uc *MailerUsecase) SendWelcome(ctx context.Context, user *authmodel.User) error {
	t, subject := welcomeTemplate, "Welcome to "+uc.appName
	stored, err := uc.templates.GetByName(ctx, WelcomeTemplateName)
	switch {
	case err == nil:
		if parsed, perr := parseTemplate(stored.Name, stored.HTMLBody); perr == nil {
			t, subject = parsed, stored.Subject
		} else {
			uc.log.Warnf("stored welcome template is invalid, using the built-in one: %v", perr)
		}
	case !apperrors.IsNotFound(err):
		uc.log.Warnf("failed to load welcome template: %v", err)
	}

	html, text, err := render(t, model.TemplateData{Name: user.Name, Email: user.Email, AppName: uc.appName})
	if err != nil {
		return err
	}
	return uc.sendTransactional(ctx, userRef(user.ID), model.Message{
		To: user.Email, ToName: user.Name, Subject: subject, HTMLBody: html, TextBody: text,
	})
}

// SendInvitation sends a workspace invitation.
func (uc *MailerUsecase) SendInvitation(ctx context.Context, email wsusecase.InvitationEmail) error {
	var buf bytes.Buffer
	err := invitationTemplate.Execute(&buf, invitationData{
		AppName:       uc.appName,
		WorkspaceName: email.WorkspaceName,
		InviterName:   email.InviterName,
		Role:          email.Role,
		AcceptURL:     email.AcceptURL,
		ExpiresAt:     email.ExpiresAt.UTC().Format("January 2, 2006 15:04 MST"),
	})
	if err != nil {
		return err
	}
	html := buf.String()
	return uc.sendTransactional(ctx, nil, model.Message{
		To:       email.To,
		Subject:  email.InviterName + " invited you to " + email.WorkspaceName,
		HTMLBody: html,
		TextBody: plainText(html),
	})
}

func (uc *MailerUsecase) sendTransactional(ctx context.Context, user *primitive.ObjectID, msg model.Message) error {
	sendErr := uc.sender.Send(ctx, msg)
	entry := &model.EmailSendLog{
		Kind:    model.KindTransactional,
		To:      msg.To,
		User:    user,
		Subject: msg.Subject,
		Status:  model.SendSent,
	}
	if sendErr != nil {
		entry.Status = model.SendFailed
		entry.Error = sendErr.Error()
	}
	if err := uc.logs.Create(context.WithoutCancel(ctx), entry); err != nil {
		uc.log.WithContext(ctx).Errorf("failed to write send log: %v", err)
	}
	return sendErr
}

const welcomeBody = `<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto;">
  <h1>{{.AppName}}</h1>
  <p>Hi {{.Name}},</p>
  <p>Your account is ready. Create a workspace, invite your team and start planning projects.</p>
  <p>You signed up as {{.Email}}.</p>
</body>
</html>`

const invitationBody = `<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto;">
  <h1>{{.AppName}}</h1>
  <p>{{.InviterName}} invited you to join <strong>{{.WorkspaceName}}</strong> as {{.Role}}.</p>
  <p><a href="{{.AcceptURL}}" style="display: inline-block; padding: 12px 24px; background: #0066cc; color: #fff; text-decoration: none; border-radius: 4px;">Accept invitation</a></p>
  <p>Or open this link: {{.AcceptURL}}</p>
  <p>The invitation expires on {{.ExpiresAt}}.</p>
</body>
</html>`
