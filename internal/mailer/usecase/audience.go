package usecase

import (
	"context"
	"strings"

	authmodel "edwin/internal/auth/domain/model"
	"edwin/internal/mailer/adapter/audience"
	"edwin/internal/mailer/domain/model"
	"edwin/internal/shared/database"
	apperrors "edwin/internal/shared/errors"
	wsmodel "edwin/internal/workspace/domain/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// validateAudience checks the selector and compiles expressions so a bad one
// is rejected when the campaign is saved.
func (uc *MailerUsecase) validateAudience(a *model.Audience) error {
	a.Plan = strings.TrimSpace(a.Plan)
	a.Expression = strings.TrimSpace(a.Expression)

	switch a.Type {
	case model.AudienceAll:
	case model.AudienceWorkspace:
		if a.Workspace == nil || a.Workspace.IsZero() {
			return apperrors.NewValidationError("audience.workspaceId is required for a workspace audience")
		}
	case model.AudiencePlan:
		if !wsmodel.ValidPlan(a.Plan) {
			return apperrors.NewValidationError("audience.plan must be free, pro or enterprise")
		}
	case model.AudienceExpression:
		if a.Expression == "" {
			return apperrors.NewValidationError("audience.expression is required for an expression audience")
		}
		if _, err := uc.compiler.Compile(a.Expression); err != nil {
			return err
		}
	default:
		return apperrors.NewValidationError("audience.type must be all, workspace, plan or expression")
	}
	return nil
}

// resolveAudience returns the users a campaign targets, in a stable order and
// without users that have no email.
func (uc *MailerUsecase) resolveAudience(ctx context.Context, a model.Audience) ([]model.Recipient, error) {
	var users []*authmodel.User
	var err error

	switch a.Type {
	case model.AudienceAll:
		users, err = uc.users.ListAll(ctx)
	case model.AudienceWorkspace:
		if a.Workspace == nil {
			return nil, apperrors.NewValidationError("audience.workspaceId is required for a workspace audience")
		}
		var ws *wsmodel.Workspace
		ws, err = uc.workspaces.GetByID(ctx, *a.Workspace)
		if err != nil {
			return nil, err
		}
		users, err = uc.users.GetByIDs(ctx, memberIDs(ws))
	case model.AudiencePlan:
		var list []*wsmodel.Workspace
		list, err = uc.workspaces.ListByPlan(ctx, a.Plan)
		if err != nil {
			return nil, err
		}
		users, err = uc.users.GetByIDs(ctx, memberIDs(list...))
	case model.AudienceExpression:
		var filter *audience.Filter
		filter, err = uc.compiler.Compile(a.Expression)
		if err != nil {
			return nil, err
		}
		var all []*authmodel.User
		all, err = uc.users.ListAll(ctx)
		for _, u := range all {
			if filter.Match(u) {
				users = append(users, u)
			}
		}
	default:
		return nil, apperrors.NewValidationError("unknown audience type")
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[primitive.ObjectID]bool, len(users))
	out := make([]model.Recipient, 0, len(users))
	for _, u := range users {
		if u == nil || u.Email == "" || seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		out = append(out, model.Recipient{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	return out, nil
}

func memberIDs(workspaces ...*wsmodel.Workspace) []primitive.ObjectID {
	var ids []primitive.ObjectID
	for _, ws := range workspaces {
		for _, m := range ws.Members {
			ids = append(ids, m.User)
		}
	}
	return database.UniqueIDs(ids)
}
