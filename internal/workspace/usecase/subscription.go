package usecase

import (
	"context"

	"edwin/internal/shared/eventbus"
	"edwin/internal/workspace/domain/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionStore is the billing view of workspaces.
type SubscriptionStore struct {
	uc *WorkspaceUsecase
}

// Subscriptions returns the store billing uses to read and write plans.
func (uc *WorkspaceUsecase) Subscriptions() *SubscriptionStore {
	return &SubscriptionStore{uc: uc}
}

// RequireManager checks that userID is owner or admin of the workspace.
func (s *SubscriptionStore) RequireManager(ctx context.Context, workspaceID, userID primitive.ObjectID) (*model.Workspace, error) {
	return s.uc.RequireRole(ctx, workspaceID, userID, model.RoleOwner, model.RoleAdmin)
}

// ByID loads a workspace without a membership check.
func (s *SubscriptionStore) ByID(ctx context.Context, id primitive.ObjectID) (*model.Workspace, error) {
	return s.uc.workspaces.GetByID(ctx, id)
}

// BySubscriptionID finds the workspace billed by a subscription.
func (s *SubscriptionStore) BySubscriptionID(ctx context.Context, subscriptionID string) (*model.Workspace, error) {
	return s.uc.workspaces.GetByStripeSubscriptionID(ctx, subscriptionID)
}

// ByCustomerID finds the workspace billed to a customer.
func (s *SubscriptionStore) ByCustomerID(ctx context.Context, customerID string) (*model.Workspace, error) {
	return s.uc.workspaces.GetByStripeCustomerID(ctx, customerID)
}

// Save stores sub and announces the change to the workspace members.
func (s *SubscriptionStore) Save(ctx context.Context, workspaceID primitive.ObjectID, sub model.Subscription) error {
	if err := s.uc.workspaces.UpdateSubscription(ctx, workspaceID, sub); err != nil {
		return err
	}
	ws, err := s.uc.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		s.uc.log.WithContext(ctx).Warnf("subscription of %s saved but not announced: %v", workspaceID.Hex(), err)
		return nil
	}
	s.uc.publish(ctx, eventbus.EventTypeSubscriptionUpdated, model.SubscriptionEvent{
		Workspace:    workspaceID,
		Subscription: sub,
		Members:      ws.MemberIDs(),
	})
	return nil
}
