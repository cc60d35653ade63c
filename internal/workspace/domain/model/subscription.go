package model

import "time"

// Plans.
const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// Subscription statuses, mirroring the payment provider's.
const (
	StatusActive     = "active"
	StatusTrialing   = "trialing"
	StatusPastDue    = "past_due"
	StatusCanceled   = "canceled"
	StatusIncomplete = "incomplete"
)

// Unlimited marks a limit that is not enforced.
const Unlimited = -1

// Subscription is the billing state embedded in a workspace.
type Subscription struct {
	Plan                 string     `json:"plan" bson:"plan"`
	Status               string     `json:"status" bson:"status"`
	StripeCustomerID     string     `json:"stripeCustomerId,omitempty" bson:"stripeCustomerId,omitempty"`
	StripeSubscriptionID string     `json:"stripeSubscriptionId,omitempty" bson:"stripeSubscriptionId,omitempty"`
	CurrentPeriodEnd     *time.Time `json:"currentPeriodEnd,omitempty" bson:"currentPeriodEnd,omitempty"`
	CancelAtPeriodEnd    bool       `json:"cancelAtPeriodEnd" bson:"cancelAtPeriodEnd"`
}

// DefaultSubscription is what a new workspace starts on.
func DefaultSubscription(plan string) Subscription {
	if !ValidPlan(plan) {
		plan = PlanFree
	}
	return Subscription{Plan: plan, Status: StatusActive}
}

// ValidPlan reports whether plan is known.
func ValidPlan(plan string) bool {
	switch plan {
	case PlanFree, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// PlanLimits bounds what a workspace may hold.
type PlanLimits struct {
	Projects int `json:"projects"`
	Members  int `json:"members"`
}

// allows reports whether current+adding stays within limit.
func allows(limit, current, adding int) bool {
	return limit == Unlimited || current+adding <= limit
}

// AllowsProjects reports whether adding more projects stays within the plan.
func (l PlanLimits) AllowsProjects(current, adding int) bool {
	return allows(l.Projects, current, adding)
}

// AllowsMembers reports whether adding more members stays within the plan.
func (l PlanLimits) AllowsMembers(current, adding int) bool {
	return allows(l.Members, current, adding)
}

var planLimits = map[string]PlanLimits{
	PlanFree:       {Projects: 3, Members: 5},
	PlanPro:        {Projects: 50, Members: 50},
	PlanEnterprise: {Projects: Unlimited, Members: Unlimited},
}

// LimitsFor returns the limits of plan; unknown plans get free limits.
func LimitsFor(plan string) PlanLimits {
	if l, ok := planLimits[plan]; ok {
		return l
	}
	return planLimits[PlanFree]
}
