package service

import (
	"context"

	"github.com/dibasaye/finance-manager/internal/models"
)

// Actor identifies the authenticated user performing an operation, for
// authorization checks and audit attribution.
type Actor struct {
	UserID   int64
	Username string
	Role     string
	IP       string
}

type actorContextKey struct{}

// ContextWithActor attaches the acting user to a request context
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext retrieves the acting user from a request context
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}

// Capability checks, consolidated here instead of scattered per route.

// CanManageLifecycle reports whether the role may approve, reject or
// disburse credits, close savings accounts and post savings interest.
func CanManageLifecycle(role string) bool {
	return role == models.RoleAdministrateur || role == models.RoleGestionnaire
}

// CanAdminister reports whether the role may delete clients and manage users.
func CanAdminister(role string) bool {
	return role == models.RoleAdministrateur
}

// ReceivesPaymentAlerts reports whether users of this role are addressed by
// the payment alert scan.
func ReceivesPaymentAlerts(role string) bool {
	return role == models.RoleAdministrateur || role == models.RoleGestionnaire
}
