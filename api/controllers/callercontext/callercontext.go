package callercontext

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Teja2142/Hyrind-Backend/api/middleware"
	subsvc "github.com/Teja2142/Hyrind-Backend/internal/subscriptions"
	pkgerrors "github.com/Teja2142/Hyrind-Backend/pkg/errors"
)

// ResolveActor builds the subscription actor from the authenticated context.
// The actor only ever owns its own records, even when the token carries the
// admin role; operator access goes through the admin routes.
func ResolveActor(r *http.Request) (subsvc.Actor, error) {
	ctx := r.Context()
	raw := middleware.UserIDFromContext(ctx)
	if raw == "" {
		return subsvc.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return subsvc.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return subsvc.Actor{
		UserID: id,
		Email:  middleware.EmailFromContext(ctx),
	}, nil
}

// ResolveUserID returns the authenticated user id.
func ResolveUserID(r *http.Request) (uuid.UUID, error) {
	actor, err := ResolveActor(r)
	if err != nil {
		return uuid.Nil, err
	}
	return actor.UserID, nil
}
