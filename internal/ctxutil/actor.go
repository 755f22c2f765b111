// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// ActorKey is the context key for actor ID.
// Exported so it can be used consistently across packages.
type ActorKey struct{}

// FacilityKey is the context key for the caller's facility.
type FacilityKey struct{}

// WithActorID returns a context with the actor ID embedded.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ActorKey{}, actorID)
}

// ActorFromContext returns the actor ID from context, or empty string if not set.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ActorKey{}).(string); ok {
		return v
	}
	return ""
}

// WithFacilityID returns a context scoped to a facility.
func WithFacilityID(ctx context.Context, facilityID string) context.Context {
	return context.WithValue(ctx, FacilityKey{}, facilityID)
}

// FacilityFromContext returns the facility ID from context, or empty string if not set.
func FacilityFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(FacilityKey{}).(string); ok {
		return v
	}
	return ""
}
