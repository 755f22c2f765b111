package rest

import (
	"net/http"

	"github.com/example/safecase/internal/ctxutil"
)

// Header names carrying the caller's identity. Authentication happens
// upstream; these values are taken as given.
const (
	HeaderFacilityID = "X-Facility-ID"
	HeaderActorID    = "X-Actor-ID"
)

// Identity stores the caller's facility and actor on the request context.
// Requests without a facility are rejected.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		facilityID := r.Header.Get(HeaderFacilityID)
		if facilityID == "" {
			writeError(w, http.StatusBadRequest, "missing "+HeaderFacilityID+" header")
			return
		}

		ctx := ctxutil.WithFacilityID(r.Context(), facilityID)
		if actorID := r.Header.Get(HeaderActorID); actorID != "" {
			ctx = ctxutil.WithActorID(ctx, actorID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireActor writes a 400 and returns false when the request has no actor.
func requireActor(w http.ResponseWriter, r *http.Request) (string, bool) {
	actorID := ctxutil.ActorFromContext(r.Context())
	if actorID == "" {
		writeError(w, http.StatusBadRequest, "missing "+HeaderActorID+" header")
		return "", false
	}
	return actorID, true
}
