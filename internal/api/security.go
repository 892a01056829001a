package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/tmercier/boutique/internal/auth"
	"github.com/tmercier/boutique/internal/domain/order"
	"github.com/tmercier/boutique/internal/domain/user"
)

type actorKey struct{}

type tokenKey struct{}

// requireUser resolves the Authorization bearer token into an account and
// stores the actor in the request context.
func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respond(w, http.StatusUnauthorized, errorResponse{
				Code:    http.StatusUnauthorized,
				Message: "missing bearer token",
			})
			return
		}

		u, err := h.auth.Identify(r.Context(), token)
		if err != nil {
			respondError(w, r, auth.ErrInvalidToken)
			return
		}

		ctx := context.WithValue(r.Context(), actorKey{}, order.Actor{UserID: u.ID, Admin: u.Admin})
		ctx = context.WithValue(ctx, tokenKey{}, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin rejects non-admin actors. Must run after requireUser.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !actorFrom(r).Admin {
			respondError(w, r, order.ErrPermissionDenied)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}

func actorFrom(r *http.Request) order.Actor {
	actor, _ := r.Context().Value(actorKey{}).(order.Actor)
	return actor
}

func sessionTokenFrom(r *http.Request) string {
	token, _ := r.Context().Value(tokenKey{}).(string)
	return token
}

// currentUser reloads the full account of the request actor.
func (h *Handler) currentUser(r *http.Request) (*user.User, error) {
	return h.auth.Profile(r.Context(), actorFrom(r).UserID)
}
