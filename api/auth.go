package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/HCodeKeeper/ai-moderated-blog/authentication"
	authcontext "github.com/HCodeKeeper/ai-moderated-blog/authentication/context"
)

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionValueNotFoundError *SessionValueNotFoundError

		sessionID, err := h.getSessionValue(r, sessionIDKey)
		if err != nil && !errors.As(err, &sessionValueNotFoundError) {
			slog.ErrorContext(
				r.Context(),
				"error on getting session value",
				"key",
				sessionIDKey,
				"error",
				err,
			)
			h.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal server error"})

			return
		}

		if sessionID != nil && sessionID.(string) != "" {
			session, err := h.authSvc.GetSession(r.Context(), sessionID.(string))
			if err != nil {
				var (
					sessionNotFoundError *authentication.SessionNotFoundError
					sessionExpiredError  *authentication.SessionExpiredError
				)

				if errors.As(err, &sessionNotFoundError) || errors.As(err, &sessionExpiredError) {
					err = h.deleteSessionValue(w, r, sessionIDKey)
					if err != nil {
						slog.ErrorContext(
							r.Context(),
							"error on deleting session value",
							"key",
							sessionIDKey,
							"error",
							err,
						)
						h.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal server error"})

						return
					}

					next.ServeHTTP(w, r)

					return
				}

				slog.ErrorContext(
					r.Context(),
					"error on getting session",
					"sessionId",
					sessionID,
					"error",
					err,
				)
				h.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal server error"})

				return
			}

			r = r.WithContext(authcontext.WithSessionID(r.Context(), session.ID))

			user, err := h.authSvc.GetUser(r.Context(), session.UserID)
			if err != nil {
				var userNotFoundError *authentication.UserNotFoundError
				if errors.As(err, &userNotFoundError) {
					err = h.authSvc.Logout(r.Context(), session.ID)
					if err != nil {
						slog.ErrorContext(
							r.Context(),
							"error on logging out session",
							"sessionId",
							session.ID,
							"error",
							err,
						)
						h.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal server error"})

						return
					}

					err = h.deleteSessionValue(w, r, sessionIDKey)
					if err != nil {
						slog.ErrorContext(
							r.Context(),
							"error on deleting session value",
							"key",
							sessionIDKey,
							"error",
							err,
						)
						h.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal server error"})

						return
					}

					next.ServeHTTP(w, r)

					return
				}

				slog.ErrorContext(r.Context(), "error retrieving user", "error", err)
				h.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal server error"})

				return
			}

			ctx := authcontext.WithSubject(r.Context(), user.ID)
			ctx = authcontext.WithAdmin(ctx, user.IsAdmin)
			r = r.WithContext(ctx)
		}

		next.ServeHTTP(w, r)
	})
}

func isAuthenticated(r *http.Request) bool {
	return authcontext.GetSubject(r.Context()) != authcontext.Anonymous
}

func (h *Handler) AuthenticatedOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isAuthenticated(r) {
			h.writeUnauthorized(w, r)

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) AdminOnly(next http.Handler) http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authcontext.IsAdmin(r.Context()) {
			h.writeForbidden(w, r)

			return
		}

		next.ServeHTTP(w, r)
	})

	return h.AuthenticatedOnly(hf)
}

// canModify reports whether the current subject is the entity's author or an
// admin. A nil authorID means the entity has no author, admin only.
func canModify(r *http.Request, authorID *string) bool {
	if authcontext.IsAdmin(r.Context()) {
		return true
	}

	if authorID == nil {
		return false
	}

	return authcontext.GetSubject(r.Context()) == *authorID
}
