package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/HCodeKeeper/ai-moderated-blog/authentication"
	authcontext "github.com/HCodeKeeper/ai-moderated-blog/authentication/context"
)

type userResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	IsAdmin      bool      `json:"isAdmin"`
	RegisteredAt time.Time `json:"registeredAt"`
}

func toUserResponse(user *authentication.User) userResponse {
	return userResponse{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		IsAdmin:      user.IsAdmin,
		RegisteredAt: user.RegisteredAt,
	}
}

func (h *Handler) HandleRegister() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}

		err := decodeBody(r, &req)
		if err != nil {
			h.writeBadRequest(w, r, "invalid request body")

			return
		}

		user, err := h.authSvc.Register(r.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			h.writeDomainError(w, r, err, "")

			return
		}

		h.writeJSON(w, r, http.StatusCreated, toUserResponse(user))
	})
}

func (h *Handler) HandleLogin() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}

		err := decodeBody(r, &req)
		if err != nil {
			h.writeBadRequest(w, r, "invalid request body")

			return
		}

		session, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			h.writeDomainError(w, r, err, "")

			return
		}

		err = h.setSessionValue(w, r, sessionIDKey, session.ID)
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to set session ID", "error", err)
			h.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal server error"})

			return
		}

		h.writeJSON(w, r, http.StatusOK, map[string]any{
			"userId":    session.UserID,
			"expiresAt": session.ExpiresAt,
		})
	})
}

func (h *Handler) HandleLogout() http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := authcontext.SessionIDFromContext(r.Context())
		if ok {
			err := h.authSvc.Logout(r.Context(), sessionID)
			if err != nil {
				slog.ErrorContext(r.Context(), "error on logout", "sessionId", sessionID, "error", err)
				h.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal server error"})

				return
			}
		}

		err := h.deleteSessionValue(w, r, sessionIDKey)
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

		w.WriteHeader(http.StatusNoContent)
	})

	return h.AuthenticatedOnly(hf)
}

func (h *Handler) HandleGetUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.PathValue("userId")

		user, err := h.authSvc.GetUser(r.Context(), userID)
		if err != nil {
			var userNotFoundError *authentication.UserNotFoundError
			if errors.As(err, &userNotFoundError) {
				h.writeJSON(w, r, http.StatusNotFound, errorResponse{Error: userNotFoundError.Error()})

				return
			}

			slog.ErrorContext(r.Context(), "failed to get user", "userId", userID, "error", err)
			h.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal server error"})

			return
		}

		h.writeJSON(w, r, http.StatusOK, toUserResponse(user))
	})
}
