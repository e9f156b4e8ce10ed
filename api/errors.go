package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/HCodeKeeper/ai-moderated-blog/analytics"
	"github.com/HCodeKeeper/ai-moderated-blog/authentication"
	"github.com/HCodeKeeper/ai-moderated-blog/moderation"
)

type errorResponse struct {
	Error string `json:"error"`

	// ID is set when a blocked entity was persisted despite the error.
	ID string `json:"id,omitempty"`
}

// writeDomainError maps domain errors to HTTP status codes. blockedID
// carries the persisted entity id for blocked creations.
func (h *Handler) writeDomainError(
	w http.ResponseWriter,
	r *http.Request,
	err error,
	blockedID string,
) {
	var (
		invalidTitleErr     *moderation.InvalidTitleLengthError
		invalidContentErr   *moderation.InvalidContentLengthError
		profanityErr        *moderation.ContentContainsProfanityError
		entityNotFoundErr   *moderation.EntityDoesNotExistError
		userExistsErr       *authentication.UserAlreadyExistsError
		invalidEmailErr     *authentication.InvalidEmailError
		invalidDateRangeErr *analytics.InvalidDateRangeError
	)

	switch {
	case errors.As(err, &invalidTitleErr):
		h.writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{Error: invalidTitleErr.Error()})
	case errors.As(err, &invalidContentErr):
		h.writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{Error: invalidContentErr.Error()})
	case errors.As(err, &profanityErr):
		h.writeJSON(w, r, http.StatusForbidden, errorResponse{Error: profanityErr.Error(), ID: blockedID})
	case errors.As(err, &entityNotFoundErr):
		h.writeJSON(w, r, http.StatusNotFound, errorResponse{Error: entityNotFoundErr.Error()})
	case errors.As(err, &userExistsErr):
		h.writeJSON(w, r, http.StatusConflict, errorResponse{Error: userExistsErr.Error()})
	case errors.As(err, &invalidEmailErr):
		h.writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{Error: invalidEmailErr.Error()})
	case errors.As(err, &invalidDateRangeErr):
		h.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: invalidDateRangeErr.Error()})
	case errors.Is(err, authentication.ErrInvalidCredentials):
		h.writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
	default:
		slog.ErrorContext(r.Context(), "unhandled domain error", "error", err)
		h.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func (h *Handler) writeBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	h.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: message})
}

func (h *Handler) writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
}

func (h *Handler) writeForbidden(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusForbidden, errorResponse{Error: "forbidden"})
}
