package api

import (
	"net/http"
	"time"

	authcontext "github.com/HCodeKeeper/ai-moderated-blog/authentication/context"
	"github.com/HCodeKeeper/ai-moderated-blog/discuss"
)

type commentResponse struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	IsBlocked bool      `json:"isBlocked"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toCommentResponse(comment *discuss.Comment) commentResponse {
	return commentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		AuthorID:  comment.AuthorID,
		Content:   comment.Content,
		IsBlocked: comment.IsBlocked,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

func toCommentResponses(comments []*discuss.Comment) []commentResponse {
	result := make([]commentResponse, 0, len(comments))
	for _, comment := range comments {
		result = append(result, toCommentResponse(comment))
	}

	return result
}

func (h *Handler) HandleListComments() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postID := r.PathValue("postId")
		status := r.URL.Query().Get("status")

		var (
			comments []*discuss.Comment
			err      error
		)

		switch status {
		case "", "active":
			comments, err = h.discussSvc.ListActiveCommentsByPost(r.Context(), postID)
		case "all":
			if !authcontext.IsAdmin(r.Context()) {
				h.writeForbidden(w, r)

				return
			}

			comments, err = h.discussSvc.ListCommentsByPost(r.Context(), postID)
		case "blocked":
			if !authcontext.IsAdmin(r.Context()) {
				h.writeForbidden(w, r)

				return
			}

			comments, err = h.discussSvc.ListInactiveCommentsByPost(r.Context(), postID)
		default:
			h.writeBadRequest(w, r, "unknown status filter")

			return
		}

		if err != nil {
			h.writeDomainError(w, r, err, "")

			return
		}

		h.writeJSON(w, r, http.StatusOK, toCommentResponses(comments))
	})
}

func (h *Handler) HandleCreateComment() http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PostID  string `json:"postId"`
			Content string `json:"content"`
		}

		err := decodeBody(r, &req)
		if err != nil {
			h.writeBadRequest(w, r, "invalid request body")

			return
		}

		comment, err := h.discussSvc.CreateComment(r.Context(), discuss.CreateCommentRequest{
			PostID:   req.PostID,
			AuthorID: authcontext.GetSubject(r.Context()),
			Content:  req.Content,
		})
		if err != nil {
			blockedID := ""
			if comment != nil {
				blockedID = comment.ID
			}

			h.writeDomainError(w, r, err, blockedID)

			return
		}

		h.writeJSON(w, r, http.StatusCreated, toCommentResponse(comment))
	})

	return h.AuthenticatedOnly(hf)
}

func (h *Handler) HandleGetComment() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		commentID := r.PathValue("commentId")

		if r.URL.Query().Get("status") == "blocked" {
			if !authcontext.IsAdmin(r.Context()) {
				h.writeForbidden(w, r)

				return
			}

			comment, err := h.discussSvc.GetInactiveComment(r.Context(), commentID)
			if err != nil {
				h.writeDomainError(w, r, err, "")

				return
			}

			h.writeJSON(w, r, http.StatusOK, toCommentResponse(comment))

			return
		}

		comment, err := h.discussSvc.GetComment(r.Context(), commentID)
		if err != nil {
			h.writeDomainError(w, r, err, "")

			return
		}

		h.writeJSON(w, r, http.StatusOK, toCommentResponse(comment))
	})
}

func (h *Handler) HandleUpdateComment() http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		commentID := r.PathValue("commentId")

		comment, err := h.discussSvc.GetComment(r.Context(), commentID)
		if err != nil {
			h.writeDomainError(w, r, err, "")

			return
		}

		if !canModify(r, &comment.AuthorID) {
			h.writeForbidden(w, r)

			return
		}

		var req struct {
			Content string `json:"content"`
		}

		err = decodeBody(r, &req)
		if err != nil {
			h.writeBadRequest(w, r, "invalid request body")

			return
		}

		updated, err := h.discussSvc.UpdateComment(r.Context(), commentID, discuss.UpdateCommentRequest{
			Content: req.Content,
		})
		if err != nil {
			h.writeDomainError(w, r, err, "")

			return
		}

		h.writeJSON(w, r, http.StatusOK, toCommentResponse(updated))
	})

	return h.AuthenticatedOnly(hf)
}

func (h *Handler) HandleDeleteComment() http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		commentID := r.PathValue("commentId")

		comment, err := h.discussSvc.GetComment(r.Context(), commentID)
		if err != nil {
			h.writeDomainError(w, r, err, "")

			return
		}

		if !canModify(r, &comment.AuthorID) {
			h.writeForbidden(w, r)

			return
		}

		err = h.discussSvc.DeleteComment(r.Context(), commentID)
		if err != nil {
			h.writeDomainError(w, r, err, "")

			return
		}

		w.WriteHeader(http.StatusNoContent)
	})

	return h.AuthenticatedOnly(hf)
}
