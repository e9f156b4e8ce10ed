package api

import (
	"net/http"
	"time"

	authcontext "github.com/HCodeKeeper/ai-moderated-blog/authentication/context"
	"github.com/HCodeKeeper/ai-moderated-blog/replies"
)

type replyResponse struct {
	ID            string    `json:"id"`
	CommentID     string    `json:"commentId"`
	ParentReplyID *string   `json:"parentReplyId"`
	AuthorID      *string   `json:"authorId"`
	Content       string    `json:"content"`
	IsAIGenerated bool      `json:"isAiGenerated"`
	IsBlocked     bool      `json:"isBlocked"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toReplyResponse(reply *replies.Reply) replyResponse {
	return replyResponse{
		ID:            reply.ID,
		CommentID:     reply.CommentID,
		ParentReplyID: reply.ParentReplyID,
		AuthorID:      reply.AuthorID,
		Content:       reply.Content,
		IsAIGenerated: reply.IsAIGenerated,
		IsBlocked:     reply.IsBlocked,
		CreatedAt:     reply.CreatedAt,
		UpdatedAt:     reply.UpdatedAt,
	}
}

func toReplyResponses(items []*replies.Reply) []replyResponse {
	result := make([]replyResponse, 0, len(items))
	for _, reply := range items {
		result = append(result, toReplyResponse(reply))
	}

	return result
}

func (h *Handler) HandleListReplies() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		commentID := r.PathValue("commentId")
		status := r.URL.Query().Get("status")

		var (
			items []*replies.Reply
			err   error
		)

		switch status {
		case "", "active":
			items, err = h.repliesSvc.ListActiveRepliesByComment(r.Context(), commentID)
		case "all":
			if !authcontext.IsAdmin(r.Context()) {
				h.writeForbidden(w, r)

				return
			}

			items, err = h.repliesSvc.ListRepliesByComment(r.Context(), commentID)
		case "blocked":
			if !authcontext.IsAdmin(r.Context()) {
				h.writeForbidden(w, r)

				return
			}

			items, err = h.repliesSvc.ListInactiveRepliesByComment(r.Context(), commentID)
		default:
			h.writeBadRequest(w, r, "unknown status filter")

			return
		}

		if err != nil {
			h.writeDomainError(w, r, err, "")

			return
		}

		h.writeJSON(w, r, http.StatusOK, toReplyResponses(items))
	})
}

func (h *Handler) HandleCreateReply() http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CommentID     string  `json:"commentId"`
			Content       string  `json:"content"`
			ParentReplyID *string `json:"parentReplyId"`
		}

		err := decodeBody(r, &req)
		if err != nil {
			h.writeBadRequest(w, r, "invalid request body")

			return
		}

		reply, err := h.repliesSvc.CreateReply(r.Context(), replies.CreateReplyRequest{
			CommentID:     req.CommentID,
			AuthorID:      authcontext.GetSubject(r.Context()),
			Content:       req.Content,
			ParentReplyID: req.ParentReplyID,
		})
		if err != nil {
			blockedID := ""
			if reply != nil {
				blockedID = reply.ID
			}

			h.writeDomainError(w, r, err, blockedID)

			return
		}

		h.writeJSON(w, r, http.StatusCreated, toReplyResponse(reply))
	})

	return h.AuthenticatedOnly(hf)
}

func (h *Handler) HandleGetReply() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		replyID := r.PathValue("replyId")

		if r.URL.Query().Get("status") == "blocked" {
			if !authcontext.IsAdmin(r.Context()) {
				h.writeForbidden(w, r)

				return
			}

			reply, err := h.repliesSvc.GetInactiveReply(r.Context(), replyID)
			if err != nil {
				h.writeDomainError(w, r, err, "")

				return
			}

			h.writeJSON(w, r, http.StatusOK, toReplyResponse(reply))

			return
		}

		reply, err := h.repliesSvc.GetReply(r.Context(), replyID)
		if err != nil {
			h.writeDomainError(w, r, err, "")

			return
		}

		h.writeJSON(w, r, http.StatusOK, toReplyResponse(reply))
	})
}

func (h *Handler) HandleUpdateReply() http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		replyID := r.PathValue("replyId")

		reply, err := h.repliesSvc.GetReply(r.Context(), replyID)
		if err != nil {
			h.writeDomainError(w, r, err, "")

			return
		}

		if !canModify(r, reply.AuthorID) {
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

		updated, err := h.repliesSvc.UpdateReply(r.Context(), replyID, replies.UpdateReplyRequest{
			Content: req.Content,
		})
		if err != nil {
			h.writeDomainError(w, r, err, "")

			return
		}

		h.writeJSON(w, r, http.StatusOK, toReplyResponse(updated))
	})

	return h.AuthenticatedOnly(hf)
}

func (h *Handler) HandleDeleteReply() http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		replyID := r.PathValue("replyId")

		reply, err := h.repliesSvc.GetReply(r.Context(), replyID)
		if err != nil {
			h.writeDomainError(w, r, err, "")

			return
		}

		if !canModify(r, reply.AuthorID) {
			h.writeForbidden(w, r)

			return
		}

		err = h.repliesSvc.DeleteReply(r.Context(), replyID)
		if err != nil {
			h.writeDomainError(w, r, err, "")

			return
		}

		w.WriteHeader(http.StatusNoContent)
	})

	return h.AuthenticatedOnly(hf)
}
