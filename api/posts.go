package api

import (
	"net/http"
	"time"

	authcontext "github.com/HCodeKeeper/ai-moderated-blog/authentication/context"
	"github.com/HCodeKeeper/ai-moderated-blog/contents"
)

type postResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"authorId"`
	IsBlocked bool      `json:"isBlocked"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toPostResponse(post *contents.Post) postResponse {
	return postResponse{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		AuthorID:  post.AuthorID,
		IsBlocked: post.IsBlocked,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

func toPostResponses(posts []*contents.Post) []postResponse {
	result := make([]postResponse, 0, len(posts))
	for _, post := range posts {
		result = append(result, toPostResponse(post))
	}

	return result
}

func (h *Handler) HandleListPosts() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")

		switch status {
		case "", "active":
			posts, err := h.contentsSvc.ListActivePosts(r.Context())
			if err != nil {
				h.writeDomainError(w, r, err, "")

				return
			}

			h.writeJSON(w, r, http.StatusOK, toPostResponses(posts))
		case "all":
			if !authcontext.IsAdmin(r.Context()) {
				h.writeForbidden(w, r)

				return
			}

			posts, err := h.contentsSvc.ListPosts(r.Context())
			if err != nil {
				h.writeDomainError(w, r, err, "")

				return
			}

			h.writeJSON(w, r, http.StatusOK, toPostResponses(posts))
		default:
			h.writeBadRequest(w, r, "unknown status filter")
		}
	})
}

func (h *Handler) HandleCreatePost() http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title              string `json:"title"`
			Content            string `json:"content"`
			AutoReplyDelaySecs *int   `json:"autoReplyDelaySecs"`
		}

		err := decodeBody(r, &req)
		if err != nil {
			h.writeBadRequest(w, r, "invalid request body")

			return
		}

		post, err := h.contentsSvc.CreatePost(r.Context(), contents.CreatePostRequest{
			AuthorID:           authcontext.GetSubject(r.Context()),
			Title:              req.Title,
			Content:            req.Content,
			AutoReplyDelaySecs: req.AutoReplyDelaySecs,
		})
		if err != nil {
			blockedID := ""
			if post != nil {
				blockedID = post.ID
			}

			h.writeDomainError(w, r, err, blockedID)

			return
		}

		h.writeJSON(w, r, http.StatusCreated, toPostResponse(post))
	})

	return h.AuthenticatedOnly(hf)
}

func (h *Handler) HandleGetPost() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postID := r.PathValue("postId")

		if r.URL.Query().Get("status") == "blocked" {
			if !authcontext.IsAdmin(r.Context()) {
				h.writeForbidden(w, r)

				return
			}

			post, err := h.contentsSvc.GetInactivePost(r.Context(), postID)
			if err != nil {
				h.writeDomainError(w, r, err, "")

				return
			}

			h.writeJSON(w, r, http.StatusOK, toPostResponse(post))

			return
		}

		post, err := h.contentsSvc.GetPost(r.Context(), postID)
		if err != nil {
			h.writeDomainError(w, r, err, "")

			return
		}

		h.writeJSON(w, r, http.StatusOK, toPostResponse(post))
	})
}

func (h *Handler) HandleUpdatePost() http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postID := r.PathValue("postId")

		post, err := h.contentsSvc.GetPost(r.Context(), postID)
		if err != nil {
			h.writeDomainError(w, r, err, "")

			return
		}

		if !canModify(r, &post.AuthorID) {
			h.writeForbidden(w, r)

			return
		}

		var req struct {
			Title   string `json:"title"`
			Content string `json:"content"`
		}

		err = decodeBody(r, &req)
		if err != nil {
			h.writeBadRequest(w, r, "invalid request body")

			return
		}

		updated, err := h.contentsSvc.UpdatePost(r.Context(), postID, contents.UpdatePostRequest{
			Title:   req.Title,
			Content: req.Content,
		})
		if err != nil {
			h.writeDomainError(w, r, err, "")

			return
		}

		h.writeJSON(w, r, http.StatusOK, toPostResponse(updated))
	})

	return h.AuthenticatedOnly(hf)
}

func (h *Handler) HandleDeletePost() http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postID := r.PathValue("postId")

		post, err := h.contentsSvc.GetPost(r.Context(), postID)
		if err != nil {
			h.writeDomainError(w, r, err, "")

			return
		}

		if !canModify(r, &post.AuthorID) {
			h.writeForbidden(w, r)

			return
		}

		err = h.contentsSvc.DeletePost(r.Context(), postID)
		if err != nil {
			h.writeDomainError(w, r, err, "")

			return
		}

		w.WriteHeader(http.StatusNoContent)
	})

	return h.AuthenticatedOnly(hf)
}
