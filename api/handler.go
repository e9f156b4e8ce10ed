// Package api exposes the blog over a JSON HTTP interface.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/HCodeKeeper/ai-moderated-blog/analytics"
	"github.com/HCodeKeeper/ai-moderated-blog/authentication"
	"github.com/HCodeKeeper/ai-moderated-blog/contents"
	"github.com/HCodeKeeper/ai-moderated-blog/discuss"
	"github.com/HCodeKeeper/ai-moderated-blog/replies"
	"github.com/gorilla/sessions"
)

type Handler struct {
	mux          *http.ServeMux
	handler      http.Handler
	authSvc      *authentication.Service
	contentsSvc  *contents.Service
	discussSvc   *discuss.Service
	repliesSvc   *replies.Service
	analyticsSvc *analytics.Service
	cookieStore  *sessions.CookieStore
	sessionName  string
}

var _ http.Handler = (*Handler)(nil)

func NewHandler(
	authSvc *authentication.Service,
	contentsSvc *contents.Service,
	discussSvc *discuss.Service,
	repliesSvc *replies.Service,
	analyticsSvc *analytics.Service,
	cookieStore *sessions.CookieStore,
	sessionName string,
) *Handler {
	h := &Handler{
		mux:          nil,
		handler:      nil,
		authSvc:      authSvc,
		contentsSvc:  contentsSvc,
		discussSvc:   discussSvc,
		repliesSvc:   repliesSvc,
		analyticsSvc: analyticsSvc,
		cookieStore:  cookieStore,
		sessionName:  sessionName,
	}

	{
		h.mux = &http.ServeMux{}
		h.handler = h.mux

		h.registerRoutes()
	}

	{
		h.handler = h.authMiddleware(h.handler)
		h.handler = recoverMiddleware(h.handler)
	}

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.Handle("POST /auth/register", h.HandleRegister())
	h.mux.Handle("POST /auth/login", h.HandleLogin())
	h.mux.Handle("POST /auth/logout", h.HandleLogout())

	h.mux.Handle("GET /users/{userId}", h.HandleGetUser())

	h.mux.Handle("GET /posts", h.HandleListPosts())
	h.mux.Handle("POST /posts", h.HandleCreatePost())
	h.mux.Handle("GET /posts/{postId}", h.HandleGetPost())
	h.mux.Handle("PUT /posts/{postId}", h.HandleUpdatePost())
	h.mux.Handle("DELETE /posts/{postId}", h.HandleDeletePost())
	h.mux.Handle("GET /posts/{postId}/comments", h.HandleListComments())

	h.mux.Handle("POST /comments", h.HandleCreateComment())
	h.mux.Handle("GET /comments/{commentId}", h.HandleGetComment())
	h.mux.Handle("PUT /comments/{commentId}", h.HandleUpdateComment())
	h.mux.Handle("DELETE /comments/{commentId}", h.HandleDeleteComment())
	h.mux.Handle("GET /comments/{commentId}/replies", h.HandleListReplies())

	h.mux.Handle("POST /replies", h.HandleCreateReply())
	h.mux.Handle("GET /replies/{replyId}", h.HandleGetReply())
	h.mux.Handle("PUT /replies/{replyId}", h.HandleUpdateReply())
	h.mux.Handle("DELETE /replies/{replyId}", h.HandleDeleteReply())

	h.mux.Handle("GET /analytics/comments/daily-breakdown", h.HandleDailyCommentBreakdown())
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func(ctx context.Context) {
			if err := recover(); err != nil {
				slog.ErrorContext(
					ctx,
					"recovered from panic",
					"error",
					err,
					"stack",
					string(debug.Stack()),
				)

				http.Error(w, "internal error occurred", http.StatusInternalServerError)
			}
		}(r.Context())

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response body", "error", err)
	}
}

func decodeBody(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
