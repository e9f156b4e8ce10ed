package sqlite3_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/HCodeKeeper/ai-moderated-blog/authentication"
	"github.com/HCodeKeeper/ai-moderated-blog/autoreply"
	"github.com/HCodeKeeper/ai-moderated-blog/contents"
	"github.com/HCodeKeeper/ai-moderated-blog/db/sqlite3"
	"github.com/HCodeKeeper/ai-moderated-blog/discuss"
	"github.com/HCodeKeeper/ai-moderated-blog/moderation"
	"github.com/HCodeKeeper/ai-moderated-blog/replies"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"

	db, err := sqlite3.NewDB(ctx, dsn)
	require.NoError(t, err)

	// A single connection keeps the shared in-memory database alive for the
	// duration of the test.
	db.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, sqlite3.MigrateUp(ctx, db))

	return db
}

func insertTestUser(t *testing.T, db *sql.DB) *authentication.User {
	t.Helper()

	user := &authentication.User{
		ID:           uuid.NewString(),
		Username:     "author",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		RegisteredAt: time.Now().UTC(),
	}

	require.NoError(t, sqlite3.NewUserRepository(db).Insert(context.Background(), user))

	return user
}

func insertTestPost(t *testing.T, db *sql.DB, authorID string) *contents.Post {
	t.Helper()

	timeNow := time.Now().UTC()

	post := &contents.Post{
		ID:        uuid.NewString(),
		Title:     "Test Post",
		Content:   "post content",
		AuthorID:  authorID,
		CreatedAt: timeNow,
		UpdatedAt: timeNow,
	}

	require.NoError(t, sqlite3.NewPostRepository(db).Insert(context.Background(), post))

	return post
}

func insertTestComment(t *testing.T, db *sql.DB, postID, authorID string, createdAt time.Time, blocked bool) *discuss.Comment {
	t.Helper()

	comment := &discuss.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		AuthorID:  authorID,
		Content:   "a comment",
		IsBlocked: blocked,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	require.NoError(t, sqlite3.NewCommentRepository(db).Insert(context.Background(), comment))

	return comment
}

func TestUserRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	repo := sqlite3.NewUserRepository(db)

	user := insertTestUser(t, db)

	t.Run("find round trip", func(t *testing.T) {
		found, err := repo.Find(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, found.Email)
		assert.Equal(t, user.Username, found.Username)
	})

	t.Run("find by email", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, user.Email)
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.Find(ctx, uuid.NewString())

		var notFoundErr *authentication.UserNotFoundError
		assert.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := repo.FindByEmail(ctx, "ghost@example.com")

		var notFoundErr *authentication.UserByEmailNotFoundError
		assert.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("duplicate email maps to domain error", func(t *testing.T) {
		dup := &authentication.User{
			ID:           uuid.NewString(),
			Username:     "other",
			Email:        user.Email,
			PasswordHash: "hash",
			RegisteredAt: time.Now().UTC(),
		}

		err := repo.Insert(ctx, dup)

		var existsErr *authentication.UserAlreadyExistsError
		require.ErrorAs(t, err, &existsErr)
		assert.Equal(t, user.Email, existsErr.Email)
	})

	t.Run("list emails", func(t *testing.T) {
		emails, err := repo.ListEmails(ctx)
		require.NoError(t, err)
		assert.Contains(t, emails, user.Email)
	})

	t.Run("author exists", func(t *testing.T) {
		exists, err := repo.AuthorExists(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.AuthorExists(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestSessionRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	repo := sqlite3.NewSessionRepository(db)

	user := insertTestUser(t, db)

	timeNow := time.Now().UTC()
	session := &authentication.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: timeNow,
		ExpiresAt: timeNow.Add(time.Hour),
	}

	require.NoError(t, repo.Insert(ctx, session))

	found, err := repo.Find(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.UserID)

	require.NoError(t, repo.Delete(ctx, session.ID))

	_, err = repo.Find(ctx, session.ID)

	var notFoundErr *authentication.SessionNotFoundError
	assert.ErrorAs(t, err, &notFoundErr)

	err = repo.Delete(ctx, session.ID)
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestPostRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	repo := sqlite3.NewPostRepository(db)

	user := insertTestUser(t, db)

	t.Run("insert persists the auto-reply config with the post", func(t *testing.T) {
		timeNow := time.Now().UTC()
		postID := uuid.NewString()

		post := &contents.Post{
			ID:        postID,
			Title:     "Configured",
			Content:   "content",
			AuthorID:  user.ID,
			CreatedAt: timeNow,
			UpdatedAt: timeNow,
			AutoReplyConfig: &contents.AutoReplyConfig{
				PostID:    postID,
				DelaySecs: 120,
			},
		}

		require.NoError(t, repo.Insert(ctx, post))

		config, err := repo.FindAutoReplyConfig(ctx, postID)
		require.NoError(t, err)
		require.NotNil(t, config)
		assert.Equal(t, 120, config.DelaySecs)
	})

	t.Run("post without config yields nil config", func(t *testing.T) {
		post := insertTestPost(t, db, user.ID)

		config, err := repo.FindAutoReplyConfig(ctx, post.ID)
		require.NoError(t, err)
		assert.Nil(t, config)
	})

	t.Run("blocked posts are invisible to the active accessor", func(t *testing.T) {
		post := insertTestPost(t, db, user.ID)

		post.IsBlocked = true
		require.NoError(t, repo.Update(ctx, post))

		_, err := repo.FindActive(ctx, post.ID)

		var notExistErr *moderation.EntityDoesNotExistError
		require.ErrorAs(t, err, &notExistErr)
		assert.Equal(t, "Post", notExistErr.Entity)

		blocked, err := repo.FindBlocked(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, post.ID, blocked.ID)

		any, err := repo.FindPost(ctx, post.ID)
		require.NoError(t, err)
		assert.True(t, any.IsBlocked)

		exists, err := repo.ActivePostExists(ctx, post.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = repo.PostExists(ctx, post.ID)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("list active filters blocked posts", func(t *testing.T) {
		active := insertTestPost(t, db, user.ID)
		blocked := insertTestPost(t, db, user.ID)
		blocked.IsBlocked = true
		require.NoError(t, repo.Update(ctx, blocked))

		posts, err := repo.ListActive(ctx)
		require.NoError(t, err)

		ids := make([]string, 0, len(posts))
		for _, p := range posts {
			ids = append(ids, p.ID)
		}

		assert.Contains(t, ids, active.ID)
		assert.NotContains(t, ids, blocked.ID)
	})

	t.Run("delete cascades to comments, replies and config", func(t *testing.T) {
		timeNow := time.Now().UTC()
		postID := uuid.NewString()

		post := &contents.Post{
			ID:        postID,
			Title:     "Doomed",
			Content:   "content",
			AuthorID:  user.ID,
			CreatedAt: timeNow,
			UpdatedAt: timeNow,
			AutoReplyConfig: &contents.AutoReplyConfig{
				PostID:    postID,
				DelaySecs: 60,
			},
		}
		require.NoError(t, repo.Insert(ctx, post))

		comment := insertTestComment(t, db, postID, user.ID, timeNow, false)

		replyRepo := sqlite3.NewReplyRepository(db)
		reply := &replies.Reply{
			ID:        uuid.NewString(),
			CommentID: comment.ID,
			AuthorID:  &user.ID,
			Content:   "a reply",
			CreatedAt: timeNow,
			UpdatedAt: timeNow,
		}
		require.NoError(t, replyRepo.Insert(ctx, reply))

		require.NoError(t, repo.Delete(ctx, postID))

		commentRepo := sqlite3.NewCommentRepository(db)

		exists, err := commentRepo.CommentExists(ctx, comment.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		_, err = replyRepo.FindActive(ctx, reply.ID)

		var notExistErr *moderation.EntityDoesNotExistError
		assert.ErrorAs(t, err, &notExistErr)

		config, err := repo.FindAutoReplyConfig(ctx, postID)
		require.NoError(t, err)
		assert.Nil(t, config)
	})

	t.Run("delete unknown post", func(t *testing.T) {
		err := repo.Delete(ctx, uuid.NewString())

		var notExistErr *moderation.EntityDoesNotExistError
		assert.ErrorAs(t, err, &notExistErr)
	})
}

func TestCommentRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	repo := sqlite3.NewCommentRepository(db)

	user := insertTestUser(t, db)
	post := insertTestPost(t, db, user.ID)

	base := time.Now().UTC().Add(-time.Hour)

	oldest := insertTestComment(t, db, post.ID, user.ID, base, false)
	blocked := insertTestComment(t, db, post.ID, user.ID, base.Add(time.Minute), true)
	newest := insertTestComment(t, db, post.ID, user.ID, base.Add(2*time.Minute), false)

	t.Run("list by post is newest first", func(t *testing.T) {
		comments, err := repo.ListByPost(ctx, post.ID)
		require.NoError(t, err)

		require.Len(t, comments, 3)
		assert.Equal(t, newest.ID, comments[0].ID)
		assert.Equal(t, blocked.ID, comments[1].ID)
		assert.Equal(t, oldest.ID, comments[2].ID)
	})

	t.Run("list by blocked state", func(t *testing.T) {
		active, err := repo.ListByPostAndBlocked(ctx, post.ID, false)
		require.NoError(t, err)
		require.Len(t, active, 2)

		blockedOnly, err := repo.ListByPostAndBlocked(ctx, post.ID, true)
		require.NoError(t, err)
		require.Len(t, blockedOnly, 1)
		assert.Equal(t, blocked.ID, blockedOnly[0].ID)
	})

	t.Run("blocked comment is invisible to the active accessor", func(t *testing.T) {
		_, err := repo.FindActive(ctx, blocked.ID)

		var notExistErr *moderation.EntityDoesNotExistError
		require.ErrorAs(t, err, &notExistErr)
		assert.Equal(t, "Comment", notExistErr.Entity)

		found, err := repo.FindBlocked(ctx, blocked.ID)
		require.NoError(t, err)
		assert.Equal(t, blocked.ID, found.ID)

		exists, err := repo.ActiveCommentExists(ctx, blocked.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = repo.CommentExists(ctx, blocked.ID)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("update changes content and blocked state", func(t *testing.T) {
		comment := insertTestComment(t, db, post.ID, user.ID, time.Now().UTC(), false)

		comment.Content = "edited"
		comment.IsBlocked = true
		comment.UpdatedAt = time.Now().UTC()
		require.NoError(t, repo.Update(ctx, comment))

		found, err := repo.FindBlocked(ctx, comment.ID)
		require.NoError(t, err)
		assert.Equal(t, "edited", found.Content)
	})

	t.Run("delete cascades to replies", func(t *testing.T) {
		comment := insertTestComment(t, db, post.ID, user.ID, time.Now().UTC(), false)

		replyRepo := sqlite3.NewReplyRepository(db)

		timeNow := time.Now().UTC()
		parent := &replies.Reply{
			ID:        uuid.NewString(),
			CommentID: comment.ID,
			AuthorID:  &user.ID,
			Content:   "parent",
			CreatedAt: timeNow,
			UpdatedAt: timeNow,
		}
		require.NoError(t, replyRepo.Insert(ctx, parent))

		child := &replies.Reply{
			ID:            uuid.NewString(),
			CommentID:     comment.ID,
			ParentReplyID: &parent.ID,
			AuthorID:      &user.ID,
			Content:       "child",
			CreatedAt:     timeNow,
			UpdatedAt:     timeNow,
		}
		require.NoError(t, replyRepo.Insert(ctx, child))

		require.NoError(t, repo.Delete(ctx, comment.ID))

		listed, err := replyRepo.ListByComment(ctx, comment.ID)
		require.NoError(t, err)
		assert.Empty(t, listed)
	})
}

func TestReplyRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	repo := sqlite3.NewReplyRepository(db)

	user := insertTestUser(t, db)
	post := insertTestPost(t, db, user.ID)
	comment := insertTestComment(t, db, post.ID, user.ID, time.Now().UTC(), false)

	t.Run("insert rejects structurally invalid replies", func(t *testing.T) {
		timeNow := time.Now().UTC()

		err := repo.Insert(ctx, &replies.Reply{
			ID:        uuid.NewString(),
			CommentID: comment.ID,
			Content:   "anonymous",
			CreatedAt: timeNow,
			UpdatedAt: timeNow,
		})

		var anonErr *moderation.AnonymousReplyError
		assert.ErrorAs(t, err, &anonErr)
	})

	t.Run("ai reply persists without an author", func(t *testing.T) {
		timeNow := time.Now().UTC()
		reply := &replies.Reply{
			ID:            uuid.NewString(),
			CommentID:     comment.ID,
			Content:       "generated",
			IsAIGenerated: true,
			CreatedAt:     timeNow,
			UpdatedAt:     timeNow,
		}

		require.NoError(t, repo.Insert(ctx, reply))

		found, err := repo.FindActive(ctx, reply.ID)
		require.NoError(t, err)
		assert.Nil(t, found.AuthorID)
		assert.True(t, found.IsAIGenerated)
	})

	t.Run("threaded reply keeps its parent", func(t *testing.T) {
		timeNow := time.Now().UTC()
		parent := &replies.Reply{
			ID:        uuid.NewString(),
			CommentID: comment.ID,
			AuthorID:  &user.ID,
			Content:   "parent",
			CreatedAt: timeNow,
			UpdatedAt: timeNow,
		}
		require.NoError(t, repo.Insert(ctx, parent))

		child := &replies.Reply{
			ID:            uuid.NewString(),
			CommentID:     comment.ID,
			ParentReplyID: &parent.ID,
			AuthorID:      &user.ID,
			Content:       "child",
			CreatedAt:     timeNow,
			UpdatedAt:     timeNow,
		}
		require.NoError(t, repo.Insert(ctx, child))

		found, err := repo.FindActive(ctx, child.ID)
		require.NoError(t, err)
		require.NotNil(t, found.ParentReplyID)
		assert.Equal(t, parent.ID, *found.ParentReplyID)

		// Deleting the parent removes the whole subtree.
		require.NoError(t, repo.Delete(ctx, parent.ID))

		_, err = repo.FindActive(ctx, child.ID)

		var notExistErr *moderation.EntityDoesNotExistError
		assert.ErrorAs(t, err, &notExistErr)
	})

	t.Run("list by blocked state", func(t *testing.T) {
		other := insertTestComment(t, db, post.ID, user.ID, time.Now().UTC(), false)

		timeNow := time.Now().UTC()
		active := &replies.Reply{
			ID:        uuid.NewString(),
			CommentID: other.ID,
			AuthorID:  &user.ID,
			Content:   "active",
			CreatedAt: timeNow,
			UpdatedAt: timeNow,
		}
		require.NoError(t, repo.Insert(ctx, active))

		blocked := &replies.Reply{
			ID:        uuid.NewString(),
			CommentID: other.ID,
			AuthorID:  &user.ID,
			Content:   "blocked",
			IsBlocked: true,
			CreatedAt: timeNow,
			UpdatedAt: timeNow,
		}
		require.NoError(t, repo.Insert(ctx, blocked))

		all, err := repo.ListByComment(ctx, other.ID)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		activeOnly, err := repo.ListByCommentAndBlocked(ctx, other.ID, false)
		require.NoError(t, err)
		require.Len(t, activeOnly, 1)
		assert.Equal(t, active.ID, activeOnly[0].ID)
	})
}

func TestJobRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	repo := sqlite3.NewJobRepository(db)

	now := time.Now().UTC()

	insertJob := func(t *testing.T, runAt time.Time, status autoreply.JobStatus) *autoreply.Job {
		t.Helper()

		job := &autoreply.Job{
			ID:        uuid.NewString(),
			PostID:    uuid.NewString(),
			CommentID: uuid.NewString(),
			RunAt:     runAt,
			Status:    status,
			CreatedAt: now,
		}
		require.NoError(t, repo.Insert(ctx, job))

		return job
	}

	overdue := insertJob(t, now.Add(-2*time.Minute), autoreply.JobStatusPending)
	due := insertJob(t, now.Add(-time.Minute), autoreply.JobStatusPending)
	insertJob(t, now.Add(time.Hour), autoreply.JobStatusPending)
	insertJob(t, now.Add(-time.Hour), autoreply.JobStatusDone)
	insertJob(t, now.Add(-time.Hour), autoreply.JobStatusFailed)

	t.Run("due returns pending jobs oldest first", func(t *testing.T) {
		jobs, err := repo.Due(ctx, now, 10)
		require.NoError(t, err)

		require.Len(t, jobs, 2)
		assert.Equal(t, overdue.ID, jobs[0].ID)
		assert.Equal(t, due.ID, jobs[1].ID)
	})

	t.Run("due honors the batch limit", func(t *testing.T) {
		jobs, err := repo.Due(ctx, now, 1)
		require.NoError(t, err)

		require.Len(t, jobs, 1)
		assert.Equal(t, overdue.ID, jobs[0].ID)
	})

	t.Run("finished jobs leave the due set", func(t *testing.T) {
		require.NoError(t, repo.MarkDone(ctx, overdue.ID))
		require.NoError(t, repo.MarkFailed(ctx, due.ID))

		jobs, err := repo.Due(ctx, now, 10)
		require.NoError(t, err)
		assert.Empty(t, jobs)
	})
}

func TestCommentStatsRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	repo := sqlite3.NewCommentStatsRepository(db)

	user := insertTestUser(t, db)
	post := insertTestPost(t, db, user.ID)

	at := func(value string) time.Time {
		ts, err := time.ParseInLocation(time.DateTime, value, time.UTC)
		require.NoError(t, err)

		return ts
	}

	insertTestComment(t, db, post.ID, user.ID, at("2024-01-07 09:00:00"), false)
	insertTestComment(t, db, post.ID, user.ID, at("2024-01-07 17:30:00"), false)
	insertTestComment(t, db, post.ID, user.ID, at("2024-01-07 23:59:59"), true)
	insertTestComment(t, db, post.ID, user.ID, at("2024-01-08 00:00:00"), false)
	insertTestComment(t, db, post.ID, user.ID, at("2024-01-09 12:00:00"), false)

	counts, err := repo.CountCommentsByDay(ctx, at("2024-01-07 00:00:00"), at("2024-01-09 00:00:00"))
	require.NoError(t, err)

	byKey := map[string]int{}
	for _, count := range counts {
		key := count.Date.Format(time.DateOnly)
		if count.Blocked {
			key += " blocked"
		}

		byKey[key] = count.Count
	}

	assert.Equal(t, map[string]int{
		"2024-01-07":         2,
		"2024-01-07 blocked": 1,
		"2024-01-08":         1,
	}, byKey)
}
