package replies_test

import (
	"context"
	"testing"

	"github.com/HCodeKeeper/ai-moderated-blog/moderation"
	"github.com/HCodeKeeper/ai-moderated-blog/replies"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReplyRepo struct {
	replies map[string]*replies.Reply
	updates int
}

func newStubReplyRepo() *stubReplyRepo {
	return &stubReplyRepo{replies: map[string]*replies.Reply{}}
}

func (r *stubReplyRepo) Insert(_ context.Context, reply *replies.Reply) error {
	err := reply.Validate()
	if err != nil {
		return err
	}

	copied := *reply
	r.replies[reply.ID] = &copied

	return nil
}

func (r *stubReplyRepo) FindActive(_ context.Context, replyID string) (*replies.Reply, error) {
	reply, ok := r.replies[replyID]
	if !ok || reply.IsBlocked {
		return nil, &moderation.EntityDoesNotExistError{Entity: "Reply", ID: replyID}
	}

	copied := *reply

	return &copied, nil
}

func (r *stubReplyRepo) FindBlocked(_ context.Context, replyID string) (*replies.Reply, error) {
	reply, ok := r.replies[replyID]
	if !ok || !reply.IsBlocked {
		return nil, &moderation.EntityDoesNotExistError{Entity: "Reply", ID: replyID}
	}

	copied := *reply

	return &copied, nil
}

func (r *stubReplyRepo) ListByComment(_ context.Context, commentID string) ([]*replies.Reply, error) {
	result := make([]*replies.Reply, 0)

	for _, reply := range r.replies {
		if reply.CommentID == commentID {
			result = append(result, reply)
		}
	}

	return result, nil
}

func (r *stubReplyRepo) ListByCommentAndBlocked(
	_ context.Context,
	commentID string,
	blocked bool,
) ([]*replies.Reply, error) {
	result := make([]*replies.Reply, 0)

	for _, reply := range r.replies {
		if reply.CommentID == commentID && reply.IsBlocked == blocked {
			result = append(result, reply)
		}
	}

	return result, nil
}

func (r *stubReplyRepo) Update(_ context.Context, reply *replies.Reply) error {
	copied := *reply
	r.replies[reply.ID] = &copied
	r.updates++

	return nil
}

func (r *stubReplyRepo) Delete(_ context.Context, replyID string) error {
	if _, ok := r.replies[replyID]; !ok {
		return &moderation.EntityDoesNotExistError{Entity: "Reply", ID: replyID}
	}

	delete(r.replies, replyID)

	return nil
}

type stubComments struct {
	active  map[string]bool
	blocked map[string]bool
}

func (d *stubComments) CommentExists(_ context.Context, commentID string) (bool, error) {
	return d.active[commentID] || d.blocked[commentID], nil
}

func (d *stubComments) ActiveCommentExists(_ context.Context, commentID string) (bool, error) {
	return d.active[commentID], nil
}

type stubAuthors struct {
	known map[string]bool
}

func (d *stubAuthors) AuthorExists(_ context.Context, authorID string) (bool, error) {
	return d.known[authorID], nil
}

type testFixture struct {
	svc              *replies.Service
	repo             *stubReplyRepo
	commentID        string
	otherCommentID   string
	blockedCommentID string
	authorID         string
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		repo:             newStubReplyRepo(),
		commentID:        uuid.NewString(),
		otherCommentID:   uuid.NewString(),
		blockedCommentID: uuid.NewString(),
		authorID:         uuid.NewString(),
	}

	comments := &stubComments{
		active:  map[string]bool{f.commentID: true, f.otherCommentID: true},
		blocked: map[string]bool{f.blockedCommentID: true},
	}
	authors := &stubAuthors{known: map[string]bool{f.authorID: true}}

	f.svc = replies.NewService(f.repo, comments, authors, moderation.NewWordListDetector())

	return f
}

func TestCreateReply(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("clean reply", func(t *testing.T) {
		t.Parallel()

		f := newTestFixture(t)

		reply, err := f.svc.CreateReply(ctx, replies.CreateReplyRequest{
			CommentID: f.commentID,
			AuthorID:  f.authorID,
			Content:   "I agree with this comment",
		})
		require.NoError(t, err)
		assert.False(t, reply.IsBlocked)
		assert.False(t, reply.IsAIGenerated)
		require.NotNil(t, reply.AuthorID)
		assert.Equal(t, f.authorID, *reply.AuthorID)
		assert.Nil(t, reply.ParentReplyID)
	})

	t.Run("profane reply is persisted blocked and reported", func(t *testing.T) {
		t.Parallel()

		f := newTestFixture(t)

		reply, err := f.svc.CreateReply(ctx, replies.CreateReplyRequest{
			CommentID: f.commentID,
			AuthorID:  f.authorID,
			Content:   "that is fucking wrong",
		})

		profanityErr := &moderation.ContentContainsProfanityError{}
		require.ErrorAs(t, err, &profanityErr)
		require.NotNil(t, reply)
		assert.True(t, reply.IsBlocked)
		assert.Contains(t, f.repo.replies, reply.ID)
	})

	t.Run("reply under a blocked comment is rejected", func(t *testing.T) {
		t.Parallel()

		f := newTestFixture(t)

		_, err := f.svc.CreateReply(ctx, replies.CreateReplyRequest{
			CommentID: f.blockedCommentID,
			AuthorID:  f.authorID,
			Content:   "hello?",
		})

		notExistErr := &moderation.EntityDoesNotExistError{}
		require.ErrorAs(t, err, &notExistErr)
		assert.Equal(t, "Comment", notExistErr.Entity)
	})

	t.Run("nested reply under a parent from the same comment", func(t *testing.T) {
		t.Parallel()

		f := newTestFixture(t)

		parent, err := f.svc.CreateReply(ctx, replies.CreateReplyRequest{
			CommentID: f.commentID,
			AuthorID:  f.authorID,
			Content:   "parent reply",
		})
		require.NoError(t, err)

		child, err := f.svc.CreateReply(ctx, replies.CreateReplyRequest{
			CommentID:     f.commentID,
			AuthorID:      f.authorID,
			Content:       "child reply",
			ParentReplyID: &parent.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, child.ParentReplyID)
		assert.Equal(t, parent.ID, *child.ParentReplyID)
	})

	t.Run("parent from another comment is reported as not found", func(t *testing.T) {
		t.Parallel()

		f := newTestFixture(t)

		parent, err := f.svc.CreateReply(ctx, replies.CreateReplyRequest{
			CommentID: f.otherCommentID,
			AuthorID:  f.authorID,
			Content:   "parent in another thread",
		})
		require.NoError(t, err)

		_, err = f.svc.CreateReply(ctx, replies.CreateReplyRequest{
			CommentID:     f.commentID,
			AuthorID:      f.authorID,
			Content:       "child reply",
			ParentReplyID: &parent.ID,
		})

		notExistErr := &moderation.EntityDoesNotExistError{}
		require.ErrorAs(t, err, &notExistErr)
		assert.Equal(t, "Parent Reply", notExistErr.Entity)
	})

	t.Run("unknown parent is reported as not found", func(t *testing.T) {
		t.Parallel()

		f := newTestFixture(t)

		parentID := uuid.NewString()

		_, err := f.svc.CreateReply(ctx, replies.CreateReplyRequest{
			CommentID:     f.commentID,
			AuthorID:      f.authorID,
			Content:       "child reply",
			ParentReplyID: &parentID,
		})

		notExistErr := &moderation.EntityDoesNotExistError{}
		require.ErrorAs(t, err, &notExistErr)
		assert.Equal(t, "Parent Reply", notExistErr.Entity)
	})
}

func TestCreateAIReply(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("no author and never blocked", func(t *testing.T) {
		t.Parallel()

		f := newTestFixture(t)

		reply, err := f.svc.CreateAIReply(ctx, replies.CreateAIReplyRequest{
			CommentID: f.commentID,
			Content:   "Thanks for your comment, even this fucking one",
		})
		require.NoError(t, err)
		assert.Nil(t, reply.AuthorID)
		assert.True(t, reply.IsAIGenerated)
		assert.False(t, reply.IsBlocked)
	})

	t.Run("requires an active comment", func(t *testing.T) {
		t.Parallel()

		f := newTestFixture(t)

		_, err := f.svc.CreateAIReply(ctx, replies.CreateAIReplyRequest{
			CommentID: f.blockedCommentID,
			Content:   "hello",
		})

		notExistErr := &moderation.EntityDoesNotExistError{}
		require.ErrorAs(t, err, &notExistErr)
		assert.Equal(t, "Comment", notExistErr.Entity)
	})

	t.Run("length bound still applies", func(t *testing.T) {
		t.Parallel()

		f := newTestFixture(t)

		_, err := f.svc.CreateAIReply(ctx, replies.CreateAIReplyRequest{
			CommentID: f.commentID,
			Content:   "",
		})

		invalidContentErr := &moderation.InvalidContentLengthError{}
		require.ErrorAs(t, err, &invalidContentErr)
	})
}

func TestReplyValidate(t *testing.T) {
	t.Parallel()

	authorID := uuid.NewString()

	t.Run("anonymous human reply is invalid", func(t *testing.T) {
		t.Parallel()

		reply := &replies.Reply{ID: uuid.NewString(), CommentID: uuid.NewString(), Content: "hi"}

		anonymousErr := &moderation.AnonymousReplyError{}
		require.ErrorAs(t, reply.Validate(), &anonymousErr)
	})

	t.Run("self parent is invalid", func(t *testing.T) {
		t.Parallel()

		id := uuid.NewString()
		reply := &replies.Reply{
			ID:            id,
			CommentID:     uuid.NewString(),
			ParentReplyID: &id,
			AuthorID:      &authorID,
			Content:       "hi",
		}

		selfErr := &moderation.SelfReplyError{}
		require.ErrorAs(t, reply.Validate(), &selfErr)
	})

	t.Run("ai reply without author is valid", func(t *testing.T) {
		t.Parallel()

		reply := &replies.Reply{
			ID:            uuid.NewString(),
			CommentID:     uuid.NewString(),
			Content:       "hi",
			IsAIGenerated: true,
		}

		require.NoError(t, reply.Validate())
	})
}

func TestUpdateReply(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newTestFixture(t)

	reply, err := f.svc.CreateReply(ctx, replies.CreateReplyRequest{
		CommentID: f.commentID,
		AuthorID:  f.authorID,
		Content:   "original",
	})
	require.NoError(t, err)

	t.Run("profane update leaves the reply untouched", func(t *testing.T) {
		_, err := f.svc.UpdateReply(ctx, reply.ID, replies.UpdateReplyRequest{
			Content: "fucking nonsense",
		})

		profanityErr := &moderation.ContentContainsProfanityError{}
		require.ErrorAs(t, err, &profanityErr)
		assert.Zero(t, f.repo.updates)
	})

	t.Run("clean update persists", func(t *testing.T) {
		updated, err := f.svc.UpdateReply(ctx, reply.ID, replies.UpdateReplyRequest{
			Content: "revised",
		})
		require.NoError(t, err)
		assert.Equal(t, "revised", updated.Content)
		assert.Equal(t, 1, f.repo.updates)
	})
}

func TestListReplies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newTestFixture(t)

	_, err := f.svc.CreateReply(ctx, replies.CreateReplyRequest{
		CommentID: f.commentID,
		AuthorID:  f.authorID,
		Content:   "a fine reply",
	})
	require.NoError(t, err)

	_, err = f.svc.CreateReply(ctx, replies.CreateReplyRequest{
		CommentID: f.commentID,
		AuthorID:  f.authorID,
		Content:   "a shit reply",
	})
	profanityErr := &moderation.ContentContainsProfanityError{}
	require.ErrorAs(t, err, &profanityErr)

	all, err := f.svc.ListRepliesByComment(ctx, f.commentID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := f.svc.ListActiveRepliesByComment(ctx, f.commentID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.False(t, active[0].IsBlocked)

	blocked, err := f.svc.ListInactiveRepliesByComment(ctx, f.commentID)
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	assert.True(t, blocked[0].IsBlocked)

	_, err = f.svc.ListRepliesByComment(ctx, uuid.NewString())
	notExistErr := &moderation.EntityDoesNotExistError{}
	require.ErrorAs(t, err, &notExistErr)
}
