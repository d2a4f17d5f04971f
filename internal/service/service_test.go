package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-platform/internal/auth"
	"blog-platform/internal/domain"
	"blog-platform/internal/repository"
	"blog-platform/internal/repository/sqlite"
	"blog-platform/internal/storage"
)

const testBucket = "test-bucket"

type env struct {
	db       *sql.DB
	users    *sqlite.UserRepository
	posts    *sqlite.PostRepository
	comments *sqlite.CommentRepository
	uow      repository.UnitOfWork
	store    *fakeStorage

	userSvc    UserService
	postSvc    PostService
	commentSvc CommentService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	users := sqlite.NewUserRepository(db)
	posts := sqlite.NewPostRepository(db)
	comments := sqlite.NewCommentRepository(db)
	require.NoError(t, users.Init(ctx))
	require.NoError(t, posts.Init(ctx))
	require.NoError(t, comments.Init(ctx))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	uow := sqlite.NewUnitOfWork(db)
	store := &fakeStorage{}

	return &env{
		db:         db,
		users:      users,
		posts:      posts,
		comments:   comments,
		uow:        uow,
		store:      store,
		userSvc:    NewUserService(users, posts, comments, uow, logger),
		postSvc:    NewPostService(posts, comments, uow, store, testBucket, logger),
		commentSvc: NewCommentService(comments, posts, logger),
	}
}

func (e *env) register(t *testing.T, name, email string) *domain.User {
	t.Helper()
	user, err := e.userSvc.Register(context.Background(), RegisterInput{
		Name:     name,
		Email:    email,
		Password: "password123",
	})
	require.NoError(t, err)
	return user
}

func (e *env) createAdmin(t *testing.T, email string) *domain.User {
	t.Helper()
	admin := &domain.User{
		Name:         "Admin",
		Email:        email,
		PasswordHash: "hash",
		Role:         domain.RoleAdmin,
	}
	_, err := e.users.Create(context.Background(), admin)
	require.NoError(t, err)
	return admin
}

func (e *env) createPost(t *testing.T, authorID int64, imageURL string) *domain.Post {
	t.Helper()
	post, err := e.postSvc.CreatePost(context.Background(), authorID, CreatePostInput{
		Title:    "Title",
		Content:  "Content",
		ImageURL: imageURL,
	})
	require.NoError(t, err)
	return post
}

func (e *env) createComment(t *testing.T, authorID, postID int64) *domain.Comment {
	t.Helper()
	comment, err := e.commentSvc.CreateComment(context.Background(), authorID, CreateCommentInput{
		PostID:  postID,
		Content: "a comment",
	})
	require.NoError(t, err)
	return comment
}

func principalOf(user *domain.User) auth.Principal {
	return auth.Principal{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
}

// fakeStorage stands in for the S3 service; URLs look like
// https://test-bucket.test/<key>.
type fakeStorage struct {
	deleted   []string
	deleteErr error
}

func (f *fakeStorage) UploadObject(ctx context.Context, input storage.UploadInput) (string, error) {
	return f.ObjectURL(input.Bucket, input.Key), nil
}

func (f *fakeStorage) DeleteObject(ctx context.Context, bucket, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) ListObjects(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (f *fakeStorage) ObjectURL(bucket, key string) string {
	return fmt.Sprintf("https://%s.test/%s", bucket, key)
}

func (f *fakeStorage) KeyFromURL(rawURL, bucket string) (string, bool) {
	prefix := fmt.Sprintf("https://%s.test/", bucket)
	key, ok := strings.CutPrefix(rawURL, prefix)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

func TestRegister_DuplicateEmailConflict(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first := e.register(t, "Ana", "ana@example.com")
	assert.Empty(t, first.PasswordHash)
	assert.Equal(t, domain.RoleUser, first.Role)

	_, err := e.userSvc.Register(ctx, RegisterInput{
		Name:     "Impostor",
		Email:    "ana@example.com",
		Password: "otherpassword",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	// first user unaffected: the original credentials still authenticate
	got, err := e.userSvc.Authenticate(ctx, "ana@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "Ana", got.Name)
}

func TestRegister_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.userSvc.Register(ctx, RegisterInput{Name: "x", Email: "", Password: "password123"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.userSvc.Register(ctx, RegisterInput{Name: "x", Email: "not-an-email", Password: "password123"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.userSvc.Register(ctx, RegisterInput{Name: "x", Email: "x@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuthenticate_InvalidCredentials(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.register(t, "Ana", "ana@example.com")

	_, err := e.userSvc.Authenticate(ctx, "ana@example.com", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = e.userSvc.Authenticate(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreatePost_PopulatesAuthor(t *testing.T) {
	e := newEnv(t)

	author := e.register(t, "Ana", "ana@example.com")
	post := e.createPost(t, author.ID, "")

	require.NotNil(t, post.Author)
	assert.Equal(t, "Ana", post.Author.Name)
	assert.Zero(t, post.CommentCount)
}

func TestCreatePost_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.register(t, "Ana", "ana@example.com")

	_, err := e.postSvc.CreatePost(ctx, author.ID, CreatePostInput{Content: "body"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.postSvc.CreatePost(ctx, author.ID, CreatePostInput{
		Title:   strings.Repeat("t", domain.MaxPostTitleLen+1),
		Content: "body",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdatePost_NonOwnerForbidden(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	owner := e.register(t, "Ana", "ana@example.com")
	other := e.register(t, "Eve", "eve@example.com")
	post := e.createPost(t, owner.ID, "")

	_, err := e.postSvc.UpdatePost(ctx, principalOf(other), post.ID, UpdatePostInput{
		Title:       "Hacked",
		Description: "changed",
		Content:     "changed",
	})
	assert.ErrorIs(t, err, ErrForbidden)

	// post unchanged
	got, err := e.postSvc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Title", got.Title)
	assert.Equal(t, "Content", got.Content)
}

func TestUpdatePost_AdminAllowed(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	owner := e.register(t, "Ana", "ana@example.com")
	admin := e.createAdmin(t, "admin@example.com")
	post := e.createPost(t, owner.ID, "")

	updated, err := e.postSvc.UpdatePost(ctx, principalOf(admin), post.ID, UpdatePostInput{
		Title:       "Moderated",
		Description: "edited by admin",
		Content:     "cleaned up",
	})
	require.NoError(t, err)
	assert.Equal(t, "Moderated", updated.Title)
}

func TestDeletePost_RemovesComments(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	owner := e.register(t, "Ana", "ana@example.com")
	commenter := e.register(t, "Bob", "bob@example.com")
	post := e.createPost(t, owner.ID, "")
	e.createComment(t, commenter.ID, post.ID)
	e.createComment(t, owner.ID, post.ID)

	before, err := e.comments.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, 2, before)

	result, err := e.postSvc.DeletePost(ctx, principalOf(owner), post.ID)
	require.NoError(t, err)
	assert.True(t, result.PostDeleted)
	assert.False(t, result.ImageDeleted)

	after, err := e.comments.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, after)

	_, err = e.postSvc.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePost_ImageDeleteReported(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	owner := e.register(t, "Ana", "ana@example.com")
	imageURL := e.store.ObjectURL(testBucket, "blog-uploads/pic.png")
	post := e.createPost(t, owner.ID, imageURL)

	result, err := e.postSvc.DeletePost(ctx, principalOf(owner), post.ID)
	require.NoError(t, err)
	assert.True(t, result.PostDeleted)
	assert.True(t, result.ImageDeleted)
	assert.Equal(t, []string{"blog-uploads/pic.png"}, e.store.deleted)
}

func TestDeletePost_ImageDeleteFailureIsPartialSuccess(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	owner := e.register(t, "Ana", "ana@example.com")
	imageURL := e.store.ObjectURL(testBucket, "blog-uploads/pic.png")
	post := e.createPost(t, owner.ID, imageURL)

	e.store.deleteErr = errors.New("blob store unavailable")

	result, err := e.postSvc.DeletePost(ctx, principalOf(owner), post.ID)
	require.NoError(t, err)
	assert.True(t, result.PostDeleted)
	assert.False(t, result.ImageDeleted)

	_, err = e.postSvc.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePost_NonOwnerForbidden(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	owner := e.register(t, "Ana", "ana@example.com")
	other := e.register(t, "Eve", "eve@example.com")
	post := e.createPost(t, owner.ID, "")
	e.createComment(t, other.ID, post.ID)

	_, err := e.postSvc.DeletePost(ctx, principalOf(other), post.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := e.postSvc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CommentCount)
}

func TestDeleteUser_CascadeRemovesOwnedContent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	target := e.register(t, "Target", "target@example.com")
	bystander := e.register(t, "Bob", "bob@example.com")

	targetPost := e.createPost(t, target.ID, "")
	bystanderPost := e.createPost(t, bystander.ID, "")

	e.createComment(t, target.ID, bystanderPost.ID)    // authored by target, elsewhere
	e.createComment(t, bystander.ID, targetPost.ID)    // by bystander, on target's post
	bystanderOwn := e.createComment(t, bystander.ID, bystanderPost.ID)

	require.NoError(t, e.userSvc.DeleteUser(ctx, target.ID))

	_, err := e.userSvc.GetByID(ctx, target.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.postSvc.GetPost(ctx, targetPost.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	onTargetPost, err := e.comments.CountByPost(ctx, targetPost.ID)
	require.NoError(t, err)
	assert.Zero(t, onTargetPost)

	// the bystander's post survives with only their own comment left
	remaining, err := e.commentSvc.ListByPost(ctx, bystanderPost.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, bystanderOwn.ID, remaining[0].ID)
}

func TestDeleteUser_AdminProtected(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	admin := e.createAdmin(t, "admin@example.com")

	err := e.userSvc.DeleteUser(ctx, admin.ID)
	assert.ErrorIs(t, err, ErrAdminProtected)

	_, err = e.userSvc.GetByID(ctx, admin.ID)
	assert.NoError(t, err)
}

func TestDeleteUser_Missing(t *testing.T) {
	e := newEnv(t)
	err := e.userSvc.DeleteUser(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

// failingUOW forces the final step of the cascade to fail so the whole
// transaction must roll back.
type failingUOW struct {
	inner repository.UnitOfWork
}

func (f *failingUOW) Begin(ctx context.Context) (repository.Transaction, error) {
	tx, err := f.inner.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &failingTx{Transaction: tx}, nil
}

type failingTx struct {
	repository.Transaction
}

func (f *failingTx) Users() repository.UserRepository {
	return &failingUserRepo{UserRepository: f.Transaction.Users()}
}

type failingUserRepo struct {
	repository.UserRepository
}

func (f *failingUserRepo) Delete(ctx context.Context, id int64) error {
	return errors.New("simulated failure")
}

func TestDeleteUser_MidTransactionFailureLeavesEverything(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := NewUserService(e.users, e.posts, e.comments, &failingUOW{inner: e.uow}, logger)

	target := e.register(t, "Target", "target@example.com")
	other := e.register(t, "Bob", "bob@example.com")
	post := e.createPost(t, target.ID, "")
	e.createComment(t, target.ID, post.ID)
	e.createComment(t, other.ID, post.ID)

	err := svc.DeleteUser(ctx, target.ID)
	require.Error(t, err)

	// user, post and all comments untouched
	_, err = e.userSvc.GetByID(ctx, target.ID)
	assert.NoError(t, err)
	got, err := e.postSvc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CommentCount)
}

func TestComments_DeletedAuthorRendersPlaceholder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	author := e.register(t, "Ana", "ana@example.com")
	ghost := e.register(t, "Ghost", "ghost@example.com")
	post := e.createPost(t, author.ID, "")
	e.createComment(t, ghost.ID, post.ID)

	// delete the commenter's row directly, leaving the comment dangling
	require.NoError(t, e.users.Delete(ctx, ghost.ID))

	comments, err := e.commentSvc.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.NotNil(t, comments[0].Author)
	assert.Equal(t, domain.UnknownUserLabel, comments[0].Author.Name)
}

func TestComments_DeletedPostRendersPlaceholderInAdminList(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	author := e.register(t, "Ana", "ana@example.com")
	post := e.createPost(t, author.ID, "")
	e.createComment(t, author.ID, post.ID)

	// drop the post row only, keeping the comment
	require.NoError(t, e.posts.Delete(ctx, post.ID))

	comments, err := e.commentSvc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.NotNil(t, comments[0].Post)
	assert.Equal(t, domain.DeletedPostLabel, comments[0].Post.Title)
}

func TestCreateComment_MissingPost(t *testing.T) {
	e := newEnv(t)
	author := e.register(t, "Ana", "ana@example.com")

	_, err := e.commentSvc.CreateComment(context.Background(), author.ID, CreateCommentInput{
		PostID:  999,
		Content: "into the void",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateComment_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.register(t, "Ana", "ana@example.com")
	post := e.createPost(t, author.ID, "")

	_, err := e.commentSvc.CreateComment(ctx, author.ID, CreateCommentInput{PostID: post.ID})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.commentSvc.CreateComment(ctx, author.ID, CreateCommentInput{
		PostID:  post.ID,
		Content: strings.Repeat("c", domain.MaxCommentLen+1),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteComment_Ownership(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	author := e.register(t, "Ana", "ana@example.com")
	other := e.register(t, "Eve", "eve@example.com")
	admin := e.createAdmin(t, "admin@example.com")
	post := e.createPost(t, author.ID, "")
	comment := e.createComment(t, author.ID, post.ID)

	err := e.commentSvc.DeleteComment(ctx, principalOf(other), comment.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, e.commentSvc.DeleteComment(ctx, principalOf(admin), comment.ID))

	err = e.commentSvc.DeleteComment(ctx, principalOf(admin), comment.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
