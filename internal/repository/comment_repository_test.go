package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photomap-service/internal/apperr"
	"photomap-service/internal/models"
	"photomap-service/internal/repository/repotest"
)

func TestCommentInsertTrims(t *testing.T) {
	db := repotest.OpenDB(t)
	repo := NewCommentRepository(db)
	p := seedPhoto(t, db, uuid.New(), 1, 1, 0)
	author := uuid.New()

	c, err := repo.Insert(context.Background(), p.ID, author, "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", c.Content)
	assert.Equal(t, author, c.AuthorID)
	assert.Equal(t, p.ID, c.PhotoID)

	got, err := repo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)
}

func TestCommentInsertStoresTextAsTyped(t *testing.T) {
	db := repotest.OpenDB(t)
	repo := NewCommentRepository(db)
	p := seedPhoto(t, db, uuid.New(), 1, 1, 0)

	cases := map[string]string{
		"  x<y and y>z  ": "x<y and y>z",
		"&lt;b&gt;":       "&lt;b&gt;",
		"<b></b>":         "<b></b>",
	}
	for in, want := range cases {
		c, err := repo.Insert(context.Background(), p.ID, uuid.New(), in)
		require.NoError(t, err, "content %q", in)

		got, err := repo.GetByID(context.Background(), c.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got.Content)
	}
}

func TestCommentInsertRejectsBlank(t *testing.T) {
	db := repotest.OpenDB(t)
	repo := NewCommentRepository(db)
	p := seedPhoto(t, db, uuid.New(), 1, 1, 0)

	for _, content := range []string{"", "   ", " \t\n "} {
		_, err := repo.Insert(context.Background(), p.ID, uuid.New(), content)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "content %q", content)
	}

	count, err := repo.CountByPhoto(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCommentInsertUnknownPhoto(t *testing.T) {
	repo := NewCommentRepository(repotest.OpenDB(t))

	_, err := repo.Insert(context.Background(), uuid.New(), uuid.New(), "hi")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCommentListOrdering(t *testing.T) {
	db := repotest.OpenDB(t)
	repo := NewCommentRepository(db)
	p := seedPhoto(t, db, uuid.New(), 1, 1, 0)

	older := models.CommentRecord{PhotoID: p.ID, AuthorID: uuid.New(), Content: "older", CreatedAt: baseTime}
	newer := models.CommentRecord{PhotoID: p.ID, AuthorID: uuid.New(), Content: "newer", CreatedAt: baseTime.Add(time.Minute)}
	require.NoError(t, db.Create(&older).Error)
	require.NoError(t, db.Create(&newer).Error)

	list, err := repo.ListByPhoto(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Content)
	assert.Equal(t, "older", list[1].Content)

	empty, err := repo.ListByPhoto(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestCommentDeleteScopedToAuthor(t *testing.T) {
	db := repotest.OpenDB(t)
	repo := NewCommentRepository(db)
	p := seedPhoto(t, db, uuid.New(), 1, 1, 0)
	author, stranger := uuid.New(), uuid.New()

	c, err := repo.Insert(context.Background(), p.ID, author, "mine")
	require.NoError(t, err)

	rows, err := repo.Delete(context.Background(), c.ID, stranger)
	require.NoError(t, err)
	assert.Zero(t, rows)

	count, err := repo.CountByPhoto(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	rows, err = repo.Delete(context.Background(), c.ID, author)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.Delete(context.Background(), c.ID, author)
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestCommentCountUnknownPhoto(t *testing.T) {
	repo := NewCommentRepository(repotest.OpenDB(t))

	count, err := repo.CountByPhoto(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
