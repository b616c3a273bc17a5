package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photomap-service/internal/apperr"
	"photomap-service/internal/auth"
)

func TestGetPhotoOwnerAndStranger(t *testing.T) {
	f := newFixture(t)
	session := newSession()
	record := f.seed(t, session.UserID, time.Minute)
	svc := f.photoService()

	own, err := svc.GetPhoto(context.Background(), session, record.ID)
	require.NoError(t, err)
	require.NotNil(t, own.OwnerID)
	assert.Equal(t, session.UserID, *own.OwnerID)
	assert.Contains(t, own.ImageURL, "expires=86400")

	public, err := svc.GetPhoto(context.Background(), nil, record.ID)
	require.NoError(t, err)
	assert.Nil(t, public.OwnerID)
	assert.Contains(t, public.ImageURL, "expires=1800")

	_, err = svc.GetPhoto(context.Background(), session, uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeletePhoto(t *testing.T) {
	f := newFixture(t)
	session := newSession()
	record := f.seed(t, session.UserID, time.Minute)
	comments := f.commentService()
	svc := f.photoService()

	_, err := comments.Add(context.Background(), session, record.ID, "first!")
	require.NoError(t, err)
	_, err = comments.List(context.Background(), record.ID)
	require.NoError(t, err)
	_, err = svc.GetPhoto(context.Background(), session, record.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeletePhoto(context.Background(), session, record.ID))

	assert.False(t, f.store.Has(record.StoragePath))
	_, err = f.photos.GetByID(context.Background(), record.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	count, err := f.comments.CountByPhoto(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, found, _ := f.cache.Get(context.Background(), signedURLKey(record.StoragePath, testOwnerTTL))
	assert.False(t, found)
	_, found, _ = f.cache.Get(context.Background(), threadKey(record.ID))
	assert.False(t, found)
}

func TestDeletePhotoOfSomeoneElse(t *testing.T) {
	f := newFixture(t)
	record := f.seed(t, uuid.New(), time.Minute)

	err := f.photoService().DeletePhoto(context.Background(), newSession(), record.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.True(t, f.store.Has(record.StoragePath))
	assert.Empty(t, f.store.Removed())
}

func TestDeletePhotoFailsClosed(t *testing.T) {
	f := newFixture(t)
	session := newSession()
	record := f.seed(t, session.UserID, time.Minute)
	f.store.RemoveErr = errors.New("access denied")

	err := f.photoService().DeletePhoto(context.Background(), session, record.ID)
	assert.True(t, apperr.Is(err, apperr.KindStorage))

	kept, err := f.photos.GetByID(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.StoragePath, kept.StoragePath)
}

func TestDeletePhotoRequiresSession(t *testing.T) {
	f := newFixture(t)
	record := f.seed(t, uuid.New(), time.Minute)

	var session *auth.Session
	err := f.photoService().DeletePhoto(context.Background(), session, record.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotAuthenticated))
}
