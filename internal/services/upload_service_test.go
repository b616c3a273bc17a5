package services

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photomap-service/internal/apperr"
	"photomap-service/internal/exif/exiftest"
	"photomap-service/internal/geo"
	"photomap-service/internal/models"
	"photomap-service/internal/repository"
)

type failingInsertRepo struct {
	repository.PhotoRepository
	err   error
	calls int
}

func (r *failingInsertRepo) Insert(ctx context.Context, input models.PhotoInput) (*models.PhotoRecord, error) {
	r.calls++
	return nil, r.err
}

// cancellingInsertRepo ends the request context before failing the insert,
// the way a client disconnect surfaces through gorm.
type cancellingInsertRepo struct {
	repository.PhotoRepository
	cancel context.CancelFunc
}

func (r *cancellingInsertRepo) Insert(ctx context.Context, input models.PhotoInput) (*models.PhotoRecord, error) {
	r.cancel()
	return nil, apperr.Db(ctx.Err(), "failed to save photo")
}

func floatPtr(v float64) *float64 { return &v }

func manualGPS(lat, lon float64) geo.GPS {
	return geo.GPS{Latitude: floatPtr(lat), Longitude: floatPtr(lon)}
}

func TestUploadCommitsWithManualCoordinates(t *testing.T) {
	f := newFixture(t)
	svc := f.uploadService(nil)
	session := newSession()

	photo, state, err := svc.Upload(context.Background(), session, models.UploadRequest{
		Filename:    "Eiffel.JPG",
		Data:        exiftest.PlainJPEG(),
		Title:       "  Tour Eiffel ",
		Description: "   ",
		GPS:         manualGPS(48.8566, 2.3522),
	})
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, state)

	keyPattern := regexp.MustCompile(`^` + session.UserID.String() + `/1717243200000-[0-9a-f-]{36}\.jpg$`)
	assert.Regexp(t, keyPattern, photo.StoragePath)
	assert.True(t, f.store.Has(photo.StoragePath))
	assert.Equal(t, "image/jpeg", f.store.ContentTypes[photo.StoragePath])

	assert.Equal(t, "Tour Eiffel", photo.Title)
	assert.Nil(t, photo.Description)
	assert.Equal(t, 48.8566, photo.Latitude)
	assert.Equal(t, 2.3522, photo.Longitude)
	assert.Equal(t, session.UserID, *photo.OwnerID)
	assert.Contains(t, photo.ImageURL, photo.StoragePath)
	assert.True(t, strings.HasSuffix(photo.ImageURL, "expires=86400"))

	stored, err := f.photos.GetByID(context.Background(), photo.ID)
	require.NoError(t, err)
	assert.Equal(t, photo.StoragePath, stored.StoragePath)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.UploadOutcomes().WithLabelValues("committed")))
}

func TestUploadKeepsTextAsTyped(t *testing.T) {
	f := newFixture(t)

	photo, _, err := f.uploadService(nil).Upload(context.Background(), newSession(), models.UploadRequest{
		Filename:    "a.jpg",
		Data:        exiftest.PlainJPEG(),
		Title:       "  x<y and y>z ",
		Description: "<b></b>",
		GPS:         manualGPS(1, 1),
	})
	require.NoError(t, err)

	stored, err := f.photos.GetByID(context.Background(), photo.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Title)
	require.NotNil(t, stored.Description)
	assert.Equal(t, "x<y and y>z", *stored.Title)
	assert.Equal(t, "<b></b>", *stored.Description)
}

func TestUploadFallsBackToExif(t *testing.T) {
	f := newFixture(t)
	svc := f.uploadService(nil)

	photo, state, err := svc.Upload(context.Background(), newSession(), models.UploadRequest{
		Filename: "paris.jpg",
		Data:     exiftest.ParisJPEG(),
	})
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, state)
	assert.InDelta(t, 48.8566, photo.Latitude, 1e-9)
	assert.InDelta(t, 2.3522, photo.Longitude, 1e-9)
	assert.Equal(t, "", photo.Title)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ExifExtractions().WithLabelValues("found")))
}

func TestUploadManualCoordinatesWinOverExif(t *testing.T) {
	f := newFixture(t)
	svc := f.uploadService(nil)

	photo, _, err := svc.Upload(context.Background(), newSession(), models.UploadRequest{
		Filename: "paris.jpg",
		Data:     exiftest.ParisJPEG(),
		GPS:      manualGPS(0, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, photo.Latitude)
	assert.Equal(t, 0.0, photo.Longitude)
}

func TestUploadValidationMakesNoCalls(t *testing.T) {
	cases := map[string]models.UploadRequest{
		"no gps anywhere":   {Filename: "a.jpg", Data: exiftest.PlainJPEG()},
		"latitude only":     {Filename: "a.jpg", Data: exiftest.PlainJPEG(), GPS: geo.GPS{Latitude: floatPtr(10)}},
		"out of range":      {Filename: "a.jpg", Data: exiftest.PlainJPEG(), GPS: manualGPS(91, 0)},
		"not an image":      {Filename: "a.jpg", Data: []byte("hello, plain text"), GPS: manualGPS(1, 1)},
		"empty payload":     {Filename: "a.jpg", GPS: manualGPS(1, 1)},
		"larger than limit": {Filename: "a.jpg", Data: append(exiftest.PlainJPEG(), make([]byte, 1024*1024)...), GPS: manualGPS(1, 1)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			repo := &failingInsertRepo{PhotoRepository: f.photos}
			svc := f.uploadService(repo)

			photo, state, err := svc.Upload(context.Background(), newSession(), req)
			assert.Nil(t, photo)
			assert.Equal(t, StateIdle, state)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
			assert.Empty(t, f.store.PutCalls)
			assert.Zero(t, repo.calls)
		})
	}
}

func TestUploadRequiresSession(t *testing.T) {
	f := newFixture(t)

	_, state, err := f.uploadService(nil).Upload(context.Background(), nil, models.UploadRequest{
		Data: exiftest.PlainJPEG(),
		GPS:  manualGPS(1, 1),
	})
	assert.Equal(t, StateIdle, state)
	assert.True(t, apperr.Is(err, apperr.KindNotAuthenticated))
	assert.Empty(t, f.store.PutCalls)
}

func TestUploadObjectWriteFailure(t *testing.T) {
	f := newFixture(t)
	f.store.PutErr = errors.New("bucket unavailable")
	repo := &failingInsertRepo{PhotoRepository: f.photos}

	_, state, err := f.uploadService(repo).Upload(context.Background(), newSession(), models.UploadRequest{
		Filename: "a.jpg",
		Data:     exiftest.PlainJPEG(),
		GPS:      manualGPS(1, 1),
	})
	assert.Equal(t, StateFailed, state)
	assert.True(t, apperr.Is(err, apperr.KindStorage))
	assert.Zero(t, repo.calls)
	assert.Empty(t, f.store.Removed())
}

func TestUploadRollsBackOnInsertFailure(t *testing.T) {
	f := newFixture(t)
	insertErr := apperr.Db(errors.New("connection reset"), "failed to save photo")
	repo := &failingInsertRepo{PhotoRepository: f.photos, err: insertErr}

	_, state, err := f.uploadService(repo).Upload(context.Background(), newSession(), models.UploadRequest{
		Filename: "a.jpg",
		Data:     exiftest.PlainJPEG(),
		GPS:      manualGPS(1, 1),
	})
	assert.Equal(t, StateRolledBack, state)
	assert.Same(t, insertErr, err)

	require.Len(t, f.store.PutCalls, 1)
	assert.Equal(t, []string{f.store.PutCalls[0]}, f.store.Removed())
	assert.Zero(t, f.store.Count())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.UploadOutcomes().WithLabelValues("rolled_back")))
	assert.Zero(t, testutil.ToFloat64(f.metrics.RollbackFailures()))
}

func TestUploadRollbackFailureKeepsInsertError(t *testing.T) {
	f := newFixture(t)
	f.store.RemoveErr = errors.New("remove denied")
	insertErr := apperr.Db(errors.New("constraint violated"), "failed to save photo")
	repo := &failingInsertRepo{PhotoRepository: f.photos, err: insertErr}

	_, state, err := f.uploadService(repo).Upload(context.Background(), newSession(), models.UploadRequest{
		Filename: "a.jpg",
		Data:     exiftest.PlainJPEG(),
		GPS:      manualGPS(1, 1),
	})
	assert.Equal(t, StateRolledBack, state)
	assert.Same(t, insertErr, err)
	assert.Len(t, f.store.Removed(), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RollbackFailures()))
}

func TestUploadRollbackRunsAfterContextCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := &cancellingInsertRepo{PhotoRepository: f.photos, cancel: cancel}

	_, state, err := f.uploadService(repo).Upload(ctx, newSession(), models.UploadRequest{
		Filename: "a.jpg",
		Data:     exiftest.PlainJPEG(),
		GPS:      manualGPS(1, 1),
	})
	assert.Equal(t, StateRolledBack, state)
	assert.True(t, apperr.Is(err, apperr.KindDb))
	assert.ErrorIs(t, err, context.Canceled)

	require.Len(t, f.store.PutCalls, 1)
	assert.Equal(t, []string{f.store.PutCalls[0]}, f.store.Removed())
	assert.Zero(t, f.store.Count())
	assert.Zero(t, testutil.ToFloat64(f.metrics.RollbackFailures()))
}

func TestUploadCommitSurvivesSigningFailure(t *testing.T) {
	f := newFixture(t)
	f.store.PresignErr = errors.New("signer down")

	photo, state, err := f.uploadService(nil).Upload(context.Background(), newSession(), models.UploadRequest{
		Filename: "a.jpg",
		Data:     exiftest.PlainJPEG(),
		GPS:      manualGPS(1, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, state)
	assert.Equal(t, "", photo.ImageURL)
	assert.True(t, f.store.Has(photo.StoragePath))
}

func TestUploadExtensionFromContent(t *testing.T) {
	f := newFixture(t)

	photo, _, err := f.uploadService(nil).Upload(context.Background(), newSession(), models.UploadRequest{
		Filename: "camera-roll",
		Data:     exiftest.PlainJPEG(),
		GPS:      manualGPS(1, 1),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(photo.StoragePath, ".jpg"), photo.StoragePath)
}

func TestUploadRetryCreatesNewObject(t *testing.T) {
	f := newFixture(t)
	svc := f.uploadService(nil)
	session := newSession()
	req := models.UploadRequest{Filename: "a.jpg", Data: exiftest.PlainJPEG(), GPS: manualGPS(1, 1)}

	first, _, err := svc.Upload(context.Background(), session, req)
	require.NoError(t, err)
	second, _, err := svc.Upload(context.Background(), session, req)
	require.NoError(t, err)

	assert.NotEqual(t, first.StoragePath, second.StoragePath)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, f.store.Count())
}

func TestPreviewGPS(t *testing.T) {
	f := newFixture(t)
	svc := f.uploadService(nil)

	preview, err := svc.PreviewGPS(exiftest.ParisJPEG())
	require.NoError(t, err)
	assert.True(t, preview.Found)
	assert.Equal(t, GPSSourceExif, preview.Source)
	assert.InDelta(t, 48.8566, *preview.Latitude, 1e-9)

	preview, err = svc.PreviewGPS(exiftest.PlainJPEG())
	require.NoError(t, err)
	assert.False(t, preview.Found)
	assert.Nil(t, preview.Latitude)

	_, err = svc.PreviewGPS(nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Empty(t, f.store.PutCalls)
}
