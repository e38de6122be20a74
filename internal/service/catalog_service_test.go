package service_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/FreakyLetsFail/uni-swipe/internal/domain"
	"github.com/FreakyLetsFail/uni-swipe/internal/service"
	"github.com/FreakyLetsFail/uni-swipe/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCatalogService_ListSubjectsOrderedByName(t *testing.T) {
	s := setupServices(t)
	testutil.CreateTestSubject(t, s.db, "Physik", "Bachelor")
	testutil.CreateTestSubject(t, s.db, "Informatik", "Master")

	subjects, err := s.catalog.ListSubjects(context.Background())
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "Informatik", subjects[0].Name)
	assert.Equal(t, "Physik", subjects[1].Name)
}

func TestCatalogService_GetUniversity(t *testing.T) {
	s := setupServices(t)
	cs := testutil.CreateTestSubject(t, s.db, "Informatik", "Bachelor")
	uni := testutil.CreateTestUniversity(t, s.db, "TU Berlin", "Berlin", 4.5, cs)

	dto, err := s.catalog.GetUniversity(context.Background(), uni.ID)
	require.NoError(t, err)
	assert.Equal(t, "TU Berlin", dto.Name)
	require.Len(t, dto.Subjects, 1)
	assert.Equal(t, "Informatik", dto.Subjects[0].Name)
	assert.NotEmpty(t, dto.ImageURL)

	_, err = s.catalog.GetUniversity(context.Background(), uni.ID+100)
	assert.ErrorIs(t, err, service.ErrUniversityNotFound)
}

func TestCatalogService_SnapshotIsCachedUntilRefresh(t *testing.T) {
	s := setupServices(t)
	testutil.CreateTestSubject(t, s.db, "Informatik", "Bachelor")
	ctx := context.Background()

	first, err := s.catalog.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, first.Subjects, 1)

	testutil.CreateTestSubject(t, s.db, "Physik", "Bachelor")
	cached, err := s.catalog.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, cached.Subjects, 1)

	refreshed, err := s.catalog.Refresh(ctx)
	require.NoError(t, err)
	assert.Len(t, refreshed.Subjects, 2)
	assert.Len(t, first.Subjects, 1, "old snapshot must not change")
}

func TestCatalogService_ConcurrentSnapshotReads(t *testing.T) {
	s := setupServices(t)
	testutil.CreateTestSubject(t, s.db, "Informatik", "Bachelor")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := s.catalog.Snapshot(context.Background())
			assert.NoError(t, err)
			assert.Len(t, snap.Subjects, 1)
		}()
	}
	wg.Wait()
}

func TestCatalogService_UploadUniversityImage(t *testing.T) {
	s := setupServices(t)
	uni := testutil.CreateTestUniversity(t, s.db, "Uni Köln", "Köln", 4.0)
	ctx := context.Background()

	resp, err := s.catalog.UploadUniversityImage(ctx, uni.ID, "campus.png", "image/png", bytes.NewReader([]byte("png-bytes")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.ImageURL, "/images/universities/"))

	var stored domain.University
	require.NoError(t, s.db.First(&stored, uni.ID).Error)
	assert.Equal(t, resp.ImageURL, stored.ImageURL)

	dto, err := s.catalog.GetUniversity(ctx, uni.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.ImageURL, dto.ImageURL)
}

func TestCatalogService_UploadUniversityImageRejections(t *testing.T) {
	s := setupServices(t)
	uni := testutil.CreateTestUniversity(t, s.db, "Uni Köln", "Köln", 4.0)
	ctx := context.Background()

	_, err := s.catalog.UploadUniversityImage(ctx, uni.ID, "notes.txt", "text/plain", strings.NewReader("hi"))
	assert.ErrorIs(t, err, service.ErrUnsupportedImage)

	_, err = s.catalog.UploadUniversityImage(ctx, uni.ID+100, "a.png", "image/png", strings.NewReader("hi"))
	assert.ErrorIs(t, err, service.ErrUniversityNotFound)

	big := bytes.Repeat([]byte("x"), (1<<20)+1)
	_, err = s.catalog.UploadUniversityImage(ctx, uni.ID, "big.jpg", "image/jpeg", bytes.NewReader(big))
	assert.ErrorIs(t, err, service.ErrImageTooLarge)
}

// pauseFirstQuery blocks the first query against table after it has read its
// rows, until release is called.
func pauseFirstQuery(t *testing.T, db *gorm.DB, table string) (paused <-chan struct{}, release func()) {
	t.Helper()
	pausedCh := make(chan struct{})
	releaseCh := make(chan struct{})
	var fired atomic.Bool

	err := db.Callback().Query().After("gorm:preload").Register("test:pause_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table != table || !fired.CompareAndSwap(false, true) {
			return
		}
		close(pausedCh)
		<-releaseCh
	})
	require.NoError(t, err)

	var once sync.Once
	release = func() { once.Do(func() { close(releaseCh) }) }
	t.Cleanup(release)
	return pausedCh, release
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for catalog load")
	}
}

func TestCatalogService_InvalidateDuringRefreshDiscardsStaleLoad(t *testing.T) {
	s := setupServices(t)
	uni := testutil.CreateTestUniversity(t, s.db, "Uni Köln", "Köln", 4.0)
	ctx := context.Background()

	paused, release := pauseFirstQuery(t, s.db, "universities")
	done := make(chan error, 1)
	go func() {
		_, err := s.catalog.Refresh(ctx)
		done <- err
	}()
	waitFor(t, paused)

	require.NoError(t, s.db.Model(&domain.University{}).
		Where("id = ?", uni.ID).
		Update("image_url", "/images/new.png").Error)
	s.catalog.Invalidate()
	release()
	require.NoError(t, <-done)

	dto, err := s.catalog.GetUniversity(ctx, uni.ID)
	require.NoError(t, err)
	assert.Equal(t, "/images/new.png", dto.ImageURL)
}

func TestCatalogService_SharedLoadSurvivesCallerCancel(t *testing.T) {
	s := setupServices(t)
	testutil.CreateTestUniversity(t, s.db, "TU Berlin", "Berlin", 4.5)

	paused, release := pauseFirstQuery(t, s.db, "subjects")
	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.catalog.Refresh(first)
		firstErr <- err
	}()
	waitFor(t, paused)

	type result struct {
		snap *service.Catalog
		err  error
	}
	second := make(chan result, 1)
	go func() {
		snap, err := s.catalog.Refresh(context.Background())
		second <- result{snap, err}
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	release()
	res := <-second
	require.NoError(t, res.err)
	assert.Len(t, res.snap.Universities, 1)
}
