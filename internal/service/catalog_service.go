package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/FreakyLetsFail/uni-swipe/internal/domain"
	"github.com/FreakyLetsFail/uni-swipe/internal/mapper"
	"github.com/FreakyLetsFail/uni-swipe/internal/metrics"
	"github.com/FreakyLetsFail/uni-swipe/internal/recommendation"
	"github.com/FreakyLetsFail/uni-swipe/internal/repository"
	"github.com/FreakyLetsFail/uni-swipe/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Catalog is an immutable snapshot of the reference data
type Catalog struct {
	Subjects     []domain.Subject
	Universities []domain.University
	// Scorer is the catalog converted for the recommendation scorer
	Scorer   []recommendation.University
	LoadedAt time.Time

	subjectIDs   map[int64]struct{}
	universityAt map[int64]int
}

func newCatalog(subjects []domain.Subject, universities []domain.University) *Catalog {
	c := &Catalog{
		Subjects:     subjects,
		Universities: universities,
		Scorer:       mapper.ToRecommendationCatalog(universities),
		LoadedAt:     time.Now().UTC(),
		subjectIDs:   make(map[int64]struct{}, len(subjects)),
		universityAt: make(map[int64]int, len(universities)),
	}
	for _, s := range subjects {
		c.subjectIDs[s.ID] = struct{}{}
	}
	for i, u := range universities {
		c.universityAt[u.ID] = i
	}
	return c
}

// HasSubject reports whether id is a catalog subject
func (c *Catalog) HasSubject(id int64) bool {
	_, ok := c.subjectIDs[id]
	return ok
}

// University returns the catalog university with id
func (c *Catalog) University(id int64) (*domain.University, bool) {
	i, ok := c.universityAt[id]
	if !ok {
		return nil, false
	}
	return &c.Universities[i], true
}

var imageContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// CatalogService serves subjects and universities from an in-process snapshot
type CatalogService struct {
	subjectRepo    *repository.SubjectRepository
	universityRepo *repository.UniversityRepository
	store          storage.Storage
	images         *recommendation.ImageResolver
	maxUploadBytes int64
	logger         *zap.Logger

	mu       sync.RWMutex
	snapshot *Catalog
	// generation is bumped by Invalidate; a load started under an older
	// generation is returned to its callers but never cached
	generation uint64
	loads      singleflight.Group
}

const catalogLoadTimeout = 30 * time.Second

func NewCatalogService(
	subjectRepo *repository.SubjectRepository,
	universityRepo *repository.UniversityRepository,
	store storage.Storage,
	images *recommendation.ImageResolver,
	maxUploadMB int64,
	logger *zap.Logger,
) *CatalogService {
	if maxUploadMB <= 0 {
		maxUploadMB = 5
	}
	return &CatalogService{
		subjectRepo:    subjectRepo,
		universityRepo: universityRepo,
		store:          store,
		images:         images,
		maxUploadBytes: maxUploadMB << 20,
		logger:         logger,
	}
}

// Snapshot returns the current catalog, loading it on first use
func (s *CatalogService) Snapshot(ctx context.Context) (*Catalog, error) {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}
	return s.Refresh(ctx)
}

// Refresh reloads the catalog from the store and swaps the snapshot.
// Concurrent callers share a single load, which is detached from the
// cancellation of whichever caller started it.
func (s *CatalogService) Refresh(ctx context.Context) (*Catalog, error) {
	ch := s.loads.DoChan("catalog", func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), catalogLoadTimeout)
		defer cancel()
		return s.load(loadCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		metrics.CatalogRefreshes.WithLabelValues(metrics.Outcome(res.Err)).Inc()
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Catalog), nil
	}
}

func (s *CatalogService) load(ctx context.Context) (*Catalog, error) {
	s.mu.RLock()
	gen := s.generation
	s.mu.RUnlock()

	subjects, err := s.subjectRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load subjects: %w", err)
	}
	universities, err := s.universityRepo.ListWithOfferings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load universities: %w", err)
	}

	snap := newCatalog(subjects, universities)
	s.mu.Lock()
	stale := s.generation != gen
	if !stale {
		s.snapshot = snap
	}
	s.mu.Unlock()

	if stale {
		s.logger.Debug("Catalog invalidated during load, snapshot not cached")
		return snap, nil
	}
	metrics.CatalogUniversities.Set(float64(len(universities)))
	s.logger.Debug("Catalog snapshot refreshed",
		zap.Int("subjects", len(subjects)),
		zap.Int("universities", len(universities)),
	)
	return snap, nil
}

// Invalidate drops the snapshot; the next read reloads it. A load already
// in flight is not cached.
func (s *CatalogService) Invalidate() {
	s.mu.Lock()
	s.snapshot = nil
	s.generation++
	s.mu.Unlock()
	s.loads.Forget("catalog")
}

// ImageFor returns the image shown for a university
func (s *CatalogService) ImageFor(u *domain.University) string {
	return s.images.Resolve(mapper.ToRecommendationUniversity(u))
}

func (s *CatalogService) ListSubjects(ctx context.Context) ([]domain.SubjectDTO, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]domain.SubjectDTO, len(snap.Subjects))
	for i := range snap.Subjects {
		dtos[i] = mapper.ToSubjectDTO(&snap.Subjects[i])
	}
	return dtos, nil
}

func (s *CatalogService) ListUniversities(ctx context.Context) ([]domain.UniversityDTO, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]domain.UniversityDTO, len(snap.Universities))
	for i := range snap.Universities {
		u := &snap.Universities[i]
		dtos[i] = mapper.ToUniversityDTO(u, s.ImageFor(u))
	}
	return dtos, nil
}

func (s *CatalogService) GetUniversity(ctx context.Context, id int64) (*domain.UniversityDTO, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	u, ok := snap.University(id)
	if !ok {
		return nil, ErrUniversityNotFound
	}
	dto := mapper.ToUniversityDTO(u, s.ImageFor(u))
	return &dto, nil
}

// UploadUniversityImage stores an image and makes it the university's card image
func (s *CatalogService) UploadUniversityImage(ctx context.Context, id int64, filename, contentType string, data io.Reader) (*domain.ImageUploadResponse, error) {
	contentType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	ext, ok := imageContentTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, contentType)
	}

	exists, err := s.universityRepo.Exists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up university: %w", err)
	}
	if !exists {
		return nil, ErrUniversityNotFound
	}

	// Read one byte past the limit to detect oversized uploads
	limited := &io.LimitedReader{R: data, N: s.maxUploadBytes + 1}
	storagePath, size, err := s.store.Upload(ctx, fmt.Sprintf("universities/%d", id), "image"+ext, contentType, limited)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}
	if size > s.maxUploadBytes {
		_ = s.store.Delete(ctx, storagePath)
		return nil, ErrImageTooLarge
	}

	imageURL := s.store.PublicURL(storagePath)
	if err := s.universityRepo.UpdateImageURL(ctx, id, imageURL); err != nil {
		_ = s.store.Delete(ctx, storagePath)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUniversityNotFound
		}
		return nil, fmt.Errorf("failed to update university image: %w", err)
	}

	s.Invalidate()
	s.logger.Info("University image updated",
		zap.Int64("university_id", id),
		zap.String("original_filename", filename),
		zap.String("image_url", imageURL),
		zap.Int64("size", size),
	)

	return &domain.ImageUploadResponse{UniversityID: id, ImageURL: imageURL}, nil
}
