package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/institute-api/internal/cache"
	"github.com/noah-isme/institute-api/internal/dto"
	"github.com/noah-isme/institute-api/internal/models"
	"github.com/noah-isme/institute-api/internal/repository"
)

type stubTestimonialRepo struct {
	mu         sync.Mutex
	items      map[uint]models.Testimonial
	nextID     uint
	lastFilter repository.TestimonialFilter
}

func newStubTestimonialRepo() *stubTestimonialRepo {
	return &stubTestimonialRepo{items: make(map[uint]models.Testimonial), nextID: 1}
}

func (r *stubTestimonialRepo) List(_ context.Context, filter repository.TestimonialFilter) ([]models.Testimonial, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = filter

	var out []models.Testimonial
	for _, item := range r.items {
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.Featured != nil && item.IsFeatured != *filter.Featured {
			continue
		}
		out = append(out, item)
	}
	return out, int64(len(out)), nil
}

func (r *stubTestimonialRepo) GetByID(_ context.Context, id uint) (models.Testimonial, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return models.Testimonial{}, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (r *stubTestimonialRepo) Create(_ context.Context, testimonial *models.Testimonial) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	testimonial.ID = r.nextID
	r.nextID++
	r.items[testimonial.ID] = *testimonial
	return nil
}

func (r *stubTestimonialRepo) Update(_ context.Context, testimonial *models.Testimonial) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[testimonial.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.items[testimonial.ID] = *testimonial
	return nil
}

func (r *stubTestimonialRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *stubTestimonialRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, item := range r.items {
		if item.Status == status {
			count++
		}
	}
	return count, nil
}

func newTestimonialService(repo *stubTestimonialRepo, activity ActivityRecorder) *testimonialService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewTestimonialService(repo, cache.New(nil, nil, "institute", testLogger()), time.Minute, validate, activity, testLogger())
	return svc.(*testimonialService)
}

func TestTestimonialSubmitAlwaysLandsPending(t *testing.T) {
	repo := newStubTestimonialRepo()
	svc := newTestimonialService(repo, nil)

	response, err := svc.Submit(context.Background(), dto.TestimonialSubmitRequest{
		StudentName: "Amira Hassan",
		Story:       "The embedded systems track changed how I approach engineering problems.",
		Program:     "Electrical Engineering",
	})
	require.NoError(t, err)
	require.Equal(t, models.TestimonialStatusPending, response.Status)
	require.Nil(t, response.ApprovedAt)
	require.Nil(t, response.ApprovedBy)

	stored, err := repo.GetByID(context.Background(), response.ID)
	require.NoError(t, err)
	require.Equal(t, models.TestimonialStatusPending, stored.Status)
}

func TestTestimonialSubmitStripsMarkup(t *testing.T) {
	repo := newStubTestimonialRepo()
	svc := newTestimonialService(repo, nil)

	response, err := svc.Submit(context.Background(), dto.TestimonialSubmitRequest{
		StudentName: "Omar Farouk",
		Story:       `I loved the <b>robotics lab</b> sessions, <script>alert("x")</script> best part of the program.`,
	})
	require.NoError(t, err)
	require.NotContains(t, response.Story, "<b>")
	require.NotContains(t, response.Story, "script")
	require.Contains(t, response.Story, "robotics lab")
}

func TestTestimonialSubmitRejectsMarkupOnlyStory(t *testing.T) {
	repo := newStubTestimonialRepo()
	svc := newTestimonialService(repo, nil)

	_, err := svc.Submit(context.Background(), dto.TestimonialSubmitRequest{
		StudentName: "Omar Farouk",
		Story:       `<script>window.alert("not a story")</script>`,
	})
	require.Error(t, err)
	require.Empty(t, repo.items)
}

func TestTestimonialApproveStampsAuditFields(t *testing.T) {
	repo := newStubTestimonialRepo()
	activity := &stubActivity{}
	svc := newTestimonialService(repo, activity)

	moderatedAt := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return moderatedAt }

	submitted, err := svc.Submit(context.Background(), dto.TestimonialSubmitRequest{
		StudentName: "Lena Petrova",
		Story:       "The mentorship program gave me the confidence to lead my own team.",
	})
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), submitted.ID, ActivityActor{ID: 12, Role: "admin"})
	require.NoError(t, err)
	require.Equal(t, models.TestimonialStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)
	require.True(t, approved.ApprovedAt.Equal(moderatedAt))
	require.Equal(t, uint(12), *approved.ApprovedBy)

	entries := activity.recorded()
	require.Len(t, entries, 1)
	require.Equal(t, "approved", entries[0].Action)
	require.Equal(t, "testimonial", entries[0].ResourceType)
}

func TestTestimonialModerationIsSingleShot(t *testing.T) {
	repo := newStubTestimonialRepo()
	svc := newTestimonialService(repo, nil)

	submitted, err := svc.Submit(context.Background(), dto.TestimonialSubmitRequest{
		StudentName: "Lena Petrova",
		Story:       "The mentorship program gave me the confidence to lead my own team.",
	})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), submitted.ID, ActivityActor{ID: 1})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), submitted.ID, ActivityActor{ID: 1})
	require.ErrorIs(t, err, ErrTestimonialAlreadyModerated)

	_, err = svc.Reject(context.Background(), submitted.ID, "changed our minds", ActivityActor{ID: 1})
	require.ErrorIs(t, err, ErrTestimonialAlreadyModerated)
}

func TestTestimonialRejectRequiresReason(t *testing.T) {
	repo := newStubTestimonialRepo()
	svc := newTestimonialService(repo, nil)

	submitted, err := svc.Submit(context.Background(), dto.TestimonialSubmitRequest{
		StudentName: "Karim Aziz",
		Story:       "Graduating from the institute opened doors I never expected.",
	})
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), submitted.ID, "   ", ActivityActor{ID: 1})
	require.Error(t, err)

	rejected, err := svc.Reject(context.Background(), submitted.ID, "duplicate submission", ActivityActor{ID: 1})
	require.NoError(t, err)
	require.Equal(t, models.TestimonialStatusRejected, rejected.Status)
	require.Equal(t, "duplicate submission", rejected.RejectionReason)
	require.Nil(t, rejected.ApprovedAt)
	require.Nil(t, rejected.ApprovedBy)
}

func TestTestimonialListApprovedForcesApprovedFilter(t *testing.T) {
	repo := newStubTestimonialRepo()
	svc := newTestimonialService(repo, nil)

	ctx := context.Background()
	pending, err := svc.Submit(ctx, dto.TestimonialSubmitRequest{
		StudentName: "Ana Silva",
		Story:       "An unforgettable place to study computational engineering.",
	})
	require.NoError(t, err)

	visible, err := svc.Submit(ctx, dto.TestimonialSubmitRequest{
		StudentName: "Tom Becker",
		Story:       "The institute pushed me further than I thought possible.",
	})
	require.NoError(t, err)
	_, err = svc.Approve(ctx, visible.ID, ActivityActor{ID: 1})
	require.NoError(t, err)

	result, err := svc.ListApproved(ctx, nil, 1, 20)
	require.NoError(t, err)
	require.Equal(t, models.TestimonialStatusApproved, repo.lastFilter.Status)
	require.Len(t, result.Items, 1)
	require.Equal(t, visible.ID, result.Items[0].ID)
	require.NotEqual(t, pending.ID, result.Items[0].ID)
}

func TestTestimonialGetByIDMissing(t *testing.T) {
	svc := newTestimonialService(newStubTestimonialRepo(), nil)
	_, err := svc.GetByID(context.Background(), 404)
	require.ErrorIs(t, err, ErrTestimonialNotFound)
}
