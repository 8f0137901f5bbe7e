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

type stubSponsorRepo struct {
	mu         sync.Mutex
	sponsors   map[uint]models.Sponsor
	links      map[uint]models.EventSponsor
	nextID     uint
	nextLinkID uint
	lastFilter repository.SponsorFilter
}

func newStubSponsorRepo() *stubSponsorRepo {
	return &stubSponsorRepo{
		sponsors:   make(map[uint]models.Sponsor),
		links:      make(map[uint]models.EventSponsor),
		nextID:     1,
		nextLinkID: 1,
	}
}

func (r *stubSponsorRepo) List(_ context.Context, filter repository.SponsorFilter) ([]models.Sponsor, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = filter

	var out []models.Sponsor
	for _, sponsor := range r.sponsors {
		if filter.Status != "" && sponsor.Status != filter.Status {
			continue
		}
		if filter.Tier != "" && sponsor.Tier != filter.Tier {
			continue
		}
		out = append(out, sponsor)
	}
	return out, int64(len(out)), nil
}

func (r *stubSponsorRepo) GetByID(_ context.Context, id uint) (models.Sponsor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sponsor, ok := r.sponsors[id]
	if !ok {
		return models.Sponsor{}, gorm.ErrRecordNotFound
	}
	return sponsor, nil
}

func (r *stubSponsorRepo) Create(_ context.Context, sponsor *models.Sponsor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sponsor.ID = r.nextID
	r.nextID++
	r.sponsors[sponsor.ID] = *sponsor
	return nil
}

func (r *stubSponsorRepo) Update(_ context.Context, sponsor *models.Sponsor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sponsors[sponsor.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.sponsors[sponsor.ID] = *sponsor
	return nil
}

func (r *stubSponsorRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sponsors[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.sponsors, id)
	return nil
}

func (r *stubSponsorRepo) ListForEvent(_ context.Context, eventID uint) ([]models.EventSponsor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.EventSponsor
	for _, link := range r.links {
		if link.EventID == eventID {
			out = append(out, link)
		}
	}
	return out, nil
}

func (r *stubSponsorRepo) LinkToEvent(_ context.Context, link *models.EventSponsor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	link.ID = r.nextLinkID
	r.nextLinkID++
	r.links[link.ID] = *link
	return nil
}

func (r *stubSponsorRepo) UpdateLink(_ context.Context, link *models.EventSponsor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.links[link.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.links[link.ID] = *link
	return nil
}

func (r *stubSponsorRepo) GetLink(_ context.Context, id uint) (models.EventSponsor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[id]
	if !ok {
		return models.EventSponsor{}, gorm.ErrRecordNotFound
	}
	if sponsor, exists := r.sponsors[link.SponsorID]; exists {
		link.Sponsor = &sponsor
	}
	return link, nil
}

func (r *stubSponsorRepo) UnlinkFromEvent(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.links[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.links, id)
	return nil
}

func (r *stubSponsorRepo) CountByTier(_ context.Context, tier string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, sponsor := range r.sponsors {
		if sponsor.Tier == tier && sponsor.Status == models.SponsorStatusActive {
			count++
		}
	}
	return count, nil
}

func newSponsorService(repo *stubSponsorRepo, events repository.EventRepository, activity ActivityRecorder) SponsorService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewSponsorService(repo, events, cache.New(nil, nil, "institute", testLogger()), time.Minute, validate, activity, testLogger())
}

func TestSponsorCreateDefaultsTierAndStatus(t *testing.T) {
	repo := newStubSponsorRepo()
	svc := newSponsorService(repo, newStubEventRepo(), nil)

	created, err := svc.Create(context.Background(), dto.SponsorCreateRequest{Name: "Acme Microchips"}, ActivityActor{ID: 1})
	require.NoError(t, err)
	require.Equal(t, models.SponsorTierPartner, created.Tier)
	require.Equal(t, models.SponsorStatusActive, created.Status)
}

func TestSponsorListActiveForcesActiveStatus(t *testing.T) {
	repo := newStubSponsorRepo()
	svc := newSponsorService(repo, newStubEventRepo(), nil)

	ctx := context.Background()
	_, err := svc.Create(ctx, dto.SponsorCreateRequest{Name: "Visible", Tier: models.SponsorTierGold}, ActivityActor{ID: 1})
	require.NoError(t, err)
	_, err = svc.Create(ctx, dto.SponsorCreateRequest{Name: "Hidden", Status: models.SponsorStatusInactive}, ActivityActor{ID: 1})
	require.NoError(t, err)

	result, err := svc.ListActive(ctx, "", 1, 20)
	require.NoError(t, err)
	require.Equal(t, models.SponsorStatusActive, repo.lastFilter.Status)
	require.Len(t, result.Items, 1)
	require.Equal(t, "Visible", result.Items[0].Name)
}

func TestSponsorLinkToEventValidatesBothSides(t *testing.T) {
	repo := newStubSponsorRepo()
	events := newStubEventRepo()
	activity := &stubActivity{}
	svc := newSponsorService(repo, events, activity)

	ctx := context.Background()
	event := models.Event{Title: "Tech Fair", Date: time.Now().Add(24 * time.Hour), Status: models.EventStatusPublished}
	require.NoError(t, events.Create(ctx, &event))

	sponsor, err := svc.Create(ctx, dto.SponsorCreateRequest{Name: "Acme Microchips", Tier: models.SponsorTierGold}, ActivityActor{ID: 1})
	require.NoError(t, err)

	_, err = svc.LinkToEvent(ctx, 999, dto.EventSponsorLinkRequest{SponsorID: sponsor.ID}, ActivityActor{ID: 1})
	require.ErrorIs(t, err, ErrEventNotFound)

	_, err = svc.LinkToEvent(ctx, event.ID, dto.EventSponsorLinkRequest{SponsorID: 999}, ActivityActor{ID: 1})
	require.ErrorIs(t, err, ErrSponsorNotFound)

	link, err := svc.LinkToEvent(ctx, event.ID, dto.EventSponsorLinkRequest{
		SponsorID:   sponsor.ID,
		SponsorTier: models.SponsorTierPlatinum,
	}, ActivityActor{ID: 1})
	require.NoError(t, err)
	require.Equal(t, sponsor.ID, link.SponsorID)
	require.NotNil(t, link.Sponsor)
	require.Equal(t, "Acme Microchips", link.Sponsor.Name)

	listed, err := svc.ListForEvent(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func TestSponsorUnlinkMissingLink(t *testing.T) {
	svc := newSponsorService(newStubSponsorRepo(), newStubEventRepo(), nil)
	require.ErrorIs(t, svc.UnlinkFromEvent(context.Background(), 5, ActivityActor{ID: 1}), ErrEventSponsorNotFound)
}
