package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/institute-api/internal/cache"
	"github.com/noah-isme/institute-api/internal/dto"
	"github.com/noah-isme/institute-api/internal/models"
	"github.com/noah-isme/institute-api/internal/observability"
	"github.com/noah-isme/institute-api/internal/repository"
)

// ErrSettingNotFound indicates a missing settings key.
var ErrSettingNotFound = errors.New("setting not found")

// Hard fallbacks used when the settings table is empty or unreachable. The
// public pages must never render without hero copy or contact details.
var (
	defaultHeroLines    = []string{"Learn. Build. Lead.", "An institute for the next generation of engineers."}
	defaultContactEmail = "info@institute.example"
	defaultSocialLinks  = map[string]string{}
)

// Well-known settings keys read by the typed accessors.
const (
	SettingKeyHeroLines       = "hero_lines"
	SettingKeyContactEmail    = "contact_email"
	SettingKeySocialLinks     = "social_links"
	SettingKeyRegistrationURL = "registration_url"
)

const settingsCachePrefix = "settings"

// SettingsService serves site settings with a long-lived cache and fans out
// change notifications so other nodes and in-process consumers stay current.
type SettingsService interface {
	GetPublic(ctx context.Context) (dto.SettingsResponse, error)
	ListAll(ctx context.Context) ([]dto.SettingResponse, error)
	Get(ctx context.Context, key string) (dto.SettingResponse, error)
	Set(ctx context.Context, payload dto.SettingUpsertRequest, actor ActivityActor) (dto.SettingResponse, error)
	Delete(ctx context.Context, key string, actor ActivityActor) error
	Subscribe(handler func(key string))

	HeroLines(ctx context.Context) []string
	ContactEmail(ctx context.Context) string
	SocialLinks(ctx context.Context) map[string]string
	RegistrationURL(ctx context.Context) string
}

type settingsService struct {
	repo        repository.SettingRepository
	cache       cache.QueryCache
	ttl         time.Duration
	validator   *validator.Validate
	activity    ActivityRecorder
	fallbackURL string
	logger      zerolog.Logger
}

// NewSettingsService constructs the settings service. fallbackURL backs the
// registration_url key when it is unset.
func NewSettingsService(repo repository.SettingRepository, queryCache cache.QueryCache, ttl time.Duration, validate *validator.Validate, activity ActivityRecorder, fallbackURL string, logger zerolog.Logger) SettingsService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &settingsService{
		repo:        repo,
		cache:       queryCache,
		ttl:         ttl,
		validator:   validate,
		activity:    activity,
		fallbackURL: fallbackURL,
		logger:      logger.With().Str("component", "settings_service").Logger(),
	}
}

func (s *settingsService) GetPublic(ctx context.Context) (dto.SettingsResponse, error) {
	key := settingsCachePrefix + ":public:v1"
	payload, hit, err := s.cache.GetOrFetch(ctx, key, s.ttl, func(ctx context.Context) ([]byte, error) {
		settings, err := s.repo.ListPublic(ctx)
		if err != nil {
			return nil, err
		}

		out := make(map[string]json.RawMessage, len(settings))
		for _, setting := range settings {
			out[setting.Key] = json.RawMessage(setting.Value)
		}
		return json.Marshal(dto.SettingsResponse{Settings: out})
	})
	if err != nil {
		return dto.SettingsResponse{}, err
	}

	var response dto.SettingsResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return dto.SettingsResponse{}, err
	}
	response.CacheHit = hit
	return response, nil
}

func (s *settingsService) ListAll(ctx context.Context) ([]dto.SettingResponse, error) {
	settings, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]dto.SettingResponse, 0, len(settings))
	for _, setting := range settings {
		items = append(items, dto.NewSettingResponse(setting))
	}
	return items, nil
}

func (s *settingsService) Get(ctx context.Context, key string) (dto.SettingResponse, error) {
	setting, err := s.repo.GetByKey(ctx, strings.TrimSpace(key))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SettingResponse{}, ErrSettingNotFound
		}
		return dto.SettingResponse{}, err
	}
	return dto.NewSettingResponse(setting), nil
}

func (s *settingsService) Set(ctx context.Context, payload dto.SettingUpsertRequest, actor ActivityActor) (dto.SettingResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SettingResponse{}, err
	}
	if !json.Valid(payload.Value) {
		return dto.SettingResponse{}, errors.New("setting value must be valid json")
	}

	adminID := actor.ID
	setting := models.Setting{
		Key:       strings.TrimSpace(payload.Key),
		Value:     datatypes.JSON(payload.Value),
		IsPublic:  payload.IsPublic,
		UpdatedBy: &adminID,
	}

	if err := s.repo.Upsert(ctx, &setting); err != nil {
		return dto.SettingResponse{}, err
	}

	s.invalidate(ctx, setting.Key)
	s.recordActivity(ctx, actor, "updated", setting.Key)
	return dto.NewSettingResponse(setting), nil
}

func (s *settingsService) Delete(ctx context.Context, key string, actor ActivityActor) error {
	key = strings.TrimSpace(key)
	if err := s.repo.Delete(ctx, key); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSettingNotFound
		}
		return err
	}

	s.invalidate(ctx, key)
	s.recordActivity(ctx, actor, "deleted", key)
	return nil
}

// Subscribe registers a handler invoked whenever a setting changes, whether
// the write happened on this node or elsewhere.
func (s *settingsService) Subscribe(handler func(key string)) {
	if handler == nil {
		return
	}
	s.cache.OnInvalidate(settingsCachePrefix, func(prefix string) {
		key := strings.TrimPrefix(prefix, settingsCachePrefix+":key:")
		if key == prefix {
			key = ""
		}
		observability.SettingsInvalidations().Inc()
		handler(key)
	})
}

func (s *settingsService) HeroLines(ctx context.Context) []string {
	var lines []string
	if s.decodePublic(ctx, SettingKeyHeroLines, &lines) && len(lines) > 0 {
		return lines
	}
	return defaultHeroLines
}

func (s *settingsService) ContactEmail(ctx context.Context) string {
	var email string
	if s.decodePublic(ctx, SettingKeyContactEmail, &email) && strings.TrimSpace(email) != "" {
		return email
	}
	return defaultContactEmail
}

func (s *settingsService) SocialLinks(ctx context.Context) map[string]string {
	var links map[string]string
	if s.decodePublic(ctx, SettingKeySocialLinks, &links) && links != nil {
		return links
	}
	return defaultSocialLinks
}

func (s *settingsService) RegistrationURL(ctx context.Context) string {
	var url string
	if s.decodePublic(ctx, SettingKeyRegistrationURL, &url) && strings.TrimSpace(url) != "" {
		return url
	}
	return s.fallbackURL
}

func (s *settingsService) decodePublic(ctx context.Context, key string, target interface{}) bool {
	response, err := s.GetPublic(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("settings lookup failed, using fallback")
		return false
	}

	raw, ok := response.Settings[key]
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, target); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("malformed setting value, using fallback")
		return false
	}
	return true
}

func (s *settingsService) invalidate(ctx context.Context, key string) {
	// Per-key prefix first so subscribers learn which key moved, then the
	// whole namespace to flush the aggregated public map.
	if err := s.cache.Invalidate(ctx, settingsCachePrefix+":key:"+key); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate settings key")
	}
	if err := s.cache.Invalidate(ctx, settingsCachePrefix); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate settings cache")
	}
}

func (s *settingsService) recordActivity(ctx context.Context, actor ActivityActor, action, key string) {
	if s.activity == nil {
		return
	}
	adminID := actor.ID
	entry := ActivityEntry{
		AdminID:      &adminID,
		Action:       action,
		ResourceType: "setting",
		Details:      map[string]interface{}{"key": key},
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record settings activity")
	}
}
