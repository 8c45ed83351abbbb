package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/storefront-availability-api/internal/availability"
	"github.com/noah-isme/storefront-availability-api/internal/dto"
	"github.com/noah-isme/storefront-availability-api/internal/models"
	appErrors "github.com/noah-isme/storefront-availability-api/pkg/errors"
	"github.com/noah-isme/storefront-availability-api/pkg/export"
	"github.com/noah-isme/storefront-availability-api/pkg/jobs"
)

// Snapshot kinds, also used as metric labels and job types.
const (
	EntityStore   = "store"
	EntityProduct = "product"
)

const (
	isoDate             = "2006-01-02"
	snapshotLoadTimeout = 5 * time.Second
)

type storeReader interface {
	FindByID(ctx context.Context, id string) (*models.Store, error)
	ListOperatingHours(ctx context.Context, storeID string) ([]models.StoreOperatingHour, error)
}

type productReader interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	ListAvailability(ctx context.Context, productID string) ([]models.ProductAvailability, error)
}

type warmupQueue interface {
	Enqueue(job jobs.Job) (bool, error)
}

// AvailabilityConfig tunes the availability service.
type AvailabilityConfig struct {
	// DefaultTimezone applies to product rules stored without a zone.
	DefaultTimezone string
	SnapshotTTL     time.Duration
}

// AvailabilityService answers store and product availability questions. Schedule
// snapshots are cached; verdicts are always recomputed for the request instant.
type AvailabilityService struct {
	stores    storeReader
	products  productReader
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    AvailabilityConfig
	now       func() time.Time
	warmer    warmupQueue
	loads     singleflight.Group
}

// NewAvailabilityService constructs the service and registers the "clock"
// validation tag on validate.
func NewAvailabilityService(stores storeReader, products productReader, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config AvailabilityConfig) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := availability.LoadLocation(config.DefaultTimezone); err != nil {
		logger.Warn("unknown default timezone, using UTC", zap.String("timezone", config.DefaultTimezone))
		config.DefaultTimezone = "UTC"
	}
	if err := validate.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := availability.ParseClock(fl.Field().String())
		return err == nil
	}); err != nil {
		logger.Warn("failed to register clock validation", zap.Error(err))
	}
	return &AvailabilityService{
		stores:    stores,
		products:  products,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       time.Now,
	}
}

// SetClock replaces the wall clock used when a request carries no instant.
func (s *AvailabilityService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// SetWarmer attaches the queue that refills snapshots after invalidation.
func (s *AvailabilityService) SetWarmer(q warmupQueue) {
	s.warmer = q
}

// StoreAvailability evaluates a store at the requested instant.
func (s *AvailabilityService) StoreAvailability(ctx context.Context, storeID string, query dto.AvailabilityQuery) (*dto.StoreAvailabilityResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability query")
	}
	ref, err := s.reference(query.At)
	if err != nil {
		return nil, err
	}
	schedule, err := s.storeSchedule(ctx, storeID)
	if err != nil {
		return nil, err
	}

	verdict := availability.IsStoreOpen(engineStore(schedule), ref, query.Timezone)
	s.recordStoreVerdict(schedule, verdict)

	loc := s.storeLocation(schedule.Store)
	return &dto.StoreAvailabilityResponse{
		StoreID:     schedule.Store.ID,
		StoreName:   schedule.Store.Name,
		Timezone:    loc.String(),
		EvaluatedAt: ref.In(loc),
		IsOpen:      verdict.IsOpen,
		NextOpen:    verdict.NextOpen,
		ClosedOn:    verdict.ClosedOn,
		DSTWarnings: verdict.DSTWarnings,
	}, nil
}

// ProductAvailability evaluates a product at the requested instant. The status
// wording ("Available in N hours", weekday names) follows the viewer's zone, or
// the default zone when none is given.
func (s *AvailabilityService) ProductAvailability(ctx context.Context, productID string, query dto.AvailabilityQuery) (*dto.ProductAvailabilityResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability query")
	}
	ref, err := s.reference(query.At)
	if err != nil {
		return nil, err
	}
	schedule, err := s.productSchedule(ctx, productID)
	if err != nil {
		return nil, err
	}

	viewer := query.Timezone
	if viewer == "" {
		viewer = s.config.DefaultTimezone
	}
	loc, err := availability.LoadLocation(viewer)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidTimezone.Code, appErrors.ErrInvalidTimezone.Status, err.Error())
	}
	ref = ref.In(loc)

	windows := s.productWindows(schedule)
	verdict := availability.EvaluateProduct(windows, ref)
	s.metrics.RecordEvaluation(EntityProduct, verdict.Available, 0)

	anchored := make([]availability.ProductWindow, 0, len(windows))
	for _, w := range windows {
		a, _ := availability.Anchors(w, ref)
		anchored = append(anchored, a)
	}
	if verdict.NextAvailable != nil {
		next := verdict.NextAvailable.In(loc)
		verdict.NextAvailable = &next
	}

	return &dto.ProductAvailabilityResponse{
		ProductID:     schedule.Product.ID,
		ProductName:   schedule.Product.Name,
		EvaluatedAt:   ref,
		Available:     verdict.Available,
		NextAvailable: verdict.NextAvailable,
		Status:        verdict.Status,
		Windows:       anchored,
	}, nil
}

// ConvertHours re-expresses weekly windows from one zone in another.
func (s *AvailabilityService) ConvertHours(ctx context.Context, req dto.ConvertHoursRequest) (*dto.ConvertHoursResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conversion request")
	}
	src, err := availability.LoadLocation(req.SourceTimezone)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidTimezone.Code, appErrors.ErrInvalidTimezone.Status, err.Error())
	}

	ref := s.now().In(src)
	if req.ReferenceDate != "" {
		if ref, err = time.ParseInLocation(isoDate, req.ReferenceDate, src); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "referenceDate must be YYYY-MM-DD")
		}
	}

	windows := make([]availability.WeeklyWindow, 0, len(req.Windows))
	for _, in := range req.Windows {
		w := availability.WeeklyWindow{
			DayOfWeek:     *in.DayOfWeek,
			OpenTime:      in.OpenTime,
			CloseTime:     in.CloseTime,
			IsOpen:        in.IsOpen == nil || *in.IsOpen,
			ClosesNextDay: in.ClosesNextDay,
			DSTAware:      in.DSTAware,
		}
		windows = append(windows, w)
	}

	converted, err := availability.ConvertWeeklyWindows(windows, req.SourceTimezone, req.TargetTimezone, ref)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidTimezone.Code, appErrors.ErrInvalidTimezone.Status, err.Error())
	}
	return &dto.ConvertHoursResponse{
		SourceTimezone: req.SourceTimezone,
		TargetTimezone: req.TargetTimezone,
		ReferenceDate:  ref.Format(isoDate),
		Windows:        converted,
	}, nil
}

// StoreClosures renders the closed ranges of a store verdict as CSV or PDF.
func (s *AvailabilityService) StoreClosures(ctx context.Context, storeID string, query dto.ClosuresQuery) (*dto.ClosuresExport, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid closures query")
	}
	format, err := export.ParseFormat(query.Format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnsupportedFormat.Code, appErrors.ErrUnsupportedFormat.Status, err.Error())
	}
	ref, err := s.reference(query.At)
	if err != nil {
		return nil, err
	}
	schedule, err := s.storeSchedule(ctx, storeID)
	if err != nil {
		return nil, err
	}

	verdict := availability.IsStoreOpen(engineStore(schedule), ref, query.Timezone)
	s.recordStoreVerdict(schedule, verdict)

	display := s.storeLocation(schedule.Store)
	if query.Timezone != "" {
		if loc, err := availability.LoadLocation(query.Timezone); err == nil {
			display = loc
		}
	}

	renderer := export.RendererFor(format)
	body, err := renderer.Render(closuresDataset(schedule.Store, verdict, display))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render closures")
	}
	return &dto.ClosuresExport{
		Filename:    fmt.Sprintf("closures-%s-%s.%s", schedule.Store.ID, ref.In(display).Format(isoDate), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

// Invalidate drops a cached snapshot and queues a warm-up when a warmer is attached.
// An id of "*" drops every snapshot of kind without warming.
func (s *AvailabilityService) Invalidate(ctx context.Context, kind, id string) (*dto.CacheInvalidationResponse, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	id = strings.TrimSpace(id)
	if (kind != EntityStore && kind != EntityProduct) || id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "kind must be store or product and id must be set")
	}

	key := snapshotKey(kind, id)
	if id == "*" {
		if err := s.cache.Invalidate(ctx, key); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "failed to invalidate snapshots")
		}
		return &dto.CacheInvalidationResponse{Kind: kind, ID: id, Key: key}, nil
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "failed to invalidate snapshot")
	}
	s.loads.Forget(key)

	resp := &dto.CacheInvalidationResponse{Kind: kind, ID: id, Key: key}
	if s.warmer == nil || !s.cache.Enabled() {
		return resp, nil
	}
	queued, err := s.warmer.Enqueue(jobs.Job{Type: kind, Key: key})
	if err != nil {
		s.logger.Warn("snapshot warm-up deferred", zap.String("key", key), zap.Error(err))
		resp.WarmupDeferred = true
		return resp, nil
	}
	resp.WarmupQueued = queued
	return resp, nil
}

// Warm reloads a snapshot from the database and caches it. It is the handler of
// the warm-up queue; missing entities are not retried.
func (s *AvailabilityService) Warm(ctx context.Context, job jobs.Job) error {
	kind, id, ok := parseSnapshotKey(job.Key)
	if !ok {
		s.logger.Warn("ignoring malformed warm-up job", zap.String("key", job.Key))
		return nil
	}

	var (
		snapshot interface{}
		err      error
	)
	switch kind {
	case EntityStore:
		snapshot, err = s.loadStoreSchedule(ctx, id)
	default:
		snapshot, err = s.loadProductSchedule(ctx, id)
	}
	if err != nil && appErrors.FromError(err).Code == appErrors.ErrNotFound.Code {
		s.metrics.RecordWarmup(kind, nil)
		return nil
	}
	if err == nil {
		err = s.cache.Set(ctx, job.Key, snapshot, s.config.SnapshotTTL)
	}
	s.metrics.RecordWarmup(kind, err)
	return err
}

// detachedContext outlives the caller that started a shared load, so a
// disconnect does not fail the requests waiting on the same key.
func (s *AvailabilityService) detachedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), snapshotLoadTimeout)
}

func (s *AvailabilityService) reference(at string) (time.Time, error) {
	if strings.TrimSpace(at) == "" {
		return s.now(), nil
	}
	ref, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "at must be an RFC 3339 timestamp")
	}
	return ref, nil
}

func (s *AvailabilityService) storeSchedule(ctx context.Context, id string) (*models.StoreSchedule, error) {
	key := snapshotKey(EntityStore, id)
	var cached models.StoreSchedule
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	v, err, _ := s.loads.Do(key, func() (interface{}, error) {
		loadCtx, cancel := s.detachedContext(ctx)
		defer cancel()
		schedule, err := s.loadStoreSchedule(loadCtx, id)
		if err != nil {
			return nil, err
		}
		_ = s.cache.Set(loadCtx, key, schedule, s.config.SnapshotTTL)
		return schedule, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.StoreSchedule), nil
}

func (s *AvailabilityService) loadStoreSchedule(ctx context.Context, id string) (*models.StoreSchedule, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDBQuery("store_schedule", time.Since(start)) }()

	store, err := s.stores.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "store not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load store")
	}
	hours, err := s.stores.ListOperatingHours(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load operating hours")
	}
	return &models.StoreSchedule{Store: *store, Hours: hours}, nil
}

func (s *AvailabilityService) productSchedule(ctx context.Context, id string) (*models.ProductSchedule, error) {
	key := snapshotKey(EntityProduct, id)
	var cached models.ProductSchedule
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	v, err, _ := s.loads.Do(key, func() (interface{}, error) {
		loadCtx, cancel := s.detachedContext(ctx)
		defer cancel()
		schedule, err := s.loadProductSchedule(loadCtx, id)
		if err != nil {
			return nil, err
		}
		_ = s.cache.Set(loadCtx, key, schedule, s.config.SnapshotTTL)
		return schedule, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.ProductSchedule), nil
}

func (s *AvailabilityService) loadProductSchedule(ctx context.Context, id string) (*models.ProductSchedule, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDBQuery("product_schedule", time.Since(start)) }()

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "product not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load product")
	}
	rules, err := s.products.ListAvailability(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load product availability")
	}
	return &models.ProductSchedule{Product: *product, Rules: rules}, nil
}

// productWindows maps stored rules to engine windows. Undecodable JSON columns
// leave the field empty, which the engine treats as unavailable.
func (s *AvailabilityService) productWindows(schedule *models.ProductSchedule) []availability.ProductWindow {
	windows := make([]availability.ProductWindow, 0, len(schedule.Rules))
	for _, rule := range schedule.Rules {
		w := availability.ProductWindow{
			StartTime: rule.StartTime,
			EndTime:   rule.EndTime,
			Timezone:  s.config.DefaultTimezone,
		}
		if rule.Timezone != nil && strings.TrimSpace(*rule.Timezone) != "" {
			w.Timezone = strings.TrimSpace(*rule.Timezone)
		}
		if rule.RecurrenceRule != nil {
			w.RecurrenceRule = *rule.RecurrenceRule
		}
		if len(rule.DaysOfWeek) > 0 {
			if err := rule.DaysOfWeek.Unmarshal(&w.DayOfWeek); err != nil {
				s.logger.Warn("undecodable days_of_week", zap.String("rule_id", rule.ID), zap.Error(err))
				w.DayOfWeek = nil
			}
		}
		if len(rule.SpecialDates) > 0 {
			if err := rule.SpecialDates.Unmarshal(&w.SpecialDates); err != nil {
				s.logger.Warn("undecodable special_dates", zap.String("rule_id", rule.ID), zap.Error(err))
				w.SpecialDates = nil
			}
		}
		windows = append(windows, w)
	}
	return windows
}

func (s *AvailabilityService) storeLocation(store models.Store) *time.Location {
	loc, err := availability.LoadLocation(store.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (s *AvailabilityService) recordStoreVerdict(schedule *models.StoreSchedule, verdict availability.StoreVerdict) {
	if _, err := availability.LoadLocation(schedule.Store.Timezone); err != nil {
		s.logger.Warn("store has unknown timezone; reporting closed",
			zap.String("store_id", schedule.Store.ID), zap.String("timezone", schedule.Store.Timezone))
	}
	dst := 0
	for _, w := range verdict.DSTWarnings {
		if strings.HasPrefix(w, "Store timezone ") {
			continue
		}
		dst++
		s.logger.Debug("dst advisory", zap.String("store_id", schedule.Store.ID), zap.String("warning", w))
	}
	s.metrics.RecordEvaluation(EntityStore, verdict.IsOpen, dst)
}

func engineStore(schedule *models.StoreSchedule) availability.Store {
	windows := make([]availability.WeeklyWindow, 0, len(schedule.Hours))
	for _, h := range schedule.Hours {
		windows = append(windows, availability.WeeklyWindow{
			DayOfWeek:     h.DayOfWeek,
			OpenTime:      h.OpenTime,
			CloseTime:     h.CloseTime,
			IsOpen:        h.IsOpen,
			ClosesNextDay: h.ClosesNextDay,
			DSTAware:      h.DSTAware,
		})
	}
	return availability.Store{Timezone: schedule.Store.Timezone, OperatingHours: windows}
}

func closuresDataset(store models.Store, verdict availability.StoreVerdict, loc *time.Location) export.Dataset {
	data := export.Dataset{
		Title:   fmt.Sprintf("Closed hours: %s", store.Name),
		Notes:   append([]string{fmt.Sprintf("Times shown in %s", loc)}, verdict.DSTWarnings...),
		Headers: []string{"Date", "Weekday", "From", "Until", "Duration"},
	}
	for _, gap := range verdict.ClosedOn {
		start, end := gap.Start.In(loc), gap.End.In(loc)
		data.Rows = append(data.Rows, map[string]string{
			"Date":     start.Format(isoDate),
			"Weekday":  start.Weekday().String(),
			"From":     start.Format("15:04"),
			"Until":    end.Format("2006-01-02 15:04"),
			"Duration": gap.Duration().String(),
		})
	}
	return data
}

func snapshotKey(kind, id string) string {
	return fmt.Sprintf("availability:%s:%s", kind, id)
}

func parseSnapshotKey(key string) (kind, id string, ok bool) {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) != 3 || parts[0] != "availability" || parts[2] == "" {
		return "", "", false
	}
	if parts[1] != EntityStore && parts[1] != EntityProduct {
		return "", "", false
	}
	return parts[1], parts[2], true
}
