package service

import (
	"context"
	"fmt"
	"sync"

	"paradise/config"
	"paradise/infras/kafka"
	"paradise/infras/otel"
	"paradise/internal/domains/booking/model"
	"paradise/internal/domains/booking/model/dto"
	"paradise/internal/domains/booking/repository"
	"paradise/shared"
	"paradise/shared/cache"
	"paradise/shared/constant"
	gDto "paradise/shared/dto"
	"paradise/shared/failure"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetAllBooking  = "booking:gets"
	cacheCountBooking   = "booking:count"
	cacheRevenueBooking = "booking:revenue"
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.CreateBookingResponse, error)
	CheckAvailability(ctx context.Context, req dto.AvailabilityRequest) (dto.AvailabilityResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	TotalRevenue(ctx context.Context) (int64, error)
}

type serviceImpl struct {
	repo  repository.Booking
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
	kafka kafka.Client

	// serializes bookings on top of the repository transaction, two
	// requests for the same range never race past the overlap check
	mu sync.Mutex
}

func New(repo repository.Booking, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, kafkaClient kafka.Client) Booking {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
		kafka: kafkaClient,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.CreateBookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := req.ToModel()
	if err != nil {
		log.Error().Err(err).Msg("failed to parse booking request")

		return res, failure.BadRequestFromString(err.Error()) // nolint:wrapcheck
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, conflicts, err := s.repo.CreateIfAvailable(ctx, booking)
	if err != nil {
		log.Error().Err(err).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	if len(conflicts) > 0 {
		log.Info().
			Str("start_date", req.StartDate).
			Str("end_date", req.EndDate).
			Int("conflicts", len(conflicts)).
			Msg("booking rejected, dates already taken")

		return res, failure.Conflict("the selected dates are already booked") // nolint:wrapcheck
	}

	booking.ID = id
	_, numDays := model.Quote(booking.BookingType, booking.StartDate, booking.EndDate)
	res.FromModel(booking, numDays)

	scope.AddEvent("booking created")

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
		shared.InvalidateCaches(c, s.cache, cacheRevenueBooking)

		s.publishCreated(c, booking)
	}()

	return res, nil
}

func (s *serviceImpl) publishCreated(ctx context.Context, booking model.Booking) {
	if !s.cfg.Kafka.Enable {
		return
	}

	event := dto.BookingCreatedEvent{}
	event.FromModel(booking)

	message := kafka.Message{
		Key:   fmt.Sprintf("%d", booking.ID),
		Value: event,
	}

	if err := s.kafka.SendMessages(ctx, s.cfg.Kafka.Topic.BookingCreated, message); err != nil {
		log.Error().Err(err).Int64("booking_id", booking.ID).Msg("failed to publish booking created event")
	}
}

func (s *serviceImpl) CheckAvailability(ctx context.Context, req dto.AvailabilityRequest) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CheckAvailability")
	defer scope.End()
	defer scope.TraceIfError(err)

	startDate, endDate, err := req.ParseDates()
	if err != nil {
		log.Error().Err(err).Msg("failed to parse availability request")

		return res, failure.BadRequestFromString(err.Error()) // nolint:wrapcheck
	}

	conflicts, err := s.repo.FindOverlapping(ctx, startDate, endDate, 0)
	if err != nil {
		log.Error().Err(err).Msg("failed to find overlapping bookings")

		return res, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}

	res.FromModels(conflicts)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	revenue, err := s.TotalRevenue(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to sum booking revenue")

		return res, fmt.Errorf("failed to sum booking revenue: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit, revenue)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) TotalRevenue(ctx context.Context) (res int64, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".TotalRevenue")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheRevenueBooking, "all")

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking revenue")

		return res, nil
	}

	res, err = s.repo.SumPrice(ctx, gDto.FilterGroup{})
	if err != nil {
		log.Error().Err(err).Msg("failed to sum booking prices")

		return res, fmt.Errorf("failed to sum booking prices: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking revenue to cache")
		}
	}()

	return res, nil
}
