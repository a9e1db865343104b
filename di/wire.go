//go:build wireinject
// +build wireinject

package di

import (
	"paradise/config"
	"paradise/infras/jwt"
	"paradise/infras/kafka"
	"paradise/infras/otel"
	"paradise/infras/postgres"
	"paradise/infras/redis"
	"paradise/permissions"
	"paradise/shared/cache"
	"paradise/transport/http"
	"paradise/transport/http/middleware"
	"paradise/transport/http/router"

	bookingRepository "paradise/internal/domains/booking/repository"
	bookingService "paradise/internal/domains/booking/service"
	bookingHandler "paradise/internal/handlers/booking"

	"github.com/google/wire"

	authService "paradise/internal/domains/auth/service"
	authHandler "paradise/internal/handlers/auth"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	permissions.Get,
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var authDomain = wire.NewSet(
	authService.New,
)

var domains = wire.NewSet(
	bookingDomain,
	authDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	bookingHandler.New,
	authHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
