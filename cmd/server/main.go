package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"skillbridge/internal/api"
	"skillbridge/internal/cache"
	"skillbridge/internal/config"
	"skillbridge/internal/dashboard"
	"skillbridge/internal/handler"
	"skillbridge/internal/logging"
	"skillbridge/internal/middleware"
	"skillbridge/internal/mutation"
	"skillbridge/internal/session"
	"skillbridge/internal/utils"
	"skillbridge/internal/view"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.New()
	if err != nil {
		panic(fmt.Errorf("cannot create config: %w", err))
	}

	logger, err := logging.NewForEnv(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	responseCache, closeCache := newCache(ctx, logger, cfg.RedisURL)
	defer closeCache()

	client := api.NewClient(cfg.APIURL,
		api.WithRetry(cfg.APIMaxRetries, cfg.APIRetryBaseDelay),
		api.WithCircuitBreaker(utils.NewCircuitBreaker(cfg.APIBreakerThreshold, cfg.APIBreakerReset)),
		api.WithObserver(middleware.ObserveAPICall),
	)

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal(ctx, "cannot load display timezone", zap.Error(err))
	}

	renderer, err := view.New(loc)
	if err != nil {
		logger.Fatal(ctx, "cannot parse templates", zap.Error(err))
	}

	flashes := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	flashes.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}

	pages := handler.NewPages(renderer, flashes)
	validate := handler.NewValidator()
	resolver := session.NewResolver(client)
	store := dashboard.NewStore[api.TutorStatsResponse](client.GetMyStats, cfg.LoaderIdleTTL)

	router := handler.Router{
		Logger:       logger,
		Resolver:     resolver,
		Pages:        pages,
		Auth:         handler.NewAuthHandler(client, resolver, pages, validate, store),
		Tutors:       handler.NewTutorsHandler(client, responseCache, cfg.CacheTTL, pages),
		Dashboard:    handler.NewDashboardHandler(store, mutation.NewBookingStatusMutator(client), responseCache, pages),
		Profile:      handler.NewProfileHandler(client, responseCache, cfg.CacheTTL, pages, validate),
		Availability: handler.NewAvailabilityHandler(client, responseCache, pages, validate, loc),
	}

	port := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info(ctx, "Starting server", zap.String("port", port), zap.String("api_url", cfg.APIURL))

	srv := &http.Server{
		Addr:              port,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "cannot start http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info(ctx, "Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal(ctx, "server forced to shutdown", zap.Error(err))
	}
	logger.Info(ctx, "Server stopped")
}

// newCache connects to Redis when REDIS_URL is set. Without it responses
// are not cached at all.
func newCache(ctx context.Context, logger *logging.Logger, redisURL string) (handler.Cache, func()) {
	if redisURL == "" {
		logger.Info(ctx, "REDIS_URL not set, response cache disabled")
		return cache.NopCache{}, func() {}
	}

	opts := &redis.Options{Addr: redisURL}
	if strings.Contains(redisURL, "://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.Fatal(ctx, "invalid REDIS_URL", zap.Error(err))
		}
		opts = parsed
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn(ctx, "redis unreachable, cache misses will hit the API", zap.Error(err))
	}
	return cache.NewRedisCache(rdb), func() { _ = rdb.Close() }
}
