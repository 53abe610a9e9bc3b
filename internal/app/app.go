package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"go.uber.org/zap"

	"github.com/Nazarious-ucu/weather-viewer/internal/config"
	handlers "github.com/Nazarious-ucu/weather-viewer/internal/handlers/http"
	"github.com/Nazarious-ucu/weather-viewer/internal/models"
	"github.com/Nazarious-ucu/weather-viewer/internal/services/cache"
	loggerT "github.com/Nazarious-ucu/weather-viewer/internal/services/logger"
	metricsSvc "github.com/Nazarious-ucu/weather-viewer/internal/services/metrics"
	serviceWeather "github.com/Nazarious-ucu/weather-viewer/internal/services/weather"
	"github.com/Nazarious-ucu/weather-viewer/internal/services/weather/decorators"
	"github.com/Nazarious-ucu/weather-viewer/internal/view"
	fLogger "github.com/Nazarious-ucu/weather-viewer/pkg/logger"
)

const (
	shutdownTimeout = 5 * time.Second

	// a search is one geocode followed by one parallel round of fetches,
	// plus whatever the geocoder rate limit makes it wait
	searchTimeoutFactor = 3
	geocoderBurst       = 1

	cacheNamespace = "weatherview"
)

// ServiceContainer holds initialized dependencies for the servers.
type ServiceContainer struct {
	WeatherService *serviceWeather.Service
	Session        *view.Session

	Router     *gin.Engine
	Srv        *http.Server
	redis      *redis.Client
	fileLogger *zap.Logger
}

// App ties together config, logger, and metrics for startup/shutdown.
type App struct {
	cfg config.Config
	l   zerolog.Logger
	m   *metricsSvc.Metrics
}

// New prepares a new App with given config, zerolog logger, and metrics.
func New(cfg config.Config, logger zerolog.Logger, met *metricsSvc.Metrics) *App {
	return &App{
		cfg: cfg,
		l:   logger,
		m:   met,
	}
}

// Start runs the view session, the HTTP server and the refresh schedule
// until ctx is cancelled, then shuts everything down.
func (a *App) Start(ctx context.Context) error {
	srvContainer, err := a.init()
	if err != nil {
		return err
	}

	sessionCtx, stopSession := context.WithCancel(ctx)
	defer stopSession()
	go srvContainer.Session.Run(sessionCtx)

	scheduler, err := a.schedule(sessionCtx, srvContainer.Session)
	if err != nil {
		a.closeResources(srvContainer)
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		a.l.Info().Str("address", srvContainer.Srv.Addr).Msg("HTTP server running")
		if err := srvContainer.Srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	a.l.Info().Str("address", srvContainer.Srv.Addr).Msg("weather viewer started successfully")

	var runErr error
	select {
	case <-ctx.Done():
		a.l.Info().Msg("shutdown signal received, stopping weather viewer")
	case runErr = <-serveErr:
		a.l.Error().Err(runErr).Msg("HTTP server failed")
	}

	if scheduler != nil {
		<-scheduler.Stop().Done()
		a.l.Info().Msg("refresh schedule stopped")
	}
	stopSession()

	if err := a.Shutdown(srvContainer); err != nil {
		a.l.Error().Err(err).Msg("failed to shutdown application")
		return errors.Join(runErr, err)
	}
	a.l.Info().Msg("application shutdown successfully")
	return runErr
}

// Shutdown stops the HTTP server within shutdownTimeout and releases clients and loggers.
func (a *App) Shutdown(srvContainer ServiceContainer) error {
	a.l.Info().Msg("stopping weather viewer…")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := srvContainer.Srv.Shutdown(ctx); err != nil {
		shutdownErr = fmt.Errorf("http shutdown: %w", err)
		a.l.Error().Err(err).Msg("HTTP shutdown error")
	} else {
		a.l.Info().Msg("HTTP server stopped")
	}

	a.closeResources(srvContainer)
	a.l.Info().Msg("shutdown complete")
	return shutdownErr
}

func (a *App) closeResources(srvContainer ServiceContainer) {
	if srvContainer.redis != nil {
		if err := srvContainer.redis.Close(); err != nil {
			a.l.Error().Err(err).Msg("failed to close redis client")
		}
	}

	if srvContainer.fileLogger != nil {
		if err := srvContainer.fileLogger.Sync(); err != nil {
			a.l.Error().Err(err).Msg("failed to sync file logger")
		} else {
			a.l.Info().Msg("file logger synced successfully")
		}
	}
}

// init builds clients, decorators, the session and the router without starting anything.
func (a *App) init() (ServiceContainer, error) {
	a.l.Info().
		Str("address", a.cfg.ServerAddress()).
		Str("nominatim_url", a.cfg.Geocoder.URL).
		Str("open_weather_map_url", a.cfg.OpenWeatherMapURL).
		Bool("redis_enabled", a.cfg.Redis.Enabled()).
		Str("refresh_spec", a.cfg.RefreshSpec).
		Msg("initializing weather viewer")

	fileLogger, err := fLogger.NewFileLogger(a.cfg.HTTPLogsPath)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create http file logger: %w", err)
	}

	// HTTP client logging
	httpLogClient := &http.Client{Transport: loggerT.NewRoundTripper(fileLogger)}

	breakerCfg := serviceWeather.BreakerConfig{
		TimeInterval: time.Duration(a.cfg.Breaker.TimeInterval) * time.Second,
		TimeTimeOut:  time.Duration(a.cfg.Breaker.TimeTimeOut) * time.Second,
		RepeatNumber: a.cfg.Breaker.RepeatNumber,
	}

	nominatim := serviceWeather.NewClientNominatim(
		a.cfg.Geocoder.URL,
		a.cfg.Geocoder.UserAgent,
		a.cfg.Geocoder.Language,
		httpLogClient,
		a.cfg.Timeout(),
		a.l,
	)
	// token waits are not counted by the breaker
	geocoder := serviceWeather.NewRateLimitedGeocoder(
		serviceWeather.NewBreakerGeocoder("Nominatim", breakerCfg, nominatim),
		a.cfg.Geocoder.RPS,
		geocoderBurst,
	)

	openWeather := serviceWeather.NewBreakerProvider("OpenWeatherMap", breakerCfg,
		serviceWeather.NewClientOpenWeatherMap(
			a.cfg.OpenWeatherMapAPIKey,
			a.cfg.OpenWeatherMapURL,
			httpLogClient,
			a.cfg.Timeout(),
			a.l,
		),
	)

	var redisClient *redis.Client
	weatherService := serviceWeather.NewService(a.l, geocoder, openWeather)
	if a.cfg.Redis.Enabled() {
		// Redis cache client + metrics decorator
		redisClient = newRedisConnection(a.cfg.Redis.Address(), a.cfg.Redis.DbType)
		cacheMetrics := cache.NewMetricsDecorator[models.Coordinates](
			cache.NewStore[models.Coordinates](redisClient, cacheNamespace, time.Duration(a.cfg.Redis.LiveTime)*time.Hour, a.l),
			metricsSvc.NewPromCollector(a.m.Registry()),
		)
		weatherService = serviceWeather.NewService(a.l,
			decorators.NewCachedGeocoder(geocoder, cacheMetrics, a.l),
			openWeather,
		)
	}

	session := view.NewSession(weatherService, a.m, a.l, searchTimeoutFactor*a.cfg.Timeout())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(a.m.HTTPMiddleware())
	router.GET("/metrics", gin.WrapH(a.m.Handler()))
	handlers.NewHandler(weatherService, session, a.l).Register(router)

	httpServer := &http.Server{
		Addr:              a.cfg.ServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
		ReadTimeout:       time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
	}

	return ServiceContainer{
		WeatherService: weatherService,
		Session:        session,
		Router:         router,
		Srv:            httpServer,
		redis:          redisClient,
		fileLogger:     fileLogger,
	}, nil
}

// schedule re-runs the last search on cfg.RefreshSpec. It returns nil when no spec is set.
func (a *App) schedule(ctx context.Context, session *view.Session) (*cron.Cron, error) {
	if a.cfg.RefreshSpec == "" {
		return nil, nil
	}

	c := cron.New()
	if _, err := c.AddFunc(a.cfg.RefreshSpec, func() {
		if err := session.Refresh(ctx); err != nil {
			a.l.Error().Err(err).Msg("scheduled refresh failed")
			return
		}
		a.l.Debug().Msg("scheduled refresh submitted")
	}); err != nil {
		return nil, fmt.Errorf("%w: REFRESH_SPEC %q: %w", config.ErrConfig, a.cfg.RefreshSpec, err)
	}

	c.Start()
	a.l.Info().Str("spec", a.cfg.RefreshSpec).Msg("refresh schedule started")
	return c, nil
}

func newRedisConnection(connString string, dbType int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: connString, DB: dbType})
}
