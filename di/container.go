package di

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"opening-hours/api"
	"opening-hours/api/calendar"
	"opening-hours/config"
	"opening-hours/dao/redis"
	"opening-hours/db"
	"opening-hours/server"
	"opening-hours/server/handlers"
	services "opening-hours/service"

	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Container holds all application dependencies.
type Container struct {
	RedisClient            db.RedisClient
	CalendarAPI            calendar.CalendarAPI
	ConfigDao              *redis.RedisConfigDAO
	ApplicationDataDao     *redis.RedisApplicationDataDAO
	EditModeBroadcaster    *redis.RedisEditModeBroadcaster
	TopicRegistry          *services.TopicRegistry
	Scheduler              *services.CronScheduler
	OpeningHoursService    *services.OpeningHoursService
	OverviewService        *services.OverviewService
	OpenClosedSign         *services.OpenClosedSign
	VisibilityService      *services.VisibilityService
	OpeningHoursHandler    *handlers.OpeningHoursHandler
	MuxRouter              *mux.Router
	Router                 *server.Router
	OpeningHoursHttpServer *server.OpeningHoursHttpServer

	stopRelay func()
}

// NewContainer initializes and wires up all dependencies. Outside prod the
// Redis client and the calendar backend are in-memory.
func NewContainer(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Container, error) {
	log.Info("[Container] Initializing container", zap.String("env", cfg.Env))

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}
	clock := services.SystemClock

	var redisClient db.RedisClient
	var calendarAPI calendar.CalendarAPI
	if cfg.IsProd() {
		redisInternalClient := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		redisClient = db.NewKVRedisClient(ctx, redisInternalClient)
		if err := redisClient.Ping(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Address, err)
		}

		log.Info("[Container] Using calendar backend", zap.String("endpoint", cfg.Calendar.Endpoint))
		calendarAPI = calendar.NewCalendarApiClient(api.NewHTTPClient(cfg.Calendar.Endpoint), cfg.Calendar.Namespace)
	} else {
		redisClient = db.NewMockRedisClient(ctx)

		mock := calendar.NewCalendarApiClientMock(cfg.Calendar.Namespace)
		if err := seedCalendarMock(mock, cfg, log); err != nil {
			return nil, err
		}
		mock.AlignToWeek(services.StartOfIsoWeek(clock.Now().In(location)))
		calendarAPI = mock
		log.Info("[Container] Using in-memory redis and calendar")
	}

	configDao := redis.NewRedisConfigDAO(redisClient)
	applicationDataDao := redis.NewRedisApplicationDataDAO(redisClient)
	broadcaster := redis.NewRedisEditModeBroadcaster(redisClient, log)

	topics := services.NewTopicRegistry(log)
	stopRelay, err := broadcaster.Listen(ctx, func(active bool) {
		topics.Publish(services.TOPIC_EDIT_MODE, active)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to listen for edit mode: %w", err)
	}

	scheduler := services.NewCronScheduler(log)
	openingHoursService := services.NewOpeningHoursService(calendarAPI, applicationDataDao, clock, location, log)

	overviewService, err := services.NewOverviewService(ctx, openingHoursService, topics, clock, log)
	if err != nil {
		stopRelay()
		scheduler.Stop()
		return nil, fmt.Errorf("failed to load opening hours: %w", err)
	}

	openClosedSign := services.NewOpenClosedSign(openingHoursService, scheduler, clock,
		time.Duration(cfg.OpenClosedIntervalMs)*time.Millisecond, log)
	visibilityService := services.NewVisibilityService(ctx, configDao, log)
	permissions := services.NewStaticPermissions(cfg.Permissions...)

	openingHoursHandler := handlers.NewOpeningHoursHandler(openingHoursService, overviewService, openClosedSign,
		visibilityService, broadcaster, permissions, clock, log)

	// Initialize mux router
	muxRouter := mux.NewRouter()
	router := server.NewRouter(openingHoursHandler, muxRouter)
	httpServer := server.NewOpeningHoursHttpServer(router, muxRouter, cfg.Listen, log)

	return &Container{
		RedisClient:            redisClient,
		CalendarAPI:            calendarAPI,
		ConfigDao:              configDao,
		ApplicationDataDao:     applicationDataDao,
		EditModeBroadcaster:    broadcaster,
		TopicRegistry:          topics,
		Scheduler:              scheduler,
		OpeningHoursService:    openingHoursService,
		OverviewService:        overviewService,
		OpenClosedSign:         openClosedSign,
		VisibilityService:      visibilityService,
		OpeningHoursHandler:    openingHoursHandler,
		MuxRouter:              muxRouter,
		Router:                 router,
		OpeningHoursHttpServer: httpServer,
		stopRelay:              stopRelay,
	}, nil
}

// seedCalendarMock loads the configured seed file, or the bundled resource
// when none is configured and it exists.
func seedCalendarMock(mock *calendar.CalendarApiClientMock, cfg *config.Config, log *zap.Logger) error {
	path := cfg.Calendar.SeedFile
	if path == "" {
		path = config.GetResourcePath(config.OPENING_HOURS_EVENTS_RESOURCE)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
	}
	if err := mock.LoadFromJSON(path); err != nil {
		return err
	}
	log.Info("[Container] Seeded calendar mock", zap.String("file", path), zap.Int("events", len(mock.Events())))
	return nil
}

// Close stops background work started by the container.
func (c *Container) Close() {
	c.OpenClosedSign.Stop()
	c.OverviewService.Close()
	c.stopRelay()
	c.Scheduler.Stop()
}
