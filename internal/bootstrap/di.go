package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/do/v2"

	analyticsinadapter "studytrack/internal/modules/analytics/adapter/in"
	analyticsoutadapter "studytrack/internal/modules/analytics/adapter/out"
	analyticsin "studytrack/internal/modules/analytics/port/in"
	analyticsservice "studytrack/internal/modules/analytics/service"
	analyticsusecase "studytrack/internal/modules/analytics/usecase"
	focusinadapter "studytrack/internal/modules/focus/adapter/in"
	focusoutadapter "studytrack/internal/modules/focus/adapter/out"
	focusin "studytrack/internal/modules/focus/port/in"
	focusservice "studytrack/internal/modules/focus/service"
	focususecase "studytrack/internal/modules/focus/usecase"
	subjectinadapter "studytrack/internal/modules/subject/adapter/in"
	subjectoutadapter "studytrack/internal/modules/subject/adapter/out"
	subjectin "studytrack/internal/modules/subject/port/in"
	subjectservice "studytrack/internal/modules/subject/service"
	subjectusecase "studytrack/internal/modules/subject/usecase"
	"studytrack/internal/platform/clock"
	"studytrack/internal/platform/config"
	"studytrack/internal/platform/database"
	"studytrack/internal/platform/httpx"
	"studytrack/internal/platform/id"
	"studytrack/internal/platform/kv"
)

const (
	openTimeout = 15 * time.Second
	journalDir  = "journal"
)

// ownerID is the local identity every store call is scoped to.
type ownerID string

func registerPlatform(injector do.Injector) {
	do.ProvideValue[clock.Clock](injector, clock.SystemClock{})
	do.ProvideValue[id.Generator](injector, id.UUID{})

	do.Provide(injector, func(i do.Injector) (*database.DB, error) {
		cfg := do.MustInvoke[config.Config](i)
		logger := do.MustInvoke[*slog.Logger](i)
		if cfg.DBDriver == "none" {
			logger.Info("durable store disabled, running on the local cache only")
			return nil, nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
		defer cancel()
		db, err := database.Open(ctx, cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			if db != nil && database.IsUnavailable(err) {
				logger.Warn("durable store unreachable, continuing offline", "driver", cfg.DBDriver, "error", err)
				return db, nil
			}
			return nil, fmt.Errorf("open %s store: %w", cfg.DBDriver, err)
		}
		return db, nil
	})

	do.Provide(injector, func(i do.Injector) (kv.Cache, error) {
		cfg := do.MustInvoke[config.Config](i)
		switch cfg.CacheBackend {
		case "memory":
			return kv.NewMemoryCache(), nil
		case "redis":
			ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
			defer cancel()
			cache, err := kv.NewRedisCache(ctx, kv.RedisOptions{
				Addr:     cfg.Redis.Addr,
				Username: cfg.Redis.Username,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				Prefix:   cfg.Redis.Prefix,
			})
			if err != nil {
				return nil, fmt.Errorf("connect redis cache: %w", err)
			}
			return cache, nil
		default:
			return kv.NewFileCache(cfg.DataDir), nil
		}
	})

	do.Provide(injector, func(i do.Injector) (ownerID, error) {
		owner, err := kv.OwnerID(do.MustInvoke[kv.Cache](i), do.MustInvoke[id.Generator](i))
		if err != nil {
			return "", err
		}
		return ownerID(owner), nil
	})
}

func registerSubject(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (subjectin.Usecase, error) {
		svc := subjectservice.NewSubjectService(
			do.MustInvoke[clock.Clock](i),
			do.MustInvoke[id.Generator](i),
			subjectoutadapter.NewSQLSubjectStore(do.MustInvoke[*database.DB](i)),
			do.MustInvoke[kv.Cache](i),
			string(do.MustInvoke[ownerID](i)),
			do.MustInvoke[*slog.Logger](i).With("module", "subject"),
		)
		return subjectusecase.NewInteractor(svc), nil
	})
}

func registerFocus(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (focusin.Usecase, error) {
		cfg := do.MustInvoke[config.Config](i)
		db := do.MustInvoke[*database.DB](i)
		logger := do.MustInvoke[*slog.Logger](i).With("module", "focus")
		reconciler := focusservice.NewReconciler(
			do.MustInvoke[clock.Clock](i),
			do.MustInvoke[id.Generator](i),
			focusoutadapter.NewSQLMarkerStore(db),
			focusoutadapter.NewSQLSessionStore(db),
			do.MustInvoke[kv.Cache](i),
			db,
			logger,
			focusservice.Options{
				OwnerID:     string(do.MustInvoke[ownerID](i)),
				HistoryDays: cfg.HistoryDays,
			},
		)
		return focususecase.NewInteractor(reconciler, do.MustInvoke[subjectin.Usecase](i), logger, focususecase.Options{
			PollInterval: cfg.PollInterval,
			PollJitter:   cfg.PollJitter,
		}), nil
	})
}

func registerAnalytics(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (analyticsin.Usecase, error) {
		cfg := do.MustInvoke[config.Config](i)
		svc, err := analyticsservice.NewAnalyticsService(
			do.MustInvoke[clock.Clock](i),
			cfg.Location(),
			analyticsoutadapter.NewFocusSessionSource(do.MustInvoke[focusin.Usecase](i)),
			analyticsoutadapter.NewSubjectCatalog(do.MustInvoke[subjectin.Usecase](i)),
			analyticsoutadapter.NewFileJournalStore(filepath.Join(cfg.DataDir, journalDir)),
			do.MustInvoke[*slog.Logger](i).With("module", "analytics"),
		)
		if err != nil {
			return nil, fmt.Errorf("new analytics service: %w", err)
		}
		return analyticsusecase.NewInteractor(svc), nil
	})
}

func registerHTTP(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*gin.Engine, error) {
		if !do.MustInvoke[config.Config](i).IsDevelopment() {
			gin.SetMode(gin.ReleaseMode)
		}
		return httpx.NewRouter(
			subjectinadapter.NewHTTPHandler(do.MustInvoke[subjectin.Usecase](i)).RegisterRoutes,
			focusinadapter.NewHTTPHandler(do.MustInvoke[focusin.Usecase](i)).RegisterRoutes,
			analyticsinadapter.NewHTTPHandler(do.MustInvoke[analyticsin.Usecase](i)).RegisterRoutes,
		), nil
	})
}
