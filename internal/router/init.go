package router

import (
	"github.com/sensus-health/sensus-api/internal/application"
	"github.com/sensus-health/sensus-api/internal/container"
	pginfra "github.com/sensus-health/sensus-api/internal/infrastructure/postgres"
	handlers "github.com/sensus-health/sensus-api/internal/interface/http"
	"github.com/sensus-health/sensus-api/internal/router/modules"
)

// InitModules constructs repositories, services and handlers from the
// container singletons and registers every feature module.
// Call once during startup, after the container is populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	userRepo := pginfra.NewUserRepository(pool)
	diaryRepo := pginfra.NewDiaryRepository(pool)
	evalRepo := pginfra.NewEvaluationRepository(pool)
	statsRepo := pginfra.NewStatsRepository(pool)

	userSvc := &application.UserService{
		Users:              userRepo,
		Diary:              diaryRepo,
		Evals:              evalRepo,
		JWT:                container.GetJWT(),
		Redis:              container.GetRedis(),
		Cache:              container.GetCache(),
		Logger:             logger,
		GCS:                container.GetGCS(),
		GCSBucket:          cfg.GCSBucket,
		BcryptCost:         cfg.BcryptCost,
		LoginMaxAttempts:   cfg.LoginMaxAttempts,
		LoginLockoutWindow: cfg.LoginLockoutWindow,
	}
	diarySvc := &application.DiaryService{
		Repo:    diaryRepo,
		Logger:  logger,
		ES:      container.GetES(),
		ESIndex: cfg.ESDiaryIndex,
		Pub:     container.GetEventPub(),
	}
	evalSvc := &application.EvaluationService{
		Repo:   evalRepo,
		Logger: logger,
		Pub:    container.GetEventPub(),
	}

	statsSvc := &application.StatsService{Repo: statsRepo}

	userHandler := handlers.NewUserHandler(userSvc, logger, cfg.CookieDomain, cfg.CookieSecure)
	statsHandler := handlers.NewStatsHandler(statsSvc, logger)
	diaryHandler := handlers.NewDiaryHandler(diarySvc, logger)
	evalHandler := handlers.NewEvaluationHandler(evalSvc, logger)

	r.Add(modules.NewUserModule(userHandler, statsHandler, container.GetJWT()))
	r.Add(modules.NewDiaryModule(diaryHandler, container.GetJWT()))
	r.Add(modules.NewEvaluationModule(evalHandler, container.GetJWT()))
}
