package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/vuhoang/defcom/internal/app/controllers"
	appMigrations "github.com/vuhoang/defcom/internal/app/migrations"
	"github.com/vuhoang/defcom/internal/app/models"
	appRepos "github.com/vuhoang/defcom/internal/app/repositories"
	appRoutes "github.com/vuhoang/defcom/internal/app/routes"
	appServices "github.com/vuhoang/defcom/internal/app/services"
	"github.com/vuhoang/defcom/internal/config"
	"github.com/vuhoang/defcom/internal/db"
	appMiddleware "github.com/vuhoang/defcom/internal/middleware"
	pkgAuth "github.com/vuhoang/defcom/internal/pkg/auth"
	"github.com/vuhoang/defcom/internal/pkg/helpers"
	"github.com/vuhoang/defcom/internal/pkg/logger"
	"github.com/vuhoang/defcom/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	QuotaService       appServices.QuotaService
	EligibilityService appServices.EligibilityService
	RosterService      appServices.RosterService
	SchedulerService   appServices.SchedulerService
	PlannerService     appServices.PlannerService
	DirectoryService   appServices.DirectoryService
	ExportService      appServices.ExportService
	CalendarService    appServices.CalendarService

	CommitteeController  *appControllers.CommitteeController
	AssignmentController *appControllers.AssignmentController
	PlannerController    *appControllers.PlannerController
	LecturerController   *appControllers.LecturerController
	ExportController     *appControllers.ExportController

	AuthMiddleware *appMiddleware.AuthMiddleware
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDefenseConfig converts the raw config into the engine's rule set.
func BuildDefenseConfig(cfg *config.Config) (appServices.DefenseConfig, error) {
	ranks := make([]models.AcademicRank, 0, len(cfg.Defense.ChairRanks))
	for _, raw := range cfg.Defense.ChairRanks {
		rank, ok := models.ParseAcademicRank(raw)
		if !ok {
			return appServices.DefenseConfig{}, fmt.Errorf("unknown chair rank %q in configuration", raw)
		}
		ranks = append(ranks, rank)
	}

	windows := make(map[models.Session]appServices.SessionWindow, 2)
	for _, w := range []struct {
		session    models.Session
		start, end string
	}{
		{models.SessionMorning, cfg.Defense.MorningStart, cfg.Defense.MorningEnd},
		{models.SessionAfternoon, cfg.Defense.AfternoonStart, cfg.Defense.AfternoonEnd},
	} {
		start, err := helpers.ParseClock(w.start)
		if err != nil {
			return appServices.DefenseConfig{}, err
		}
		end, err := helpers.ParseClock(w.end)
		if err != nil {
			return appServices.DefenseConfig{}, err
		}
		if start >= end {
			return appServices.DefenseConfig{}, fmt.Errorf("%s session window %s-%s is empty", w.session, w.start, w.end)
		}
		windows[w.session] = appServices.SessionWindow{Start: start, End: end}
	}

	return appServices.DefenseConfig{
		Quorum:      cfg.Defense.Quorum,
		ChairRanks:  ranks,
		SlotMinutes: cfg.Defense.SlotMinutes,
		Windows:     windows,
	}, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	defenseCfg, err := BuildDefenseConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid defense configuration: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenIssuer: cfg.JWT.Issuer,
	})

	repos := deps.Repos
	deps.QuotaService = appServices.NewQuotaService(repos.LecturerRepository)
	deps.EligibilityService = appServices.NewEligibilityService(repos.CommitteeRepository, repos.TopicRepository)
	deps.RosterService = appServices.NewRosterService(
		repos.CommitteeRepository,
		repos.LecturerRepository,
		repos.AssignmentRepository,
		deps.QuotaService,
		defenseCfg,
	)
	deps.SchedulerService = appServices.NewSchedulerService(
		repos.CommitteeRepository,
		repos.TopicRepository,
		repos.AssignmentRepository,
		deps.EligibilityService,
		deps.RosterService,
		lgr,
	)
	deps.PlannerService = appServices.NewPlannerService(
		repos.CommitteeRepository,
		repos.TopicRepository,
		repos.AssignmentRepository,
		deps.EligibilityService,
		deps.RosterService,
		defenseCfg,
		lgr,
	)
	deps.DirectoryService = appServices.NewDirectoryService(repos.LecturerRepository, repos.TagRepository)
	deps.ExportService = appServices.NewExportService(
		repos.CommitteeRepository,
		repos.TopicRepository,
		repos.AssignmentRepository,
		lgr,
	)
	deps.CalendarService = appServices.NewCalendarService(
		repos.CommitteeRepository,
		repos.TopicRepository,
		repos.AssignmentRepository,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.CommitteeController = appControllers.NewCommitteeController(
		deps.RosterService,
		deps.EligibilityService,
		deps.CalendarService,
	)
	deps.AssignmentController = appControllers.NewAssignmentController(deps.SchedulerService)
	deps.PlannerController = appControllers.NewPlannerController(deps.PlannerService)
	deps.LecturerController = appControllers.NewLecturerController(deps.DirectoryService, deps.QuotaService)
	deps.ExportController = appControllers.NewExportController(deps.ExportService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestID())
	router.Use(appMiddleware.RequestLogger(lgr))

	appRoutes.SetupRouter(router,
		deps.CommitteeController,
		deps.AssignmentController,
		deps.PlannerController,
		deps.LecturerController,
		deps.ExportController,
		deps.AuthMiddleware,
	)

	return router
}
