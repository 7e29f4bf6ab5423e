package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"resume-intel/internal/conversations"
	"resume-intel/internal/engine"
	"resume-intel/internal/engine/aiservice"
	"resume-intel/internal/health"
	"resume-intel/internal/interview"
	"resume-intel/internal/jobs"
	"resume-intel/internal/resumes"
	"resume-intel/internal/shared/auth"
	"resume-intel/internal/shared/config"
	"resume-intel/internal/shared/server"
	"resume-intel/internal/shared/server/middleware"
	"resume-intel/internal/shared/storage/db"
	"resume-intel/internal/shared/storage/mongodb"
	"resume-intel/internal/shared/storage/object"
	gcsstore "resume-intel/internal/shared/storage/object/gcs"
	localstore "resume-intel/internal/shared/storage/object/local"
	s3store "resume-intel/internal/shared/storage/object/s3"
	"resume-intel/internal/shared/telemetry"
	"resume-intel/internal/skillgap"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Mongo  *mongo.Client
	Store  object.ObjectStore
	Engine engine.Client

	Resumes       *resumes.Service
	SkillGap      *skillgap.Service
	Conversations *conversations.Service
	Interview     *interview.Service
	Jobs          *jobs.Service
	Health        *health.Service

	closers []func() error
}

// Option adjusts how Build wires the application.
type Option func(*buildOptions)

type buildOptions struct {
	engine      engine.Client
	now         func() time.Time
	rateLimiter *middleware.RateLimiter
}

// WithEngine replaces the HTTP engine client, typically with a fake.
func WithEngine(c engine.Client) Option {
	return func(o *buildOptions) { o.engine = c }
}

// WithClock sets the clock used by services and the rate limiter.
func WithClock(now func() time.Time) Option {
	return func(o *buildOptions) { o.now = now }
}

// WithRateLimiter shares a limiter across builds.
func WithRateLimiter(l *middleware.RateLimiter) Option {
	return func(o *buildOptions) { o.rateLimiter = l }
}

// Build connects storage, constructs services and wires the router.
func Build(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.StoreBackend) == "" {
		cfg.StoreBackend = config.StoreMemory
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = config.ObjectStoreLocal
	}

	app := &App{Config: cfg}
	if err := app.build(ctx, o); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) build(ctx context.Context, o buildOptions) error {
	repos, err := a.buildRepos(ctx)
	if err != nil {
		return err
	}
	if a.Store, err = a.buildStore(ctx); err != nil {
		return err
	}
	if a.Engine, err = a.buildEngine(o.engine); err != nil {
		return err
	}
	verifier, err := auth.NewVerifier(a.Config.JWTSecret, a.Config.Env)
	if err != nil {
		return err
	}

	a.Resumes = &resumes.Service{Repo: repos.resumes, Store: a.Store, Engine: a.Engine, Now: o.now}
	a.SkillGap = &skillgap.Service{Repo: repos.skillGap, Resumes: a.Resumes, Engine: a.Engine, Now: o.now}
	a.Conversations = &conversations.Service{Repo: repos.conversations, Resumes: a.Resumes, Engine: a.Engine, Now: o.now}
	a.Interview = &interview.Service{Resumes: a.Resumes, Engine: a.Engine}
	a.Jobs = &jobs.Service{Engine: a.Engine}

	var checkers []health.Checker
	if a.DB != nil {
		checkers = append(checkers, health.SQLChecker{DB: a.DB})
	}
	if a.Mongo != nil {
		checkers = append(checkers, health.MongoChecker{Client: a.Mongo})
	}
	a.Health = health.NewService(checkers...)

	limiter := o.rateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(o.now)
	}
	a.Router = server.NewRouter(server.RouterDeps{
		Config:      a.Config,
		Verifier:    verifier,
		RateLimiter: limiter,
		Health:      health.NewHandler(a.Health),
		Features: []server.FeatureRoutes{
			resumes.NewHandler(a.Resumes),
			skillgap.NewHandler(a.SkillGap),
			conversations.NewHandler(a.Conversations),
			interview.NewHandler(a.Interview),
			jobs.NewHandler(a.Jobs),
		},
	})
	return nil
}

type repoSet struct {
	resumes       resumes.Repo
	skillGap      skillgap.Repo
	conversations conversations.Repo
}

func (a *App) buildRepos(ctx context.Context) (repoSet, error) {
	switch a.Config.StoreBackend {
	case config.StorePostgres:
		sqlDB, err := db.Connect(ctx, a.Config.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			return repoSet{}, err
		}
		a.DB = sqlDB
		a.closers = append(a.closers, sqlDB.Close)
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return repoSet{}, fmt.Errorf("run migrations: %w", err)
		}
		telemetry.Info("bootstrap.store_ready", map[string]any{"backend": config.StorePostgres})
		return repoSet{
			resumes:       &resumes.PGRepo{DB: sqlDB},
			skillGap:      &skillgap.PGRepo{DB: sqlDB},
			conversations: &conversations.PGRepo{DB: sqlDB},
		}, nil
	case config.StoreMongo:
		client, err := mongodb.Connect(ctx, a.Config.MongoURI)
		if err != nil {
			return repoSet{}, err
		}
		a.Mongo = client
		a.closers = append(a.closers, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Disconnect(ctx)
		})
		database := client.Database(a.Config.MongoDB)
		if err := mongodb.EnsureIndexes(ctx, database); err != nil {
			return repoSet{}, err
		}
		telemetry.Info("bootstrap.store_ready", map[string]any{"backend": config.StoreMongo})
		return repoSet{
			resumes:       resumes.NewMongoRepo(database),
			skillGap:      skillgap.NewMongoRepo(database),
			conversations: conversations.NewMongoRepo(database),
		}, nil
	case config.StoreMemory:
		if a.Config.Env == "production" {
			return repoSet{}, errors.New("in-memory store is not allowed in production")
		}
		telemetry.Warn("bootstrap.store_ready", map[string]any{"backend": config.StoreMemory})
		return repoSet{
			resumes:       resumes.NewMemoryRepo(),
			skillGap:      skillgap.NewMemoryRepo(),
			conversations: conversations.NewMemoryRepo(),
		}, nil
	default:
		return repoSet{}, fmt.Errorf("unknown store backend %q", a.Config.StoreBackend)
	}
}

func (a *App) buildStore(ctx context.Context) (object.ObjectStore, error) {
	switch a.Config.ObjectStoreType {
	case config.ObjectStoreS3:
		store, err := s3store.New(ctx, a.Config.AWSRegion, a.Config.S3Bucket, a.Config.S3Prefix, a.Config.SSEKMSKeyID)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.ObjectStoreGCS:
		store, err := gcsstore.New(ctx, a.Config.GCSBucket, a.Config.GCSPrefix)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		return localstore.New(a.Config.LocalStoreDir), nil
	}
}

func (a *App) buildEngine(override engine.Client) (engine.Client, error) {
	if override != nil {
		return override, nil
	}
	client, err := aiservice.New(aiservice.Config{
		BaseURL: a.Config.Engine.BaseURL,
		APIKey:  a.Config.Engine.APIKey,
		Timeout: a.Config.Engine.Timeout,
	})
	if err != nil {
		return nil, err
	}
	policy := engine.DefaultRetryPolicy
	policy.MaxAttempts = a.Config.Engine.MaxRetries + 1
	return engine.WithRetry(client, policy), nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
