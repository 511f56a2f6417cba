package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"profile-backend/internal/profiles"
	"profile-backend/internal/shared/auth"
	"profile-backend/internal/shared/config"
	"profile-backend/internal/shared/server"
	"profile-backend/internal/shared/storage/db"
	"profile-backend/internal/shared/storage/object"
	localstore "profile-backend/internal/shared/storage/object/local"
	s3store "profile-backend/internal/shared/storage/object/s3"
	"profile-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Store           object.ObjectStore
	Auth            *auth.Manager
	ProfilesRepo    profiles.Repo
	UsersRepo       users.Repo
	ProfilesService *profiles.Service
	UsersService    *users.Service
	ProfilesHandler *profiles.Handler
	UsersHandler    *users.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	authMgr, err := auth.NewManager(cfg.JWTSecret, cfg.Env)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Auth:   authMgr,
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		Auth:            app.Auth,
		IdentitySync:    users.SyncIdentity(app.UsersService),
		ProfilesHandler: app.ProfilesHandler,
		UsersHandler:    app.UsersHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, s3store.Config{
			Region:    cfg.AWSRegion,
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			KMSKeyID:  cfg.SSEKMSKeyID,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildServices(app *App) {
	var profileRepo profiles.Repo
	var userRepo users.Repo

	if app.DB != nil {
		profileRepo = &profiles.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		profileRepo = profiles.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	userSvc := users.NewService(userRepo)
	profileSvc := &profiles.Service{
		Repo:  profileRepo,
		Store: app.Store,
		Users: userDirectory{repo: userRepo},
	}

	app.ProfilesRepo = profileRepo
	app.UsersRepo = userRepo
	app.ProfilesService = profileSvc
	app.UsersService = userSvc
	app.ProfilesHandler = profiles.NewHandler(profileSvc, app.Config.MaxUploadBytes)
	app.UsersHandler = users.NewHandler(userSvc)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

// userDirectory adapts the users repo to the profiles read projection.
type userDirectory struct {
	repo users.Repo
}

func (d userDirectory) DisplayName(ctx context.Context, userID string) (string, error) {
	user, err := d.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return user.FullName, nil
}
