package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamesense/app/internal/api"
	"gamesense/app/internal/auth"
	"gamesense/app/internal/config"
	"gamesense/app/internal/feedback"
	"gamesense/app/internal/github"
	"gamesense/app/internal/repository"
	"gamesense/app/internal/repository/document"
	"gamesense/app/internal/repository/file"
	githubrepo "gamesense/app/internal/repository/github"
	"gamesense/app/internal/repository/mongo"
	"gamesense/app/internal/repository/sqlite"
	"gamesense/app/internal/service"
	"gamesense/app/internal/storage"
	"gamesense/app/internal/store"

	"github.com/gin-gonic/gin"
)

// @title GameSense API
// @version 1.0
// @description Training clip uploads, templated coaching feedback and session history.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log.Println("Starting GameSense Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Printf("Configuration loaded (store=%s, blob=%s).", cfg.Store.Backend, cfg.Blob.Backend)

	if cfg.JWT.Secret == "" {
		log.Fatalf("FATAL: jwt.secret (JWT_SECRET) must be set")
	}
	scheme, err := auth.ParseScheme(cfg.Auth.HashScheme)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	var ghClient *github.Client
	if cfg.Store.Backend == "github" || cfg.Blob.Backend == "github" {
		ghClient, err = github.NewClient(github.Options{
			Token:    cfg.GitHub.Token,
			Repo:     cfg.GitHub.Repo,
			Branch:   cfg.GitHub.Branch,
			APIURL:   cfg.GitHub.APIURL,
			RetryMax: 2,
		})
		if err != nil {
			log.Fatalf("FATAL: Could not create GitHub client: %v", err)
		}
	}

	// --- Document Store ---
	docs, closeDocs, err := openDocumentStore(cfg, ghClient)
	if err != nil {
		log.Fatalf("FATAL: Could not open %s document store: %v", cfg.Store.Backend, err)
	}
	defer closeDocs()

	st := store.New(docs, store.Options{
		DocumentPath: cfg.Store.DocumentPath,
		BackupDir:    cfg.Store.BackupDir,
		FallbackPath: cfg.Store.FallbackPath,
	})
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), time.Minute)
	if err := st.Load(loadCtx); err != nil {
		log.Fatalf("FATAL: Could not load storage: %v", err)
	}
	if _, err := st.EnsureDailyBackup(loadCtx); err != nil {
		log.Printf("WARN: daily backup failed: %v", err)
	}
	cancelLoad()
	log.Println("Storage loaded.")

	// --- Initialize Storage ---
	localBlobs, err := storage.NewLocalStorage(cfg.Blob.LocalDir, cfg.Blob.PublicBase)
	if err != nil {
		log.Fatalf("FATAL: Could not create local blob directory: %v", err)
	}
	fileStorage, err := openBlobStorage(cfg, ghClient, localBlobs)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize %s blob storage: %v", cfg.Blob.Backend, err)
	}

	// --- Initialize Repositories ---
	userRepo := document.NewUserRepository(st)
	sessionRepo := document.NewSessionRepository(st)

	// --- Initialize Services ---
	hasher := auth.NewHasher(scheme)
	authService := service.NewAuthService(userRepo, hasher, cfg.JWT.Secret, cfg.JWT.Expiration)
	sessionService := service.NewSessionService(sessionRepo, feedback.NewLibrary(nil), fileStorage, cfg.Blob.VideosDir)
	accountService := service.NewAccountService(userRepo, sessionRepo, fileStorage)
	dashboardService := service.NewDashboardService(sessionRepo)

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware
	router.MaxMultipartMemory = 32 << 20

	api.SetupRoutes(router, api.RouteDeps{
		JWTSecret:        cfg.JWT.Secret,
		AuthService:      authService,
		SessionService:   sessionService,
		AccountService:   accountService,
		DashboardService: dashboardService,
		MaxUploadBytes:   cfg.Upload.MaxBytes,
		MediaDir:         localBlobs.Root(),
		MediaPrefix:      cfg.Blob.PublicBase,
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  2 * time.Minute, // clip uploads
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Printf("ERROR: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

// openDocumentStore returns the configured backend. A nil store means the
// document lives only in the local fallback file.
func openDocumentStore(cfg config.Config, ghClient *github.Client) (repository.DocumentStore, func(), error) {
	noop := func() {}
	switch cfg.Store.Backend {
	case "github":
		return githubrepo.NewGitHubDocumentStore(ghClient), noop, nil

	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		client, err := mongo.ConnectDB(ctx, cfg.Database.URI)
		if err != nil {
			return nil, nil, err
		}
		db := client.Database(cfg.Database.Name)
		mongo.EnsureDocumentIndexes(ctx, mongo.DocumentCollection(db))
		log.Println("Database connection established.")
		return mongo.NewMongoDocumentStore(db), func() {
			log.Println("Disconnecting MongoDB...")
			if err := mongo.DisconnectDB(client); err != nil {
				log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
			}
		}, nil

	case "sqlite":
		db, err := sqlite.Open(context.Background(), cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewSQLiteDocumentStore(db), func() {
			if err := db.Close(); err != nil {
				log.Printf("ERROR: Failed to close SQLite: %v", err)
			}
		}, nil

	case "file":
		docs, err := file.NewFileDocumentStore(cfg.Store.FileRoot)
		return docs, noop, err

	case "local", "":
		return nil, noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// openBlobStorage returns the configured blob backend wrapped so failed
// uploads land in the local directory.
func openBlobStorage(cfg config.Config, ghClient *github.Client, local *storage.LocalStorage) (storage.FileStorage, error) {
	switch cfg.Blob.Backend {
	case "s3":
		s3Storage, err := storage.NewS3Storage(cfg.S3)
		if err != nil {
			return nil, err
		}
		return storage.WithFallback(s3Storage, local), nil
	case "github":
		return storage.WithFallback(storage.NewGitHubStorage(ghClient), local), nil
	case "local", "":
		return local, nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Blob.Backend)
	}
}
