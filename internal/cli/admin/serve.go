package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/lanternlabs/lantern/internal/api/handlers"
	"github.com/lanternlabs/lantern/internal/config"
	"github.com/lanternlabs/lantern/internal/domain"
	"github.com/lanternlabs/lantern/internal/jobs"
	"github.com/lanternlabs/lantern/internal/openai"
	"github.com/lanternlabs/lantern/internal/repository"
	"github.com/lanternlabs/lantern/internal/server"
	"github.com/lanternlabs/lantern/internal/service"
	"github.com/lanternlabs/lantern/internal/storage"
	"github.com/lanternlabs/lantern/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the lantern API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	noteRepo := repository.NewNoteRepository(pool)
	assetRepo := repository.NewMediaAssetRepository(pool)

	uploadStore, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	var inference inferenceClient
	if cfg.HasOpenAI() {
		inference = openai.NewClient(openai.Config{
			APIKey:              cfg.OpenAIAPIKey,
			BaseURL:             cfg.OpenAIBaseURL,
			ChatModel:           cfg.ChatModel,
			VisionModel:         cfg.VisionModel,
			TranscriptionModel:  cfg.TranscriptionModel,
			EmbeddingModel:      cfg.EmbeddingModel,
			EmbeddingDimensions: cfg.EmbeddingDimensions,
			MaxConcurrency:      cfg.MaxInferenceConcurrency,
		})
	} else {
		log.Println("no inference provider configured; generation endpoints will return errors")
		inference = &unavailableInference{}
	}

	transcoder := service.NewMediaTranscoder(inference, inference)
	assembler := service.NewEntryAssembler(transcoder)
	generator := service.NewNarrativeGenerator(inference)
	index := service.NewEmbeddingIndex(inference, cfg.SimilarityThreshold)

	entrySvc := service.NewEntryService(assembler, generator, uploadStore, assetRepo, cfg.InferenceTimeout)
	chatSvc := service.NewChatService(transcoder, generator, uploadStore, assetRepo, cfg.InferenceTimeout)
	noteSvc := service.NewNoteService(noteRepo, generator, index, cfg.EmbeddingDimensions)

	var archiveWorker *jobs.Worker
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)

		archiveProcessor := jobs.NewArchiveWorker(assetRepo, s3Client, uploadStore)
		archiveWorker = jobs.NewWorker(archiveProcessor, 30*time.Second)
		go archiveWorker.Start(ctx)
		log.Println("media archive worker started")
	}

	routerCfg := server.RouterConfig{
		APIToken:     cfg.APIToken,
		EntryHandler: handlers.NewEntryHandler(entrySvc),
		ChatHandler:  handlers.NewChatHandler(chatSvc),
		NoteHandler:  handlers.NewNoteHandler(noteSvc),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if archiveWorker != nil {
		archiveWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// inferenceClient aggregates the four inference capabilities consumed by the
// service layer.
type inferenceClient interface {
	service.GenerationClient
	service.VisionClient
	service.SpeechClient
	service.EmbeddingClient
}

// unavailableInference stands in when no inference provider is configured.
// Persistence endpoints that do not generate anything keep working; the rest
// fail with the inference taxonomy.
type unavailableInference struct{}

func (u *unavailableInference) Chat(ctx context.Context, systemPrompt string, history []domain.ChatTurn) (string, error) {
	return "", domain.ErrInferenceUnavailable
}

func (u *unavailableInference) DescribeImage(ctx context.Context, path, instruction string) (string, error) {
	return "", domain.ErrInferenceUnavailable
}

func (u *unavailableInference) Transcribe(ctx context.Context, path string) (string, error) {
	return "", domain.ErrInferenceUnavailable
}

func (u *unavailableInference) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, domain.ErrInferenceUnavailable
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
