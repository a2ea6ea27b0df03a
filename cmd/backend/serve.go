package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/hairizuan-noorazman/browser-agent/agent"
	"github.com/hairizuan-noorazman/browser-agent/apitoken"
	"github.com/hairizuan-noorazman/browser-agent/cmd/backend/handlers"
	"github.com/hairizuan-noorazman/browser-agent/database"
	"github.com/hairizuan-noorazman/browser-agent/datasource"
	"github.com/hairizuan-noorazman/browser-agent/detector"
	"github.com/hairizuan-noorazman/browser-agent/llm"
	"github.com/hairizuan-noorazman/browser-agent/logger"
	"github.com/hairizuan-noorazman/browser-agent/prompt"
	"github.com/hairizuan-noorazman/browser-agent/run"
	"github.com/hairizuan-noorazman/browser-agent/storage"
	"github.com/hairizuan-noorazman/browser-agent/task"
)

var configFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServer,
}

func init() {
	serveCmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.AddCommand(serveCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log := logger.NewLogrusLogger(cfg.Log.Level)
	log.Info(ctx, "starting server", map[string]interface{}{
		"version": Version,
		"commit":  Commit,
		"date":    BuildDate,
	})

	// Connect to database
	dbCfg := database.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	}

	db, err := database.Connect(dbCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	defer sqlDB.Close()

	log.Info(ctx, "database connected", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Database,
	})

	// Initialize stores
	taskStore := task.NewMySQLStore(db, log)
	sourceStore := datasource.NewMySQLStore(db, log)
	itemStore := datasource.NewMySQLItemStore(db, log)
	tokenStore := apitoken.NewMySQLStore(db, log)

	// Background ingestion of collected data
	ingester := datasource.NewIngester(itemStore, cfg.Agent.IngestBuffer, log)
	ingester.Start()
	defer ingester.Stop()

	// Prompt loader: system prompt plus named skills
	prompts := prompt.NewLoader(cfg.Agent.PromptsDir)
	systemPrompt, err := prompts.SystemPrompt()
	if err != nil {
		return fmt.Errorf("failed to load system prompt: %w", err)
	}

	// Bedrock-backed decision model
	model, err := llm.NewBedrockLLM(ctx, cfg.Agent.BedrockRegion, cfg.Agent.BedrockModel, cfg.Agent.MaxTokens, log)
	if err != nil {
		return fmt.Errorf("failed to initialize bedrock client: %w", err)
	}

	// Element detector backed by the detection sidecar
	det := detector.New(detector.NewHTTPModel(cfg.Agent.DetectorURL, log), nil, log)
	if cfg.Agent.DetectorThreshold > 0 {
		det.SetConfidenceThreshold(cfg.Agent.DetectorThreshold)
	}

	// Agent loop
	perception := agent.NewPerceptionStep(det, cfg.Agent.PerceptionEnabled, log)
	decision := agent.NewDecisionStep(model, systemPrompt, agent.ToolSpecs(prompts.ListSkills()), log)
	execution := agent.NewExecutionStep(prompts, ingester, log)
	loop := agent.NewLoop(perception, decision, execution, cfg.Agent.MaxIterations, log)

	// Screenshot archive
	archive, err := storage.NewBlobStorage(storage.Config{
		Type:          cfg.Storage.Type,
		BaseDir:       cfg.Storage.BaseDir,
		Bucket:        cfg.Storage.S3Bucket,
		Region:        cfg.Storage.S3Region,
		PresignExpiry: cfg.Storage.S3PresignExpiry,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize blob storage: %w", err)
	}

	// Run registry. The source store receives run counters for runs
	// attributed to a data source.
	runManager := run.NewManager(loop, archive, sourceStore, cfg.Run.TTL, log)
	runManager.StartCleanup(cfg.Run.CleanupInterval)
	defer runManager.StopCleanup()

	log.Info(ctx, "run manager initialized", map[string]interface{}{
		"ttl":              cfg.Run.TTL.String(),
		"cleanup_interval": cfg.Run.CleanupInterval.String(),
		"max_iterations":   cfg.Agent.MaxIterations,
		"skills":           prompts.ListSkills(),
	})

	// Setup router
	router := mux.NewRouter()

	// Health check endpoint (public)
	router.HandleFunc("/health", handlers.HealthHandler).Methods("GET")

	// Protected API routes
	authMiddleware := handlers.NewAuthMiddleware(tokenStore, log)

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(authMiddleware.Handler)
	apiRouter.Use(handlers.WriteScopeMiddleware)

	runHandler := handlers.NewRunHandler(runManager, log)
	apiRouter.HandleFunc("/runs", runHandler.Start).Methods("POST")
	apiRouter.HandleFunc("/runs/{id}", runHandler.GetByID).Methods("GET")
	apiRouter.HandleFunc("/runs/{id}", runHandler.Delete).Methods("DELETE")
	apiRouter.HandleFunc("/runs/{id}/resume", runHandler.Resume).Methods("POST")
	apiRouter.HandleFunc("/runs/{id}/trace", runHandler.Trace).Methods("GET")

	taskHandler := handlers.NewTaskHandler(taskStore, log)
	apiRouter.HandleFunc("/tasks", taskHandler.Create).Methods("POST")
	apiRouter.HandleFunc("/tasks", taskHandler.List).Methods("GET")
	apiRouter.HandleFunc("/tasks/{id}", taskHandler.GetByID).Methods("GET")
	apiRouter.HandleFunc("/tasks/{id}", taskHandler.Update).Methods("PUT")
	apiRouter.HandleFunc("/tasks/{id}", taskHandler.Delete).Methods("DELETE")

	sourceHandler := handlers.NewDataSourceHandler(sourceStore, itemStore, log)
	apiRouter.HandleFunc("/datasources", sourceHandler.Create).Methods("POST")
	apiRouter.HandleFunc("/datasources", sourceHandler.List).Methods("GET")
	apiRouter.HandleFunc("/datasources/{id}", sourceHandler.GetByID).Methods("GET")
	apiRouter.HandleFunc("/datasources/{id}", sourceHandler.Update).Methods("PUT")
	apiRouter.HandleFunc("/datasources/{id}", sourceHandler.Delete).Methods("DELETE")
	apiRouter.HandleFunc("/datasources/{id}/items", sourceHandler.ListItems).Methods("GET")

	tokenHandler := handlers.NewAPITokenHandler(tokenStore, log)
	apiRouter.HandleFunc("/tokens", tokenHandler.Create).Methods("POST")
	apiRouter.HandleFunc("/tokens", tokenHandler.List).Methods("GET")
	apiRouter.HandleFunc("/tokens/{token_id}", tokenHandler.Revoke).Methods("DELETE")

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info(ctx, "server listening", map[string]interface{}{
			"address": addr,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "shutting down server", nil)

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info(ctx, "server stopped", nil)
	return nil
}
