package admin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/api/handlers"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/config"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/extract"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/openai"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/server"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/service"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the retrieval engine API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if a DSN is set
	if cfg.SentryDSN != "" {
		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if cfg.Environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
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

	if !cfg.HasOpenAI() {
		return fmt.Errorf("RAG_OPENAI_API_KEY is required: embeddings and generation run against OpenAI")
	}

	llm := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingModel:      openai.EmbeddingModel(cfg.EmbeddingModel),
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		ChatModel:           cfg.ChatModel,
	})
	generator := &llmAdapter{client: llm}

	normalizer := service.NewNormalizer(extract.DefaultRegistry())
	indexer := service.NewIndexer(llm)
	suggester := service.NewSuggester(generator, cfg.MaxSuggestions)
	library := service.NewLibrary(normalizer, indexer, suggester, service.ChunkConfig{
		MaxChars: cfg.ChunkSize,
		Overlap:  cfg.ChunkOverlap,
	})
	sessions := service.NewSessions()
	chat := service.NewChat(library, sessions, llm, generator, cfg.TopK)

	routerCfg := server.RouterConfig{
		SourceHandler:  handlers.NewSourceHandler(library),
		SessionHandler: handlers.NewSessionHandler(sessions, library),
		AskHandler:     handlers.NewAskHandler(chat),
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

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// llmAdapter narrows *openai.Client to the stream interface the service
// layer declares for itself.
type llmAdapter struct {
	client *openai.Client
}

func (a *llmAdapter) Generate(ctx context.Context, system, prompt string) (string, error) {
	return a.client.Generate(ctx, system, prompt)
}

func (a *llmAdapter) GenerateStream(ctx context.Context, system, prompt string) (service.TokenStream, error) {
	stream, err := a.client.GenerateStream(ctx, system, prompt)
	if err != nil {
		return nil, err
	}
	return stream, nil
}
