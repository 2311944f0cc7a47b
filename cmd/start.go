/*
Copyright © 2025 bizpilot
*/
package cmd

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/bizpilot/bizpilot-be/config"
	"github.com/bizpilot/bizpilot-be/database"
	"github.com/bizpilot/bizpilot-be/handler"
	"github.com/bizpilot/bizpilot-be/middleware"
	"github.com/bizpilot/bizpilot-be/repository"
	"github.com/bizpilot/bizpilot-be/service"
	"github.com/bizpilot/bizpilot-be/worker"
)

// startServerCmd represents the start command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the lead follow-up server",
	Long:  `Starts the API server and the background lead processing workers`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		mongoClient, err := database.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		mongoDb := mongoClient.Database(cfg.MongoDB)

		// init repo
		leadRepo := repository.NewLeadRepo(mongoDb.Collection("leads"))
		messageRepo := repository.NewMessageRepo(mongoDb.Collection("messages"))
		knowledgeRepo := repository.NewKnowledgeRepo(mongoDb.Collection("knowledge"))
		modelLogRepo := repository.NewModelLogRepo(mongoDb.Collection("model_logs"))

		// init services
		embedder, err := service.NewEmbeddingService(cfg.Embedding)
		if err != nil {
			log.Fatalf("Failed to create embedding service: %v", err)
		}

		var index database.VectorIndex
		if cfg.Weaviate.Enabled {
			index, err = database.NewWeaviateIndex(cfg.Weaviate)
			if err != nil {
				log.Fatalf("Failed to connect to Weaviate database: %v", err)
			}
		} else {
			index = database.NewMemoryIndex()
			log.Println("Weaviate disabled, using in-memory vector index")
		}

		knowledgeService := service.NewKnowledgeService(embedder, index, knowledgeRepo)
		ragService := service.NewRAGService(embedder, knowledgeService)

		aiService, err := service.NewAIService(cfg.Generation)
		if err != nil {
			log.Fatalf("Failed to create AI service: %v", err)
		}
		generator := service.NewMessageGenerator(
			aiService,
			ragService,
			modelLogRepo,
			time.Duration(cfg.Generation.TimeoutSeconds)*time.Second,
		)

		sender := service.NewDryRunSender()
		hub := service.NewStatusHub()
		wsService := service.NewWebSocketService(hub)

		processor := worker.NewProcessor(
			leadRepo,
			messageRepo,
			ragService,
			generator,
			sender,
			hub,
			cfg.Worker,
		)
		processor.Start(ctx)

		// index any knowledge documents added while the server was down
		if n, err := knowledgeService.IndexAll(ctx, false); err != nil {
			log.Printf("Startup knowledge indexing failed: %v", err)
		} else if n > 0 {
			log.Printf("Indexed %d knowledge documents on startup", n)
		}

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		loginHandler := handler.NewLoginHandler(cfg.AdminUsername, cfg.AdminPassword)
		leadHandler := handler.NewLeadHandler(leadRepo, processor)
		knowledgeHandler := handler.NewKnowledgeHandler(knowledgeService, knowledgeRepo)
		messageHandler := handler.NewMessageHandler(messageRepo, func(r *http.Request, messageID string) error {
			return processor.SendMessage(r.Context(), messageID)
		})

		// Setup routes
		mux := http.NewServeMux()
		mux.Handle("/api/v1/login", loginHandler.HandleLogin())
		mux.Handle("/api/v1/leads/create", leadHandler.HandleCreateLead())
		mux.Handle("/api/v1/leads/get", leadHandler.HandleGetLead())
		mux.Handle("/api/v1/leads/list", leadHandler.HandleListLeads())
		mux.Handle("/api/v1/knowledge/search", knowledgeHandler.HandleSearch())
		mux.HandleFunc("/ws/status", wsService.HandleStatus)

		// Admin routes - require admin authentication
		mux.Handle("/admin/api/v1/knowledge/import", middleware.AdminAuthMiddleware(knowledgeHandler.HandleImport()))
		mux.Handle("/admin/api/v1/knowledge/reindex", middleware.AdminAuthMiddleware(knowledgeHandler.HandleReindex()))
		mux.Handle("/admin/api/v1/knowledge/delete", middleware.AdminAuthMiddleware(knowledgeHandler.HandleDelete()))
		mux.Handle("/admin/api/v1/messages/list", middleware.AdminAuthMiddleware(messageHandler.HandleListMessages()))
		mux.Handle("/admin/api/v1/messages/review", middleware.AdminAuthMiddleware(messageHandler.HandleReview()))

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := http.ListenAndServe(":"+cfg.Port, corsHandler.CorsMiddleware(mux)); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
