/*
Copyright © 2025 bizpilot
*/
package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/bizpilot/bizpilot-be/config"
	"github.com/bizpilot/bizpilot-be/database"
	"github.com/bizpilot/bizpilot-be/repository"
	"github.com/bizpilot/bizpilot-be/service"
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the knowledge base into the vector store",
	Long: `Embeds every active knowledge document and writes the vectors to the
configured vector store. Documents that already carry an embedding
reference are skipped unless --force is set.`,
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if !cfg.Weaviate.Enabled {
			log.Fatal("Weaviate is disabled; the in-memory index does not persist, nothing to do")
		}

		ctx := context.Background()

		mongoClient, err := database.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		knowledgeRepo := repository.NewKnowledgeRepo(
			mongoClient.Database(cfg.MongoDB).Collection("knowledge"))

		embedder, err := service.NewEmbeddingService(cfg.Embedding)
		if err != nil {
			log.Fatalf("Failed to create embedding service: %v", err)
		}
		index, err := database.NewWeaviateIndex(cfg.Weaviate)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}

		knowledgeService := service.NewKnowledgeService(embedder, index, knowledgeRepo)
		n, err := knowledgeService.IndexAll(ctx, force)
		if err != nil {
			log.Fatalf("Indexing failed: %v", err)
		}
		log.Printf("Indexed %d knowledge documents", n)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().Bool("force", false, "re-index documents that already have embeddings")
}
