/*
Copyright © 2025 bizpilot
*/
package cmd

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bizpilot/bizpilot-be/config"
	"github.com/bizpilot/bizpilot-be/database"
	"github.com/bizpilot/bizpilot-be/repository"
	"github.com/bizpilot/bizpilot-be/types"
)

var sampleDocs = []types.KnowledgeDocument{
	{
		Title:   "Product Overview",
		Content: "BizPilot automates lead management and follow-up for small businesses. It uses AI to classify leads, generate personalized responses, and track conversions. Key features include smart triage, automated follow-ups, and performance analytics.",
		DocType: types.DocTypeProductPage,
	},
	{
		Title:   "Pricing - Starter Plan",
		Content: "Our Starter plan is $49/month and includes: up to 100 leads per month, automated triage, email and SMS follow-ups, basic analytics dashboard. Perfect for solopreneurs and small teams.",
		DocType: types.DocTypeFAQ,
	},
	{
		Title:   "Pricing - Growth Plan",
		Content: "Growth plan at $149/month includes: up to 500 leads per month, multi-channel follow-ups (email, SMS, WhatsApp), A/B testing, advanced analytics, priority support. Ideal for growing businesses.",
		DocType: types.DocTypeFAQ,
	},
	{
		Title:   "How It Works",
		Content: "BizPilot integrates with your existing tools (email, forms, CRM). When a new lead comes in, our AI analyzes their inquiry, classifies their intent (hot/warm/cold), and generates a personalized follow-up message. You can review and edit before sending, or auto-send based on confidence thresholds.",
		DocType: types.DocTypeProductPage,
	},
	{
		Title:   "Integration Setup",
		Content: "Setting up BizPilot takes less than 10 minutes. Connect your email via Gmail/Outlook OAuth, add webhook URLs to your forms, or upload CSV files. We support Google Forms, Typeform, HubSpot, Salesforce, and custom webhooks.",
		DocType: types.DocTypeFAQ,
	},
	{
		Title:   "Privacy & Security",
		Content: "We take privacy seriously. All data is encrypted at rest and in transit. We offer PII redaction for sensitive information, and you can request data deletion at any time. For enterprises, we provide on-premise deployment options.",
		DocType: types.DocTypeProductPage,
	},
	{
		Title:   "Demo Request",
		Content: "Want to see BizPilot in action? Book a 15-minute demo with our team. We'll walk through your specific use case and show you how BizPilot can improve your lead conversion rates. Calendar link: https://cal.com/bizpilot/demo",
		DocType: types.DocTypeFAQ,
	},
	{
		Title:   "ROI Metrics",
		Content: "Our customers typically see: 40-60% faster response times, 15-25% increase in conversion rates, 10-15 hours saved per week on manual follow-ups. Average ROI is 3-5x within the first 3 months.",
		DocType: types.DocTypeCaseStudy,
	},
}

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the demo knowledge base",
	Long:  `Inserts the sample BizPilot knowledge documents. Does nothing if the knowledge collection is not empty.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		ctx := context.Background()

		mongoClient, err := database.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		knowledgeRepo := repository.NewKnowledgeRepo(
			mongoClient.Database(cfg.MongoDB).Collection("knowledge"))

		count, err := knowledgeRepo.Count(ctx)
		if err != nil {
			log.Fatalf("Failed to count knowledge documents: %v", err)
		}
		if count > 0 {
			log.Printf("Knowledge base already has %d documents, skipping seed", count)
			return
		}

		for i := range sampleDocs {
			doc := sampleDocs[i]
			doc.ID = uuid.NewString()
			doc.Active = true
			if err := knowledgeRepo.CreateDocument(ctx, &doc); err != nil {
				log.Fatalf("Failed to insert %q: %v", doc.Title, err)
			}
		}
		log.Printf("Added %d sample documents to knowledge base", len(sampleDocs))
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
