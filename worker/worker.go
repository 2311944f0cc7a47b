// Package worker runs the lead-processing pipeline off an in-process
// queue: classify, persist, generate, persist, optionally auto-send.
package worker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bizpilot/bizpilot-be/config"
	"github.com/bizpilot/bizpilot-be/repository"
	"github.com/bizpilot/bizpilot-be/service"
	"github.com/bizpilot/bizpilot-be/types"
	"github.com/google/uuid"
)

// Classifier is the classification side of the pipeline.
type Classifier interface {
	ClassifyLead(ctx context.Context, lead *types.Lead) (*types.Classification, error)
}

// Generator is the message-generation side of the pipeline.
type Generator interface {
	Generate(ctx context.Context, lead *types.Lead, intent types.LeadIntent, contexts []types.RetrievedContext) (*types.GeneratedMessage, error)
}

// Processor consumes lead ids and drives each one through the pipeline.
// One lead is one synchronous unit of work; concurrency happens across
// leads, never within one.
type Processor struct {
	leads      repository.LeadRepo
	messages   repository.MessageRepo
	classifier Classifier
	generator  Generator
	sender     service.Sender
	hub        *service.StatusHub
	cfg        config.WorkerConfig

	queue chan string
	wg    sync.WaitGroup

	// sleep is swapped out by tests to avoid real backoff waits.
	sleep func(time.Duration)
}

func NewProcessor(
	leads repository.LeadRepo,
	messages repository.MessageRepo,
	classifier Classifier,
	generator Generator,
	sender service.Sender,
	hub *service.StatusHub,
	cfg config.WorkerConfig,
) *Processor {
	return &Processor{
		leads:      leads,
		messages:   messages,
		classifier: classifier,
		generator:  generator,
		sender:     sender,
		hub:        hub,
		cfg:        cfg,
		queue:      make(chan string, 256),
		sleep:      time.Sleep,
	}
}

// Start launches the worker pool. Workers drain the queue until ctx is
// cancelled; Wait blocks until they are done.
func (p *Processor) Start(ctx context.Context) {
	for i := 0; i < p.cfg.Concurrency; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case leadID := <-p.queue:
					p.processWithRetry(ctx, leadID)
				}
			}
		}()
	}
}

func (p *Processor) Wait() {
	p.wg.Wait()
}

// Enqueue schedules a lead for processing.
func (p *Processor) Enqueue(leadID string) error {
	select {
	case p.queue <- leadID:
		return nil
	default:
		return fmt.Errorf("worker queue full, dropping lead %s", leadID)
	}
}

// processWithRetry retries the whole lead-processing unit with exponential
// backoff, bounded by the configured retry count.
func (p *Processor) processWithRetry(ctx context.Context, leadID string) {
	var err error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			p.sleep(time.Duration(1<<(attempt-1)) * time.Second)
		}
		if err = p.ProcessLead(ctx, leadID); err == nil {
			return
		}
		log.Printf("lead processing failed: lead=%s attempt=%d err=%v", leadID, attempt+1, err)
	}
	p.publish(types.ProcessingStatus{LeadID: leadID, Stage: "failed", Error: err.Error()})
}

// ProcessLead is the core workflow for one new lead: RAG classification,
// classification write-back, message generation, message persistence, and
// confidence-gated auto-send.
func (p *Processor) ProcessLead(ctx context.Context, leadID string) error {
	lead, err := p.leads.GetLead(ctx, leadID)
	if err != nil {
		return fmt.Errorf("lead not found: %w", err)
	}

	p.publish(types.ProcessingStatus{LeadID: leadID, Stage: "classifying"})

	classification, err := p.classifier.ClassifyLead(ctx, lead)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}
	if err := p.leads.UpdateClassification(ctx, leadID, *classification); err != nil {
		return fmt.Errorf("persisting classification: %w", err)
	}
	log.Printf("lead classified: lead=%s intent=%s confidence=%.2f",
		leadID, classification.Intent, classification.Confidence)

	p.publish(types.ProcessingStatus{
		LeadID:     leadID,
		Stage:      "generating",
		Intent:     classification.Intent,
		Confidence: classification.Confidence,
	})

	generated, err := p.generator.Generate(ctx, lead, classification.Intent, nil)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	message := &types.Message{
		ID:               uuid.NewString(),
		LeadID:           leadID,
		Subject:          generated.Subject,
		Body:             generated.Body,
		Channel:          generated.Channel,
		ModelVersion:     generated.ModelVersion,
		PromptTemplateID: generated.TemplateUsed,
		ConfidenceScore:  generated.Confidence,
		RetrievedDocs:    generated.ContextUsed,
		ContextSnippets:  generated.ContextSnippets,
		Status:           types.MessageGenerated,
	}
	if err := p.messages.CreateMessage(ctx, message); err != nil {
		return fmt.Errorf("persisting message: %w", err)
	}
	log.Printf("message generated: lead=%s message=%s confidence=%.2f",
		leadID, message.ID, message.ConfidenceScore)

	if p.cfg.AutoSendEnabled && generated.Confidence >= p.cfg.AutoSendThreshold {
		if err := p.SendMessage(ctx, message.ID); err != nil {
			// Auto-send failure leaves the message awaiting review, it
			// does not fail the processing unit.
			log.Printf("auto-send failed: message=%s err=%v", message.ID, err)
		}
	}

	p.publish(types.ProcessingStatus{
		LeadID:     leadID,
		Stage:      "done",
		Intent:     classification.Intent,
		Confidence: generated.Confidence,
		MessageID:  message.ID,
	})
	return nil
}

// SendMessage delivers a message through the channel boundary and records
// the outcome.
func (p *Processor) SendMessage(ctx context.Context, messageID string) error {
	message, err := p.messages.GetMessage(ctx, messageID)
	if err != nil {
		return fmt.Errorf("message not found: %w", err)
	}
	lead, err := p.leads.GetLead(ctx, message.LeadID)
	if err != nil {
		return fmt.Errorf("lead not found: %w", err)
	}

	to := lead.Email
	if message.Channel == types.ChannelSMS || message.Channel == types.ChannelWhatsApp {
		to = lead.Phone
	}

	externalID, err := p.sender.Send(ctx, message.Channel, to, message.Subject, message.Body)
	if err != nil {
		if statusErr := p.messages.UpdateStatus(ctx, messageID, types.MessageFailed); statusErr != nil {
			log.Printf("marking message failed: message=%s err=%v", messageID, statusErr)
		}
		return fmt.Errorf("sending via %s: %w", message.Channel, err)
	}

	if err := p.messages.MarkSent(ctx, messageID, string(message.Channel), externalID); err != nil {
		return fmt.Errorf("marking message sent: %w", err)
	}
	if err := p.leads.TouchLastContact(ctx, message.LeadID); err != nil {
		log.Printf("updating last contact: lead=%s err=%v", message.LeadID, err)
	}
	log.Printf("message sent: message=%s channel=%s external=%s", messageID, message.Channel, externalID)
	return nil
}

func (p *Processor) publish(status types.ProcessingStatus) {
	if p.hub != nil {
		p.hub.Publish(status)
	}
}
