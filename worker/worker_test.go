package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bizpilot/bizpilot-be/config"
	"github.com/bizpilot/bizpilot-be/service"
	"github.com/bizpilot/bizpilot-be/types"
)

type fakeLeadRepo struct {
	leads           map[string]*types.Lead
	classifications map[string]types.Classification
	touched         []string
}

func newFakeLeadRepo(leads ...*types.Lead) *fakeLeadRepo {
	r := &fakeLeadRepo{
		leads:           make(map[string]*types.Lead),
		classifications: make(map[string]types.Classification),
	}
	for _, lead := range leads {
		r.leads[lead.ID] = lead
	}
	return r
}

func (r *fakeLeadRepo) CreateLead(ctx context.Context, lead *types.Lead) error {
	r.leads[lead.ID] = lead
	return nil
}

func (r *fakeLeadRepo) GetLead(ctx context.Context, id string) (*types.Lead, error) {
	lead, ok := r.leads[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return lead, nil
}

func (r *fakeLeadRepo) ListLeads(ctx context.Context, intent types.LeadIntent, limit int64) ([]*types.Lead, error) {
	return nil, nil
}

func (r *fakeLeadRepo) UpdateClassification(ctx context.Context, id string, c types.Classification) error {
	r.classifications[id] = c
	return nil
}

func (r *fakeLeadRepo) TouchLastContact(ctx context.Context, id string) error {
	r.touched = append(r.touched, id)
	return nil
}

type fakeMessageRepo struct {
	messages map[string]*types.Message
	created  []string
	sent     []string
	statuses map[string]types.MessageStatus
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{
		messages: make(map[string]*types.Message),
		statuses: make(map[string]types.MessageStatus),
	}
}

func (r *fakeMessageRepo) CreateMessage(ctx context.Context, message *types.Message) error {
	r.messages[message.ID] = message
	r.created = append(r.created, message.ID)
	return nil
}

func (r *fakeMessageRepo) GetMessage(ctx context.Context, id string) (*types.Message, error) {
	message, ok := r.messages[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return message, nil
}

func (r *fakeMessageRepo) ListMessages(ctx context.Context, status types.MessageStatus, limit int64) ([]*types.Message, error) {
	return nil, nil
}

func (r *fakeMessageRepo) UpdateStatus(ctx context.Context, id string, status types.MessageStatus) error {
	r.statuses[id] = status
	return nil
}

func (r *fakeMessageRepo) ApplyEdit(ctx context.Context, id, subject, body string) error {
	return nil
}

func (r *fakeMessageRepo) MarkSent(ctx context.Context, id, sentVia, externalID string) error {
	r.sent = append(r.sent, id)
	r.statuses[id] = types.MessageSent
	return nil
}

type fakeClassifier struct {
	classification *types.Classification
	err            error
	calls          int
}

func (f *fakeClassifier) ClassifyLead(ctx context.Context, lead *types.Lead) (*types.Classification, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.classification, nil
}

type fakeGenerator struct {
	message *types.GeneratedMessage
	err     error
}

func (f *fakeGenerator) Generate(ctx context.Context, lead *types.Lead, intent types.LeadIntent, contexts []types.RetrievedContext) (*types.GeneratedMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.message, nil
}

type fakeSender struct {
	sends []string
	err   error
}

func (f *fakeSender) Send(ctx context.Context, channel types.Channel, to, subject, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sends = append(f.sends, to)
	return "ext-1", nil
}

func testLead() *types.Lead {
	return &types.Lead{
		ID:    "lead-1",
		Name:  "Jane",
		Email: "jane@acme.com",
		Phone: "+15550100",
	}
}

func testClassification() *types.Classification {
	return &types.Classification{
		Intent:     types.IntentHot,
		Confidence: 0.85,
		Reason:     "High-intent keywords detected: demo",
	}
}

func testGenerated(confidence float64) *types.GeneratedMessage {
	return &types.GeneratedMessage{
		Subject:      "Your demo request",
		Body:         "Hi Jane",
		Channel:      types.ChannelEmail,
		Confidence:   confidence,
		TemplateUsed: "high_intent_followup",
		ModelVersion: "fake-model-v1",
	}
}

func newTestProcessor(
	leads *fakeLeadRepo,
	messages *fakeMessageRepo,
	classifier *fakeClassifier,
	generator *fakeGenerator,
	sender *fakeSender,
	cfg config.WorkerConfig,
) *Processor {
	p := NewProcessor(leads, messages, classifier, generator, sender, service.NewStatusHub(), cfg)
	p.sleep = func(time.Duration) {}
	return p
}

func TestProcessLead(t *testing.T) {
	leads := newFakeLeadRepo(testLead())
	messages := newFakeMessageRepo()
	sender := &fakeSender{}
	p := newTestProcessor(leads, messages,
		&fakeClassifier{classification: testClassification()},
		&fakeGenerator{message: testGenerated(0.8)},
		sender,
		config.WorkerConfig{Concurrency: 1, MaxRetries: 3},
	)

	if err := p.ProcessLead(context.Background(), "lead-1"); err != nil {
		t.Fatalf("ProcessLead: %v", err)
	}

	c, ok := leads.classifications["lead-1"]
	if !ok {
		t.Fatal("classification not persisted")
	}
	if c.Intent != types.IntentHot || c.Confidence != 0.85 {
		t.Errorf("classification = %+v", c)
	}

	if len(messages.created) != 1 {
		t.Fatalf("created %d messages, want 1", len(messages.created))
	}
	message := messages.messages[messages.created[0]]
	if message.LeadID != "lead-1" {
		t.Errorf("message lead = %s", message.LeadID)
	}
	if message.Status != types.MessageGenerated {
		t.Errorf("status = %s, want generated", message.Status)
	}
	if message.PromptTemplateID != "high_intent_followup" {
		t.Errorf("template = %s", message.PromptTemplateID)
	}

	// Auto-send disabled: nothing goes out.
	if len(sender.sends) != 0 {
		t.Errorf("sent %v with auto-send disabled", sender.sends)
	}
}

func TestProcessLeadAutoSend(t *testing.T) {
	cfg := config.WorkerConfig{
		Concurrency:       1,
		MaxRetries:        3,
		AutoSendEnabled:   true,
		AutoSendThreshold: 0.85,
	}

	t.Run("above threshold sends", func(t *testing.T) {
		leads := newFakeLeadRepo(testLead())
		messages := newFakeMessageRepo()
		sender := &fakeSender{}
		p := newTestProcessor(leads, messages,
			&fakeClassifier{classification: testClassification()},
			&fakeGenerator{message: testGenerated(0.9)},
			sender, cfg,
		)

		if err := p.ProcessLead(context.Background(), "lead-1"); err != nil {
			t.Fatalf("ProcessLead: %v", err)
		}
		if len(sender.sends) != 1 || sender.sends[0] != "jane@acme.com" {
			t.Errorf("sends = %v", sender.sends)
		}
		if len(messages.sent) != 1 {
			t.Errorf("marked sent = %v", messages.sent)
		}
		if len(leads.touched) != 1 {
			t.Errorf("last contact not updated: %v", leads.touched)
		}
	})

	t.Run("below threshold waits for review", func(t *testing.T) {
		leads := newFakeLeadRepo(testLead())
		messages := newFakeMessageRepo()
		sender := &fakeSender{}
		p := newTestProcessor(leads, messages,
			&fakeClassifier{classification: testClassification()},
			&fakeGenerator{message: testGenerated(0.7)},
			sender, cfg,
		)

		if err := p.ProcessLead(context.Background(), "lead-1"); err != nil {
			t.Fatalf("ProcessLead: %v", err)
		}
		if len(sender.sends) != 0 {
			t.Errorf("sends = %v, want none", sender.sends)
		}
		if messages.messages[messages.created[0]].Status != types.MessageGenerated {
			t.Error("message should stay in generated state")
		}
	})

	t.Run("send failure does not fail processing", func(t *testing.T) {
		leads := newFakeLeadRepo(testLead())
		messages := newFakeMessageRepo()
		sender := &fakeSender{err: errors.New("smtp down")}
		p := newTestProcessor(leads, messages,
			&fakeClassifier{classification: testClassification()},
			&fakeGenerator{message: testGenerated(0.9)},
			sender, cfg,
		)

		if err := p.ProcessLead(context.Background(), "lead-1"); err != nil {
			t.Fatalf("ProcessLead: %v", err)
		}
		if messages.statuses[messages.created[0]] != types.MessageFailed {
			t.Errorf("status = %s, want failed", messages.statuses[messages.created[0]])
		}
	})
}

func TestProcessWithRetry(t *testing.T) {
	leads := newFakeLeadRepo(testLead())
	classifier := &fakeClassifier{err: errors.New("flaky backend")}

	var slept []time.Duration
	p := NewProcessor(leads, newFakeMessageRepo(), classifier,
		&fakeGenerator{message: testGenerated(0.8)},
		&fakeSender{}, service.NewStatusHub(),
		config.WorkerConfig{Concurrency: 1, MaxRetries: 3},
	)
	p.sleep = func(d time.Duration) { slept = append(slept, d) }

	statuses := p.hub.Subscribe()
	p.processWithRetry(context.Background(), "lead-1")

	if classifier.calls != 4 {
		t.Errorf("attempts = %d, want 4 (initial plus 3 retries)", classifier.calls)
	}
	want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
	if len(slept) != len(want) {
		t.Fatalf("slept %v, want %v", slept, want)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Errorf("backoff %d = %v, want %v", i, slept[i], want[i])
		}
	}

	failed := false
	for {
		select {
		case status := <-statuses:
			if status.Stage == "failed" && status.LeadID == "lead-1" && status.Error != "" {
				failed = true
			}
		default:
			if !failed {
				t.Error("no failed status published")
			}
			return
		}
	}
}

func TestProcessWithRetryStopsOnSuccess(t *testing.T) {
	leads := newFakeLeadRepo(testLead())
	classifier := &fakeClassifier{classification: testClassification()}
	messages := newFakeMessageRepo()

	var slept []time.Duration
	p := NewProcessor(leads, messages, classifier,
		&fakeGenerator{message: testGenerated(0.8)},
		&fakeSender{}, service.NewStatusHub(),
		config.WorkerConfig{Concurrency: 1, MaxRetries: 3},
	)
	p.sleep = func(d time.Duration) { slept = append(slept, d) }

	p.processWithRetry(context.Background(), "lead-1")

	if classifier.calls != 1 {
		t.Errorf("attempts = %d, want 1", classifier.calls)
	}
	if len(slept) != 0 {
		t.Errorf("slept %v on first-attempt success", slept)
	}
	if len(messages.created) != 1 {
		t.Errorf("created %d messages, want 1", len(messages.created))
	}
}

func TestSendMessageSMSUsesPhone(t *testing.T) {
	leads := newFakeLeadRepo(testLead())
	messages := newFakeMessageRepo()
	messages.messages["msg-1"] = &types.Message{
		ID:      "msg-1",
		LeadID:  "lead-1",
		Body:    "Hi Jane",
		Channel: types.ChannelSMS,
		Status:  types.MessageApproved,
	}
	sender := &fakeSender{}
	p := newTestProcessor(leads, messages,
		&fakeClassifier{classification: testClassification()},
		&fakeGenerator{message: testGenerated(0.8)},
		sender,
		config.WorkerConfig{Concurrency: 1, MaxRetries: 3},
	)

	if err := p.SendMessage(context.Background(), "msg-1"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if len(sender.sends) != 1 || sender.sends[0] != "+15550100" {
		t.Errorf("sends = %v, want the lead's phone number", sender.sends)
	}
	if messages.statuses["msg-1"] != types.MessageSent {
		t.Errorf("status = %s, want sent", messages.statuses["msg-1"])
	}
}

func TestEnqueueFullQueue(t *testing.T) {
	p := NewProcessor(newFakeLeadRepo(), newFakeMessageRepo(),
		&fakeClassifier{}, &fakeGenerator{}, &fakeSender{},
		nil, config.WorkerConfig{Concurrency: 0, MaxRetries: 0},
	)

	var err error
	for i := 0; i < 1000; i++ {
		if err = p.Enqueue("lead"); err != nil {
			break
		}
	}
	if err == nil {
		t.Fatal("expected enqueue to fail once the queue is full")
	}
}

func TestStartDrainsQueue(t *testing.T) {
	leads := newFakeLeadRepo(testLead())
	messages := newFakeMessageRepo()
	p := newTestProcessor(leads, messages,
		&fakeClassifier{classification: testClassification()},
		&fakeGenerator{message: testGenerated(0.8)},
		&fakeSender{},
		config.WorkerConfig{Concurrency: 2, MaxRetries: 0},
	)

	statuses := p.hub.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	if err := p.Enqueue("lead-1"); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for done := false; !done; {
		select {
		case status := <-statuses:
			done = status.Stage == "done" && status.MessageID != ""
		case <-deadline:
			t.Fatal("lead never processed")
		}
	}

	cancel()
	p.Wait()

	if len(messages.created) != 1 {
		t.Errorf("created %d messages, want 1", len(messages.created))
	}
}
