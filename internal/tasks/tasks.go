// Package tasks runs the asynchronous work of the backend on asynq: email
// delivery and the scheduled maintenance jobs.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/lightmyfireadmin/plombipro-app/internal/config"
	"github.com/lightmyfireadmin/plombipro-app/internal/models"
	"github.com/lightmyfireadmin/plombipro-app/internal/scraper"
	"github.com/lightmyfireadmin/plombipro-app/internal/services"
)

// TaskType defines the type of a background task.
const (
	TypeEmailDelivery    = "email:deliver"
	TypeReminderSchedule = "billing:reminders:schedule"
	TypeQuoteExpiry      = "quotes:expiry:check"
	TypeCatalogScrape    = "catalog:scrape"
)

const (
	queueCritical = "critical"
	queueDefault  = "default"
	queueLow      = "low"

	emailMaxRetry = 5
)

// IAsynqClient is the part of *asynq.Client used to enqueue tasks.
type IAsynqClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// --- Task Client (Enqueuing tasks) ---

// RedisConnOpt mirrors the connection settings of an existing go-redis client.
func RedisConnOpt(rdb *redis.Client) asynq.RedisClientOpt {
	opts := rdb.Options()
	return asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
}

func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(RedisConnOpt(rdb))
}

// EmailQueue enqueues email:deliver tasks. It satisfies services.EmailEnqueuer.
type EmailQueue struct {
	client IAsynqClient
}

// NewEmailQueue creates a new EmailQueue.
func NewEmailQueue(client IAsynqClient) *EmailQueue {
	return &EmailQueue{client: client}
}

// EnqueueEmail queues the message for delivery by the background worker.
func (q *EmailQueue) EnqueueEmail(ctx context.Context, in *services.SendEmailInput) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal email task payload: %w", err)
	}
	info, err := q.client.EnqueueContext(ctx, asynq.NewTask(TypeEmailDelivery, payload),
		asynq.Queue(queueCritical), asynq.MaxRetry(emailMaxRetry))
	if err != nil {
		return fmt.Errorf("failed to enqueue email task: %w", err)
	}
	log.Printf("Enqueued email task %s: Template=%s", info.ID, in.Template)
	return nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg            *config.Config
	emailService   services.IEmailService
	reminders      services.IReminderService
	quoteExpiry    services.IQuoteExpiryService
	catalogService services.ICatalogService
	now            func() time.Time
}

func NewTaskProcessor(
	cfg *config.Config,
	emailService services.IEmailService,
	reminders services.IReminderService,
	quoteExpiry services.IQuoteExpiryService,
	catalogService services.ICatalogService,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:            cfg,
		emailService:   emailService,
		reminders:      reminders,
		quoteExpiry:    quoteExpiry,
		catalogService: catalogService,
		now:            time.Now,
	}
}

// NewServeMux registers every task handler of the processor.
func NewServeMux(processor *TaskProcessor) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeEmailDelivery, processor.HandleEmailDeliveryTask)
	mux.HandleFunc(TypeReminderSchedule, processor.HandleReminderScheduleTask)
	mux.HandleFunc(TypeQuoteExpiry, processor.HandleQuoteExpiryTask)
	mux.HandleFunc(TypeCatalogScrape, processor.HandleCatalogScrapeTask)
	return mux
}

// SetupServer configures the Asynq server and its handlers. The caller runs
// the server with srv.Run(mux) or srv.Start(mux).
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(
		RedisConnOpt(rdb),
		asynq.Config{
			Queues: map[string]int{
				queueCritical: 6,
				queueDefault:  3,
				queueLow:      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Error: %v", task.Type(), err)
			}),
		},
	)
	log.Println("Registered background task handlers (email, reminders, quote expiry, catalog).")
	return srv, NewServeMux(processor)
}

// --- Task Handlers ---

// skipIfInput stops retries for failures the payload itself caused.
func skipIfInput(err error) error {
	if services.IsInputError(err) {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return err
}

// HandleEmailDeliveryTask renders and sends a queued email. The payload is a
// send-email request body.
func (p *TaskProcessor) HandleEmailDeliveryTask(ctx context.Context, t *asynq.Task) error {
	var payload services.SendEmailInput
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal email task payload: %v: %w", err, asynq.SkipRetry)
	}

	id, err := p.emailService.Send(ctx, &payload)
	if err != nil {
		log.Printf("Email task failed: Template=%s: %v", payload.Template, err)
		return skipIfInput(err)
	}
	log.Printf("Email task processed successfully: Template=%s, ID=%s", payload.Template, id)
	return nil
}

// HandleReminderScheduleTask sends payment reminders for overdue invoices.
func (p *TaskProcessor) HandleReminderScheduleTask(ctx context.Context, t *asynq.Task) error {
	log.Println("Starting payment reminder task...")
	summary, err := p.reminders.ScheduleReminders(ctx, p.now())
	if err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}
	log.Printf("Payment reminder task finished: %d sent, %d failed.", summary.Sent, summary.Failed)
	return nil
}

// HandleQuoteExpiryTask expires sent quotes past their validity date.
func (p *TaskProcessor) HandleQuoteExpiryTask(ctx context.Context, t *asynq.Task) error {
	log.Println("Starting quote expiry task...")
	count, err := p.quoteExpiry.ExpireQuotes(ctx, p.now())
	if err != nil {
		return fmt.Errorf("failed to expire quotes: %w", err)
	}
	log.Printf("Quote expiry task finished. Expired %d quotes.", count)
	return nil
}

// CatalogScrapePayload selects the supplier to refresh.
type CatalogScrapePayload struct {
	Source string `json:"source"`
}

// siteFor maps a payload source to the configured supplier site.
func (p *TaskProcessor) siteFor(source string) (scraper.Site, bool) {
	switch source {
	case models.ProductSourcePointP:
		return scraper.PointP(p.cfg.PointPCatalogURL), true
	case models.ProductSourceCedeo:
		return scraper.Cedeo(p.cfg.CedeoBaseURL), true
	default:
		return scraper.Site{}, false
	}
}

// HandleCatalogScrapeTask refreshes one supplier catalogue.
func (p *TaskProcessor) HandleCatalogScrapeTask(ctx context.Context, t *asynq.Task) error {
	var payload CatalogScrapePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal catalog task payload: %v: %w", err, asynq.SkipRetry)
	}
	site, ok := p.siteFor(payload.Source)
	if !ok {
		return fmt.Errorf("unknown catalog source %q: %w", payload.Source, asynq.SkipRetry)
	}

	log.Printf("Starting catalog scrape for %s...", site.Source)
	count, err := p.catalogService.Refresh(ctx, site)
	if err != nil {
		return fmt.Errorf("failed to scrape %s catalog: %w", site.Source, err)
	}
	log.Printf("Catalog scrape for %s finished. Wrote %d products.", site.Source, count)
	return nil
}
