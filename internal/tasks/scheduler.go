package tasks

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/lightmyfireadmin/plombipro-app/internal/config"
	"github.com/lightmyfireadmin/plombipro-app/internal/models"
)

// ScheduledTask is one periodic task entry.
type ScheduledTask struct {
	Cron string
	Task *asynq.Task
	Opts []asynq.Option
}

// ScheduledTasks lists the periodic jobs from configuration. Catalogue
// scrapes get one entry per supplier.
func ScheduledTasks(cfg *config.Config) []ScheduledTask {
	entries := []ScheduledTask{
		{Cron: cfg.ReminderCron, Task: asynq.NewTask(TypeReminderSchedule, nil), Opts: []asynq.Option{asynq.Queue(queueDefault)}},
		{Cron: cfg.QuoteExpiryCron, Task: asynq.NewTask(TypeQuoteExpiry, nil), Opts: []asynq.Option{asynq.Queue(queueDefault)}},
	}
	for _, source := range []string{models.ProductSourcePointP, models.ProductSourceCedeo} {
		payload, _ := json.Marshal(CatalogScrapePayload{Source: source})
		entries = append(entries, ScheduledTask{
			Cron: cfg.CatalogScrapeCron,
			Task: asynq.NewTask(TypeCatalogScrape, payload),
			Opts: []asynq.Option{asynq.Queue(queueLow), asynq.MaxRetry(1), asynq.Timeout(30 * time.Minute)},
		})
	}
	return entries
}

// SetupScheduler registers the periodic jobs. The caller runs it.
func SetupScheduler(rdb *redis.Client, cfg *config.Config) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(RedisConnOpt(rdb), &asynq.SchedulerOpts{Location: time.UTC})
	for _, entry := range ScheduledTasks(cfg) {
		if entry.Cron == "" {
			log.Printf("Scheduler: %s disabled (empty cron)", entry.Task.Type())
			continue
		}
		id, err := scheduler.Register(entry.Cron, entry.Task, entry.Opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to register %s with cron %q: %w", entry.Task.Type(), entry.Cron, err)
		}
		log.Printf("Scheduler: registered %s (%s) as %s", entry.Task.Type(), entry.Cron, id)
	}
	return scheduler, nil
}
