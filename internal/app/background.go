package app

import (
	"github.com/robfig/cron/v3"

	"github.com/billie-coop/switchyard/internal/config"
	"github.com/billie-coop/switchyard/internal/logging"
	"github.com/billie-coop/switchyard/internal/queue"
)

// Background enqueues configured prompts on cron schedules. Jobs default
// to low priority so they never delay interactive work, and a full queue
// just skips a run; the schedule fires again.
type Background struct {
	cron  *cron.Cron
	sched *queue.Scheduler
}

// NewBackground registers the configured jobs. Invalid cron expressions
// are logged and skipped.
func NewBackground(sched *queue.Scheduler, jobs []config.BackgroundJob) *Background {
	b := &Background{
		cron:  cron.New(cron.WithSeconds()),
		sched: sched,
	}

	for _, job := range jobs {
		priority := queue.ParsePriority(job.Priority, queue.PriorityLow)
		agentID, prompt := job.Agent, job.Prompt
		_, err := b.cron.AddFunc(job.Schedule, func() {
			id, err := sched.Enqueue(agentID, prompt, queue.WithPriority(priority))
			if err != nil {
				logging.Log.Warn().
					Str("agent", agentID).
					Err(err).
					Msg("background enqueue skipped")
				return
			}
			logging.Log.Debug().
				Str("agent", agentID).
				Str("request", id).
				Msg("background request enqueued")
		})
		if err != nil {
			logging.Log.Warn().
				Str("schedule", job.Schedule).
				Err(err).
				Msg("invalid background schedule")
		}
	}
	return b
}

// Start begins firing schedules.
func (b *Background) Start() {
	b.cron.Start()
}

// Stop halts the schedules; already-enqueued requests are unaffected.
func (b *Background) Stop() {
	b.cron.Stop()
}
