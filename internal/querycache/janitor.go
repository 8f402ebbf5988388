package querycache

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor periodically drops entries nobody has looked at for maxIdle.
type Janitor struct {
	cron    *cron.Cron
	o       *Orchestrator
	maxIdle time.Duration
	spec    string
}

// NewJanitor sweeps o every interval.
func NewJanitor(o *Orchestrator, interval, maxIdle time.Duration) *Janitor {
	return &Janitor{
		cron:    cron.New(),
		o:       o,
		maxIdle: maxIdle,
		spec:    fmt.Sprintf("@every %s", interval),
	}
}

func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc(j.spec, j.sweep); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	j.cron.Start()
	slog.Info("cache janitor started", "spec", j.spec, "max_idle", j.maxIdle)
	return nil
}

// Stop waits for a running sweep to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

func (j *Janitor) sweep() {
	if n := j.o.Collect(j.maxIdle); n > 0 {
		slog.Debug("cache entries collected", "count", n, "remaining", j.o.Len())
	}
}
