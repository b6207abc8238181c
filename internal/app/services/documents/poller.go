package documents

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/landscape-hq/underwriter/internal/app/system"
	"github.com/landscape-hq/underwriter/internal/logging"
)

var _ system.Service = (*Poller)(nil)

// Poller periodically claims pending documents and runs extraction on a
// cron schedule.
type Poller struct {
	service  *Service
	schedule string
	batch    int
	log      *logging.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	running bool
}

// NewPoller creates a lifecycle-managed extraction poller. The schedule
// uses standard cron syntax or descriptors like "@every 30s".
func NewPoller(service *Service, schedule string, batch int, log *logging.Logger) *Poller {
	if schedule == "" {
		schedule = "@every 30s"
	}
	if batch <= 0 {
		batch = 10
	}
	if log == nil {
		log = logging.NewDefault("extraction-poller")
	}
	return &Poller{
		service:  service,
		schedule: schedule,
		batch:    batch,
		log:      log,
	}
}

func (p *Poller) Name() string { return "extraction-poller" }

func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c := cron.New()
	if _, err := c.AddFunc(p.schedule, func() { p.tick(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("invalid extraction schedule %q: %w", p.schedule, err)
	}

	p.cron = c
	p.cancel = cancel
	p.running = true
	c.Start()
	p.log.WithField("schedule", p.schedule).Info("extraction poller started")
	return nil
}

func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return nil
	}
	p.cancel()

	stopped := p.cron.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	p.cron = nil
	p.running = false
	p.log.Info("extraction poller stopped")
	return nil
}

func (p *Poller) tick(ctx context.Context) {
	n, err := p.service.ProcessPending(ctx, p.batch)
	if err != nil {
		p.log.WithError(err).Error("extraction poll failed")
		return
	}
	if n > 0 {
		p.log.WithField("documents", n).Debug("extraction poll completed")
	}
}
