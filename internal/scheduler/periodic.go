// Package scheduler — периодический запуск фоновой задачи без наложения прогонов.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Gunvolt24/cartsync/internal/ports"
	"github.com/Gunvolt24/cartsync/pkg/metrics"
)

// Проверка, что Periodic удовлетворяет интерфейсу BackgroundJob.
var _ ports.BackgroundJob = (*Periodic)(nil)

// JobFunc — один прогон задачи.
type JobFunc func(ctx context.Context) error

// Config — параметры расписания.
type Config struct {
	Name            string
	Interval        time.Duration
	FlushOnShutdown bool // один финальный прогон после отмены контекста
}

// Periodic — запускает job раз в Interval. Тик, пришедший во время прогона,
// пропускается, а не ставится в очередь. Прогоны выполняются в отдельной горутине
// и не прерываются отменой контекста Run: при остановке Run дожидается текущего прогона.
type Periodic struct {
	job JobFunc
	cfg Config
	log ports.Logger

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewPeriodic — конструктор; Interval <= 0 → 1 час.
func NewPeriodic(job JobFunc, cfg Config, log ports.Logger) *Periodic {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Name == "" {
		cfg.Name = "job"
	}
	return &Periodic{job: job, cfg: cfg, log: log}
}

// Run — блокируется до отмены ctx; возвращает nil после корректной остановки.
func (p *Periodic) Run(ctx context.Context) error {
	p.log.Infof(ctx, "scheduler %s started interval=%s", p.cfg.Name, p.cfg.Interval)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.shutdown(ctx)
			return nil
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick — старт прогона, если предыдущий завершён.
func (p *Periodic) tick(ctx context.Context) {
	if !p.running.CompareAndSwap(false, true) {
		metrics.ReconcileRuns.WithLabelValues("skipped").Inc()
		p.log.Warnf(ctx, "scheduler %s: previous run still in progress, tick skipped", p.cfg.Name)
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.running.Store(false)
		p.execute(context.WithoutCancel(ctx))
	}()
}

// shutdown — ждём текущий прогон и при необходимости делаем финальный.
func (p *Periodic) shutdown(ctx context.Context) {
	p.log.Infof(ctx, "scheduler %s stopping, waiting for in-flight run", p.cfg.Name)
	p.wg.Wait()

	if p.cfg.FlushOnShutdown {
		p.log.Infof(ctx, "scheduler %s: final run before shutdown", p.cfg.Name)
		p.execute(context.WithoutCancel(ctx))
	}
	p.log.Infof(ctx, "scheduler %s stopped", p.cfg.Name)
}

func (p *Periodic) execute(ctx context.Context) {
	if err := p.job(ctx); err != nil {
		p.log.Errorf(ctx, "scheduler %s: run failed: %v", p.cfg.Name, err)
	}
}
