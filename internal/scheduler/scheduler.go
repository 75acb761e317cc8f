package scheduler

import (
	"context"
	"sync"
	"time"

	"app/internal/logger"
)

// 定期ジョブ。各ジョブは冪等に作ってあるので、多重起動や取りこぼしがあっても壊れない。
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

type Scheduler struct {
	jobs []Job
	wg   sync.WaitGroup
}

func New(jobs ...Job) *Scheduler {
	return &Scheduler{jobs: jobs}
}

func (s *Scheduler) AddJob(j Job) {
	s.jobs = append(s.jobs, j)
}

// Start は各ジョブのtickerループをgoroutineで起動する。ctxのキャンセルで全部止まる。
func (s *Scheduler) Start(ctx context.Context) {
	for _, j := range s.jobs {
		if j.Interval <= 0 {
			logger.Warn("job disabled", "job", j.Name)
			continue
		}
		s.wg.Add(1)
		go s.loop(ctx, j)
	}
}

func (s *Scheduler) loop(ctx context.Context, j Job) {
	defer s.wg.Done()

	logger.Info("job started", "job", j.Name, "interval", j.Interval.String())
	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("job stopped", "job", j.Name)
			return
		case <-ticker.C:
			start := time.Now()
			if err := j.Run(ctx); err != nil {
				logger.Error("job run failed", "job", j.Name, "err", err)
				continue
			}
			logger.Debug("job run finished", "job", j.Name, "took", time.Since(start).String())
		}
	}
}

// Wait は全ジョブループの終了を待つ。
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
