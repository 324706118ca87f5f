package scheduler

import (
	"context"
	"time"

	"movie-night-backend/logger"
	"movie-night-backend/services"
)

// ResultsScheduler periodically computes winners for groups that reached
// the RESULTS phase without one. It is purely a convenience trigger:
// results queries compute lazily on their own.
type ResultsScheduler struct {
	rankingService *services.RankingService
	interval       time.Duration
	log            *logger.Logger
	stop           chan struct{}
}

func NewResultsScheduler(rankingService *services.RankingService, interval time.Duration, log *logger.Logger) *ResultsScheduler {
	return &ResultsScheduler{
		rankingService: rankingService,
		interval:       interval,
		log:            log.With("component", "scheduler"),
		stop:           make(chan struct{}),
	}
}

// Start runs the check loop in its own goroutine until Stop is called.
func (s *ResultsScheduler) Start() {
	go s.run()
}

func (s *ResultsScheduler) run() {
	s.log.Info("results scheduler started", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			s.rankingService.ComputeMissingResults(ctx)
			cancel()
		case <-s.stop:
			s.log.Info("results scheduler stopped")
			return
		}
	}
}

func (s *ResultsScheduler) Stop() {
	close(s.stop)
}
