package services

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// CronService schedules the daily collections sweep (08:30).
type CronService struct {
	cron        *cron.Cron
	collections *CollectionsService
}

// NewCronService creates a new cron service
func NewCronService(collections *CollectionsService) *CronService {
	return &CronService{
		cron:        cron.New(),
		collections: collections,
	}
}

// Start registers and starts the scheduled jobs
func (s *CronService) Start() {
	s.cron.AddFunc("30 8 * * *", func() {
		if _, err := s.collections.Sweep(context.Background()); err != nil {
			log.Printf("❌ Collections sweep failed: %v", err)
		}
	})

	s.cron.Start()
	log.Println("✅ Cron service started (collections sweep at 08:30 daily)")
}

// Stop stops the scheduler, waiting for a running job to finish
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Cron service stopped")
}
