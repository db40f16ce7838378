package services

import (
	"context"
	"log"
	"time"

	"club-membership/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService runs nightly housekeeping
type CronService struct {
	cron             *cron.Cron
	schedule         string
	refreshTokenRepo repositories.RefreshTokenRepository
	exemptions       *ExemptionService
}

// NewCronService creates a new cron service
func NewCronService(schedule string, refreshTokenRepo repositories.RefreshTokenRepository, exemptions *ExemptionService) *CronService {
	return &CronService{
		cron:             cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		schedule:         schedule,
		refreshTokenRepo: refreshTokenRepo,
		exemptions:       exemptions,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.RunOnce); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("⏰ Cron service started [schedule=%q]", s.schedule)
	return nil
}

// Stop stops the scheduler and waits for a running job
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	log.Println("⏰ Cron service stopped")
}

// RunOnce runs every job once
func (s *CronService) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()

	s.purgeRefreshTokens(ctx)
	s.reportExpiredExemptions(ctx)
}

func (s *CronService) purgeRefreshTokens(ctx context.Context) {
	n, err := s.refreshTokenRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		log.Printf("❌ Cron: purge refresh tokens: %v", err)
		return
	}
	if n > 0 {
		log.Printf("🧹 Cron: purged %d expired refresh tokens", n)
	}
}

// reportExpiredExemptions logs exemptions past their last semester; revoking stays manual
func (s *CronService) reportExpiredExemptions(ctx context.Context) {
	expired, err := s.exemptions.ListExpired(ctx, time.Now())
	if err != nil {
		log.Printf("❌ Cron: list expired exemptions: %v", err)
		return
	}
	for _, e := range expired {
		log.Printf("⚠️ Cron: exemption %d (org=%d member=%d) ended with %s and is still in force",
			e.Exemption.ID, e.Exemption.OrganizationID, e.Exemption.MemberID, e.LastSemester.TermCode)
	}
}
