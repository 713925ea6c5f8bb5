package services

import (
	"context"
	"log"

	"moimhub/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CleanupService purges expired refresh tokens and dead login codes on a
// nightly schedule
type CleanupService struct {
	refreshRepo   repositories.RefreshTokenRepository
	loginCodeRepo repositories.LoginCodeRepository
	cron          *cron.Cron
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(
	refreshRepo repositories.RefreshTokenRepository,
	loginCodeRepo repositories.LoginCodeRepository,
) *CleanupService {
	return &CleanupService{
		refreshRepo:   refreshRepo,
		loginCodeRepo: loginCodeRepo,
		cron:          cron.New(),
	}
}

// Start schedules the nightly cleanup at 03:00 server time
func (s *CleanupService) Start() error {
	if _, err := s.cron.AddFunc("0 3 * * *", func() {
		s.Run(context.Background())
	}); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("✅ Cleanup scheduler started (daily at 03:00)")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *CleanupService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Cleanup scheduler stopped")
}

// Run executes one cleanup sweep immediately
func (s *CleanupService) Run(ctx context.Context) {
	tokens, err := s.refreshRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("❌ Failed to purge expired refresh tokens: %v", err)
	}

	codes, err := s.loginCodeRepo.DeleteDead(ctx)
	if err != nil {
		log.Printf("❌ Failed to purge login codes: %v", err)
	}

	log.Printf("🧹 Cleanup done: %d refresh tokens, %d login codes removed", tokens, codes)
}
