package services

import (
	"context"
	"log"
	"time"

	"creditdesk/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronService runs scheduled jobs: the daily delinquency scan and the
// expired refresh token cleanup
type CronService struct {
	cron             *cron.Cron
	reporting        *ReportingService
	refreshTokenRepo repositories.RefreshTokenRepository
}

// NewCronService creates a new cron service
func NewCronService(db *gorm.DB) *CronService {
	creditRepo := repositories.NewCreditRepository(db)
	clientRepo := repositories.NewClientRepository(db)
	repaymentRepo := repositories.NewRepaymentRepository(db)

	return &CronService{
		cron:             cron.New(),
		reporting:        NewReportingService(creditRepo, clientRepo, repaymentRepo),
		refreshTokenRepo: repositories.NewRefreshTokenRepository(db),
	}
}

// Start registers and launches the scheduled jobs
func (s *CronService) Start() {
	// Delinquency scan at 08:30 daily
	if _, err := s.cron.AddFunc("30 8 * * *", s.runDelinquencyScan); err != nil {
		log.Fatalf("❌ Failed to schedule delinquency scan: %v", err)
	}

	// Expired refresh token cleanup at 03:00 daily
	if _, err := s.cron.AddFunc("0 3 * * *", s.cleanupExpiredTokens); err != nil {
		log.Fatalf("❌ Failed to schedule token cleanup: %v", err)
	}

	s.cron.Start()
	log.Println("🚀 CronService started")
}

// Stop stops the scheduler, waiting for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}

func (s *CronService) runDelinquencyScan() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := s.reporting.DelinquentCredits(ctx, time.Now())
	if err != nil {
		log.Printf("❌ Delinquency scan error: %v", err)
		return
	}

	if len(report) == 0 {
		log.Println("✅ Delinquency scan: no delinquent credits")
		return
	}

	for _, entry := range report {
		log.Printf("⚠️ Delinquent credit %d (client %d): %d missed of %d expected payments",
			entry.CreditID, entry.ClientID, entry.MissedPayments, entry.ExpectedPayments)
	}
	log.Printf("⚠️ Delinquency scan: %d credits flagged", len(report))
}

func (s *CronService) cleanupExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.refreshTokenRepo.DeleteExpired(ctx); err != nil {
		log.Printf("❌ Token cleanup error: %v", err)
		return
	}
	log.Println("🧹 Expired refresh tokens cleaned up")
}
