package services

import (
	"context"
	"log"
	"time"

	"libraria/internal/adapters/persistence/repositories"
	"libraria/internal/core/domain"

	"github.com/robfig/cron/v3"
)

const expiredReservationReason = "expired: reservation window passed without approval"

// CronService runs the nightly maintenance sweep: pending reservations whose
// window has fully passed get cancelled, and the overdue loan count is logged
// for the morning shift.
type CronService struct {
	cron            *cron.Cron
	reservationRepo repositories.ReservationRepository
	loanRepo        repositories.LoanRepository
}

// NewCronService creates a new cron service
func NewCronService(reservationRepo repositories.ReservationRepository, loanRepo repositories.LoanRepository) *CronService {
	return &CronService{
		cron:            cron.New(),
		reservationRepo: reservationRepo,
		loanRepo:        loanRepo,
	}
}

// Start registers and starts the scheduled jobs
func (s *CronService) Start() {
	// Just after midnight, before the library opens
	_, err := s.cron.AddFunc("15 0 * * *", s.runSweep)
	if err != nil {
		log.Printf("❌ Failed to schedule nightly sweep: %v", err)
		return
	}

	s.cron.Start()
	log.Println("✅ Cron service started (nightly sweep at 00:15)")
}

// Stop stops the scheduler, waiting for a running job to finish
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("✅ Cron service stopped")
}

// RunSweepNow triggers the sweep outside the schedule (startup, tests)
func (s *CronService) RunSweepNow() {
	s.runSweep()
}

func (s *CronService) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	today := domain.NormalizeDay(time.Now())
	expired, err := s.reservationRepo.CancelExpiredPending(ctx, today, expiredReservationReason)
	if err != nil {
		log.Printf("❌ Nightly sweep: cancelling expired reservations failed: %v", err)
	} else if expired > 0 {
		log.Printf("✅ Nightly sweep: cancelled %d expired pending reservation(s)", expired)
	}

	overdue, err := s.loanRepo.CountOverdue(ctx, time.Now())
	if err != nil {
		log.Printf("❌ Nightly sweep: counting overdue loans failed: %v", err)
		return
	}
	if overdue > 0 {
		log.Printf("⚠️ Nightly sweep: %d loan(s) overdue", overdue)
	}
}
