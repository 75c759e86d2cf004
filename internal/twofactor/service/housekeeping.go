package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/twofactor/internal/twofactor/store"
)

// HousekeepingService periodically removes enrolments that were never
// confirmed and backup codes that were redeemed long ago.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// PendingTTL is how long an unconfirmed credential may sit untouched.
	PendingTTL time.Duration
	// UsedCodeRetention keeps redeemed codes around for auditing.
	UsedCodeRetention time.Duration

	Now func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. Non-positive
// durations fall back to one hour, one day and thirty days.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, pendingTTL, usedRetention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if pendingTTL <= 0 {
		pendingTTL = 24 * time.Hour
	}
	if usedRetention <= 0 {
		usedRetention = 30 * 24 * time.Hour
	}

	return &HousekeepingService{
		Store:             st,
		Logger:            logger,
		Interval:          interval,
		PendingTTL:        pendingTTL,
		UsedCodeRetention: usedRetention,
		Now:               time.Now,
		stopCh:            make(chan struct{}),
		doneCh:            make(chan struct{}),
	}
}

// Start runs a cleanup straight away and then once per Interval until Stop.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// cleanup runs each deletion independently so one failing does not skip
// the other.
func (s *HousekeepingService) cleanup(ctx context.Context) {
	now := s.Now()

	pending, err := s.Store.Credentials().DeleteStalePendingCredentials(ctx, now.Add(-s.PendingTTL))
	if err != nil {
		s.Logger.Error("failed to delete stale pending credentials", "error", err)
	}

	used, err := s.Store.BackupCodes().DeleteUsedBackupCodesBefore(ctx, now.Add(-s.UsedCodeRetention))
	if err != nil {
		s.Logger.Error("failed to delete used backup codes", "error", err)
	}

	s.Logger.Info("housekeeping cleanup completed",
		"stale_pending_credentials", pending,
		"used_backup_codes", used,
	)
}
