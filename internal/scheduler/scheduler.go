package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/dibasaye/finance-manager/internal/models"
	"github.com/dibasaye/finance-manager/internal/service"
)

// systemActor attributes scheduled mutations in the audit trail. User id 0
// never matches a real account.
var systemActor = service.Actor{UserID: 0, Username: "system", Role: models.RoleAdministrateur, IP: "127.0.0.1"}

// Scheduler runs the recurring jobs of the credit engine: a daily penalty
// and payment alert scan and a daily savings interest pass (a no-op for
// accounts already served this month).
type Scheduler struct {
	cron    *cron.Cron
	service *service.Service
	log     *logrus.Logger
}

// NewScheduler initializes the scheduler without starting it
func NewScheduler(svc *service.Service, log *logrus.Logger) *Scheduler {
	return &Scheduler{cron: cron.New(), service: svc, log: log}
}

// Start registers the jobs and launches the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("15 1 * * *", s.dailyScan); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("45 1 * * *", s.interestPass); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("scheduler started")
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// dailyScan refreshes penalties on active credits and generates payment
// alerts. Both operations replace or deduplicate rather than accumulate, so
// a rerun after a missed day is safe.
func (s *Scheduler) dailyScan() {
	ctx := service.ContextWithActor(context.Background(), systemActor)

	updated, err := s.service.RecomputePenalties(ctx)
	if err != nil {
		s.log.WithError(err).Error("penalty scan failed")
	} else {
		s.log.WithField("credits", updated).Info("penalty scan completed")
	}

	created, err := s.service.GeneratePaymentAlerts(ctx)
	if err != nil {
		s.log.WithError(err).Error("alert scan failed")
	} else {
		s.log.WithField("notifications", created).Info("alert scan completed")
	}
}

// interestPass posts accrued savings interest. Accounts accrue per whole
// elapsed month, so running daily only pays each account once per month.
func (s *Scheduler) interestPass() {
	ctx := service.ContextWithActor(context.Background(), systemActor)
	posted, err := s.service.ApplyAllSavingsInterest(ctx, systemActor)
	if err != nil {
		s.log.WithError(err).Error("interest pass failed")
		return
	}
	s.log.WithField("accounts", posted).Info("interest pass completed")
}
