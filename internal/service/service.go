package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dibasaye/finance-manager/internal/cache"
	"github.com/dibasaye/finance-manager/internal/config"
	"github.com/dibasaye/finance-manager/internal/models"
	"github.com/dibasaye/finance-manager/internal/repository"
	"github.com/dibasaye/finance-manager/internal/utils"
	"github.com/sirupsen/logrus"
)

// AlertMailer mirrors payment alerts to staff mailboxes.
type AlertMailer interface {
	SendPaymentAlert(to, username, creditNumber string, dueDate time.Time, amount float64, overdue bool) error
}

// ReferenceRateFetcher retrieves the central bank reference rate.
type ReferenceRateFetcher interface {
	FetchReferenceRate(ctx context.Context) (float64, error)
}

// Service handles business logic
type Service struct {
	repo     *repository.Repository
	log      *logrus.Logger
	config   *config.Config
	dashView *cache.ViewCache[models.DashboardStats]
	mailer   AlertMailer
	rates    ReferenceRateFetcher
	now      func() time.Time
}

// NewService initializes a new service
func NewService(repo *repository.Repository, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{repo: repo, log: log, config: cfg, now: time.Now}
}

// SetDashboardCache attaches an optional read-model cache for dashboard
// aggregates. Without one every dashboard request hits the database.
func (s *Service) SetDashboardCache(c *cache.ViewCache[models.DashboardStats]) {
	s.dashView = c
}

// SetAlertMailer attaches an optional SMTP sink: payment alerts are then
// mirrored to recipient mailboxes besides the in-app feed.
func (s *Service) SetAlertMailer(m AlertMailer) {
	s.mailer = m
}

// SetReferenceRates attaches an optional reference rate feed.
func (s *Service) SetReferenceRates(f ReferenceRateFetcher) {
	s.rates = f
}

// ReferenceRate retrieves the current central bank reference rate, for
// comparison against product rates. Informational only.
func (s *Service) ReferenceRate(ctx context.Context) (float64, error) {
	if s.rates == nil {
		return 0, notFoundf("no reference rate feed configured")
	}
	return s.rates.FetchReferenceRate(ctx)
}

// actor extracts the authenticated user from the context; operations that
// mutate state require one.
func (s *Service) actor(ctx context.Context) (Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return Actor{}, validationf("no authenticated user in context")
	}
	return actor, nil
}

// audit appends an audit event through the given repository handle, so that
// the entry commits or rolls back together with the mutation it records.
func (s *Service) audit(ctx context.Context, repo *repository.Repository, actor Actor, action, entityType string, entityID int64, details string) error {
	return repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     actor.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		IPAddress:  actor.IP,
		Timestamp:  s.now(),
	})
}

// uniqueIdentifier draws external identifiers until one is free of
// collisions. The 8-digit space makes more than a couple of draws
// vanishingly unlikely.
func (s *Service) uniqueIdentifier(ctx context.Context, prefix string, taken func(context.Context, string) (bool, error)) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		id, err := utils.GenerateIdentifier(prefix, 8)
		if err != nil {
			return "", err
		}
		inUse, err := taken(ctx, id)
		if err != nil {
			return "", err
		}
		if !inUse {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique %s identifier", prefix)
}

// mapRepoErr translates repository sentinels into service error kinds.
func (s *Service) mapRepoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, err)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: %s", ErrConflict, err)
	default:
		return err
	}
}

// ListAuditLogs retrieves recent audit events
func (s *Service) ListAuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListAuditLogs(ctx, limit)
}
