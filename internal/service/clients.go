package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dibasaye/finance-manager/internal/models"
	"github.com/dibasaye/finance-manager/internal/repository"
	"github.com/dibasaye/finance-manager/internal/utils"
)

// ClientInput carries the editable fields of a client record
type ClientInput struct {
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Address     string     `json:"address"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	IDNumber    string     `json:"id_number"`
}

func (in *ClientInput) validate() error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if in.FirstName == "" || in.LastName == "" {
		return validationf("first and last name are required")
	}
	return nil
}

// CreateClient registers a new client with a generated external identifier
func (s *Service) CreateClient(ctx context.Context, input ClientInput) (*models.Client, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	identifier, err := s.uniqueIdentifier(ctx, utils.ClientPrefix, s.repo.ClientIdentifierTaken)
	if err != nil {
		return nil, err
	}

	now := s.now()
	client := &models.Client{
		ClientID:    identifier,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		Phone:       input.Phone,
		Address:     input.Address,
		DateOfBirth: input.DateOfBirth,
		IDNumber:    input.IDNumber,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.repo.WithTx(ctx, func(r *repository.Repository) error {
		if err := r.CreateClient(ctx, client); err != nil {
			return err
		}
		return s.audit(ctx, r, actor, "create", "Client", client.ID,
			fmt.Sprintf("created client %s (%s)", client.ClientID, client.FullName()))
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]any{"client_id": client.ClientID, "id": client.ID}).Info("client created")
	return client, nil
}

// UpdateClient edits contact and identity fields of a client
func (s *Service) UpdateClient(ctx context.Context, id int64, input ClientInput) (*models.Client, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	client, err := s.repo.FindClientByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoErr(err)
	}

	client.FirstName = input.FirstName
	client.LastName = input.LastName
	client.Email = input.Email
	client.Phone = input.Phone
	client.Address = input.Address
	client.DateOfBirth = input.DateOfBirth
	client.IDNumber = input.IDNumber
	client.UpdatedAt = s.now()

	err = s.repo.WithTx(ctx, func(r *repository.Repository) error {
		if err := r.UpdateClient(ctx, client); err != nil {
			return err
		}
		return s.audit(ctx, r, actor, "update", "Client", client.ID,
			fmt.Sprintf("updated client %s", client.ClientID))
	})
	if err != nil {
		return nil, s.mapRepoErr(err)
	}
	return client, nil
}

// GetClient retrieves a client together with its credits
func (s *Service) GetClient(ctx context.Context, id int64) (*models.Client, []models.Credit, error) {
	client, err := s.repo.FindClientByID(ctx, id)
	if err != nil {
		return nil, nil, s.mapRepoErr(err)
	}
	credits, err := s.repo.ListCreditsByClient(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return client, credits, nil
}

// ListClients retrieves all clients
func (s *Service) ListClients(ctx context.Context) ([]models.Client, error) {
	return s.repo.ListClients(ctx)
}

// DeleteClient removes a client and, through cascading foreign keys, all
// credits, schedules, payments, savings accounts and ledger entries tied to
// it. Administrator only.
func (s *Service) DeleteClient(ctx context.Context, id int64) error {
	actor, err := s.actor(ctx)
	if err != nil {
		return err
	}
	if !CanAdminister(actor.Role) {
		return fmt.Errorf("%w: only administrators may delete clients", ErrForbidden)
	}

	client, err := s.repo.FindClientByID(ctx, id)
	if err != nil {
		return s.mapRepoErr(err)
	}

	err = s.repo.WithTx(ctx, func(r *repository.Repository) error {
		if err := r.DeleteClient(ctx, id); err != nil {
			return err
		}
		return s.audit(ctx, r, actor, "delete", "Client", id,
			fmt.Sprintf("deleted client %s and all dependent records", client.ClientID))
	})
	if err != nil {
		return s.mapRepoErr(err)
	}

	s.log.WithField("client_id", client.ClientID).Warn("client deleted")
	return nil
}
