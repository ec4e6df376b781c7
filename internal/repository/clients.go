package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dibasaye/finance-manager/internal/models"
)

// CreateClient creates a new client in the database
func (r *Repository) CreateClient(ctx context.Context, client *models.Client) error {
	query := `
		INSERT INTO clients (client_id, first_name, last_name, email, phone, address, date_of_birth, id_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		client.ClientID, client.FirstName, client.LastName, client.Email, client.Phone,
		client.Address, client.DateOfBirth, client.IDNumber, client.CreatedAt, client.UpdatedAt).
		Scan(&client.ID)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// UpdateClient updates contact and identity fields of a client
func (r *Repository) UpdateClient(ctx context.Context, client *models.Client) error {
	query := `
		UPDATE clients
		SET first_name = $2, last_name = $3, email = $4, phone = $5, address = $6,
		    date_of_birth = $7, id_number = $8, updated_at = $9
		WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		client.ID, client.FirstName, client.LastName, client.Email, client.Phone,
		client.Address, client.DateOfBirth, client.IDNumber, client.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("client %d: %w", client.ID, ErrNotFound)
	}
	return nil
}

// FindClientByID retrieves a client by primary key
func (r *Repository) FindClientByID(ctx context.Context, id int64) (*models.Client, error) {
	client := &models.Client{}
	query := `
		SELECT id, client_id, first_name, last_name, email, phone, address, date_of_birth, id_number, created_at, updated_at
		FROM clients
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&client.ID, &client.ClientID, &client.FirstName, &client.LastName, &client.Email,
			&client.Phone, &client.Address, &client.DateOfBirth, &client.IDNumber, &client.CreatedAt, &client.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("client %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return client, nil
}

// ListClients retrieves all clients, newest first
func (r *Repository) ListClients(ctx context.Context) ([]models.Client, error) {
	query := `
		SELECT id, client_id, first_name, last_name, email, phone, address, date_of_birth, id_number, created_at, updated_at
		FROM clients
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.ClientID, &c.FirstName, &c.LastName, &c.Email,
			&c.Phone, &c.Address, &c.DateOfBirth, &c.IDNumber, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// DeleteClient removes a client. Credits, schedules, payments, savings
// accounts and their transactions cascade through foreign keys.
func (r *Repository) DeleteClient(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("client %d: %w", id, ErrNotFound)
	}
	return nil
}

// ClientIdentifierTaken reports whether an external client identifier exists
func (r *Repository) ClientIdentifierTaken(ctx context.Context, clientID string) (bool, error) {
	var taken bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM clients WHERE client_id = $1)`, clientID).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check client identifier: %w", err)
	}
	return taken, nil
}
