package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/safaiwalay/dispatch/internal/apperrors"
	"github.com/safaiwalay/dispatch/internal/models"
	"github.com/safaiwalay/dispatch/internal/repository"
)

type ServiceRepo struct {
	DB DBTX
}

const createService = `-- name: CreateService
INSERT INTO services (id, name, description, price)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, name, description, price
`

func (r *ServiceRepo) CreateService(ctx context.Context, p repository.CreateServiceParams) (models.Service, error) {
	rows, _ := r.DB.Query(ctx, createService, uuid.New(), p.Name, p.Description, p.Price)
	service, err := pgx.CollectOneRow(rows, rowToService)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return service, fmt.Errorf("service name already exists: %w", err)
		}
		return service, fmt.Errorf("db error: %w", err)
	}

	return service, nil
}

const getServiceByID = `-- name: GetServiceByID
SELECT id, created_at, name, description, price FROM services
WHERE id = $1
`

func (r *ServiceRepo) GetServiceByID(ctx context.Context, serviceID uuid.UUID) (models.Service, error) {
	rows, _ := r.DB.Query(ctx, getServiceByID, serviceID)
	return collectService(rows)
}

const getServiceByName = `-- name: GetServiceByName
SELECT id, created_at, name, description, price FROM services
WHERE name = $1
`

func (r *ServiceRepo) GetServiceByName(ctx context.Context, name string) (models.Service, error) {
	rows, _ := r.DB.Query(ctx, getServiceByName, name)
	return collectService(rows)
}

const listServices = `-- name: ListServices
SELECT id, created_at, name, description, price FROM services
ORDER BY created_at DESC
`

func (r *ServiceRepo) ListServices(ctx context.Context) ([]models.Service, error) {
	rows, _ := r.DB.Query(ctx, listServices)
	services, err := pgx.CollectRows(rows, rowToService)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return services, nil
}

func collectService(rows pgx.Rows) (models.Service, error) {
	service, err := pgx.CollectOneRow(rows, rowToService)

	switch {
	case err == nil:
		return service, nil
	case errors.Is(err, pgx.ErrNoRows):
		return service, apperrors.ErrServiceNotFound
	default:
		return service, fmt.Errorf("db error: %w", err)
	}
}

func rowToService(row pgx.CollectableRow) (models.Service, error) {
	var s models.Service
	err := row.Scan(&s.ID, &s.CreatedAt, &s.Name, &s.Description, &s.Price)
	return s, err
}
