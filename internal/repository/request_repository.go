package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/service-portal/internal/domain"
)

// RequestRepository encapsulates service request persistence. Listings are newest first.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.ServiceRequest) error
	GetByID(ctx context.Context, id int64) (*domain.ServiceRequest, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.ServiceRequest, error)
	ListWithOwners(ctx context.Context) ([]domain.RequestWithOwner, error)
	// UpdateStatus and Delete return pgx.ErrNoRows when no row matched.
	UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus) error
	Delete(ctx context.Context, id int64) error
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

func (r *requestRepository) Create(ctx context.Context, req *domain.ServiceRequest) error {
	const query = `
        INSERT INTO requests (user_id, title, description, status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		req.OwnerID,
		req.Title,
		req.Description,
		req.Status,
	).Scan(&req.ID, &req.CreatedAt)
	if pgErrorCode(err) == pgForeignKeyViolation {
		return ErrOwnerNotFound
	}
	return err
}

func (r *requestRepository) GetByID(ctx context.Context, id int64) (*domain.ServiceRequest, error) {
	const query = `
        SELECT id, user_id, title, description, status, created_at
        FROM requests WHERE id=$1`
	var req domain.ServiceRequest
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.OwnerID,
		&req.Title,
		&req.Description,
		&req.Status,
		&req.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.ServiceRequest, error) {
	const query = `
        SELECT id, user_id, title, description, status, created_at
        FROM requests WHERE user_id=$1
        ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ServiceRequest
	for rows.Next() {
		var req domain.ServiceRequest
		if err := rows.Scan(
			&req.ID,
			&req.OwnerID,
			&req.Title,
			&req.Description,
			&req.Status,
			&req.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}

func (r *requestRepository) ListWithOwners(ctx context.Context) ([]domain.RequestWithOwner, error) {
	const query = `
        SELECT r.id, r.user_id, r.title, r.description, r.status, r.created_at,
               u.name, u.email
        FROM requests r
        JOIN users u ON r.user_id = u.id
        ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RequestWithOwner
	for rows.Next() {
		var item domain.RequestWithOwner
		if err := rows.Scan(
			&item.ID,
			&item.OwnerID,
			&item.Title,
			&item.Description,
			&item.Status,
			&item.CreatedAt,
			&item.OwnerName,
			&item.OwnerEmail,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *requestRepository) UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE requests SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *requestRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM requests WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
