package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dealtracker/internal/models"
)

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, startupID, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, startupID uuid.UUID) ([]*models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, startupID, id uuid.UUID) error
}

type productRepo struct {
	db DB
}

func NewProductRepo(db DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()

	query := `
		INSERT INTO products (id, startup_id, name, description, pricing, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, p.ID, p.StartupID, p.Name, p.Description, p.Pricing, p.CreatedAt)
	return mapPostgresError(err)
}

func (r *productRepo) GetByID(ctx context.Context, startupID, id uuid.UUID) (*models.Product, error) {
	p := &models.Product{}
	query := `
		SELECT id, startup_id, name, description, pricing, created_at
		FROM products
		WHERE startup_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, startupID, id).Scan(&p.ID, &p.StartupID, &p.Name, &p.Description, &p.Pricing, &p.CreatedAt)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	return p, nil
}

func (r *productRepo) List(ctx context.Context, startupID uuid.UUID) ([]*models.Product, error) {
	query := `
		SELECT id, startup_id, name, description, pricing, created_at
		FROM products
		WHERE startup_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, startupID)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(&p.ID, &p.StartupID, &p.Name, &p.Description, &p.Pricing, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productRepo) Update(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products SET name = $3, description = $4, pricing = $5
		WHERE startup_id = $1 AND id = $2
	`
	return execOne(ctx, r.db, query, p.StartupID, p.ID, p.Name, p.Description, p.Pricing)
}

func (r *productRepo) Delete(ctx context.Context, startupID, id uuid.UUID) error {
	return execOne(ctx, r.db, `DELETE FROM products WHERE startup_id = $1 AND id = $2`, startupID, id)
}
