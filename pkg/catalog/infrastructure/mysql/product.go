package mysql

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"pos/pkg/catalog/domain/model"
)

var ErrStaleVersion = errors.New("row was modified by another transaction")

type ProductRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

type productRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Category  string    `db:"category"`
	Price     float64   `db:"price"`
	ImageRef  string    `db:"image_ref"`
	Active    bool      `db:"active"`
	Version   int       `db:"version"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *ProductRepository) NextID() (string, error) {
	return uuid.NewString(), nil
}

func (r *ProductRepository) Create(product *model.Product) error {
	const query = `
		INSERT INTO products (id, name, category, price, image_ref, active, version, created_at, updated_at)
		VALUES (:id, :name, :category, :price, :image_ref, :active, :version, :created_at, :updated_at)`

	if _, err := r.db.NamedExec(query, toProductRow(product)); err != nil {
		return errors.Wrap(err, "insert product")
	}
	return nil
}

func (r *ProductRepository) Update(product *model.Product) error {
	const query = `
		UPDATE products
		SET name = :name, category = :category, price = :price, image_ref = :image_ref,
		    active = :active, version = :version, updated_at = :updated_at
		WHERE id = :id AND version = :version - 1`

	res, err := r.db.NamedExec(query, toProductRow(product))
	if err != nil {
		return errors.Wrap(err, "update product")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update product")
	}
	if affected == 0 {
		return ErrStaleVersion
	}
	return nil
}

func (r *ProductRepository) Find(id string) (*model.Product, error) {
	var row productRow
	err := r.db.Get(&row, `SELECT * FROM products WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find product")
	}
	return fromProductRow(row), nil
}

func (r *ProductRepository) FindAll() ([]*model.Product, error) {
	var rows []productRow
	if err := r.db.Select(&rows, `SELECT * FROM products ORDER BY created_at, id`); err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	products := make([]*model.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, fromProductRow(row))
	}
	return products, nil
}

func toProductRow(p *model.Product) productRow {
	return productRow{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.Price.Amount(),
		ImageRef:  p.ImageRef,
		Active:    p.Active,
		Version:   p.Version,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func fromProductRow(row productRow) *model.Product {
	return &model.Product{
		ID:        row.ID,
		Name:      row.Name,
		Category:  row.Category,
		Price:     model.ParsePrice(row.Price),
		ImageRef:  row.ImageRef,
		Active:    row.Active,
		Version:   row.Version,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
