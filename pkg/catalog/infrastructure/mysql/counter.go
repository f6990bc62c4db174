package mysql

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"pos/pkg/catalog/domain/model"
)

type CounterRepository struct {
	db *sqlx.DB
}

func NewCounterRepository(db *sqlx.DB) *CounterRepository {
	return &CounterRepository{db: db}
}

type counterRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Location     string    `db:"location"`
	Status       int       `db:"status"`
	Unrestricted bool      `db:"unrestricted"`
	Version      int       `db:"version"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r *CounterRepository) NextID() (string, error) {
	return uuid.NewString(), nil
}

func (r *CounterRepository) Create(counter *model.Counter) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO counters (id, name, location, status, unrestricted, version, created_at, updated_at)
		VALUES (:id, :name, :location, :status, :unrestricted, :version, :created_at, :updated_at)`

	if _, err := tx.NamedExec(query, toCounterRow(counter)); err != nil {
		return errors.Wrap(err, "insert counter")
	}
	if err := replaceAssortment(tx, counter); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit tx")
}

func (r *CounterRepository) Update(counter *model.Counter) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	const query = `
		UPDATE counters
		SET name = :name, location = :location, status = :status,
		    unrestricted = :unrestricted, version = :version, updated_at = :updated_at
		WHERE id = :id AND version = :version - 1`

	res, err := tx.NamedExec(query, toCounterRow(counter))
	if err != nil {
		return errors.Wrap(err, "update counter")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update counter")
	}
	if affected == 0 {
		return ErrStaleVersion
	}

	if err := replaceAssortment(tx, counter); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit tx")
}

func (r *CounterRepository) Find(id string) (*model.Counter, error) {
	var row counterRow
	err := r.db.Get(&row, `SELECT * FROM counters WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrCounterNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find counter")
	}

	productIDs, err := r.assortment(id)
	if err != nil {
		return nil, err
	}
	return fromCounterRow(row, productIDs), nil
}

func (r *CounterRepository) FindAll() ([]*model.Counter, error) {
	var rows []counterRow
	if err := r.db.Select(&rows, `SELECT * FROM counters ORDER BY created_at, id`); err != nil {
		return nil, errors.Wrap(err, "list counters")
	}

	counters := make([]*model.Counter, 0, len(rows))
	for _, row := range rows {
		productIDs, err := r.assortment(row.ID)
		if err != nil {
			return nil, err
		}
		counters = append(counters, fromCounterRow(row, productIDs))
	}
	return counters, nil
}

func (r *CounterRepository) assortment(counterID string) ([]string, error) {
	var productIDs []string
	err := r.db.Select(&productIDs,
		`SELECT product_id FROM counter_products WHERE counter_id = ? ORDER BY product_id`, counterID)
	if err != nil {
		return nil, errors.Wrap(err, "load counter assortment")
	}
	return productIDs, nil
}

func replaceAssortment(tx *sqlx.Tx, counter *model.Counter) error {
	if _, err := tx.Exec(`DELETE FROM counter_products WHERE counter_id = ?`, counter.ID); err != nil {
		return errors.Wrap(err, "clear counter assortment")
	}
	for _, productID := range counter.ProductIDs {
		if _, err := tx.Exec(
			`INSERT INTO counter_products (counter_id, product_id) VALUES (?, ?)`,
			counter.ID, productID,
		); err != nil {
			return errors.Wrap(err, "insert counter assortment")
		}
	}
	return nil
}

func toCounterRow(c *model.Counter) counterRow {
	return counterRow{
		ID:           c.ID,
		Name:         c.Name,
		Location:     c.Location,
		Status:       int(c.Status),
		Unrestricted: c.Unrestricted,
		Version:      c.Version,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func fromCounterRow(row counterRow, productIDs []string) *model.Counter {
	return &model.Counter{
		ID:           row.ID,
		Name:         row.Name,
		Location:     row.Location,
		Status:       model.CounterStatus(row.Status),
		ProductIDs:   productIDs,
		Unrestricted: row.Unrestricted,
		Version:      row.Version,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
