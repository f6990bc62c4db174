package mysql

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos/pkg/catalog/domain/model"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func productColumns() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "category", "price", "image_ref", "active", "version", "created_at", "updated_at",
	})
}

func TestProductFind(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT \* FROM products WHERE id`).
		WithArgs("p1").
		WillReturnRows(productColumns().AddRow("p1", "Burger", "Food", 10.5, "", true, 1, now, now))

	product, err := repo.Find("p1")

	require.NoError(t, err)
	assert.Equal(t, "Burger", product.Name)
	assert.InDelta(t, 10.5, product.Price.Amount(), 1e-9)
	assert.True(t, product.Active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductFindNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(`SELECT \* FROM products WHERE id`).
		WithArgs("ghost").
		WillReturnRows(productColumns())

	_, err := repo.Find("ghost")

	assert.ErrorIs(t, err, model.ErrProductNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductCreate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)

	mock.ExpectExec(`INSERT INTO products`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now().UTC()
	err := repo.Create(&model.Product{
		ID: "p1", Name: "Burger", Category: "Food", Price: 10,
		Active: true, Version: 1, CreatedAt: now, UpdatedAt: now,
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductUpdateOptimisticLock(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE products`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(&model.Product{ID: "p1", Name: "Burger", Version: 2})
		require.NoError(t, err)
	})

	t.Run("Stale version", func(t *testing.T) {
		mock.ExpectExec(`UPDATE products`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(&model.Product{ID: "p1", Name: "Burger", Version: 2})
		assert.ErrorIs(t, err, ErrStaleVersion)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductFindAll(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT \* FROM products ORDER BY created_at`).
		WillReturnRows(productColumns().
			AddRow("p1", "Burger", "Food", 10.0, "", true, 1, now, now).
			AddRow("p2", "Cola", "Drink", 2.0, "", false, 3, now, now))

	products, err := repo.FindAll()

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "p1", products[0].ID)
	assert.False(t, products[1].Active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterFindLoadsAssortment(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCounterRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT \* FROM counters WHERE id`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "location", "status", "unrestricted", "version", "created_at", "updated_at",
		}).AddRow("c1", "Front Desk", "Ground floor", 0, false, 1, now, now))

	mock.ExpectQuery(`SELECT product_id FROM counter_products WHERE counter_id`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"product_id"}).AddRow("p1").AddRow("p2"))

	counter, err := repo.Find("c1")

	require.NoError(t, err)
	assert.Equal(t, "Front Desk", counter.Name)
	assert.Equal(t, model.CounterActive, counter.Status)
	assert.Equal(t, []string{"p1", "p2"}, counter.ProductIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterUpdateReplacesAssortment(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCounterRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE counters`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM counter_products`).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO counter_products`).
		WithArgs("c1", "p9").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(&model.Counter{ID: "c1", Name: "Front Desk", Version: 2, ProductIDs: []string{"p9"}})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterFindNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCounterRepository(db)

	mock.ExpectQuery(`SELECT \* FROM counters WHERE id`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Find("ghost")

	assert.ErrorIs(t, err, model.ErrCounterNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
