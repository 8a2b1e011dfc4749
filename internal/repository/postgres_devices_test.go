package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eco-dashboard/internal/domain"
)

func setupMockDevicesDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresDevicesRepo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewPostgresDevicesRepo(db)
}

func undefinedColumn() *pq.Error {
	return &pq.Error{Code: "42703"}
}

func legacyDeviceRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"device_id", "name", "max_consumption", "category_id", "zone_id",
		"organization_id", "category_label", "zone_label", "status",
		"created_at", "updated_at", "deleted_at",
	}).AddRow(
		int64(7), "Chiller A", 120.5, nil, nil,
		int64(1), "HVAC", "Planta 1", "ACTIVE",
		now, now, nil,
	)
}

func TestList_LegacyCategoryFallback(t *testing.T) {
	db, mock, repo := setupMockDevicesDB(t)
	defer db.Close()

	// The joined query fails on the pre-rename schema; the scalar-column
	// query serves the listing instead, with the filter moved to d.category.
	mock.ExpectQuery(`LEFT JOIN categories`).
		WithArgs(int64(1), "HVAC").
		WillReturnError(undefinedColumn())
	mock.ExpectQuery(`d\.category AS category_label`).
		WithArgs(int64(1), "HVAC").
		WillReturnRows(legacyDeviceRows())

	devices, err := repo.List(context.Background(), 1, "HVAC")

	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, int64(7), devices[0].ID)
	assert.Equal(t, "HVAC", devices[0].CategoryName())
	assert.Equal(t, "Planta 1", devices[0].ZoneName())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_LegacyFallback(t *testing.T) {
	db, mock, repo := setupMockDevicesDB(t)
	defer db.Close()

	mock.ExpectQuery(`LEFT JOIN categories`).
		WithArgs(int64(7), int64(1)).
		WillReturnError(undefinedColumn())
	mock.ExpectQuery(`d\.category AS category_label`).
		WithArgs(int64(7), int64(1)).
		WillReturnRows(legacyDeviceRows())

	device, err := repo.Get(context.Background(), 1, 7)

	require.NoError(t, err)
	assert.Equal(t, int64(7), device.ID)
	assert.Equal(t, "HVAC", device.CategoryName())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_LegacyFallbackStillNotFound(t *testing.T) {
	db, mock, repo := setupMockDevicesDB(t)
	defer db.Close()

	empty := sqlmock.NewRows([]string{
		"device_id", "name", "max_consumption", "category_id", "zone_id",
		"organization_id", "category_label", "zone_label", "status",
		"created_at", "updated_at", "deleted_at",
	})
	mock.ExpectQuery(`LEFT JOIN categories`).
		WithArgs(int64(424242), int64(1)).
		WillReturnError(undefinedColumn())
	mock.ExpectQuery(`d\.category AS category_label`).
		WithArgs(int64(424242), int64(1)).
		WillReturnRows(empty)

	_, err := repo.Get(context.Background(), 1, 424242)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDistinctCategoryLabels_LegacyFallback(t *testing.T) {
	db, mock, repo := setupMockDevicesDB(t)
	defer db.Close()

	mock.ExpectQuery(`JOIN categories`).
		WithArgs(int64(1)).
		WillReturnError(undefinedColumn())
	mock.ExpectQuery(`SELECT DISTINCT d\.category`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"category"}).
			AddRow("HVAC").
			AddRow("Iluminación"))

	labels, err := repo.DistinctCategoryLabels(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, []string{"HVAC", "Iluminación"}, labels)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByCategory_LegacyFallback(t *testing.T) {
	db, mock, repo := setupMockDevicesDB(t)
	defer db.Close()

	mock.ExpectQuery(`LEFT JOIN categories`).
		WithArgs(int64(1)).
		WillReturnError(undefinedColumn())
	mock.ExpectQuery(`GROUP BY d\.category`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"category", "count"}).
			AddRow("HVAC", 2).
			AddRow(nil, 1))

	counts, err := repo.CountByCategory(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, CategoryCount{Label: "HVAC", Count: 2}, counts[0])
	// A NULL scalar category folds to the empty label; the service maps
	// it to the sentinel.
	assert.Equal(t, CategoryCount{Label: "", Count: 1}, counts[1])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_OtherErrorsDoNotFallBack(t *testing.T) {
	db, mock, repo := setupMockDevicesDB(t)
	defer db.Close()

	mock.ExpectQuery(`LEFT JOIN categories`).
		WithArgs(int64(1)).
		WillReturnError(&pq.Error{Code: "42P01"})

	_, err := repo.List(context.Background(), 1, "")

	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
