package settings

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/hidaaya-golang/internal/models"
)

var (
	cols = []string{"id", "store_name", "currency", "tax_rate", "payment_methods", "contact_email", "contact_phone", "address", "created_at", "updated_at"}
	now  = time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	s := NewStore(db, nil)
	s.Now = func() time.Time { return now }
	return s, mock
}

func TestGetReturnsNilWhenNoRow(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("FROM store_settings").WillReturnError(sql.ErrNoRows)

	got, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetOrDefaultWithoutRowEqualsDefaults(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("FROM store_settings").WillReturnRows(sqlmock.NewRows(cols))

	got := s.GetOrDefault(context.Background())
	assert.Equal(t, models.DefaultStoreSettings(), got)
	assert.Equal(t, "Hidaaya Store", got.StoreName)
	assert.Equal(t, 0.0, got.TaxRate)
	assert.True(t, got.PaymentMethods.Paystack)
	assert.False(t, got.PaymentMethods.BankTransfer)
}

func TestGetOrDefaultOnReadFailure(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("FROM store_settings").WillReturnError(errors.New("connection refused"))

	assert.Equal(t, models.DefaultStoreSettings(), s.GetOrDefault(context.Background()))
}

func TestGetMapsColumns(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("FROM store_settings").WillReturnRows(sqlmock.NewRows(cols).
		AddRow(7, "Hidaaya", "NGN", 7.5, []byte(`{"paystack":false,"bank_transfer":true}`), "hello@hidaaya.store", "+234", "Lagos", now, now))

	got, err := s.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, 7.5, got.TaxRate)
	assert.Equal(t, models.PaymentMethods{Paystack: false, BankTransfer: true}, got.PaymentMethods)
	assert.Equal(t, "hello@hidaaya.store", got.ContactEmail)
}

func TestUpdateWithoutIDInserts(t *testing.T) {
	s, mock := newMockStore(t)
	name := "Hidaaya Modest Wear"
	rate := 5.0

	mock.ExpectExec("INSERT INTO store_settings").
		WithArgs(name, "NGN", rate, []byte(`{"paystack":true,"bank_transfer":false}`), "", "", "", now, now).
		WillReturnResult(sqlmock.NewResult(3, 1))

	got, err := s.Update(context.Background(), models.StoreSettingsPatch{StoreName: &name, TaxRate: &rate})
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ID)
	assert.Equal(t, name, got.StoreName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWithIDUpdatesInPlace(t *testing.T) {
	s, mock := newMockStore(t)
	email := "orders@hidaaya.store"

	mock.ExpectQuery(regexp.QuoteMeta("FROM store_settings WHERE id = ?")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(2, "Hidaaya Store", "NGN", 0.0, []byte(`{"paystack":true,"bank_transfer":false}`), "", "", "", now, now))
	mock.ExpectExec("UPDATE store_settings").
		WithArgs("Hidaaya Store", "NGN", 0.0, []byte(`{"paystack":true,"bank_transfer":false}`), email, "", "", now, int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := s.Update(context.Background(), models.StoreSettingsPatch{ID: 2, ContactEmail: &email})
	require.NoError(t, err)
	assert.Equal(t, email, got.ContactEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUnknownID(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("FROM store_settings WHERE id").WillReturnError(sql.ErrNoRows)

	_, err := s.Update(context.Background(), models.StoreSettingsPatch{ID: 9})
	assert.ErrorIs(t, err, ErrNotFound)
}
