// Package settings reads and writes the store-wide settings row.
//
// The table uses snake_case column names and stores payment method flags as a
// snake_case JSON document; the rest of the service only ever sees
// models.StoreSettings. This package is the only place that translates
// between the two.
package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/01moynul/hidaaya-golang/internal/models"
)

// ErrNotFound is returned by Update when the patch names an id that has no row.
var ErrNotFound = errors.New("settings: row not found")

const settingsColumns = `id, store_name, currency, tax_rate, payment_methods, contact_email, contact_phone, address, created_at, updated_at`

// paymentMethodsRow is the stored shape of the payment_methods column.
type paymentMethodsRow struct {
	Paystack     bool `json:"paystack"`
	BankTransfer bool `json:"bank_transfer"`
}

type Store struct {
	DB     *sql.DB
	Logger *zap.Logger
	Now    func() time.Time
}

func NewStore(db *sql.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{DB: db, Logger: logger, Now: time.Now}
}

// Get returns the most recent settings row, or nil when none exists.
func (s *Store) Get(ctx context.Context) (*models.StoreSettings, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT "+settingsColumns+" FROM store_settings ORDER BY id DESC LIMIT 1")
	out, err := scanSettings(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return out, nil
}

// GetOrDefault never fails: a missing row or a read error yields the defaults.
func (s *Store) GetOrDefault(ctx context.Context) models.StoreSettings {
	current, err := s.Get(ctx)
	if err != nil {
		s.Logger.Warn("settings read failed, using defaults", zap.Error(err))
		return models.DefaultStoreSettings()
	}
	if current == nil {
		return models.DefaultStoreSettings()
	}
	return *current
}

// Update saves patch. With an id the row is updated in place; without one the
// patch is laid over the defaults and inserted as a new row.
func (s *Store) Update(ctx context.Context, patch models.StoreSettingsPatch) (*models.StoreSettings, error) {
	now := s.Now()

	if patch.ID != 0 {
		current, err := s.getByID(ctx, patch.ID)
		if err != nil {
			return nil, err
		}
		next := patch.Apply(*current)

		methods, err := encodePaymentMethods(next.PaymentMethods)
		if err != nil {
			return nil, err
		}
		_, err = s.DB.ExecContext(ctx, `
			UPDATE store_settings
			SET store_name = ?, currency = ?, tax_rate = ?, payment_methods = ?,
			    contact_email = ?, contact_phone = ?, address = ?, updated_at = ?
			WHERE id = ?`,
			next.StoreName, next.Currency, next.TaxRate, methods,
			next.ContactEmail, next.ContactPhone, next.Address, now, next.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("update settings: %w", err)
		}
		next.UpdatedAt = &now
		return &next, nil
	}

	next := patch.Apply(models.DefaultStoreSettings())
	methods, err := encodePaymentMethods(next.PaymentMethods)
	if err != nil {
		return nil, err
	}
	result, err := s.DB.ExecContext(ctx, `
		INSERT INTO store_settings (store_name, currency, tax_rate, payment_methods, contact_email, contact_phone, address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		next.StoreName, next.Currency, next.TaxRate, methods,
		next.ContactEmail, next.ContactPhone, next.Address, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert settings: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		next.ID = id
	}
	next.CreatedAt = &now
	next.UpdatedAt = &now
	return &next, nil
}

func (s *Store) getByID(ctx context.Context, id int64) (*models.StoreSettings, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT "+settingsColumns+" FROM store_settings WHERE id = ?", id)
	out, err := scanSettings(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get settings %d: %w", id, err)
	}
	return out, nil
}

func scanSettings(row *sql.Row) (*models.StoreSettings, error) {
	var (
		out       models.StoreSettings
		methods   []byte
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(&out.ID, &out.StoreName, &out.Currency, &out.TaxRate, &methods,
		&out.ContactEmail, &out.ContactPhone, &out.Address, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if out.PaymentMethods, err = decodePaymentMethods(methods); err != nil {
		return nil, err
	}
	out.CreatedAt = &createdAt
	out.UpdatedAt = &updatedAt
	return &out, nil
}

func decodePaymentMethods(raw []byte) (models.PaymentMethods, error) {
	if len(raw) == 0 {
		return models.DefaultStoreSettings().PaymentMethods, nil
	}
	var row paymentMethodsRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return models.PaymentMethods{}, fmt.Errorf("decode payment_methods: %w", err)
	}
	return models.PaymentMethods{Paystack: row.Paystack, BankTransfer: row.BankTransfer}, nil
}

func encodePaymentMethods(m models.PaymentMethods) ([]byte, error) {
	raw, err := json.Marshal(paymentMethodsRow{Paystack: m.Paystack, BankTransfer: m.BankTransfer})
	if err != nil {
		return nil, fmt.Errorf("encode payment_methods: %w", err)
	}
	return raw, nil
}
