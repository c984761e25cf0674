// Package users manages storefront accounts and back-office roles.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/01moynul/hidaaya-golang/internal/models"
)

var (
	ErrNotFound           = errors.New("users: user not found")
	ErrEmailTaken         = errors.New("users: email already registered")
	ErrInvalidCredentials = errors.New("users: invalid email or password")
	ErrInvalidRole        = errors.New("users: invalid role")
)

// mysqlDuplicateEntry is MySQL's ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

const userColumns = `id, email, password_hash, first_name, last_name, phone_number, role, created_at, updated_at`

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	PhoneNumber string `json:"phoneNumber"`
}

type Store struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db, Now: time.Now}
}

// Register creates a customer account.
func (s *Store) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	// 1. --- Hash the Password ---
	var password models.Password
	if err := password.Set(in.Password); err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	// 2. --- Build the User ---
	now := s.Now()
	user := models.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: password.Hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PhoneNumber:  in.PhoneNumber,
		Role:         models.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// 3. --- Save ---
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO profiles (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.PhoneNumber, string(user.Role), now, now,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// Authenticate returns the user whose email and password match.
func (s *Store) Authenticate(ctx context.Context, email, plaintext string) (models.User, error) {
	user, err := s.getBy(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	password := models.Password{Hash: user.PasswordHash}
	ok, err := password.Matches(plaintext)
	if err != nil {
		return models.User{}, fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.User, error) {
	return s.getBy(ctx, "id", id)
}

// List returns every account, newest first.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM profiles ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateRole changes a user's role.
func (s *Store) UpdateRole(ctx context.Context, id string, role models.Role) (models.User, error) {
	if !role.Valid() {
		return models.User{}, ErrInvalidRole
	}
	result, err := s.DB.ExecContext(ctx, "UPDATE profiles SET role = ?, updated_at = ? WHERE id = ?", string(role), s.Now(), id)
	if err != nil {
		return models.User{}, fmt.Errorf("update role: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return models.User{}, ErrNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *Store) getBy(ctx context.Context, column, value string) (models.User, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM profiles WHERE "+column+" = ?", value)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (models.User, error) {
	var u models.User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.PhoneNumber, &role, &u.CreatedAt, &u.UpdatedAt)
	u.Role = models.Role(role)
	return u, err
}
