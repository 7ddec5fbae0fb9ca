package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"notivo/models"
)

// Users persists user credentials. Passwords are bcrypt-hashed before they
// hit the database; the cleartext never leaves Create/Authenticate.
type Users struct {
	db *sql.DB
}

func NewUsers(db *sql.DB) *Users {
	return &Users{db: db}
}

// Create registers a new user. The only failure mode besides a storage error
// is ErrDuplicateUsername. Usernames are case-sensitive as stored.
func (u *Users) Create(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	res, err := u.db.ExecContext(ctx, "INSERT INTO users (username, password) VALUES (?, ?)", username, hash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading user id: %w", err)
	}

	return &models.User{ID: int(id), Username: username}, nil
}

// Authenticate returns the user matching the given credentials, or
// ErrInvalidCredentials. An unknown username and a wrong password are
// indistinguishable to the caller.
func (u *Users) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := u.db.QueryRowContext(ctx, "SELECT id, username, password FROM users WHERE username = ?", username).
		Scan(&user.ID, &user.Username, &user.Password)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	user.Password = ""
	return &user, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
