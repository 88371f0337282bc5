package auth

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPGStoreCreateUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	created := time.Now().UTC()
	mock.ExpectQuery("insert into users").
		WithArgs("Ada", "ada@example.com", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), created))

	store := NewPGStore(db)
	u := &User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID != 1 {
		t.Fatalf("expected id 1, got %d", u.ID)
	}
	if !u.CreatedAt.Equal(created) {
		t.Fatalf("unexpected created_at: %v", u.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStoreCreateUserDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("insert into users").
		WithArgs("Eve", "ada@example.com", "hash").
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	store := NewPGStore(db)
	u := &User{Name: "Eve", Email: "ada@example.com", PasswordHash: "hash"}
	if err := store.CreateUser(context.Background(), u); err != ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestPGStoreFindUserByEmailNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select id, name, email, password_hash, created_at from users where email").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at"}))

	store := NewPGStore(db)
	if _, err := store.FindUserByEmail(context.Background(), "nobody@example.com"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
