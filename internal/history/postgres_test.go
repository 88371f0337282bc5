package history

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func recordColumns() []string {
	return []string{"id", "user_id", "method", "url", "headers", "body", "status_code", "response_time_ms", "created_at"}
}

func TestPGStoreInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	created := time.Now().UTC()
	mock.ExpectQuery("insert into api_requests").
		WithArgs(int64(1), "GET", "https://example.com", []byte(`{}`), nil, 200, 120).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(5), created))

	store := NewPGStore(db)
	rec := &Record{
		UserID:         1,
		Method:         "GET",
		URL:            "https://example.com",
		Headers:        json.RawMessage(`{}`),
		StatusCode:     200,
		ResponseTimeMs: 120,
	}
	if err := store.Insert(context.Background(), rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if rec.ID != 5 {
		t.Fatalf("expected id 5, got %d", rec.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStoreListScansNullBody(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	created := time.Now().UTC()
	rows := sqlmock.NewRows(recordColumns()).
		AddRow(int64(2), int64(1), "POST", "https://b.example.com", []byte(`{"A":"1"}`), []byte(`{"x":2}`), 201, 40, created).
		AddRow(int64(1), int64(1), "GET", "https://a.example.com", []byte(`{}`), nil, 200, 15, created.Add(-time.Minute))
	mock.ExpectQuery("select id, user_id, method, url, headers, body, status_code, response_time_ms, created_at").
		WithArgs(int64(1), ListLimit).
		WillReturnRows(rows)

	store := NewPGStore(db)
	items, err := store.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[1].Body != nil {
		t.Fatalf("expected nil body, got %s", items[1].Body)
	}
	if string(items[0].Body) != `{"x":2}` {
		t.Fatalf("unexpected body: %s", items[0].Body)
	}
}

func TestPGStoreUpdateNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("update api_requests").
		WithArgs("GET", "https://example.com", []byte(`{}`), nil, int64(9), int64(2)).
		WillReturnRows(sqlmock.NewRows(recordColumns()))

	store := NewPGStore(db)
	_, err = store.Update(context.Background(), 9, 2, Mutation{
		Method:  "GET",
		URL:     "https://example.com",
		Headers: json.RawMessage(`{}`),
	})
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGStoreDeleteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("delete from api_requests").
		WithArgs(int64(9), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewPGStore(db)
	if err := store.Delete(context.Background(), 9, 2); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
