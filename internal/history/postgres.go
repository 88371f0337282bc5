package history

import (
	"context"
	"database/sql"
	"errors"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL. Headers and bodies live in
// jsonb columns; headers are never null, bodies may be.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Insert(ctx context.Context, rec *Record) error {
	return s.db.QueryRowContext(ctx, `
		insert into api_requests(user_id, method, url, headers, body, status_code, response_time_ms)
		values ($1,$2,$3,$4,$5,$6,$7)
		returning id, created_at
	`, rec.UserID, rec.Method, rec.URL, []byte(rec.Headers), nullableJSON(rec.Body), rec.StatusCode, rec.ResponseTimeMs).
		Scan(&rec.ID, &rec.CreatedAt)
}

func (s *PGStore) List(ctx context.Context, ownerID int64) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, user_id, method, url, headers, body, status_code, response_time_ms, created_at
		from api_requests
		where user_id = $1
		order by created_at desc, id desc
		limit $2
	`, ownerID, ListLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, *rec)
	}
	return res, rows.Err()
}

func (s *PGStore) Update(ctx context.Context, id, ownerID int64, mut Mutation) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		update api_requests
		set method = $1, url = $2, headers = $3, body = $4
		where id = $5 and user_id = $6
		returning id, user_id, method, url, headers, body, status_code, response_time_ms, created_at
	`, mut.Method, mut.URL, []byte(mut.Headers), nullableJSON(mut.Body), id, ownerID)

	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *PGStore) Delete(ctx context.Context, id, ownerID int64) error {
	res, err := s.db.ExecContext(ctx,
		`delete from api_requests where id = $1 and user_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRecord(scan func(dest ...any) error) (*Record, error) {
	var (
		rec     Record
		headers []byte
		body    []byte
	)
	if err := scan(&rec.ID, &rec.UserID, &rec.Method, &rec.URL, &headers, &body,
		&rec.StatusCode, &rec.ResponseTimeMs, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Headers = headers
	if body != nil {
		rec.Body = body
	}
	return &rec, nil
}

// nullableJSON maps an absent payload to SQL NULL instead of the empty string.
func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
