package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/headcount/internal/login/domain"
	"github.com/aussiebroadwan/headcount/internal/login/store"
)

const credentialColumns = `id, username, is_admin, password, created_at, updated_at, created_by, updated_by`

// credentialRow maps 1:1 to the login table columns.
type credentialRow struct {
	ID        int64          `db:"id"`
	Username  sql.NullString `db:"username"`
	IsAdmin   sql.NullBool   `db:"is_admin"`
	Password  sql.NullString `db:"password"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt sql.NullTime   `db:"updated_at"`
	CreatedBy sql.NullInt64  `db:"created_by"`
	UpdatedBy sql.NullInt64  `db:"updated_by"`
}

func credentialRowFromDomain(c domain.Credential) credentialRow {
	return credentialRow{
		ID:        c.ID,
		Username:  mapStringNull(c.Username),
		IsAdmin:   sql.NullBool{Bool: c.IsAdmin, Valid: true},
		Password:  mapStringNull(c.PasswordHash),
		CreatedBy: mapOptionalInt64(c.CreatedBy),
		UpdatedBy: mapOptionalInt64(c.UpdatedBy),
	}
}

func (r credentialRow) toDomain() domain.Credential {
	c := domain.Credential{
		ID:           r.ID,
		Username:     r.Username.String,
		IsAdmin:      r.IsAdmin.Valid && r.IsAdmin.Bool,
		PasswordHash: r.Password.String,
		CreatedAt:    r.CreatedAt.UTC(),
		CreatedBy:    mapNullInt64Ptr(r.CreatedBy),
		UpdatedBy:    mapNullInt64Ptr(r.UpdatedBy),
	}
	if r.UpdatedAt.Valid {
		c.UpdatedAt = r.UpdatedAt.Time.UTC()
	}
	return c
}

type credentialsRepo struct {
	ext sqlx.ExtContext
	d   *Dialect
	now func() time.Time
}

func (r *credentialsRepo) Create(ctx context.Context, c domain.Credential) (int64, error) {
	now := r.now()
	row := credentialRowFromDomain(c)
	row.CreatedAt = now
	row.UpdatedAt = sql.NullTime{Time: now, Valid: true}

	query, args, err := sqlx.Named(`INSERT INTO login
		(username, is_admin, password, created_at, updated_at, created_by, updated_by)
		VALUES (:username, :is_admin, :password, :created_at, :updated_at, :created_by, :updated_by)`, row)
	if err != nil {
		return 0, err
	}
	query = r.ext.Rebind(query)

	if r.d.ReturningID {
		var id int64
		if err := r.ext.QueryRowxContext(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, r.d.classify(err)
		}
		return id, nil
	}

	res, err := r.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, r.d.classify(err)
	}
	return res.LastInsertId()
}

func (r *credentialsRepo) Insert(ctx context.Context, c domain.Credential) error {
	if c.ID <= 0 {
		return fmt.Errorf("sqlstore: explicit insert needs a positive id, got %d", c.ID)
	}

	now := r.now()
	row := credentialRowFromDomain(c)
	row.CreatedAt = now
	row.UpdatedAt = sql.NullTime{Time: now, Valid: true}

	query, args, err := sqlx.Named(`INSERT INTO login
		(id, username, is_admin, password, created_at, updated_at, created_by, updated_by)
		VALUES (:id, :username, :is_admin, :password, :created_at, :updated_at, :created_by, :updated_by)`, row)
	if err != nil {
		return err
	}

	if _, err := r.ext.ExecContext(ctx, r.ext.Rebind(query), args...); err != nil {
		return r.d.classify(err)
	}

	if r.d.SyncIdentity != "" {
		if _, err := r.ext.ExecContext(ctx, r.d.SyncIdentity); err != nil {
			return fmt.Errorf("sqlstore: sync identity: %w", err)
		}
	}
	return nil
}

func (r *credentialsRepo) GetByID(ctx context.Context, id int64) (domain.Credential, error) {
	var row credentialRow
	query := r.ext.Rebind(`SELECT ` + credentialColumns + ` FROM login WHERE id = ?`)
	if err := sqlx.GetContext(ctx, r.ext, &row, query, id); err != nil {
		return domain.Credential{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

func (r *credentialsRepo) GetByUsername(ctx context.Context, username string) (domain.Credential, error) {
	var row credentialRow
	query := r.ext.Rebind(`SELECT ` + credentialColumns + ` FROM login WHERE username = ?`)
	if err := sqlx.GetContext(ctx, r.ext, &row, query, username); err != nil {
		return domain.Credential{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

func (r *credentialsRepo) List(ctx context.Context, limit, offset int) ([]domain.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM login ORDER BY id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, max(offset, 0))
	}

	var rows []credentialRow
	if err := sqlx.SelectContext(ctx, r.ext, &rows, r.ext.Rebind(query), args...); err != nil {
		return nil, err
	}

	out := make([]domain.Credential, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

func (r *credentialsRepo) Update(ctx context.Context, id int64, u domain.CredentialUpdate) error {
	args := map[string]any{
		"id":         id,
		"updated_at": r.now(),
	}

	var sets []string
	if u.Username != nil {
		sets = append(sets, "username = :username")
		args["username"] = mapStringNull(*u.Username)
	}
	if u.IsAdmin != nil {
		sets = append(sets, "is_admin = :is_admin")
		args["is_admin"] = *u.IsAdmin
	}
	if u.PasswordHash != nil {
		sets = append(sets, "password = :password")
		args["password"] = mapStringNull(*u.PasswordHash)
	}
	sets = append(sets, "updated_by = :updated_by", "updated_at = :updated_at")
	args["updated_by"] = mapOptionalInt64(u.UpdatedBy)

	query, bound, err := sqlx.Named(`UPDATE login SET `+strings.Join(sets, ", ")+` WHERE id = :id`, args)
	if err != nil {
		return err
	}

	res, err := r.ext.ExecContext(ctx, r.ext.Rebind(query), bound...)
	if err != nil {
		return r.d.classify(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *credentialsRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	query := r.ext.Rebind(`SELECT COUNT(*) FROM login WHERE id = ?`)
	if err := sqlx.GetContext(ctx, r.ext, &n, query, id); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *credentialsRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.ext, &n, `SELECT COUNT(*) FROM login`); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *credentialsRepo) IsEmpty(ctx context.Context) (bool, error) {
	count, err := r.Count(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func mapOptionalInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{Valid: false}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func mapNullInt64Ptr(n sql.NullInt64) *int64 {
	if n.Valid {
		val := n.Int64
		return &val
	}
	return nil
}
