package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentica/dentica/internal/platform/apperr"
	"github.com/dentica/dentica/internal/platform/db"
)

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository { return &userRepoPG{pool: pool} }

func (r *userRepoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const userCols = `id, email, first_name, last_name, role, phone_mobile, active, created_at, updated_at`

func (r *userRepoPG) scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role,
		&u.PhoneMobile, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	return &u, err
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO app_user (id, email, first_name, last_name, role, phone_mobile, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.Email, u.FirstName, u.LastName, u.Role, u.PhoneMobile, u.Active)
	return err
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM app_user WHERE id = $1`, id))
}

func (r *userRepoPG) Update(ctx context.Context, u *User) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE app_user SET email=$2, first_name=$3, last_name=$4, role=$5,
			phone_mobile=$6, active=$7, updated_at=NOW()
		WHERE id = $1`,
		u.ID, u.Email, u.FirstName, u.LastName, u.Role, u.PhoneMobile, u.Active)
	return err
}

func (r *userRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM app_user WHERE id = $1`, id)
	return err
}

func (r *userRepoPG) ListByRole(ctx context.Context, role string, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM app_user WHERE role = $1`, role).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+userCols+` FROM app_user WHERE role = $1 ORDER BY last_name, first_name LIMIT $2 OFFSET $3`, role, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, nil
}

func (r *userRepoPG) Exists(ctx context.Context, id uuid.UUID, role string) (bool, error) {
	var exists bool
	var err error
	if role == "" {
		err = r.conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM app_user WHERE id = $1)`, id).Scan(&exists)
	} else {
		err = r.conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM app_user WHERE id = $1 AND role = $2)`, id, role).Scan(&exists)
	}
	return exists, err
}

type branchRepoPG struct{ pool *pgxpool.Pool }

func NewBranchRepoPG(pool *pgxpool.Pool) BranchRepository { return &branchRepoPG{pool: pool} }

func (r *branchRepoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const branchCols = `id, name, address, phone, created_at, updated_at`

func (r *branchRepoPG) scanBranch(row pgx.Row) (*Branch, error) {
	var b Branch
	err := row.Scan(&b.ID, &b.Name, &b.Address, &b.Phone, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("clinic branch not found")
	}
	return &b, err
}

func (r *branchRepoPG) Create(ctx context.Context, b *Branch) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO clinic_branch (id, name, address, phone)
		VALUES ($1,$2,$3,$4)`,
		b.ID, b.Name, b.Address, b.Phone)
	return err
}

func (r *branchRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Branch, error) {
	return r.scanBranch(r.conn(ctx).QueryRow(ctx, `SELECT `+branchCols+` FROM clinic_branch WHERE id = $1`, id))
}

func (r *branchRepoPG) Update(ctx context.Context, b *Branch) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE clinic_branch SET name=$2, address=$3, phone=$4, updated_at=NOW()
		WHERE id = $1`,
		b.ID, b.Name, b.Address, b.Phone)
	return err
}

func (r *branchRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM clinic_branch WHERE id = $1`, id)
	return err
}

func (r *branchRepoPG) List(ctx context.Context, limit, offset int) ([]*Branch, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM clinic_branch`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+branchCols+` FROM clinic_branch ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Branch
	for rows.Next() {
		b, err := r.scanBranch(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, nil
}

func (r *branchRepoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM clinic_branch WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
