package availability

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentica/dentica/internal/platform/apperr"
	"github.com/dentica/dentica/internal/platform/db"
)

// =========== Weekly Repository ===========

type weeklyRepoPG struct{ pool *pgxpool.Pool }

func NewWeeklyRepoPG(pool *pgxpool.Pool) WeeklyRepository { return &weeklyRepoPG{pool: pool} }

func (r *weeklyRepoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const weeklyCols = `id, dentist_id, day_of_week, standard_start_time, standard_end_time,
	break_start_time, break_end_time, clinic_branch_id, created_at, updated_at`

func (r *weeklyRepoPG) scanWeekly(row pgx.Row) (*Weekly, error) {
	var w Weekly
	err := row.Scan(&w.ID, &w.DentistID, &w.DayOfWeek, &w.StandardStartTime, &w.StandardEndTime,
		&w.BreakStartTime, &w.BreakEndTime, &w.BranchID, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("weekly availability not found")
	}
	return &w, err
}

func (r *weeklyRepoPG) Create(ctx context.Context, w *Weekly) error {
	w.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO weekly_availability (id, dentist_id, day_of_week, standard_start_time,
			standard_end_time, break_start_time, break_end_time, clinic_branch_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		w.ID, w.DentistID, w.DayOfWeek, w.StandardStartTime,
		w.StandardEndTime, w.BreakStartTime, w.BreakEndTime, w.BranchID)
	return err
}

func (r *weeklyRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Weekly, error) {
	return r.scanWeekly(r.conn(ctx).QueryRow(ctx, `SELECT `+weeklyCols+` FROM weekly_availability WHERE id = $1`, id))
}

func (r *weeklyRepoPG) Update(ctx context.Context, w *Weekly) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE weekly_availability SET day_of_week=$2, standard_start_time=$3,
			standard_end_time=$4, break_start_time=$5, break_end_time=$6,
			clinic_branch_id=$7, updated_at=NOW()
		WHERE id = $1`,
		w.ID, w.DayOfWeek, w.StandardStartTime, w.StandardEndTime,
		w.BreakStartTime, w.BreakEndTime, w.BranchID)
	return err
}

func (r *weeklyRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM weekly_availability WHERE id = $1`, id)
	return err
}

func (r *weeklyRepoPG) ListByDentist(ctx context.Context, dentistID uuid.UUID, limit, offset int) ([]*Weekly, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM weekly_availability WHERE dentist_id = $1`, dentistID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+weeklyCols+` FROM weekly_availability
		WHERE dentist_id = $1 ORDER BY day_of_week, standard_start_time LIMIT $2 OFFSET $3`,
		dentistID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Weekly
	for rows.Next() {
		w, err := r.scanWeekly(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, w)
	}
	return items, total, nil
}

func (r *weeklyRepoPG) ListForDay(ctx context.Context, dentistID uuid.UUID, day DayOfWeek) ([]*Weekly, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+weeklyCols+` FROM weekly_availability
		WHERE dentist_id = $1 AND day_of_week = $2 ORDER BY standard_start_time`,
		dentistID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Weekly
	for rows.Next() {
		w, err := r.scanWeekly(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	return items, nil
}

func (r *weeklyRepoPG) ListForDayAndBranch(ctx context.Context, dentistID uuid.UUID, day DayOfWeek, branchID uuid.UUID) ([]*Weekly, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+weeklyCols+` FROM weekly_availability
		WHERE dentist_id = $1 AND day_of_week = $2 AND clinic_branch_id = $3
		ORDER BY standard_start_time`,
		dentistID, day, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Weekly
	for rows.Next() {
		w, err := r.scanWeekly(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	return items, nil
}

// =========== Specific Repository ===========

type specificRepoPG struct{ pool *pgxpool.Pool }

func NewSpecificRepoPG(pool *pgxpool.Pool) SpecificRepository { return &specificRepoPG{pool: pool} }

func (r *specificRepoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const specificCols = `id, dentist_id, start_datetime, end_datetime, clinic_branch_id, created_at, updated_at`

func (r *specificRepoPG) scanSpecific(row pgx.Row) (*Specific, error) {
	var s Specific
	err := row.Scan(&s.ID, &s.DentistID, &s.StartDateTime, &s.EndDateTime,
		&s.BranchID, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("specific availability not found")
	}
	return &s, err
}

func (r *specificRepoPG) Create(ctx context.Context, s *Specific) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO specific_availability (id, dentist_id, start_datetime, end_datetime, clinic_branch_id)
		VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.DentistID, s.StartDateTime, s.EndDateTime, s.BranchID)
	return err
}

func (r *specificRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Specific, error) {
	return r.scanSpecific(r.conn(ctx).QueryRow(ctx, `SELECT `+specificCols+` FROM specific_availability WHERE id = $1`, id))
}

func (r *specificRepoPG) Update(ctx context.Context, s *Specific) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE specific_availability SET start_datetime=$2, end_datetime=$3,
			clinic_branch_id=$4, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.StartDateTime, s.EndDateTime, s.BranchID)
	return err
}

func (r *specificRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM specific_availability WHERE id = $1`, id)
	return err
}

func (r *specificRepoPG) ListByDentist(ctx context.Context, dentistID uuid.UUID, limit, offset int) ([]*Specific, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM specific_availability WHERE dentist_id = $1`, dentistID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+specificCols+` FROM specific_availability
		WHERE dentist_id = $1 ORDER BY start_datetime DESC LIMIT $2 OFFSET $3`,
		dentistID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Specific
	for rows.Next() {
		s, err := r.scanSpecific(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, nil
}

func (r *specificRepoPG) ListOverlapping(ctx context.Context, dentistID uuid.UUID, from, to time.Time) ([]*Specific, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+specificCols+` FROM specific_availability
		WHERE dentist_id = $1 AND start_datetime < $3 AND end_datetime > $2
		ORDER BY start_datetime`,
		dentistID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Specific
	for rows.Next() {
		s, err := r.scanSpecific(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, nil
}

// =========== Leave Repository ===========

type leaveRepoPG struct{ pool *pgxpool.Pool }

func NewLeaveRepoPG(pool *pgxpool.Pool) LeaveRepository { return &leaveRepoPG{pool: pool} }

func (r *leaveRepoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const leaveCols = `id, dentist_id, start_datetime, end_datetime, reason, created_at, updated_at`

func (r *leaveRepoPG) scanLeave(row pgx.Row) (*Leave, error) {
	var l Leave
	err := row.Scan(&l.ID, &l.DentistID, &l.StartDateTime, &l.EndDateTime,
		&l.Reason, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("leave not found")
	}
	return &l, err
}

func (r *leaveRepoPG) Create(ctx context.Context, l *Leave) error {
	l.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO dentist_leave (id, dentist_id, start_datetime, end_datetime, reason)
		VALUES ($1,$2,$3,$4,$5)`,
		l.ID, l.DentistID, l.StartDateTime, l.EndDateTime, l.Reason)
	return err
}

func (r *leaveRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Leave, error) {
	return r.scanLeave(r.conn(ctx).QueryRow(ctx, `SELECT `+leaveCols+` FROM dentist_leave WHERE id = $1`, id))
}

func (r *leaveRepoPG) Update(ctx context.Context, l *Leave) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE dentist_leave SET start_datetime=$2, end_datetime=$3, reason=$4, updated_at=NOW()
		WHERE id = $1`,
		l.ID, l.StartDateTime, l.EndDateTime, l.Reason)
	return err
}

func (r *leaveRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM dentist_leave WHERE id = $1`, id)
	return err
}

func (r *leaveRepoPG) ListByDentist(ctx context.Context, dentistID uuid.UUID, limit, offset int) ([]*Leave, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM dentist_leave WHERE dentist_id = $1`, dentistID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+leaveCols+` FROM dentist_leave
		WHERE dentist_id = $1 ORDER BY start_datetime DESC LIMIT $2 OFFSET $3`,
		dentistID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Leave
	for rows.Next() {
		l, err := r.scanLeave(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, l)
	}
	return items, total, nil
}

func (r *leaveRepoPG) ListOverlapping(ctx context.Context, dentistID uuid.UUID, from, to time.Time) ([]*Leave, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+leaveCols+` FROM dentist_leave
		WHERE dentist_id = $1 AND start_datetime < $3 AND end_datetime > $2
		ORDER BY start_datetime`,
		dentistID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Leave
	for rows.Next() {
		l, err := r.scanLeave(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, nil
}
