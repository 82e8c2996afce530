package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentica/dentica/internal/domain/identity"
	"github.com/dentica/dentica/internal/platform/apperr"
	"github.com/dentica/dentica/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const apptCols = `a.id, a.patient_id, a.dentist_id, a.scheduled_by, a.appointment_date,
	a.start_time, a.end_time, a.notes, a.notif_content, a.treatment_options, a.status,
	a.clinic_branch_id, a.detailed_notes, a.created_at, a.updated_at,
	p.first_name, p.last_name, p.email, p.role,
	d.first_name, d.last_name, d.email, d.role,
	s.first_name, s.last_name, s.email, s.role`

const apptJoins = `FROM appointment a
	LEFT JOIN app_user p ON p.id = a.patient_id
	LEFT JOIN app_user d ON d.id = a.dentist_id
	LEFT JOIN app_user s ON s.id = a.scheduled_by`

func (r *repoPG) scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var pFirst, pLast, pEmail, pRole *string
	var dFirst, dLast, dEmail, dRole *string
	var sFirst, sLast, sEmail, sRole *string
	err := row.Scan(&a.ID, &a.PatientID, &a.DentistID, &a.ScheduledBy, &a.AppointmentDate,
		&a.StartTime, &a.EndTime, &a.Notes, &a.NotifContent, &a.TreatmentOptions, &a.Status,
		&a.BranchID, &a.DetailedNotes, &a.CreatedAt, &a.UpdatedAt,
		&pFirst, &pLast, &pEmail, &pRole,
		&dFirst, &dLast, &dEmail, &dRole,
		&sFirst, &sLast, &sEmail, &sRole)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("appointment not found")
	}
	if err != nil {
		return nil, err
	}
	if pFirst != nil {
		a.Patient = &identity.Summary{ID: a.PatientID, FirstName: *pFirst, LastName: *pLast, Email: *pEmail, Role: *pRole}
	}
	if a.DentistID != nil && dFirst != nil {
		a.Dentist = &identity.Summary{ID: *a.DentistID, FirstName: *dFirst, LastName: *dLast, Email: *dEmail, Role: *dRole}
	}
	if sFirst != nil {
		a.ScheduledByUser = &identity.Summary{ID: a.ScheduledBy, FirstName: *sFirst, LastName: *sLast, Email: *sEmail, Role: *sRole}
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	if a.TreatmentOptions == nil {
		a.TreatmentOptions = []string{}
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (id, patient_id, dentist_id, scheduled_by, appointment_date,
			start_time, end_time, notes, notif_content, treatment_options, status,
			clinic_branch_id, detailed_notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		a.ID, a.PatientID, a.DentistID, a.ScheduledBy, a.AppointmentDate,
		a.StartTime, a.EndTime, a.Notes, a.NotifContent, a.TreatmentOptions, a.Status,
		a.BranchID, a.DetailedNotes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` `+apptJoins+` WHERE a.id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	if a.TreatmentOptions == nil {
		a.TreatmentOptions = []string{}
	}
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET patient_id=$2, dentist_id=$3, appointment_date=$4,
			start_time=$5, end_time=$6, notes=$7, notif_content=$8, treatment_options=$9,
			status=$10, clinic_branch_id=$11, detailed_notes=$12, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.PatientID, a.DentistID, a.AppointmentDate,
		a.StartTime, a.EndTime, a.Notes, a.NotifContent, a.TreatmentOptions,
		a.Status, a.BranchID, a.DetailedNotes)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.PatientID != nil {
		where = append(where, "a.patient_id = "+arg(*f.PatientID))
	}
	if f.DentistID != nil {
		where = append(where, "a.dentist_id = "+arg(*f.DentistID))
	}
	if f.StartDate != nil {
		where = append(where, "a.start_time >= "+arg(*f.StartDate))
	}
	if f.EndDate != nil {
		where = append(where, "a.start_time <= "+arg(*f.EndDate))
	}
	if f.Status != "" {
		where = append(where, "a.status = "+arg(f.Status))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment a WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + apptCols + ` ` + apptJoins + ` WHERE ` + cond +
		` ORDER BY a.start_time DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, nil
}

func (r *repoPG) ListByDentistAndDate(ctx context.Context, dentistID uuid.UUID, date time.Time) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+apptCols+` `+apptJoins+`
		WHERE a.dentist_id = $1 AND a.appointment_date = $2
		ORDER BY a.start_time`,
		dentistID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, nil
}
