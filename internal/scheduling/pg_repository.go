package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.PasswordHash,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	return &p, nil
}

func scanNutritionist(row pgx.Row) (*Nutritionist, error) {
	var n Nutritionist

	err := row.Scan(
		&n.ID,
		&n.Name,
		&n.Email,
		&n.PasswordHash,
		&n.CRF,
		&n.AcceptsRemote,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNutritionistNotFound
		}
		return nil, err
	}

	return &n, nil
}

func scanSchedule(row pgx.Row) (*Schedule, error) {
	var s Schedule

	err := row.Scan(
		&s.ID,
		&s.NutritionistID,
		&s.StartTime,
		&s.DurationMinutes,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	return &s, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.NutritionistID,
		&a.PatientID,
		&a.LocationID,
		&a.StartTime,
		&a.DurationMinutes,
		&a.IsRemote,
		&a.Status,
		&a.RemindedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

const appointmentColumns = `
	a.id, a.nutritionist_id, a.patient_id, a.location_id, a.start_time,
	a.duration_minutes, a.is_remote, a.status, a.reminded_at,
	a.created_at, a.updated_at`

const appointmentDetailQuery = `
	SELECT` + appointmentColumns + `,
		p.id, p.name, p.email,
		n.id, n.name, n.email,
		COALESCE(l.address, '')
	FROM appointments a
	JOIN patients p ON p.id = a.patient_id
	JOIN nutritionists n ON n.id = a.nutritionist_id
	LEFT JOIN locations l ON l.id = a.location_id`

func scanAppointmentDetail(row pgx.Row) (*AppointmentDetail, error) {
	var d AppointmentDetail
	var patient, nutritionist Participant

	err := row.Scan(
		&d.ID,
		&d.NutritionistID,
		&d.PatientID,
		&d.LocationID,
		&d.StartTime,
		&d.DurationMinutes,
		&d.IsRemote,
		&d.Status,
		&d.RemindedAt,
		&d.CreatedAt,
		&d.UpdatedAt,
		&patient.ID,
		&patient.Name,
		&patient.Email,
		&nutritionist.ID,
		&nutritionist.Name,
		&nutritionist.Email,
		&d.Address,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	d.Patient = &patient
	d.Nutritionist = &nutritionist
	return &d, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Identities

func (r *PgRepository) CreatePatient(ctx context.Context, p *Patient) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patients (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
	`, p.ID, p.Name, p.Email, p.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *PgRepository) CreateNutritionist(ctx context.Context, n *Nutritionist) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO nutritionists (id, name, email, password_hash, crf, accepts_remote, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
	`, n.ID, n.Name, n.Email, n.PasswordHash, n.CRF, n.AcceptsRemote)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) GetPatientByEmail(ctx context.Context, email string) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM patients
		WHERE email = $1
	`, email)
	return scanPatient(row)
}

func (r *PgRepository) GetNutritionistByID(ctx context.Context, id uuid.UUID) (*Nutritionist, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, crf, accepts_remote, created_at, updated_at
		FROM nutritionists
		WHERE id = $1
	`, id)
	return scanNutritionist(row)
}

func (r *PgRepository) GetNutritionistByEmail(ctx context.Context, email string) (*Nutritionist, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, crf, accepts_remote, created_at, updated_at
		FROM nutritionists
		WHERE email = $1
	`, email)
	return scanNutritionist(row)
}

func (r *PgRepository) UpdateNutritionist(ctx context.Context, n *Nutritionist) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE nutritionists
		SET name = $2, crf = $3, accepts_remote = $4, updated_at = now()
		WHERE id = $1
	`, n.ID, n.Name, n.CRF, n.AcceptsRemote)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNutritionistNotFound
	}
	return nil
}

// Locations

func (r *PgRepository) ListLocations(ctx context.Context, nutritionistID uuid.UUID) ([]Location, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, nutritionist_id, ibge_state, ibge_state_id, ibge_city, address, phone1, phone2, phone3
		FROM locations
		WHERE nutritionist_id = $1
		ORDER BY address
	`, nutritionistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.NutritionistID, &l.IBGEState, &l.IBGEStateID, &l.IBGECity, &l.Address, &l.Phone1, &l.Phone2, &l.Phone3); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PgRepository) GetLocationByID(ctx context.Context, id uuid.UUID) (*Location, error) {
	var l Location
	err := r.pool.QueryRow(ctx, `
		SELECT id, nutritionist_id, ibge_state, ibge_state_id, ibge_city, address, phone1, phone2, phone3
		FROM locations
		WHERE id = $1
	`, id).Scan(&l.ID, &l.NutritionistID, &l.IBGEState, &l.IBGEStateID, &l.IBGECity, &l.Address, &l.Phone1, &l.Phone2, &l.Phone3)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return &l, nil
}

// Schedules

func (r *PgRepository) CreateSchedule(ctx context.Context, s *Schedule) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO schedules (id, nutritionist_id, start_time, duration_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
	`, s.ID, s.NutritionistID, s.StartTime, s.DurationMinutes)
	return err
}

func (r *PgRepository) GetScheduleByID(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, nutritionist_id, start_time, duration_minutes, created_at, updated_at
		FROM schedules
		WHERE id = $1
	`, id)
	return scanSchedule(row)
}

func (r *PgRepository) DeleteSchedule(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

func (r *PgRepository) ListSchedules(ctx context.Context, nutritionistID uuid.UUID, from, to time.Time) ([]Schedule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, nutritionist_id, start_time, duration_minutes, created_at, updated_at
		FROM schedules
		WHERE nutritionist_id = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time
	`, nutritionistID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Schedule
	for rows.Next() {
		var s Schedule
		if err := rows.Scan(&s.ID, &s.NutritionistID, &s.StartTime, &s.DurationMinutes, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// BookSchedule deletes the slot and inserts the appointment in one
// transaction so the 1:1 conversion is atomic.
func (r *PgRepository) BookSchedule(ctx context.Context, scheduleID uuid.UUID, appt *Appointment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, scheduleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrScheduleNotFound
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO appointments (id, nutritionist_id, patient_id, location_id, start_time,
			duration_minutes, is_remote, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
	`, appt.ID, appt.NutritionistID, appt.PatientID, appt.LocationID, appt.StartTime,
		appt.DurationMinutes, appt.IsRemote, appt.Status)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Appointments

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT`+appointmentColumns+`
		FROM appointments a
		WHERE a.id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) GetAppointmentDetail(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	row := r.pool.QueryRow(ctx, appointmentDetailQuery+` WHERE a.id = $1`, id)
	return scanAppointmentDetail(row)
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments a
		SET status = $3, updated_at = now()
		WHERE a.id = $1 AND a.status = $2
		RETURNING`+appointmentColumns,
		id, from, to)
	return scanAppointment(row)
}

func (r *PgRepository) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) queryAppointmentDetails(ctx context.Context, query string, args ...any) ([]AppointmentDetail, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AppointmentDetail
	for rows.Next() {
		d, err := scanAppointmentDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *PgRepository) ListAppointmentsByNutritionist(ctx context.Context, nutritionistID uuid.UUID, limit, offset int) ([]AppointmentDetail, int64, error) {
	details, err := r.queryAppointmentDetails(ctx,
		appointmentDetailQuery+`
		WHERE a.nutritionist_id = $1
		ORDER BY a.start_time
		LIMIT $2 OFFSET $3`,
		nutritionistID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	err = r.pool.QueryRow(ctx,
		`SELECT count(*) FROM appointments WHERE nutritionist_id = $1`,
		nutritionistID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

func (r *PgRepository) ListFutureAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, after time.Time, limit, offset int) ([]AppointmentDetail, int64, error) {
	details, err := r.queryAppointmentDetails(ctx,
		appointmentDetailQuery+`
		WHERE a.patient_id = $1 AND a.start_time >= $2
		ORDER BY a.start_time
		LIMIT $3 OFFSET $4`,
		patientID, after, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	err = r.pool.QueryRow(ctx,
		`SELECT count(*) FROM appointments WHERE patient_id = $1 AND start_time >= $2`,
		patientID, after).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// Reminder worker

func (r *PgRepository) FindUpcomingUnreminded(ctx context.Context, from, to time.Time) ([]AppointmentDetail, error) {
	return r.queryAppointmentDetails(ctx,
		appointmentDetailQuery+`
		WHERE a.start_time >= $1 AND a.start_time < $2
		  AND a.reminded_at IS NULL
		  AND a.status IN ($3, $4, $5)
		ORDER BY a.start_time`,
		from, to, StatusAgendado, StatusEsperandoConfirmacao, StatusConfirmado)
}

func (r *PgRepository) MarkReminded(ctx context.Context, appointmentID uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments SET reminded_at = $2, updated_at = now() WHERE id = $1
	`, appointmentID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

// Roster and search

func (r *PgRepository) AddToRoster(ctx context.Context, nutritionistID, patientID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO nutritionist_patients (nutritionist_id, patient_id, added_at)
		VALUES ($1, $2, now())
	`, nutritionistID, patientID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyOnRoster
		}
		return err
	}
	return nil
}

const rosterQuery = `
	SELECT p.id, p.name, p.email, np.added_at,
		max(a.start_time), count(a.id)
	FROM nutritionist_patients np
	JOIN patients p ON p.id = np.patient_id
	LEFT JOIN appointments a ON a.patient_id = p.id AND a.nutritionist_id = np.nutritionist_id`

func (r *PgRepository) scanRoster(rows pgx.Rows) ([]RosterEntry, error) {
	defer rows.Close()

	var out []RosterEntry
	for rows.Next() {
		var e RosterEntry
		if err := rows.Scan(&e.Patient.ID, &e.Patient.Name, &e.Patient.Email, &e.AddedAt, &e.LastAppointment, &e.AppointmentCount); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PgRepository) ListRoster(ctx context.Context, nutritionistID uuid.UUID, limit, offset int) ([]RosterEntry, int64, error) {
	rows, err := r.pool.Query(ctx, rosterQuery+`
		WHERE np.nutritionist_id = $1
		GROUP BY p.id, p.name, p.email, np.added_at
		ORDER BY p.name
		LIMIT $2 OFFSET $3
	`, nutritionistID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	entries, err := r.scanRoster(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	err = r.pool.QueryRow(ctx,
		`SELECT count(*) FROM nutritionist_patients WHERE nutritionist_id = $1`,
		nutritionistID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *PgRepository) SearchScheduledPatients(ctx context.Context, nutritionistID uuid.UUID, name string, limit, offset int) ([]RosterEntry, int64, error) {
	pattern := "%" + name + "%"

	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name, p.email, min(a.created_at),
			max(a.start_time), count(a.id)
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.nutritionist_id = $1 AND p.name ILIKE $2
		GROUP BY p.id, p.name, p.email
		ORDER BY p.name
		LIMIT $3 OFFSET $4
	`, nutritionistID, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	entries, err := r.scanRoster(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	err = r.pool.QueryRow(ctx, `
		SELECT count(DISTINCT a.patient_id)
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.nutritionist_id = $1 AND p.name ILIKE $2
	`, nutritionistID, pattern).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *PgRepository) SearchPatientsByName(ctx context.Context, name string, limit int) ([]Participant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email
		FROM patients
		WHERE name ILIKE $1
		ORDER BY name
		LIMIT $2
	`, "%"+name+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Participant
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.Email); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PgRepository) SearchNutritionists(ctx context.Context, params NutritionistSearchParams, limit, offset int) ([]NutritionistSearchResult, int64, error) {
	where := `WHERE s.start_time > now()`
	args := []any{}
	i := 1

	add := func(clause string, val any) {
		where += fmt.Sprintf(" AND "+clause, i)
		args = append(args, val)
		i++
	}

	if params.Name != "" {
		add("n.name ILIKE $%d", "%"+params.Name+"%")
	}
	if params.IBGEState != "" {
		add("l.ibge_state = $%d", params.IBGEState)
	}
	if params.IBGECity != "" {
		add("l.ibge_city = $%d", params.IBGECity)
	}
	if params.AcceptsRemote != nil {
		add("n.accepts_remote = $%d", *params.AcceptsRemote)
	}

	base := `
		FROM nutritionists n
		JOIN schedules s ON s.nutritionist_id = n.id
		LEFT JOIN locations l ON l.nutritionist_id = n.id
		` + where

	query := `
		SELECT n.id, n.name,
			COALESCE(min(l.ibge_state), ''), COALESCE(min(l.ibge_city), ''),
			n.accepts_remote, count(DISTINCT s.id)
		` + base + `
		GROUP BY n.id, n.name, n.accepts_remote
		ORDER BY n.name
		LIMIT $` + fmt.Sprint(i) + ` OFFSET $` + fmt.Sprint(i+1)

	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []NutritionistSearchResult
	for rows.Next() {
		var res NutritionistSearchResult
		if err := rows.Scan(&res.ID, &res.Name, &res.IBGEState, &res.IBGECity, &res.AcceptsRemote, &res.OpenSchedules); err != nil {
			return nil, 0, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	err = r.pool.QueryRow(ctx, `SELECT count(DISTINCT n.id) `+base, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Event logging

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_log (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`, ev.EventType, ev.AppointmentID, ev.Payload, ev.CreatedAt)
	return err
}
