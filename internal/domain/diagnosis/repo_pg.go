package diagnosis

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/namaste/internal/platform/db"
	"github.com/ehr/namaste/pkg/pagination"
)

type storePG struct{ pool *pgxpool.Pool }

func NewStorePG(pool *pgxpool.Pool) Store { return &storePG{pool: pool} }

func (s *storePG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, s.pool)
}

func (s *storePG) Insert(ctx context.Context, r *Record) error {
	err := s.conn(ctx).QueryRow(ctx, `
		INSERT INTO problem_list (id, patient_id, doctor_id, hospital_id,
			namaste_code, namaste_name, icd_code, icd_name, disease_name_hindi,
			severity, treatment_approach, notes, status, diagnosis_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING created_at`,
		r.ID, r.PatientID, r.ClinicianID, r.FacilityID,
		r.NamasteCode, r.NamasteName, r.ICDCode, r.ICDName, nullIfEmpty(r.VernacularName),
		string(r.Severity), r.TreatmentApproach, nullIfEmpty(r.Notes), r.Status, r.DiagnosisDate,
	).Scan(&r.CreatedAt)
	if err != nil {
		return insertError(err)
	}
	return nil
}

const (
	foreignKeyViolation = "23503"
	patientFKey         = "problem_list_patient_id_fkey"
)

// insertError maps foreign key violations to the Store's sentinel errors.
func insertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		if pgErr.ConstraintName == patientFKey {
			return fmt.Errorf("insert problem_list: %w", ErrUnknownPatient)
		}
		return fmt.Errorf("insert problem_list: %s: %w", pgErr.ConstraintName, ErrUnknownReference)
	}
	return fmt.Errorf("insert problem_list: %w", err)
}

const recordCols = `p.id, p.patient_id, p.doctor_id, COALESCE(u.name, ''), p.hospital_id,
	p.namaste_code, p.namaste_name, p.icd_code, p.icd_name, COALESCE(p.disease_name_hindi, ''),
	p.severity, p.treatment_approach, COALESCE(p.notes, ''), p.status, p.diagnosis_date, p.created_at`

// ListByPatient returns the patient's problem list, newest diagnosis first.
func (s *storePG) ListByPatient(ctx context.Context, patientID uuid.UUID, page pagination.Params) ([]*Record, int, error) {
	var total int
	if err := s.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM problem_list WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count problem_list: %w", err)
	}

	rows, err := s.conn(ctx).Query(ctx, `
		SELECT `+recordCols+`
		FROM problem_list p
		LEFT JOIN users u ON u.id = p.doctor_id
		WHERE p.patient_id = $1
		ORDER BY p.diagnosis_date DESC, p.created_at DESC
		LIMIT $2 OFFSET $3`, patientID, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list problem_list: %w", err)
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate problem_list: %w", err)
	}
	return records, total, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	var severity string
	err := row.Scan(&r.ID, &r.PatientID, &r.ClinicianID, &r.ClinicianName, &r.FacilityID,
		&r.NamasteCode, &r.NamasteName, &r.ICDCode, &r.ICDName, &r.VernacularName,
		&severity, &r.TreatmentApproach, &r.Notes, &r.Status, &r.DiagnosisDate, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan problem_list row: %w", err)
	}
	r.Severity = Severity(severity)
	return &r, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
