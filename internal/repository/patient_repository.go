package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/securehealth/record-exchange/internal/model"
)

// PatientRepo provides persistence primitives for patient profiles.
// Patient IDs are UUID strings generated at insert time; the sequential
// patient number comes from an AUTO_INCREMENT unique column so two
// registrations can never receive the same number.
type PatientRepo struct{ DB *sql.DB }

func NewPatientRepo(db *sql.DB) *PatientRepo { return &PatientRepo{DB: db} }

const patientColumns = `id, patient_number, patient_name, age, gender, contact_no, address,
	problem_desc, access_data, revenue_cents, record_digest, profile_date, created_at, updated_at`

// Create inserts a patient and populates the generated ID, patient
// number, profile date and timestamps on the passed record. The digest is
// expected to be computed by the caller after the ID is known and stored
// via UpdateDigest.
func (r *PatientRepo) Create(ctx context.Context, p *model.Patient) error {
	p.ID = uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO patients (id, patient_name, age, gender, contact_no, address,
			problem_desc, access_data, revenue_cents)
		 VALUES (?,?,?,?,?,?,?,?,0)`,
		p.ID, p.Name, p.Age, p.Gender, p.ContactNo, p.Address, p.Condition, p.AccessData)
	if err != nil {
		return err
	}
	// Read back the row to pick up the assigned patient_number and the
	// database-side timestamps.
	fresh, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *fresh
	return nil
}

// UpdateDigest stores the integrity digest for a patient.
func (r *PatientRepo) UpdateDigest(ctx context.Context, id, digest string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE patients SET record_digest=? WHERE id=?`, digest, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID fetches a patient by UUID. Returns ErrNotFound when absent.
func (r *PatientRepo) GetByID(ctx context.Context, id string) (*model.Patient, error) {
	return r.one(ctx, `WHERE id=?`, id)
}

// GetByNumberAndContact fetches a patient whose number and contact both
// match; this is the credential pair used for patient login.
func (r *PatientRepo) GetByNumberAndContact(ctx context.Context, number uint64, contact string) (*model.Patient, error) {
	return r.one(ctx, `WHERE patient_number=? AND contact_no=?`, number, strings.TrimSpace(contact))
}

// GetByNameAndContact fetches a patient by exact name and contact match,
// used by the lookup endpoint when a patient forgot their ID.
func (r *PatientRepo) GetByNameAndContact(ctx context.Context, name, contact string) (*model.Patient, error) {
	return r.one(ctx, `WHERE patient_name=? AND contact_no=?`, strings.TrimSpace(name), strings.TrimSpace(contact))
}

// SearchByCondition returns the candidate set for a search: every patient
// whose condition text contains the query as a case-insensitive
// substring. This is the sole database-level filter; relevance ranking
// happens on the returned set.
func (r *PatientRepo) SearchByCondition(ctx context.Context, query string) ([]model.Patient, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+patientColumns+` FROM patients
		 WHERE LOWER(problem_desc) LIKE ?
		 ORDER BY patient_number ASC`,
		"%"+strings.ToLower(query)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Patient, 0, 16)
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PatientRepo) one(ctx context.Context, where string, args ...any) (*model.Patient, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+patientColumns+` FROM patients `+where+` LIMIT 1`, args...)
	p, err := scanPatient(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface{ Scan(dest ...any) error }

func scanPatient(s scanner) (*model.Patient, error) {
	var (
		p          model.Patient
		age        sql.NullInt64
		gender     sql.NullString
		contact    sql.NullString
		address    sql.NullString
		digest     sql.NullString
		accessData sql.NullString
	)
	err := s.Scan(&p.ID, &p.PatientNumber, &p.Name, &age, &gender, &contact, &address,
		&p.Condition, &accessData, &p.RevenueCents, &digest, &p.ProfileDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if age.Valid {
		v := int(age.Int64)
		p.Age = &v
	}
	if gender.Valid {
		v := gender.String
		p.Gender = &v
	}
	if contact.Valid {
		v := contact.String
		p.ContactNo = &v
	}
	if address.Valid {
		v := address.String
		p.Address = &v
	}
	p.Digest = digest.String
	p.AccessData = accessData.String
	return &p, nil
}
