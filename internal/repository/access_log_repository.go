package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/securehealth/record-exchange/internal/model"
)

// AccessLogRepo persists the immutable audit trail of search attempts.
// Rows are only ever inserted; there is no update or delete path.
type AccessLogRepo struct{ DB *sql.DB }

func NewAccessLogRepo(db *sql.DB) *AccessLogRepo { return &AccessLogRepo{DB: db} }

// Create inserts an access log row and populates its generated ID and
// access time on the passed record.
func (r *AccessLogRepo) Create(ctx context.Context, l *model.AccessLog) error {
	l.ID = uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO access_logs (id, patient_id, hospital_id, allowed, reward_given, search_query)
		 VALUES (?,?,?,?,?,?)`,
		l.ID, l.PatientID, l.HospitalID, l.Allowed, l.RewardGiven, l.SearchQuery)
	if err != nil {
		return err
	}
	return r.DB.QueryRowContext(ctx,
		"SELECT access_time FROM access_logs WHERE id=?", l.ID).Scan(&l.AccessTime)
}

// ListByPatient returns every access log for a patient, most recent
// first. Patients use this to audit who looked at their record.
func (r *AccessLogRepo) ListByPatient(ctx context.Context, patientID string) ([]model.AccessLog, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, patient_id, hospital_id, access_time, allowed, reward_given, search_query
		 FROM access_logs WHERE patient_id=? ORDER BY access_time DESC`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.AccessLog, 0, 32)
	for rows.Next() {
		var (
			l     model.AccessLog
			query sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.PatientID, &l.HospitalID, &l.AccessTime,
			&l.Allowed, &l.RewardGiven, &query); err != nil {
			return nil, err
		}
		l.SearchQuery = query.String
		out = append(out, l)
	}
	return out, rows.Err()
}

// HasRewardSince reports whether an access log row with reward_given
// exists for the (hospital, patient) pair at or after the given instant.
func (r *AccessLogRepo) HasRewardSince(ctx context.Context, hospitalID, patientID string, since time.Time) (bool, error) {
	var id string
	err := r.DB.QueryRowContext(ctx,
		`SELECT id FROM access_logs
		 WHERE hospital_id=? AND patient_id=? AND reward_given=1 AND access_time >= ?
		 ORDER BY access_time DESC LIMIT 1`,
		hospitalID, patientID, since).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
