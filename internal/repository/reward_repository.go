package repository

import (
	"context"
	"database/sql"
	"time"
)

// RewardRepo enforces the one-reward-per-day rule. Eligibility and the
// revenue increment are a single transaction gated by the unique key on
// reward_grants (hospital_id, patient_id, reward_day): two concurrent
// searches racing on the same pair and day collide on the insert, so at
// most one of them ever credits the patient.
type RewardRepo struct{ DB *sql.DB }

func NewRewardRepo(db *sql.DB) *RewardRepo { return &RewardRepo{DB: db} }

// GrantIfEligible credits amountCents to the patient unless a reward was
// already granted to this (hospital, patient) pair on dayStart's day. It
// returns the patient's revenue in cents after the call and whether this
// call performed the credit. No mutation happens on the ineligible path.
func (r *RewardRepo) GrantIfEligible(ctx context.Context, patientID, hospitalID string, dayStart time.Time, amountCents int64) (int64, bool, error) {
	day := dayStart.Format("2006-01-02")

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO reward_grants (hospital_id, patient_id, reward_day) VALUES (?,?,?)",
		hospitalID, patientID, day)
	if err != nil {
		_ = tx.Rollback()
		if isDuplicate(err) {
			// Already rewarded today; report the current balance untouched.
			var cents int64
			if err := r.DB.QueryRowContext(ctx,
				"SELECT revenue_cents FROM patients WHERE id=?", patientID).Scan(&cents); err != nil {
				return 0, false, err
			}
			return cents, false, nil
		}
		return 0, false, err
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE patients SET revenue_cents = revenue_cents + ?, updated_at = NOW() WHERE id=?",
		amountCents, patientID)
	if err != nil {
		_ = tx.Rollback()
		return 0, false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_ = tx.Rollback()
		return 0, false, ErrNotFound
	}

	var cents int64
	if err := tx.QueryRowContext(ctx,
		"SELECT revenue_cents FROM patients WHERE id=?", patientID).Scan(&cents); err != nil {
		_ = tx.Rollback()
		return 0, false, err
	}

	if err := tx.Commit(); err != nil {
		return 0, false, err
	}
	return cents, true, nil
}
