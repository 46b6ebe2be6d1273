package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/securehealth/record-exchange/internal/model"
)

// HospitalRepo provides persistence for hospital accounts. Hospitals are
// created at bootstrap and read-only afterwards in the search flow.
type HospitalRepo struct{ DB *sql.DB }

func NewHospitalRepo(db *sql.DB) *HospitalRepo { return &HospitalRepo{DB: db} }

// Create inserts a hospital and returns its generated UUID.
func (r *HospitalRepo) Create(ctx context.Context, name, username, passwordHash string) (string, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO hospitals (id, name, username, password_hash) VALUES (?,?,?,?)",
		id, strings.TrimSpace(name), strings.TrimSpace(username), passwordHash)
	if err != nil {
		if isDuplicate(err) {
			return "", ErrNameExists
		}
		return "", err
	}
	return id, nil
}

// GetByUsername fetches a hospital by its login username.
func (r *HospitalRepo) GetByUsername(ctx context.Context, username string) (*model.Hospital, error) {
	var h model.Hospital
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, username, password_hash, created_at FROM hospitals WHERE username=? LIMIT 1",
		strings.TrimSpace(username)).
		Scan(&h.ID, &h.Name, &h.Username, &h.PasswordHash, &h.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// GetByID fetches a hospital by UUID.
func (r *HospitalRepo) GetByID(ctx context.Context, id string) (*model.Hospital, error) {
	var h model.Hospital
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, username, password_hash, created_at FROM hospitals WHERE id=? LIMIT 1",
		id).Scan(&h.ID, &h.Name, &h.Username, &h.PasswordHash, &h.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}
