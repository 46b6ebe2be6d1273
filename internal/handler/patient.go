package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/securehealth/record-exchange/internal/digest"
	"github.com/securehealth/record-exchange/internal/model"
	"github.com/securehealth/record-exchange/internal/repository"
)

// PatientHandler bundles dependencies for patient-facing endpoints:
// registration, login, lookup and the access-log audit view.
type PatientHandler struct {
	Patients *repository.PatientRepo
	Logs     *repository.AccessLogRepo
}

func NewPatientHandler(p *repository.PatientRepo, l *repository.AccessLogRepo) *PatientHandler {
	return &PatientHandler{Patients: p, Logs: l}
}

// ----- DTOs -----

type registerPatientReq struct {
	PatientName string  `json:"patientName"`
	Age         *int    `json:"age"`
	Gender      *string `json:"gender"`
	ContactNo   *string `json:"contactNo"`
	Address     *string `json:"address"`
	ProblemDesc string  `json:"problemDesc"`
	AccessData  string  `json:"accessData"` // space-delimited hospital names
}

type patientLoginReq struct {
	PatientID     string      `json:"patientId"`
	PatientNumber json.Number `json:"patientNumber"`
	ContactNo     string      `json:"contactNo"`
}

type patientLookupReq struct {
	PatientName string `json:"patientName"`
	ContactNo   string `json:"contactNo"`
}

type patientPart struct {
	ID            string  `json:"id"`
	PatientNumber uint64  `json:"patientNumber"`
	PatientName   string  `json:"patientName"`
	Age           *int    `json:"age"`
	Gender        *string `json:"gender"`
	ContactNo     *string `json:"contactNo"`
	Address       *string `json:"address"`
	ProblemDesc   string  `json:"problemDesc"`
	AccessData    string  `json:"accessData"`
	Revenue       float64 `json:"revenue"`
	Digest        string  `json:"digest"`
	ProfileDate   string  `json:"profileDate"`
	CreatedAt     string  `json:"createdAt"`
}

func toPatientPart(p *model.Patient) patientPart {
	return patientPart{
		ID:            p.ID,
		PatientNumber: p.PatientNumber,
		PatientName:   p.Name,
		Age:           p.Age,
		Gender:        p.Gender,
		ContactNo:     p.ContactNo,
		Address:       p.Address,
		ProblemDesc:   p.Condition,
		AccessData:    p.AccessData,
		Revenue:       p.Revenue(),
		Digest:        p.Digest,
		ProfileDate:   p.ProfileDate.UTC().Format(time.RFC3339),
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Register creates a patient profile, stamps it with its integrity
// digest and returns the assigned patient number.
func (h *PatientHandler) Register(c echo.Context) error {
	var req registerPatientReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.PatientName = strings.TrimSpace(req.PatientName)
	req.ProblemDesc = strings.TrimSpace(req.ProblemDesc)
	if req.PatientName == "" || req.ProblemDesc == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "patientName and problemDesc are required"})
	}
	if req.Age != nil && (*req.Age < 0 || *req.Age > 150) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "age out of range"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p := model.Patient{
		Name:       req.PatientName,
		Age:        req.Age,
		Gender:     req.Gender,
		ContactNo:  req.ContactNo,
		Address:    req.Address,
		Condition:  req.ProblemDesc,
		AccessData: strings.TrimSpace(req.AccessData),
	}
	if err := h.Patients.Create(ctx, &p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create patient failed"})
	}

	// The digest covers the generated ID, so it can only be stamped after
	// the insert.
	d := digest.Compute(digest.Snapshot{
		PatientID:   p.ID,
		PatientName: p.Name,
		Age:         p.Age,
		Condition:   p.Condition,
		ProfileDate: p.ProfileDate,
		AccessData:  p.AccessData,
		Gender:      p.Gender,
	})
	if err := h.Patients.UpdateDigest(ctx, p.ID, d); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stamp digest failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success":       true,
		"patientId":     p.ID,
		"patientNumber": p.PatientNumber,
		"digest":        d,
	})
}

// Login authenticates a patient either by patient number plus contact
// number, or by the opaque patient ID.
func (h *PatientHandler) Login(c echo.Context) error {
	var req patientLoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var (
		p   *model.Patient
		err error
	)
	switch {
	case req.PatientNumber != "" && strings.TrimSpace(req.ContactNo) != "":
		number, convErr := parsePatientNumber(req.PatientNumber)
		if convErr != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid patient number format"})
		}
		p, err = h.Patients.GetByNumberAndContact(ctx, number, req.ContactNo)
	case strings.TrimSpace(req.PatientID) != "":
		p, err = h.Patients.GetByID(ctx, strings.TrimSpace(req.PatientID))
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "provide either patientNumber and contactNo, or patientId",
		})
	}

	if err == repository.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "patient not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "patient": toPatientPart(p)})
}

// Lookup recovers a patient's ID from an exact name and contact match.
func (h *PatientHandler) Lookup(c echo.Context) error {
	var req patientLookupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.PatientName) == "" || strings.TrimSpace(req.ContactNo) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "patientName and contactNo are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Patients.GetByNameAndContact(ctx, req.PatientName, req.ContactNo)
	if err == repository.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no patient found with the provided information"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":       true,
		"patientId":     p.ID,
		"patientNumber": p.PatientNumber,
		"patientName":   p.Name,
	})
}

type accessLogPart struct {
	ID          string `json:"id"`
	PatientID   string `json:"patientId"`
	HospitalID  string `json:"hospitalId"`
	AccessTime  string `json:"accessTime"`
	Allowed     bool   `json:"allowed"`
	RewardGiven bool   `json:"rewardGiven"`
	SearchQuery string `json:"searchQuery"`
}

// AccessLogs returns a patient's audit trail, most recent first.
func (h *PatientHandler) AccessLogs(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "patient id is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	logs, err := h.Logs.ListByPatient(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fetch access logs failed"})
	}

	out := make([]accessLogPart, 0, len(logs))
	for _, l := range logs {
		out = append(out, accessLogPart{
			ID:          l.ID,
			PatientID:   l.PatientID,
			HospitalID:  l.HospitalID,
			AccessTime:  l.AccessTime.UTC().Format(time.RFC3339),
			Allowed:     l.Allowed,
			RewardGiven: l.RewardGiven,
			SearchQuery: l.SearchQuery,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// parsePatientNumber accepts the number either as a JSON number or a
// numeric string.
func parsePatientNumber(n json.Number) (uint64, error) {
	v, err := n.Int64()
	if err != nil || v <= 0 {
		if err == nil {
			err = echo.ErrBadRequest
		}
		return 0, err
	}
	return uint64(v), nil
}
