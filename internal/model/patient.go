package model

import "time"

// Patient represents a registered medical profile as stored in the
// `patients` table. Optional demographic fields use pointers so that
// "not specified" survives the round trip to the database; defaults are
// applied at presentation time only.
//
// Fields:
//  ID            – opaque UUID primary key.
//  PatientNumber – human-friendly sequential number (unique, assigned at creation).
//  Name          – full patient name.
//  Age           – age in years (nullable).
//  Gender        – free-form gender string (nullable).
//  ContactNo     – contact phone number (nullable).
//  Address       – postal address (nullable).
//  Condition     – free-text description of the medical condition.
//  AccessData    – space-delimited set of hospital names granted access.
//  RevenueCents  – accrued reward balance in cents; never negative.
//  Digest        – integrity digest computed over the profile snapshot.
//  ProfileDate   – instant the profile was stamped; input to the digest.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Patient struct {
	ID            string    // patients.id
	PatientNumber uint64    // patients.patient_number
	Name          string    // patients.patient_name
	Age           *int      // patients.age (nullable)
	Gender        *string   // patients.gender (nullable)
	ContactNo     *string   // patients.contact_no (nullable)
	Address       *string   // patients.address (nullable)
	Condition     string    // patients.problem_desc
	AccessData    string    // patients.access_data
	RevenueCents  int64     // patients.revenue_cents
	Digest        string    // patients.record_digest
	ProfileDate   time.Time // patients.profile_date
	CreatedAt     time.Time // patients.created_at
	UpdatedAt     time.Time // patients.updated_at
}

// Revenue returns the balance as a decimal amount (two fractional digits).
func (p *Patient) Revenue() float64 {
	return float64(p.RevenueCents) / 100.0
}
