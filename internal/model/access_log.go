package model

import "time"

// AccessLog records one hospital's attempt to view one patient during a
// search. Rows are written for allowed and denied attempts alike, are
// never mutated or deleted, and are not deduplicated: the same pair can
// produce many rows per day.
//
// Fields:
//  ID          – opaque UUID primary key.
//  PatientID   – patient that was considered.
//  HospitalID  – hospital that ran the search.
//  AccessTime  – when the attempt happened.
//  Allowed     – whether the hospital held an access grant.
//  RewardGiven – whether this attempt credited the daily reward.
//  SearchQuery – raw query string as submitted.
type AccessLog struct {
	ID          string    // access_logs.id
	PatientID   string    // access_logs.patient_id
	HospitalID  string    // access_logs.hospital_id
	AccessTime  time.Time // access_logs.access_time
	Allowed     bool      // access_logs.allowed
	RewardGiven bool      // access_logs.reward_given
	SearchQuery string    // access_logs.search_query
}
