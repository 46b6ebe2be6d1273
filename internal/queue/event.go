// Package queue defines message payloads exchanged over the message broker.
package queue

// AccessAuditEvent is published once per patient considered during a
// hospital search, mirroring the access_logs row. Downstream consumers
// can archive, alert or notify patients without touching the primary
// database.
type AccessAuditEvent struct {
	LogID        string `json:"log_id"`
	PatientID    string `json:"patient_id"`
	HospitalID   string `json:"hospital_id"`
	HospitalName string `json:"hospital_name"`
	Allowed      bool   `json:"allowed"`
	RewardGiven  bool   `json:"reward_given"`
	SearchQuery  string `json:"search_query"`
	AccessTime   string `json:"access_time"`
}

// AuditQueueName is the durable queue carrying access audit events.
const AuditQueueName = "access.audit"
