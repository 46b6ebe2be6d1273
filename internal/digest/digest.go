// Package digest computes the integrity stamp attached to every patient
// profile. The stamp is a plain SHA-256 over a canonical serialization of
// the profile snapshot; there is no chain and no consensus, only a
// deterministic one-way hash that lets anyone recompute and compare.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Prefix distinguishes record digests from other hex strings.
const Prefix = "0x"

// Snapshot is the fixed-shape input to Compute. Field order matters: the
// canonical serialization follows the struct layout, so reordering fields
// changes every digest.
type Snapshot struct {
	PatientID   string    `json:"patientId"`
	PatientName string    `json:"patientName"`
	Age         *int      `json:"age"`
	Condition   string    `json:"problemDesc"`
	ProfileDate time.Time `json:"-"`
	AccessData  string    `json:"accessData"`
	Gender      *string   `json:"gender"`
}

// canonical is the wire form that actually gets hashed. The profile date
// appears twice on purpose, as an ISO-8601 string and as unix
// milliseconds, matching the stamp format recorded for existing profiles.
type canonical struct {
	PatientID   string  `json:"patientId"`
	PatientName string  `json:"patientName"`
	Age         *int    `json:"age"`
	Condition   string  `json:"problemDesc"`
	ProfileDate string  `json:"profileDate"`
	AccessData  string  `json:"accessData"`
	Gender      *string `json:"gender"`
	Timestamp   int64   `json:"timestamp"`
}

// Compute returns the deterministic digest for a snapshot: SHA-256 of the
// canonical JSON form, lowercase hex, prefixed with "0x". It is a pure
// function; identical logical input always yields an identical string.
func Compute(s Snapshot) string {
	c := canonical{
		PatientID:   s.PatientID,
		PatientName: s.PatientName,
		Age:         s.Age,
		Condition:   s.Condition,
		ProfileDate: s.ProfileDate.UTC().Format("2006-01-02T15:04:05.000Z"),
		AccessData:  s.AccessData,
		Gender:      s.Gender,
		Timestamp:   s.ProfileDate.UnixMilli(),
	}
	// json.Marshal of a struct emits fields in declaration order, which
	// keeps the serialization deterministic without a custom encoder.
	body, _ := json.Marshal(c)
	sum := sha256.Sum256(body)
	return Prefix + hex.EncodeToString(sum[:])
}

// Verify recomputes the digest for the snapshot and compares it with the
// supplied value.
func Verify(s Snapshot, d string) bool {
	return Compute(s) == d
}
