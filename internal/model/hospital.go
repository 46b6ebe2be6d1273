package model

import "time"

// Hospital models a row in the `hospitals` table. The display name is
// what patients put into their access grants, while the username is used
// for login; the two must stay in sync per hospital for access checks to
// resolve.
//
// Fields:
//  ID           – opaque UUID primary key.
//  Name         – unique display name, matched against patient access grants.
//  Username     – unique login name.
//  PasswordHash – bcrypt hashed password.
//  CreatedAt    – creation timestamp.
type Hospital struct {
	ID           string    // hospitals.id
	Name         string    // hospitals.name
	Username     string    // hospitals.username
	PasswordHash string    // hospitals.password_hash
	CreatedAt    time.Time // hospitals.created_at
}
