package entity

import (
	"encoding/base64"
	"time"
)

// Entity is a registered account bound to a verified phone number. Records
// are created exactly once and never mutated.
type Entity struct {
	EID          string
	MSISDNHash   string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Registration carries the confirm-phase input. The password arrives
// pre-hashed and is stored as-is.
type Registration struct {
	MSISDN   string
	Code     string
	Username string
	Password string
}

// DeriveEID produces the stable entity identifier for a username and phone
// number pair. The same inputs always yield the same EID.
func DeriveEID(username, msisdn string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + msisdn))
}
