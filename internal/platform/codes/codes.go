// Package codes generates the human-readable entity codes used across the
// API (BIL20240612...). Uniqueness comes from the millisecond timestamp plus
// a random suffix; no database sequence is involved.
package codes

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	Patient      = "PAT"
	Doctor       = "DOC"
	Nurse        = "NRS"
	Department   = "DEP"
	User         = "USR"
	Appointment  = "APT"
	Admission    = "ADM"
	Bed          = "BED"
	Bill         = "BIL"
	LabTest      = "LAB"
	Medicine     = "MED"
	Prescription = "PRE"
)

// Codes land in UNIQUE columns, so the suffix has to keep burst creation
// within one millisecond collision-free in practice.
const suffixMax = 10000000

// New returns a code of the form <prefix><unix-millis><7-digit-random>.
func New(prefix string) string {
	n, err := rand.Int(rand.Reader, big.NewInt(suffixMax))
	if err != nil {
		// crypto/rand failing means the system is broken; fall back to the
		// clock so code generation never blocks a request.
		n = big.NewInt(time.Now().UnixNano() % suffixMax)
	}
	return fmt.Sprintf("%s%d%07d", prefix, time.Now().UnixMilli(), n.Int64())
}
