// ABOUTME: HydroSystem record and part number format for registered devices
// ABOUTME: Part numbers encode a random prefix, the signing environment, and the system id

package dictionary

import (
	"fmt"
	"time"
)

// HydroSystem represents a registered hydroponic grow system (device).
type HydroSystem struct {
	ID          int        `json:"id"`
	UUID        string     `json:"uuid"`
	PartNumber  PartNumber `json:"partNumber"`
	Name        string     `json:"name"`
	OwnerUserID int        `json:"ownerUserId,omitempty"` // 0 until a user links the system
	InsertDate  time.Time  `json:"insertDate,omitempty"`
}

// PartNumber is the printed identifier on a hydro system:
// a 6-digit random prefix, the environment text, and the 6-digit system id.
type PartNumber string

// BuildPartNumber formats a part number for a new system registration.
func BuildPartNumber(random int, env Environment, systemID int) PartNumber {
	return PartNumber(fmt.Sprintf("%06d%s%06d", random, env, systemID))
}
