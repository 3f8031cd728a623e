// README: Planned job sequence for a contractor's day. No ordering algorithm
// lives here; stops are stored in the sequence the caller provides.
package route

import (
	"time"

	"fieldmatch/internal/types"
)

type Stop struct {
	Seq      int         `json:"seq"`
	JobID    *types.ID   `json:"job_id,omitempty"`
	Position types.Point `json:"position"`
}

type Route struct {
	ID           types.ID  `json:"id"`
	ContractorID types.ID  `json:"contractor_id"`
	Date         time.Time `json:"date"`
	Stops        []Stop    `json:"stops"`
	CreatedAt    time.Time `json:"created_at"`
}
