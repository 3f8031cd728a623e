// README: Coverage event: immutable record of one match attempt and its outcome.
package coverage

import (
	"time"

	"fieldmatch/internal/types"
)

// Outcome is the tri-state accept/decline result of a match attempt.
type Outcome string

const (
	OutcomeUnknown  Outcome = "unknown"
	OutcomeAccepted Outcome = "accepted"
	OutcomeDeclined Outcome = "declined"
)

// Event is append-only: after creation only WasAccepted/DeclineReason may
// change, exactly once, via RecordOutcome.
type Event struct {
	ID                types.ID
	ServiceAreaID     types.ID
	JobID             *types.ID
	Location          types.Point
	DistanceKm        float64
	TravelTimeMinutes *float64
	TravelCharge      types.Money
	WasAccepted       Outcome
	DeclineReason     *string
	CreatedAt         time.Time
}

// Attempt is the write command for a new event.
type Attempt struct {
	ServiceAreaID     types.ID
	JobID             *types.ID
	Location          types.Point
	DistanceKm        float64
	TravelTimeMinutes *float64
	TravelCharge      types.Money
}
