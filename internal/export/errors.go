package export

import "errors"

// Sentinel errors returned by Config transitions. Callers match them with
// errors.Is; messages carry the patterns core.MapError keys on.
var (
	ErrUnknownDataset     = errors.New("unknown dataset")
	ErrDatasetDisabled    = errors.New("dataset is disabled")
	ErrUnknownField       = errors.New("unknown field")
	ErrOperatorNotAllowed = errors.New("operator not allowed for field type")
	ErrInvalidFilterValue = errors.New("invalid filter value")
	ErrInvalidDateRange   = errors.New("invalid date range")
	ErrInvalidOption      = errors.New("invalid export option")
	ErrUnknownAction      = errors.New("unknown action")
	ErrPIIUnacknowledged  = errors.New("personal data not acknowledged")
	ErrNoColumns          = errors.New("no columns selected")
)
