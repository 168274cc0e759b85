package protocol

import "errors"

// Structured rejection reasons surfaced to clients. Handlers translate these
// into {success: false, error: <kind>} responses; anything else maps to
// "internal_error" and is logged server-side.
var (
	ErrWrongPhase       = errors.New("wrong_phase")
	ErrInsufficientGold = errors.New("insufficient_gold")
	ErrCellOccupied     = errors.New("cell_occupied")
	ErrNotBuildable     = errors.New("not_buildable")
	ErrUnknownType      = errors.New("unknown_type")
	ErrInvalidRoute     = errors.New("invalid_route")
	ErrNotInMatch       = errors.New("not_in_match")
)

// ErrorKind maps an error to its wire identifier.
func ErrorKind(err error) string {
	for _, known := range []error{
		ErrWrongPhase,
		ErrInsufficientGold,
		ErrCellOccupied,
		ErrNotBuildable,
		ErrUnknownType,
		ErrInvalidRoute,
		ErrNotInMatch,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "internal_error"
}
