package maintenance

import "errors"

var (
	// ErrUnitNotFound is returned when an operation references an unknown unit id.
	ErrUnitNotFound = errors.New("maintenance: unit not found")
	// ErrIndexOutOfRange is returned when a positional delete misses.
	ErrIndexOutOfRange = errors.New("maintenance: index out of range")
	// ErrEmptyDescription is returned when an intervention is created without a description.
	ErrEmptyDescription = errors.New("maintenance: empty description")
	// ErrNoUnits is returned when a bulk operation receives an empty id list.
	ErrNoUnits = errors.New("maintenance: no units selected")
	// ErrMalformedSnapshot is returned when an import payload cannot be parsed or validated.
	ErrMalformedSnapshot = errors.New("maintenance: malformed snapshot")
)
