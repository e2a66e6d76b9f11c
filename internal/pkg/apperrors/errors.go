package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("invalid token")
	ErrInvalidFormat = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Directory errors
var (
	ErrLecturerNotFound  = errors.New("lecturer not found")
	ErrTopicNotFound     = errors.New("topic not found")
	ErrCommitteeNotFound = errors.New("committee not found")
	ErrTagNotFound       = errors.New("tag not found")

	ErrCommitteeAlreadyExists = errors.New("committee with this code already exists")
)

// Committee roster errors
var (
	ErrInsufficientQuorum = errors.New("committee does not meet quorum")
	ErrMissingChair       = errors.New("committee has no chair")
	ErrChairNotEligible   = errors.New("chair does not hold a qualifying academic rank")
	ErrQuorumWouldBreak   = errors.New("removal would break committee quorum")
	ErrDuplicateMember    = errors.New("lecturer is already a committee member")
	ErrInvalidTransition  = errors.New("committee status transition not allowed")
)

// Scheduling errors
var (
	ErrNotEligible      = errors.New("topic is not eligible for this committee")
	ErrInvalidTimeRange = errors.New("start time must be before end time")
	ErrSlotOverlap      = errors.New("time slot overlaps an existing assignment")
	ErrAlreadyAssigned  = errors.New("topic already has an assignment")
)

// Quota errors
var (
	ErrQuotaExceeded = errors.New("lecturer defense quota exceeded")
)

// Cancellation guard
var (
	ErrHasActiveAssignments = errors.New("committee has active assignments")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewValidationError creates a new custom error wrapping a domain rule
// violation, carrying the specific invariant that failed. Rejected
// operations must name the rule ("committee COM001 has 3 members, needs 4"),
// never a generic failure.
func NewValidationError(err error, message string) error {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
