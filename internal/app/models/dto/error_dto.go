package dto

// ErrorCode represents standardized error codes
type ErrorCode string

// Standard error codes for the application
const (
	// Authentication errors
	ErrorCodeInvalidToken ErrorCode = "AUTH_001"
	ErrorCodeExpiredToken ErrorCode = "AUTH_002"
	ErrorCodeUnauthorized ErrorCode = "AUTH_003"
	ErrorCodeForbidden    ErrorCode = "AUTH_004"

	// Resource errors
	ErrorCodeResourceNotFound      ErrorCode = "RES_001"
	ErrorCodeResourceAlreadyExists ErrorCode = "RES_002"

	// Validation errors
	ErrorCodeValidationFailed ErrorCode = "VAL_001"

	// Committee roster errors
	ErrorCodeInsufficientQuorum ErrorCode = "COM_001"
	ErrorCodeMissingChair       ErrorCode = "COM_002"
	ErrorCodeChairNotEligible   ErrorCode = "COM_003"
	ErrorCodeQuorumWouldBreak   ErrorCode = "COM_004"
	ErrorCodeDuplicateMember    ErrorCode = "COM_005"
	ErrorCodeInvalidTransition  ErrorCode = "COM_006"
	ErrorCodeHasAssignments     ErrorCode = "COM_007"

	// Scheduling errors
	ErrorCodeNotEligible      ErrorCode = "SCH_001"
	ErrorCodeInvalidTimeRange ErrorCode = "SCH_002"
	ErrorCodeSlotOverlap      ErrorCode = "SCH_003"
	ErrorCodeAlreadyAssigned  ErrorCode = "SCH_004"

	// Quota errors
	ErrorCodeQuotaExceeded ErrorCode = "QTA_001"

	// Server errors
	ErrorCodeInternalServer ErrorCode = "SRV_001"
	ErrorCodeDatabaseError  ErrorCode = "SRV_002"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

// Severity levels
const (
	ErrorSeverityInfo     ErrorSeverity = "INFO"
	ErrorSeverityWarning  ErrorSeverity = "WARNING"
	ErrorSeverityError    ErrorSeverity = "ERROR"
	ErrorSeverityCritical ErrorSeverity = "CRITICAL"
)

// ErrorDetail represents detailed error information
type ErrorDetail struct {
	Code     ErrorCode     `json:"code" example:"COM_001"`
	Message  string        `json:"message" example:"committee COM001 has 3 members, needs 4"`
	Field    string        `json:"field,omitempty" example:"members"`
	Severity ErrorSeverity `json:"severity" example:"ERROR"`
	Details  interface{}   `json:"details,omitempty"`
}

// NewErrorDetail creates an ErrorDetail with ERROR severity
func NewErrorDetail(code ErrorCode, message string) *ErrorDetail {
	return &ErrorDetail{
		Code:     code,
		Message:  message,
		Severity: ErrorSeverityError,
	}
}

// WithField attaches the offending field name
func (e *ErrorDetail) WithField(field string) *ErrorDetail {
	e.Field = field
	return e
}

// WithSeverity overrides the severity level
func (e *ErrorDetail) WithSeverity(severity ErrorSeverity) *ErrorDetail {
	e.Severity = severity
	return e
}

// WithDetails attaches extra context to the error
func (e *ErrorDetail) WithDetails(details interface{}) *ErrorDetail {
	e.Details = details
	return e
}

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Success bool         `json:"success" example:"false"`
	Error   *ErrorDetail `json:"error"`
}

// NewErrorResponse wraps an ErrorDetail into a response body
func NewErrorResponse(detail *ErrorDetail) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   detail,
	}
}
