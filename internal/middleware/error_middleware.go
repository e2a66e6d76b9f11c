package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/vuhoang/defcom/internal/app/models/dto"
	"github.com/vuhoang/defcom/internal/pkg/apperrors"
)

// HandleAPIError maps domain errors to HTTP responses. Wrapped CustomError
// messages carry the concrete violation (member counts, quota state, slot
// windows) and are passed through to the client verbatim.
func HandleAPIError(c *gin.Context, err error) {
	status, code, fallback := classify(err)

	message := fallback
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		message = custom.Message
	}

	c.JSON(status, dto.APIResponse{
		Error: dto.NewErrorDetail(code, message),
	})
}

func classify(err error) (int, dto.ErrorCode, string) {
	switch {
	case errors.Is(err, apperrors.ErrTokenExpired):
		return 401, dto.ErrorCodeExpiredToken, "Token expired"
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrInvalidFormat):
		return 401, dto.ErrorCodeInvalidToken, "Invalid token"
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return 403, dto.ErrorCodeForbidden, "Permission denied"

	case errors.Is(err, apperrors.ErrLecturerNotFound):
		return 404, dto.ErrorCodeResourceNotFound, "Lecturer not found"
	case errors.Is(err, apperrors.ErrTopicNotFound):
		return 404, dto.ErrorCodeResourceNotFound, "Topic not found"
	case errors.Is(err, apperrors.ErrCommitteeNotFound):
		return 404, dto.ErrorCodeResourceNotFound, "Committee not found"
	case errors.Is(err, apperrors.ErrTagNotFound):
		return 404, dto.ErrorCodeResourceNotFound, "Tag not found"
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return 404, dto.ErrorCodeResourceNotFound, "Resource not found"

	case errors.Is(err, apperrors.ErrCommitteeAlreadyExists):
		return 409, dto.ErrorCodeResourceAlreadyExists, "Committee with this code already exists"
	case errors.Is(err, apperrors.ErrResourceAlreadyExists):
		return 409, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"

	case errors.Is(err, apperrors.ErrInsufficientQuorum):
		return 422, dto.ErrorCodeInsufficientQuorum, "Committee does not meet quorum"
	case errors.Is(err, apperrors.ErrMissingChair):
		return 422, dto.ErrorCodeMissingChair, "Committee has no chair"
	case errors.Is(err, apperrors.ErrChairNotEligible):
		return 422, dto.ErrorCodeChairNotEligible, "Chair does not hold a qualifying academic rank"
	case errors.Is(err, apperrors.ErrQuorumWouldBreak):
		return 409, dto.ErrorCodeQuorumWouldBreak, "Removal would break committee quorum"
	case errors.Is(err, apperrors.ErrDuplicateMember):
		return 409, dto.ErrorCodeDuplicateMember, "Lecturer is already a committee member"
	case errors.Is(err, apperrors.ErrInvalidTransition):
		return 409, dto.ErrorCodeInvalidTransition, "Committee status transition not allowed"
	case errors.Is(err, apperrors.ErrHasActiveAssignments):
		return 409, dto.ErrorCodeHasAssignments, "Committee has active assignments"

	case errors.Is(err, apperrors.ErrNotEligible):
		return 422, dto.ErrorCodeNotEligible, "Topic is not eligible for this committee"
	case errors.Is(err, apperrors.ErrInvalidTimeRange):
		return 400, dto.ErrorCodeInvalidTimeRange, "Start time must be before end time"
	case errors.Is(err, apperrors.ErrSlotOverlap):
		return 409, dto.ErrorCodeSlotOverlap, "Time slot overlaps an existing assignment"
	case errors.Is(err, apperrors.ErrAlreadyAssigned):
		return 409, dto.ErrorCodeAlreadyAssigned, "Topic already has an assignment"

	case errors.Is(err, apperrors.ErrQuotaExceeded):
		return 409, dto.ErrorCodeQuotaExceeded, "Lecturer defense quota exceeded"

	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		return 400, dto.ErrorCodeValidationFailed, "Validation failed"

	default:
		return 500, dto.ErrorCodeInternalServer, "Internal server error"
	}
}
