package controllers

import (
	"errors"

	"github.com/vuhoang/defcom/internal/app/models/dto"
	"github.com/vuhoang/defcom/internal/pkg/apperrors"
)

// asCompositionProblem converts a roster composition failure into a
// validation result body. Other errors (not found, infrastructure) keep
// flowing through the error middleware.
func asCompositionProblem(err error, result *dto.ValidationResultResponse) bool {
	if !errors.Is(err, apperrors.ErrInsufficientQuorum) &&
		!errors.Is(err, apperrors.ErrMissingChair) &&
		!errors.Is(err, apperrors.ErrChairNotEligible) {
		return false
	}

	result.Valid = false
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		result.Problems = append(result.Problems, custom.Message)
	} else {
		result.Problems = append(result.Problems, err.Error())
	}
	return true
}
