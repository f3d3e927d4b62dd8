package errors

import apperrors "github.com/burakmert236/clubscore/common/errors"

func ConnectionIdRequired() *apperrors.AppError {
	return apperrors.Validation("connectionId required")
}

func InvalidFrame() *apperrors.AppError {
	return apperrors.Validation("frame must be a JSON object")
}

func WrapRegistryError(err error, message string) *apperrors.AppError {
	return apperrors.Wrap(err, apperrors.CodeInternal, message)
}
