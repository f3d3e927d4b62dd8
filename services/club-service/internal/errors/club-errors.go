package errors

import apperrors "github.com/burakmert236/clubscore/common/errors"

func MatchNotFound() *apperrors.AppError {
	return apperrors.New(apperrors.CodeNotFound, "Match not found")
}

func MatchNotLive() *apperrors.AppError {
	return apperrors.New(apperrors.CodeNotLive, "Match is not LIVE")
}

func ClubNotFound() *apperrors.AppError {
	return apperrors.New(apperrors.CodeNotFound, "Club not found")
}

func ProfileNotFound() *apperrors.AppError {
	return apperrors.New(apperrors.CodeNotFound, "Profile not found")
}

func ClubIdRequired() *apperrors.AppError {
	return apperrors.Validation("clubId required")
}

func MatchIdRequired() *apperrors.AppError {
	return apperrors.Validation("matchId path param required")
}

func InvalidTeam() *apperrors.AppError {
	return apperrors.Validation("team must be 'A' or 'B'")
}

func CallerRequired() *apperrors.AppError {
	return apperrors.New(apperrors.CodeUnauthorized, "Unauthorized")
}

func WrapDatabaseError(err error, message string) *apperrors.AppError {
	return apperrors.Wrap(err, apperrors.CodeInternal, message)
}
