package domain

import (
	apperrors "github.com/caretrail/phicore/internal/errors"
)

var (
	// ErrRequestInvalid indicates the access request fails boundary validation.
	ErrRequestInvalid = apperrors.Wrap(apperrors.ErrInvalidInput, "access request invalid")

	// ErrAccessDenied indicates the actor may not perform the operation.
	ErrAccessDenied = apperrors.Wrap(apperrors.ErrForbidden, "access denied")
)
