// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/caretrail/phicore/internal/errors"
)

var (
	// hexDigestRegex matches a lowercase hex SHA-256 digest.
	hexDigestRegex = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not whitespace-only. Empty values are
// skipped, as with every string rule; pair with validation.Required.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// HexDigest validates that a string is a lowercase hex SHA-256 digest
var HexDigest = validation.NewStringRuleWithError(
	func(s string) bool {
		return hexDigestRegex.MatchString(s)
	},
	validation.NewError("validation_hex_digest", "must be a 64-character lowercase hex digest"),
)
