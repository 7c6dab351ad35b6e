package errs

import (
	"errors"
	"net/http"
)

var (
	ErrNotImplemented         = errors.New("E0000: not implemented")
	ErrEmailRequired          = errors.New("E0001: email is required")
	ErrPasswordRequired       = errors.New("E0002: password is required")
	ErrInvalidEmailOrPassword = errors.New("E0003: invalid email or password")
	ErrDatabase               = errors.New("E0004: database error")
	ErrCryptographic          = errors.New("E0005: cryptographic failure")
	ErrJWT                    = errors.New("E0006: JWT failure")
	ErrNameRequired           = errors.New("E0007: name is required")
	ErrEmailAddressFormat     = errors.New("E0008: email address format incorrect")
	ErrPhoneRequired          = errors.New("E0009: phone is required")
	ErrAlreadyExists          = errors.New("E0010: user already registered")
	ErrTokenExpired           = errors.New("E0011: token expired")
	ErrUnauthorized           = errors.New("E0012: unauthorized")
	ErrPhoneFormat            = errors.New("E0013: phone number must only contain digits")
	ErrNotFound               = errors.New("E0014: not found")
	ErrCollegeRequired        = errors.New("E0015: college name is required")
	ErrNotLeader              = errors.New("E0016: only the team leader may do this")
	ErrNoTeam                 = errors.New("E0017: no team found for this user")
	ErrMail                   = errors.New("E0018: error sending email")
	ErrInvalidResetToken      = errors.New("E0019: reset token invalid")
	ErrBlobStore              = errors.New("E0020: blob storage error")
	ErrTeamNameRequired       = errors.New("E0021: team name is required")
	ErrTeamFull               = errors.New("E0022: team already has 3 members")
	ErrConflict               = errors.New("E0023: concurrent modification, please retry")
	ErrFileTooLarge           = errors.New("E0024: file size exceeds 100 KB limit")
	ErrFileType               = errors.New("E0025: unsupported file type")
	ErrHasTeam                = errors.New("E0026: already part of a team")
	ErrPasswordTooShort       = errors.New("E0028: password must be at least 8 characters long")
	ErrMemberCount            = errors.New("E0029: a team must have between 1 and 3 members")
	ErrOneLeader              = errors.New("E0030: a team must have exactly one leader")
	ErrInvalidIndex           = errors.New("E0031: invalid member index")
	ErrFileRequired           = errors.New("E0032: file is required")
)

// HTTPStatus maps a backend error onto the status code the API responds
// with. Unknown errors are treated as internal.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrEmailRequired),
		errors.Is(err, ErrPasswordRequired),
		errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrEmailAddressFormat),
		errors.Is(err, ErrPhoneRequired),
		errors.Is(err, ErrPhoneFormat),
		errors.Is(err, ErrCollegeRequired),
		errors.Is(err, ErrTeamNameRequired),
		errors.Is(err, ErrFileTooLarge),
		errors.Is(err, ErrFileType),
		errors.Is(err, ErrPasswordTooShort),
		errors.Is(err, ErrMemberCount),
		errors.Is(err, ErrOneLeader),
		errors.Is(err, ErrInvalidIndex),
		errors.Is(err, ErrFileRequired):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidEmailOrPassword),
		errors.Is(err, ErrJWT),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidResetToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotLeader):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoTeam):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrTeamFull),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrHasTeam):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
