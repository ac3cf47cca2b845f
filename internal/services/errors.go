package services

import "github.com/ahmetcoskunkizilkaya/civic-reports/internal/apperror"

var (
	ErrEmailTaken         = apperror.Conflict("email already registered")
	ErrInvalidCredentials = apperror.Unauthorized("invalid email or password")
	ErrGoogleOnlyAccount  = apperror.Unauthorized("this account uses Google sign-in; please log in with Google")
	ErrInvalidToken       = apperror.Unauthorized("invalid or expired token")
	ErrInvalidIdentity    = apperror.Unauthorized("invalid Google identity token")
	ErrUnverifiedEmail    = apperror.Unauthorized("Google account email is not verified")
	ErrUserGone           = apperror.Unauthorized("user no longer exists")
	ErrWrongPassword      = apperror.Unauthorized("current password is incorrect")
	ErrUserNotFound       = apperror.NotFound("user not found")
	ErrReportNotFound     = apperror.NotFound("report not found")
	ErrNotReportOwner     = apperror.Forbidden("you can only modify your own reports")
	ErrSelfAdminAction    = apperror.Forbidden("admins cannot demote or delete themselves")
	ErrVoteConflict       = apperror.Conflict("vote changed concurrently, please retry")
	ErrReasonRequired     = apperror.Validation(apperror.FieldError{Field: "reason", Message: "is required"})
)
