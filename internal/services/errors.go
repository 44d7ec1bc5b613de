package services

import "errors"

// Service-level sentinel errors. Handlers map these to HTTP statuses with
// errors.Is, so services must return (or wrap) them rather than ad-hoc
// strings.
var (
	// ErrNotAuthenticated means no principal was resolved for the request.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrPermissionDenied means the principal's role does not allow the
	// operation. It is always decided before any storage write.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidJoinCode means the join code resolved to no server. This is a
	// common, expected outcome of mistyped codes, not a system fault.
	ErrInvalidJoinCode = errors.New("invalid join code")

	// ErrAlreadyMember means the user already belongs to the server a join
	// attempt targeted. No write happens and no event is emitted.
	ErrAlreadyMember = errors.New("already a member of this server")

	// ErrServerNotFound means a server ID did not resolve.
	ErrServerNotFound = errors.New("course server not found")

	// ErrUserNotFound means a user ID did not resolve in the identity provider.
	ErrUserNotFound = errors.New("user not found")

	// ErrValidationFailed wraps field-level validation failures.
	ErrValidationFailed = errors.New("validation failed")

	// ErrJoinCodeExhausted means code generation kept colliding with existing
	// codes. With a base-36 suffix this should effectively never happen.
	ErrJoinCodeExhausted = errors.New("could not generate a unique join code")
)
