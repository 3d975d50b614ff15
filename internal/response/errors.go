package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrProfileNotFound    ErrCode = "PROFILE_NOT_FOUND"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden      ErrCode = "FORBIDDEN"
	ErrRoleMismatch   ErrCode = "ROLE_MISMATCH"
	ErrClassMismatch  ErrCode = "CLASS_MISMATCH"
	ErrNotLinkedChild ErrCode = "NOT_LINKED_CHILD"
	ErrNotSender      ErrCode = "NOT_MESSAGE_SENDER"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidDate    ErrCode = "INVALID_DATE"
	ErrEmptyMessage   ErrCode = "EMPTY_MESSAGE"
	ErrInvalidParent  ErrCode = "INVALID_PARENT"
	ErrNotInClass     ErrCode = "STUDENT_NOT_IN_CLASS"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound      ErrCode = "NOT_FOUND"
	ErrConflict      ErrCode = "CONFLICT"
	ErrEmailTaken    ErrCode = "EMAIL_TAKEN"
	ErrNoLinkedChild ErrCode = "NO_LINKED_CHILD"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrTokenRequired:
		return "An identity token is required."
	case ErrTokenInvalid:
		return "The identity token is invalid or expired."
	case ErrProfileNotFound:
		return "No portal profile exists for this identity."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrRoleMismatch:
		return "This resource belongs to a different role."
	case ErrClassMismatch:
		return "You can only manage your own class."
	case ErrNotLinkedChild:
		return "This student is not linked to your account."
	case ErrNotSender:
		return "Only the sender can delete this message."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidDate:
		return "Dates must use the YYYY-MM-DD format."
	case ErrEmptyMessage:
		return "Message cannot be empty."
	case ErrInvalidParent:
		return "The parent account does not exist."
	case ErrNotInClass:
		return "Every student must belong to the class."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrEmailTaken:
		return "This email is already registered."
	case ErrNoLinkedChild:
		return "No student is linked to this parent."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
