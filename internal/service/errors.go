package service

import "errors"

// Domain errors shared by the portal services.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrProfileNotFound    = errors.New("user profile not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongRole          = errors.New("user has a different role")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidParent      = errors.New("parent account not found")
	ErrInvalidDate        = errors.New("date must be formatted as YYYY-MM-DD")
	ErrClassMismatch      = errors.New("class does not belong to this teacher")
	ErrStudentNotInClass  = errors.New("student is not enrolled in this class")
	ErrHomeworkNotFound   = errors.New("homework not found")
	ErrNoLinkedChild      = errors.New("no child linked to this parent")
	ErrNotLinkedChild     = errors.New("student is not linked to this parent")
	ErrEmptyMessage       = errors.New("message body is empty")
	ErrMessageNotFound    = errors.New("message not found")
	ErrNotMessageSender   = errors.New("only the sender can delete a message")
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"
