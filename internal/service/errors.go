package service

import "errors"

// Error taxonomy shared by all services. Handlers match with
// errors.Is and translate to HTTP status codes; wrapped variants
// carry detail for the response message.
var (
	ErrNotFound            = errors.New("not found")
	ErrAccessDenied        = errors.New("access denied")
	ErrValidation          = errors.New("validation error")
	ErrCrossBoardMove      = errors.New("cannot move card to a different board")
	ErrDuplicateLabel      = errors.New("label already added to card")
	ErrLabelNotOnCard      = errors.New("label not found on card")
	ErrOwnerProtected      = errors.New("cannot remove board owner")
	ErrFileTooLarge        = errors.New("file too large")
	ErrUnsupportedFileType = errors.New("file type not allowed")
)
