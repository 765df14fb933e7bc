package orders

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrUnsupportedVersion = errors.New("unsupported order record version")
	ErrDuplicateOrder     = errors.New("order number already exists")
	ErrEventNotFound      = errors.New("event not found or already processed")
)
