// internal/codec/errors.go
package codec

import "errors"

var (
	ErrInvalidSpec        = errors.New("codec: invalid field spec")
	ErrNegativeNotAllowed = errors.New("codec: negative value not allowed for discrete")
	ErrInvalidValue       = errors.New("codec: value is not a finite number")
)
