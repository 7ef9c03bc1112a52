// internal/frame/errors.go
package frame

import "errors"

var (
	ErrInvalidFieldSpec  = errors.New("frame: invalid field spec")
	ErrInvalidLabelOrSDI = errors.New("frame: invalid label or sdi")
)
