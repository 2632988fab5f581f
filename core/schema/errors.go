package schema

import "errors"

// ErrInvalidArgument reports an argument the builders cannot interpret, such as
// an endpoint method outside GET, POST, PUT and DELETE.
var ErrInvalidArgument = errors.New("invalid argument")
