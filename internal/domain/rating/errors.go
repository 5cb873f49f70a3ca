package rating

import "errors"

// ErrUnknownRating is returned when parsing an unrecognized rating name.
var ErrUnknownRating = errors.New("unknown rating")
