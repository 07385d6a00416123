package assist

import "errors"

// ErrResolution is returned when the language-understanding service is
// unreachable, times out, or returns output that cannot be used. No
// commands are dispatched when resolution itself fails.
var ErrResolution = errors.New("assist: could not resolve command")

// ErrDisabled is returned when natural-language commands are turned
// off in configuration.
var ErrDisabled = errors.New("assist: disabled in configuration")
