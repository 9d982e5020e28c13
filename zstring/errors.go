package zstring

import "errors"

// ErrMalformedString is returned for a Z-string that nests
// abbreviations more than one level deep, or otherwise produces a
// Z-char the decoder cannot interpret.
var ErrMalformedString = errors.New("zstring: malformed string")
