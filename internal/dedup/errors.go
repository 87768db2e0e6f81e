package dedup

import "errors"

// ErrUnknownPolicy is returned by New for a policy name it does not know.
var ErrUnknownPolicy = errors.New("unknown deduplication policy")
