package config

import "errors"

// Configuration validation errors returned by Config.Validate and
// Config.ValidateServer. Callers match them with errors.Is.
var (
	// ErrInvalidServerURL is returned when the lookup server URL is empty,
	// unparsable, or not http/https.
	ErrInvalidServerURL = errors.New("invalid server URL: must be an absolute http or https URL")

	// ErrInvalidDedupPolicy is returned when the deduplication policy is
	// neither "window" nor "session".
	ErrInvalidDedupPolicy = errors.New("invalid dedup policy: must be \"window\" or \"session\"")

	// ErrInvalidDedupWindow is returned when the window policy is selected
	// with a window that is not positive.
	ErrInvalidDedupWindow = errors.New("invalid dedup window: must be positive")

	// ErrInvalidNotificationTTL is returned when notifications would never
	// be shown or never disappear.
	ErrInvalidNotificationTTL = errors.New("invalid notification ttl: must be positive")

	// ErrInvalidFrameRate is returned when the sampling rate is not between
	// 1 and MaxFrameRate frames per second.
	ErrInvalidFrameRate = errors.New("invalid frame rate: must be between 1 and 120")

	// ErrInvalidCardOrder is returned when card_order is neither
	// "completion" nor "dispatch".
	ErrInvalidCardOrder = errors.New("invalid card order: must be \"completion\" or \"dispatch\"")

	// ErrInvalidFacing is returned when the camera facing preference is
	// neither "environment" nor "user".
	ErrInvalidFacing = errors.New("invalid camera facing: must be \"environment\" or \"user\"")

	// ErrConflictingSources is returned when both a camera device and a
	// frames directory are configured. Only one frame source can be used.
	ErrConflictingSources = errors.New("conflicting frame sources: --device and --frames cannot be used together")

	// ErrNoRoster is returned when the lookup server has no roster file.
	ErrNoRoster = errors.New("no roster specified: use --roster or server.roster in the config file")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
