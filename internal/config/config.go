package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "munscan"

	// DefaultServerURL is the lookup server a station talks to when nothing
	// else is configured. It matches the default listen address of
	// "munscan serve".
	DefaultServerURL = "http://localhost:8080"

	// DefaultFacing prefers the rear camera of the device, which is the one
	// pointed at badges.
	DefaultFacing = FacingEnvironment

	// DefaultFrameRate approximates a display refresh driven sampling loop.
	DefaultFrameRate = 30

	// MaxFrameRate bounds the sampling rate. Decoding is synchronous, so
	// higher rates only burn CPU.
	MaxFrameRate = 120

	// DefaultDedupPolicy is the time windowed policy, which allows the same
	// delegate to be scanned again after the cool-down.
	DefaultDedupPolicy = "window"

	// DefaultDedupWindow is the cool-down for the window policy.
	DefaultDedupWindow = 3 * time.Second

	// DefaultNotificationTTL is how long a notification stays visible.
	DefaultNotificationTTL = 3 * time.Second

	// DefaultCardOrder keeps the card of the last completed lookup.
	DefaultCardOrder = CardOrderCompletion

	// DefaultCardSelector locates the delegate card in the lookup response.
	DefaultCardSelector = "#delegate-card"

	// DefaultAlreadyScannedSelector locates the "already scanned" marker
	// inside the delegate card.
	DefaultAlreadyScannedSelector = ".already-scanned"

	// DefaultListenAddress is the address "munscan serve" listens on.
	DefaultListenAddress = ":8080"

	// DefaultRosterPath is the delegate roster read by "munscan serve".
	DefaultRosterPath = "delegates.json"

	// DefaultMaxBodySize caps how much of a lookup response is read.
	// A delegate page is a few kilobytes.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultUserAgent identifies munscan stations in server logs.
	DefaultUserAgent = "munscan/1.0 (+https://github.com/nao1215/munscan)"
)

// Camera facing preferences.
const (
	// FacingEnvironment selects a rear or world facing camera.
	FacingEnvironment = "environment"

	// FacingUser selects a front facing camera.
	FacingUser = "user"
)

// Card ordering modes.
const (
	// CardOrderCompletion shows the card of whichever lookup completed last.
	CardOrderCompletion = "completion"

	// CardOrderDispatch shows the card of the most recently dispatched
	// lookup. A response that arrives after a newer one was shown does not
	// replace the card, but its notification is still emitted.
	CardOrderDispatch = "dispatch"
)

// Config holds all configuration options for munscan.
// It is populated from defaults, then the configuration file, then CLI flags,
// and passed to the station or the server explicitly.
type Config struct {
	// ServerURL is the base URL of the lookup server. Lookups are sent to
	// {ServerURL}/scan/{id}.
	ServerURL string

	// Cookie is sent with every lookup request. Format: "name=value" or
	// "name1=value1; name2=value2". It is never logged in clear.
	Cookie string

	// Headers are extra HTTP headers sent with every lookup request.
	Headers map[string]string

	// ProxyURL routes lookup requests through an HTTP proxy when set.
	ProxyURL string

	// StationName identifies this scanner. It is sent in the
	// X-Munscan-Station header and recorded as "scanned by" on the server.
	StationName string

	// UserAgent is the User-Agent header sent with lookup requests.
	UserAgent string

	// MaxBodySize is the maximum lookup response size in bytes to read.
	MaxBodySize int64

	// Facing is the camera preference, FacingEnvironment or FacingUser.
	Facing string

	// Device is an explicit V4L2 device path such as /dev/video0.
	// When empty the device is chosen by Facing.
	Device string

	// FramesDir replays image files from a directory instead of opening a
	// camera. Mutually exclusive with Device.
	FramesDir string

	// FrameRate is the number of frame samples per second.
	FrameRate int

	// DedupPolicy is "window" or "session".
	DedupPolicy string

	// DedupWindow is the cool-down for the window policy.
	DedupWindow time.Duration

	// NotificationTTL is how long each notification stays visible.
	NotificationTTL time.Duration

	// CardOrder is CardOrderCompletion or CardOrderDispatch.
	CardOrder string

	// CardSelector is the CSS selector of the delegate card element.
	CardSelector string

	// AlreadyScannedSelector is the CSS selector of the marker element that
	// signals an already processed delegate.
	AlreadyScannedSelector string

	// ManualEntry reads identifiers typed on stdin in addition to camera scans.
	ManualEntry bool

	// ListenAddress is the address the lookup server listens on.
	ListenAddress string

	// RosterPath is the delegate roster file (JSON or YAML).
	RosterPath string

	// DBDir is the directory holding the attendance database.
	// Defaults to the XDG data directory (~/.local/share/munscan on Linux).
	DBDir string

	// AutoCheckIn records attendance on the first GET /scan/{id} of a
	// delegate. When false only POST /validate/{id} records attendance.
	AutoCheckIn bool

	// JSONReport selects JSON output for "munscan report".
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output for "munscan report".
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// ConfigFilePath is the path to the configuration file. If empty, the
	// file is discovered as described by FindConfigFile.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		ServerURL:              DefaultServerURL,
		UserAgent:              DefaultUserAgent,
		MaxBodySize:            DefaultMaxBodySize,
		Facing:                 DefaultFacing,
		FrameRate:              DefaultFrameRate,
		DedupPolicy:            DefaultDedupPolicy,
		DedupWindow:            DefaultDedupWindow,
		NotificationTTL:        DefaultNotificationTTL,
		CardOrder:              DefaultCardOrder,
		CardSelector:           DefaultCardSelector,
		AlreadyScannedSelector: DefaultAlreadyScannedSelector,
		ListenAddress:          DefaultListenAddress,
		RosterPath:             DefaultRosterPath,
		DBDir:                  XDGDataDir(),
		AutoCheckIn:            true,
	}
}

// XDGDataDir returns the XDG data directory for munscan.
// On Linux: ~/.local/share/munscan
// On macOS: ~/Library/Application Support/munscan
// On Windows: %LOCALAPPDATA%\munscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for munscan.
// On Linux: ~/.config/munscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// FrameInterval returns the delay between two frame samples.
func (c *Config) FrameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return time.Second / DefaultFrameRate
	}
	return time.Second / time.Duration(c.FrameRate)
}

// Validate checks the options shared by every command and the scanner
// station options. It returns the first problem found.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidServerURL
	}

	switch c.DedupPolicy {
	case "window":
		if c.DedupWindow <= 0 {
			return ErrInvalidDedupWindow
		}
	case "session":
	default:
		return ErrInvalidDedupPolicy
	}

	if c.NotificationTTL <= 0 {
		return ErrInvalidNotificationTTL
	}

	if c.FrameRate < 1 || c.FrameRate > MaxFrameRate {
		return ErrInvalidFrameRate
	}

	if c.CardOrder != CardOrderCompletion && c.CardOrder != CardOrderDispatch {
		return ErrInvalidCardOrder
	}

	if c.Facing != FacingEnvironment && c.Facing != FacingUser {
		return ErrInvalidFacing
	}

	if c.Device != "" && c.FramesDir != "" {
		return ErrConflictingSources
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}

// ValidateServer checks the options needed by the lookup server and the
// report command.
func (c *Config) ValidateServer() error {
	if c.RosterPath == "" {
		return ErrNoRoster
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
