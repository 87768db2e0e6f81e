package config

import "time"

// ScannerFile is the "scanner:" section of the configuration file.
// Zero values leave the corresponding Config field untouched.
type ScannerFile struct {
	// ServerURL is the lookup server base URL.
	ServerURL string `yaml:"server_url,omitempty"`

	// Cookie is sent with every lookup request.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in lookup requests.
	Headers map[string]string `yaml:"headers,omitempty"`

	Proxy       string        `yaml:"proxy,omitempty"`
	Station     string        `yaml:"station,omitempty"`
	Facing      string        `yaml:"facing,omitempty"`
	Device      string        `yaml:"device,omitempty"`
	FramesDir   string        `yaml:"frames_dir,omitempty"`
	FrameRate   int           `yaml:"frame_rate,omitempty"`
	Dedup       string        `yaml:"dedup,omitempty"`
	DedupWindow time.Duration `yaml:"dedup_window,omitempty"`

	// NotificationTTL accepts Go duration strings such as "3s".
	NotificationTTL        time.Duration `yaml:"notification_ttl,omitempty"`
	CardOrder              string        `yaml:"card_order,omitempty"`
	CardSelector           string        `yaml:"card_selector,omitempty"`
	AlreadyScannedSelector string        `yaml:"already_scanned_selector,omitempty"`

	// ManualEntry is a pointer so that an explicit false can be told apart
	// from an absent key.
	ManualEntry *bool `yaml:"manual_entry,omitempty"`
}

// ServerFile is the "server:" section of the configuration file.
type ServerFile struct {
	Listen      string `yaml:"listen,omitempty"`
	Roster      string `yaml:"roster,omitempty"`
	DBDir       string `yaml:"db_dir,omitempty"`
	AutoCheckIn *bool  `yaml:"auto_checkin,omitempty"`
}

// File represents the structure of the munscan configuration file.
type File struct {
	Scanner ScannerFile `yaml:"scanner,omitempty"`
	Server  ServerFile  `yaml:"server,omitempty"`
}

// Apply copies every value set in the file onto cfg. Headers are merged,
// with file headers replacing existing ones of the same name.
func (f *File) Apply(cfg *Config) {
	if f == nil || cfg == nil {
		return
	}

	s := f.Scanner
	setString(&cfg.ServerURL, s.ServerURL)
	setString(&cfg.Cookie, s.Cookie)
	setString(&cfg.ProxyURL, s.Proxy)
	setString(&cfg.StationName, s.Station)
	setString(&cfg.Facing, s.Facing)
	setString(&cfg.Device, s.Device)
	setString(&cfg.FramesDir, s.FramesDir)
	setString(&cfg.DedupPolicy, s.Dedup)
	setString(&cfg.CardOrder, s.CardOrder)
	setString(&cfg.CardSelector, s.CardSelector)
	setString(&cfg.AlreadyScannedSelector, s.AlreadyScannedSelector)
	if s.FrameRate != 0 {
		cfg.FrameRate = s.FrameRate
	}
	if s.DedupWindow != 0 {
		cfg.DedupWindow = s.DedupWindow
	}
	if s.NotificationTTL != 0 {
		cfg.NotificationTTL = s.NotificationTTL
	}
	if s.ManualEntry != nil {
		cfg.ManualEntry = *s.ManualEntry
	}
	if len(s.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(s.Headers))
		}
		for k, v := range s.Headers {
			cfg.Headers[k] = v
		}
	}

	srv := f.Server
	setString(&cfg.ListenAddress, srv.Listen)
	setString(&cfg.RosterPath, srv.Roster)
	setString(&cfg.DBDir, srv.DBDir)
	if srv.AutoCheckIn != nil {
		cfg.AutoCheckIn = *srv.AutoCheckIn
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
