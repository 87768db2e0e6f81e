package capture

import (
	"sort"
	"strings"
)

// Keywords matched against V4L2 device names to honour a facing preference.
var (
	environmentKeywords = []string{"rear", "back", "environment", "world"}
	userKeywords        = []string{"front", "user", "facetime", "integrated", "selfie"}
)

// pickDevice chooses a device path from names (device path to
// human-readable V4L2 name) for the facing preference. A device whose name
// matches the preference wins. Otherwise the lowest numbered device is
// used, so a single USB webcam is always picked.
func pickDevice(names map[string]string, facing string) string {
	if len(names) == 0 {
		return ""
	}

	paths := make([]string, 0, len(names))
	for p := range names {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		if len(paths[i]) != len(paths[j]) {
			return len(paths[i]) < len(paths[j])
		}
		return paths[i] < paths[j]
	})

	keywords := environmentKeywords
	if facing == "user" {
		keywords = userKeywords
	}
	for _, p := range paths {
		name := strings.ToLower(names[p])
		for _, kw := range keywords {
			if strings.Contains(name, kw) {
				return p
			}
		}
	}
	return paths[0]
}
