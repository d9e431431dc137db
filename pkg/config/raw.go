package config

// rawConfig mirrors the on-disk document before validation
type rawConfig struct {
	LinkMode string              `koanf:"link_mode"`
	Include  []string            `koanf:"include"`
	Profiles map[string][]string `koanf:"profiles"`
	Modules  []rawModule         `koanf:"modules"`
}

type rawModule struct {
	Name     string     `koanf:"name"`
	Source   string     `koanf:"source"`
	Base     string     `koanf:"base"`
	LinkMode string     `koanf:"link_mode"`
	Entries  []rawEntry `koanf:"entries"`
	Exclude  []string   `koanf:"exclude"`
}

type rawEntry struct {
	Type string `koanf:"type"`

	// value, path and glob are interchangeable spellings
	Value string `koanf:"value"`
	Path  string `koanf:"path"`
	Glob  string `koanf:"glob"`

	Link *bool `koanf:"link"`

	// maps_to is the documented key, map_dir is accepted too
	MapsTo string `koanf:"maps_to"`
	MapDir string `koanf:"map_dir"`

	Flatten bool              `koanf:"flatten"`
	OS      []string          `koanf:"os"`
	Rename  map[string]string `koanf:"rename"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
