package types

import (
	"strings"

	"github.com/arthur-debert/confman/pkg/errors"
)

// LinkMode controls how a linked entry is deployed
type LinkMode string

const (
	// LinkAlways requires a symbolic link; failing to create one is an error
	LinkAlways LinkMode = "always"

	// LinkPrefer tries a symbolic link and falls back to copying
	LinkPrefer LinkMode = "prefer"

	// LinkNever always copies
	LinkNever LinkMode = "never"
)

// DefaultLinkMode is used when the config does not set link_mode
const DefaultLinkMode = LinkAlways

// ParseLinkMode converts a config value to a LinkMode. Matching is
// case-insensitive; an empty value yields the default.
func ParseLinkMode(s string) (LinkMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultLinkMode, nil
	case string(LinkAlways):
		return LinkAlways, nil
	case string(LinkPrefer):
		return LinkPrefer, nil
	case string(LinkNever):
		return LinkNever, nil
	default:
		return "", errors.Newf(errors.ErrInvalidLinkMode, "invalid link_mode %q (want always, prefer or never)", s).
			WithDetail("value", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *LinkMode) UnmarshalText(text []byte) error {
	parsed, err := ParseLinkMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (m LinkMode) MarshalText() ([]byte, error) {
	return []byte(m), nil
}

// AllowsLink reports whether the mode ever attempts a symbolic link
func (m LinkMode) AllowsLink() bool {
	return m == LinkAlways || m == LinkPrefer
}

// AllowsCopy reports whether the mode may deploy by copying
func (m LinkMode) AllowsCopy() bool {
	return m == LinkNever || m == LinkPrefer
}
