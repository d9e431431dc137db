package source

import (
	"net/url"
	"path"
	"regexp"
	"runtime"
	"strings"

	"github.com/arthur-debert/confman/pkg/errors"
)

// Kind tells git sources from local ones
type Kind string

const (
	KindGit  Kind = "git"
	KindPath Kind = "path"
)

// DefaultHost is where owner/repo shorthands point
const DefaultHost = "github.com"

// Source is a classified module source. The zero value is invalid.
type Source struct {
	Kind  Kind
	Value string
}

var scpLike = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9.-]+:[^/\\].*$`)

// Git returns a git source for url, canonicalizing default-host URLs
func Git(rawURL string) Source {
	return Source{Kind: KindGit, Value: canonicalGit(rawURL)}
}

// Path returns a local path source
func Path(p string) Source {
	return Source{Kind: KindPath, Value: p}
}

// Parse classifies s for the running platform
func Parse(s string) (Source, error) {
	return ParseFor(s, runtime.GOOS)
}

// ParseFor classifies s as it would be on goos. Only "windows" changes the
// outcome: drive-letter and UNC strings become paths before URL parsing.
func ParseFor(s, goos string) (Source, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Source{}, errors.New(errors.ErrMissingValue, "source must not be empty or whitespace")
	}

	if IsShorthand(s) {
		return fromShorthand(s)
	}

	windows := goos == "windows"
	if windows && isWindowsAbs(s) {
		return Path(s), nil
	}

	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return Source{}, errors.Wrapf(err, errors.ErrInvalidURL, "source %q is not a valid url", s).
				WithDetail("source", s)
		}
		if u.Host == "" && u.Scheme != "file" {
			return Source{}, errors.Newf(errors.ErrInvalidURL, "source %q has no host", s).
				WithDetail("source", s)
		}
		return Git(s), nil
	}

	if scpLike.MatchString(s) {
		return Git(s), nil
	}

	if u, err := url.Parse(s); err == nil && u.IsAbs() {
		return Git(s), nil
	}

	if isHomeRelative(s, windows) || isRooted(s, windows) {
		return Path(s), nil
	}

	return Source{}, errors.Newf(errors.ErrUnknownSource,
		"source %q does not appear to be a git repository nor an absolute path", s).
		WithDetail("source", s)
}

// MustParse is Parse for literals known to be valid
func MustParse(s string) Source {
	src, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return src
}

// String renders the source so that Parse yields it back
func (s Source) String() string {
	if s.Kind == KindGit {
		if short, ok := ToShorthand(s.Value); ok {
			return short
		}
	}
	return s.Value
}

// IsZero reports whether s was never set
func (s Source) IsZero() bool {
	return s.Kind == "" && s.Value == ""
}

func (s Source) IsGit() bool { return s.Kind == KindGit }

func (s Source) IsPath() bool { return s.Kind == KindPath }

// MarshalText implements encoding.TextMarshaler
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Source) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// CacheKey returns a slash-separated, path-safe identity for git sources,
// e.g. "github.com/owner/repo". Path sources have no cache and return "".
func (s Source) CacheKey() string {
	if s.Kind != KindGit {
		return ""
	}

	var host, p string
	if u, err := url.Parse(s.Value); err == nil && u.Host != "" {
		host, p = u.Hostname(), u.Path
	} else if at := strings.Index(s.Value, "@"); at >= 0 && strings.Contains(s.Value[at:], ":") {
		rest := s.Value[at+1:]
		colon := strings.Index(rest, ":")
		host, p = rest[:colon], rest[colon+1:]
	} else {
		p = s.Value
	}

	p = strings.TrimSuffix(strings.Trim(p, "/"), ".git")
	parts := []string{sanitize(host)}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		parts = append(parts, sanitize(seg))
	}
	return path.Join(parts...)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

func sanitize(seg string) string {
	if seg == "" {
		return "_"
	}
	return unsafeChars.ReplaceAllString(seg, "_")
}

func isHomeRelative(s string, windows bool) bool {
	if s == "~" || strings.HasPrefix(s, "~/") {
		return true
	}
	return windows && strings.HasPrefix(s, `~\`)
}

func isRooted(s string, windows bool) bool {
	if windows {
		return isWindowsAbs(s) || strings.HasPrefix(s, `\`) || strings.HasPrefix(s, "/")
	}
	return strings.HasPrefix(s, "/")
}

// isWindowsAbs matches C:, C:\x, C:/x and \\server\share forms
func isWindowsAbs(s string) bool {
	if strings.HasPrefix(s, `\\`) || strings.HasPrefix(s, "//") {
		return len(s) > 2
	}
	if len(s) < 2 || s[1] != ':' || !isLetter(s[0]) {
		return false
	}
	return len(s) == 2 || s[2] == '\\' || s[2] == '/'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
