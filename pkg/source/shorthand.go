package source

import (
	"net/url"
	"strings"

	"github.com/arthur-debert/confman/pkg/errors"
)

// IsShorthand reports whether s has the owner/repo form
func IsShorthand(s string) bool {
	owner, repo, ok := strings.Cut(s, "/")
	return ok && validSegment(owner) && validSegment(repo)
}

func validSegment(seg string) bool {
	if seg == "" || seg == "." || seg == ".." {
		return false
	}
	for _, r := range seg {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '-', r == '.':
		default:
			return false
		}
	}
	return true
}

func fromShorthand(s string) (Source, error) {
	raw := "https://" + DefaultHost + "/" + s + ".git"
	if _, err := url.Parse(raw); err != nil {
		return Source{}, errors.Wrapf(err, errors.ErrInvalidURL, "shorthand %q does not form a valid url", s)
	}
	return Source{Kind: KindGit, Value: raw}, nil
}

// ToShorthand recovers owner/repo from a default-host https URL of the exact
// form https://github.com/owner/repo[.git].
func ToShorthand(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != "https" || u.Host != DefaultHost {
		return "", false
	}
	if u.User != nil || u.RawQuery != "" || u.Fragment != "" || u.ForceQuery {
		return "", false
	}

	owner, repo, ok := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	if !ok {
		return "", false
	}
	repo = strings.TrimSuffix(repo, ".git")
	short := owner + "/" + repo
	if !IsShorthand(short) {
		return "", false
	}
	return short, true
}

// canonicalGit gives default-host URLs a single spelling so that shorthand
// and full-URL forms of the same repository compare equal.
func canonicalGit(rawURL string) string {
	if short, ok := ToShorthand(rawURL); ok {
		return "https://" + DefaultHost + "/" + short + ".git"
	}
	return rawURL
}
