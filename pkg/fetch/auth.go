package fetch

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// tokenVars lists the environment variables checked for HTTPS tokens, the
// user name each one is sent with and the only host it is sent to. An empty
// host accepts any server.
var tokenVars = []struct {
	env      string
	username string
	host     string
}{
	{"GITHUB_TOKEN", "x-access-token", "github.com"},
	{"GITLAB_TOKEN", "gitlab-ci-token", "gitlab.com"},
	{"GIT_TOKEN", "git", ""},
}

var sshKeyNames = []string{"id_ed25519", "id_rsa", "id_ecdsa"}

type authResolver struct {
	getenv  func(string) string
	homeDir func() (string, error)
}

func defaultAuthResolver() authResolver {
	return authResolver{getenv: os.Getenv, homeDir: os.UserHomeDir}
}

// forURL picks credentials suited to the transport of rawURL. A nil
// result means anonymous access.
func (a authResolver) forURL(rawURL string) transport.AuthMethod {
	switch urlScheme(rawURL) {
	case "ssh":
		return a.sshAuth()
	case "http", "https":
		return a.httpAuth(urlHost(rawURL))
	default:
		return nil
	}
}

func (a authResolver) sshAuth() transport.AuthMethod {
	home, err := a.homeDir()
	if err != nil {
		return nil
	}
	for _, name := range sshKeyNames {
		keyPath := filepath.Join(home, ".ssh", name)
		if _, err := os.Stat(keyPath); err != nil {
			continue
		}
		if auth, err := ssh.NewPublicKeysFromFile("git", keyPath, ""); err == nil {
			return auth
		}
	}
	return nil
}

func (a authResolver) httpAuth(host string) transport.AuthMethod {
	for _, tv := range tokenVars {
		if tv.host != "" && tv.host != host {
			continue
		}
		if token := a.getenv(tv.env); token != "" {
			return &http.BasicAuth{Username: tv.username, Password: token}
		}
	}
	return nil
}

// urlScheme returns the lowercase scheme, treating scp-like addresses
// (git@host:owner/repo) as ssh.
func urlScheme(rawURL string) string {
	if !strings.Contains(rawURL, "://") {
		if at := strings.Index(rawURL, "@"); at > 0 && strings.Contains(rawURL[at:], ":") {
			return "ssh"
		}
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme == "git+ssh" || scheme == "ssh+git" {
		return "ssh"
	}
	return scheme
}

// urlHost returns the lowercase host of rawURL without its port
func urlHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
