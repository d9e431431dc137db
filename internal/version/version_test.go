package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, Date = v, c, d }(Version, Commit, Date)

	Version, Commit, Date = "1.2.0", "0123456789abcdef", "2024-05-01"
	assert.Equal(t, "confman 1.2.0 (0123456 2024-05-01)", String())

	Commit = "abc"
	assert.Equal(t, "confman 1.2.0 (abc 2024-05-01)", String())
}

func TestDetailed(t *testing.T) {
	out := Detailed()
	assert.Contains(t, out, String())
	assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)
	assert.Contains(t, out, runtime.Version())
}
