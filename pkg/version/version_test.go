package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	info := Info()
	assert.Equal(t, AppName, info["app"])
	assert.Equal(t, Version, info["version"])
	assert.Equal(t, GoVersion, info["goVersion"])
	assert.NotEmpty(t, info["goVersion"])
}
