package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	p := NewCommandParser()

	cmd, args, ok := p.ParseCommand("!собрать 8")
	assert.True(t, ok)
	assert.Equal(t, "собрать", cmd)
	assert.Equal(t, []string{"8"}, args)

	cmd, _, ok = p.ParseCommand("/start abc123")
	assert.True(t, ok)
	assert.Equal(t, "start", cmd)

	cmd, _, ok = p.ParseCommand("/start@GigaFarmBot")
	assert.True(t, ok)
	assert.Equal(t, "start", cmd)

	cmd, args, ok = p.ParseCommand("  .ШАХТА  ")
	assert.True(t, ok)
	assert.Equal(t, "шахта", cmd)
	assert.Empty(t, args)

	_, _, ok = p.ParseCommand("просто текст")
	assert.False(t, ok)

	_, _, ok = p.ParseCommand("!")
	assert.False(t, ok)

	_, _, ok = p.ParseCommand("")
	assert.False(t, ok)
}
