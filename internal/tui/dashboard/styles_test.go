package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/steveyegge/srmauto/internal/style"
)

func TestStyles_UseSharedPalette(t *testing.T) {
	assert.Equal(t, style.ColorAccent, titleStyle.GetForeground())
	assert.Equal(t, style.ColorAccent, formBorderStyle.GetBorderTopForeground())
	assert.Equal(t, style.ColorMuted, logBorderStyle.GetBorderTopForeground())
	assert.Equal(t, style.ColorWarning, warnLineStyle.GetForeground())
	assert.Equal(t, style.ColorError, errorStyle.GetForeground())
	assert.Equal(t, style.ColorSuccess, successStyle.GetForeground())
	assert.Equal(t, style.ColorMuted, helpStyle.GetForeground())
}
