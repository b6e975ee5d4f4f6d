package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/steveyegge/srmauto/internal/config"
	"github.com/steveyegge/srmauto/internal/logging"
)

func TestNew_Defaults(t *testing.T) {
	ctx := New(nil, nil)
	assert.NotNil(t, ctx.Config)
	assert.NotNil(t, ctx.Logger)
	assert.Equal(t, config.Default(), ctx.Settings())
}

func TestZeroValue(t *testing.T) {
	var ctx Context
	assert.NotNil(t, ctx.Log())
	assert.NotNil(t, ctx.Settings())
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	base := New(config.Default(), logging.New(&buf, "info"))

	child := base.With("run", "abc")
	child.Log().Info("hello")
	base.Log().Info("plain")

	out := buf.String()
	assert.Contains(t, out, "run=abc")
	assert.Contains(t, out, "msg=plain")
}
