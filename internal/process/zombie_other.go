//go:build !linux && !windows

package process

import (
	"strconv"
	"strings"

	"github.com/steveyegge/srmauto/internal/util"
)

func isZombie(pid int) bool {
	out, err := util.ExecWithOutput("", "ps", "-o", "stat=", "-p", strconv.Itoa(pid))
	if err != nil {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(out), "Z")
}
