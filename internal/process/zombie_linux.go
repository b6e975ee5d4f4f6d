package process

import (
	"os"
	"strconv"
	"strings"
)

// isZombie reads the state field of /proc/<pid>/stat.
func isZombie(pid int) bool {
	data, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/stat")
	if err != nil {
		return false
	}
	// The command name is parenthesized and may itself contain ") ".
	s := string(data)
	i := strings.LastIndexByte(s, ')')
	if i < 0 || i+2 >= len(s) {
		return false
	}
	return s[i+2] == 'Z'
}
