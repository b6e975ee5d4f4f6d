// srmauto stops Steam and runs Steam ROM Manager to refresh shortcuts.
package main

import (
	"os"

	"github.com/steveyegge/srmauto/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
