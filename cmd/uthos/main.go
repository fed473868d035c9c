// Command uthos manages Utho object storage from the shell and can run a
// local emulator of the API.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}
