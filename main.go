// Cadence keeps a contribution graph steady with scheduled, backdated commits.
package main

import (
	"github.com/huangsam/cadence/cmd"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/internal/runstore"
)

func main() {
	err := cmd.Execute()
	// LogFatal exits, so close the stores before reporting.
	runstore.CloseStores()
	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}
