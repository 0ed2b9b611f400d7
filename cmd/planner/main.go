// Command planner is the operator CLI for the study planning engine. It
// generates and edits daily plans, records reviews and runs the individual
// ledger, health and recalibration steps for one learner.
//
// Configuration is read from --config, CONFIG_PATH or ./config.yaml, in
// that order, overridden by environment variables.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
