// main is the entry point for the brewwater CLI.
package main

import (
	"github.com/huangsam/brewwater/cmd"
	"github.com/huangsam/brewwater/internal/contract"
	"github.com/huangsam/brewwater/internal/iocache"
)

func main() {
	defer iocache.CloseStores()
	defer func() {
		if err := cmd.StopProfiling(); err != nil {
			contract.LogWarn("Cannot stop profiling", err)
		}
	}()

	cmd.SetHistoryManager(iocache.Manager)
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Cannot run brewwater", err)
	}
}
