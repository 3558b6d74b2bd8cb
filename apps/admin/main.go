package main

import (
	"fmt"
	"os"

	"github.com/trezcool/shule/core"
	appfs "github.com/trezcool/shule/fs"
	logsvc "github.com/trezcool/shule/services/logger"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(os.Stderr, "ADMIN", conf)
	logger.Enable(!conf.Debug)

	cli := commandLine{
		fsys:   appfs.FS,
		out:    os.Stdout,
		logger: logger,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("admin: %v", err), err)
		}
		os.Exit(1)
	}
}
