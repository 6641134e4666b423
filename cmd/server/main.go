package main

import (
	"github.com/AmitMY/chimera/internal/server"
	"github.com/AmitMY/chimera/internal/util"
	"github.com/AmitMY/chimera/pkg/logger"
	"github.com/AmitMY/chimera/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  debug,
		Prefix: "viewer",
	})
	logger.Init(consoleLogger)

	server.Init()
}
