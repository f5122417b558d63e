package main

import (
	"context"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/akademik/apps/shell"
	"github.com/trezcool/akademik/core"
	"github.com/trezcool/akademik/services/backend"
	"github.com/trezcool/akademik/services/logger"
	"github.com/trezcool/akademik/services/presenter"
)

var std *log.Logger

func main() {
	std = log.New(os.Stderr, "DASHBOARD : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.LoadConfig("config")
	errAndDie(err)

	logger := logsvc.NewRollbarLogger(std, conf)
	defer logger.Flush()
	if !conf.Debug {
		std.SetOutput(ioutil.Discard)
	}

	console := presentersvc.NewConsole(os.Stdin, os.Stdout)
	console.Interactive = term.IsTerminal(int(os.Stdin.Fd()))

	sh, err := shell.New(shell.Options{
		API:       backendsvc.NewClientFromConfig(conf),
		Presenter: console,
		Logger:    logger,
	})
	errAndDie(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// start CLI
	cli := commandLine{shell: sh, console: console, out: os.Stdout}
	if err := cli.run(ctx, os.Args); err != nil {
		if err != errHelp {
			std.SetOutput(os.Stderr)
			std.Printf("\nerror: %s\n", err)
		}
		stop()
		logger.Flush()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		std.Fatal(err)
	}
}
