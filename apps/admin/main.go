package main

import (
	"context"
	"os"

	"github.com/coursebox/backend/core"
	emailsvc "github.com/coursebox/backend/services/email"
	logsvc "github.com/coursebox/backend/services/logger"
	"github.com/coursebox/backend/storage"
)

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZap(conf)
	if err != nil {
		panic(err)
	}
	rootLogger := logsvc.NewRollbarLogger(zl, conf)
	logger := rootLogger.Named("ADMIN")

	// set up storage
	docs, closeDocs, err := storage.Open(context.Background(), conf, rootLogger.Named("STORE"))
	errAndDie(logger, err)

	// start CLI
	mailSvc := emailsvc.New(conf, logger)
	cli := newCommandLine(conf, docs, mailSvc, logger, os.Stdout)
	err = cli.run(os.Args)
	emailsvc.Wait(mailSvc)

	if cErr := closeDocs(); cErr != nil {
		logger.Error("failed to close storage", cErr)
	}
	rootLogger.Sync()

	if err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		os.Exit(1)
	}
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal("admin setup failed", err)
	}
}
