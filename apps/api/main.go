package main

import (
	"context"
	"expvar"
	"net/http"
	_ "net/http/pprof" // register the /debug/pprof handlers
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/coursebox/backend/apps"
	echoapi "github.com/coursebox/backend/apps/api/echo"
	"github.com/coursebox/backend/core"
	emailsvc "github.com/coursebox/backend/services/email"
	logsvc "github.com/coursebox/backend/services/logger"
	"github.com/coursebox/backend/storage"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	zl, err := logsvc.NewZap(conf)
	if err != nil {
		return errors.Wrap(err, "building zap logger")
	}
	rootLogger := logsvc.NewRollbarLogger(zl, conf)
	defer rootLogger.Sync()

	logger := rootLogger.Named("API")
	storeLogger := rootLogger.Named("STORE")

	// set up storage
	docs, closeDocs, err := storage.Open(context.Background(), conf, storeLogger)
	if err != nil {
		logger.Error("opening storage", err)
		return err
	}
	defer func() {
		if err := closeDocs(); err != nil {
			storeLogger.Error("failed to close storage", err)
		}
	}()

	// set up services
	mailSvc := emailsvc.New(conf, logger)
	defer emailsvc.Wait(mailSvc)
	svcs := apps.NewServices(conf, docs, mailSvc, logger)

	if err = core.ParseEmailTemplates(); err != nil {
		logger.Error("parsing email templates", err)
		return err
	}
	if conf.SuperAdminEmail == "" {
		logger.Warn("no super-admin configured: access requests cannot be approved through the API")
	}

	// =========================================================================
	// Initialize App

	logger.Info("application initializing", "version", conf.Build, "env", conf.Env)
	defer logger.Info("application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("storage").Set(conf.Storage.Driver)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error("debug server closed", err)
		}
	}()

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(
		conf.Server.Address,
		func() { shutdown <- syscall.SIGTERM },
		&echoapi.Deps{
			Conf:         conf,
			Logger:       logger,
			Access:       svcs.Access,
			LessonSvc:    svcs.Lessons,
			ExamSvc:      svcs.Exams,
			ResultSvc:    svcs.Results,
			UserSvc:      svcs.Users,
			ContentSvc:   svcs.Content,
			TopicSvc:     svcs.Topics,
			DashboardSvc: svcs.Dashboard,
		},
	)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API listening", "address", conf.Server.Address)
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		logger.Error("server error", err)
		return err

	case sig := <-shutdown:
		logger.Info("start shutdown", "signal", sig.String())

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error("could not stop server gracefully", err)

			if err = server.Close(); err != nil {
				logger.Error("could not force stop server", err)
				return err
			}
		}
	}
	return nil
}
