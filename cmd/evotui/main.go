package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/matheus3301/evowpp/internal/app"
	"github.com/matheus3301/evowpp/internal/session"
	"github.com/matheus3301/evowpp/internal/tui"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const lifecycleTimeout = 15 * time.Second

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	flag.Parse()

	sessionName, err := session.Resolve(*sessionFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(sessionName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(sessionName string) error {
	deps := tui.Deps{SessionName: sessionName}
	fxApp := fx.New(
		app.Module(app.Params{SessionName: sessionName, Exclusive: true}),
		fx.Populate(
			&deps.Session,
			&deps.Configure,
			&deps.Repository,
			&deps.Flash,
			&deps.Sink,
			&deps.Bus,
			&deps.Logger,
		),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), lifecycleTimeout)
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		return err
	}

	ui := tui.NewApp(deps)
	runErr := ui.Run()
	ui.Stop()
	if runErr != nil {
		deps.Logger.Error("tui exited", zap.Error(runErr))
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), lifecycleTimeout)
	defer stopCancel()
	if err := fxApp.Stop(stopCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
	}
	return runErr
}
