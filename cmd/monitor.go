package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jalleeeee/profiler/pkg/config"
	"github.com/jalleeeee/profiler/pkg/host"
	"github.com/jalleeeee/profiler/pkg/logger"
	"github.com/jalleeeee/profiler/pkg/substrate"
	"github.com/jalleeeee/profiler/pkg/ui/monitor"
	"github.com/jalleeeee/profiler/pkg/webchannel"

	"github.com/spf13/cobra"
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch live bridge traffic in the terminal",
	Long:  "Runs the simulated host and a live traffic view over one substrate. Keys fire real bridge calls; every broadcast frame shows up decoded.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args

		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("failed to load config: %v\n", err)
			return
		}

		appLogger, err := logger.New(cfg.Logging)
		if err != nil {
			fmt.Printf("failed to initialize logger: %v\n", err)
			return
		}
		slog.SetDefault(appLogger)
		log := slog.Default().With("component", "cmd.monitor")

		runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runMonitor(runCtx, cfg, log); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Error("Monitor failed", "error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

// runMonitor assembles the bridge and hands the terminal to the traffic
// view until the operator quits.
func runMonitor(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	bus := substrate.NewBroadcast()
	defer bus.Close()

	responder, err := host.NewResponder(bus, cfg.Host, log)
	if err != nil {
		return fmt.Errorf("configure host responder: %w", err)
	}

	hostCtx, stopHost := context.WithCancel(ctx)
	defer stopHost()
	hostErr := make(chan error, 1)
	go func() { hostErr <- responder.Run(hostCtx) }()

	select {
	case <-responder.Ready():
	case <-ctx.Done():
		return ctx.Err()
	}

	client, err := webchannel.NewClient(bus, log)
	if err != nil {
		return fmt.Errorf("configure bridge client: %w", err)
	}

	if err := monitor.Run(ctx, bus, client); err != nil {
		return fmt.Errorf("run traffic view: %w", err)
	}

	stopHost()
	if err := <-hostErr; err != nil {
		return fmt.Errorf("host responder: %w", err)
	}
	return nil
}
