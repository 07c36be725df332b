package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jalleeeee/profiler/pkg/config"
	"github.com/jalleeeee/profiler/pkg/host"
	"github.com/jalleeeee/profiler/pkg/logger"
	"github.com/jalleeeee/profiler/pkg/substrate"
	"github.com/jalleeeee/profiler/pkg/webchannel"

	"github.com/spf13/cobra"
)

var demoDenyEnable bool

// demoCmd represents the demo command
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted exchange against the simulated host",
	Long:  "Wires the bridge client and the simulated privileged host over an in-process substrate, then queries the menu button state, enables the button, and queries again.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args

		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("failed to load config: %v\n", err)
			os.Exit(1)
		}
		if demoDenyEnable {
			cfg.Host.DenyEnable = true
		}

		appLogger, err := logger.New(cfg.Logging)
		if err != nil {
			fmt.Printf("failed to initialize logger: %v\n", err)
			os.Exit(1)
		}
		slog.SetDefault(appLogger)
		log := slog.Default().With("component", "cmd.demo")

		runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runDemo(runCtx, cfg, cmd.OutOrStdout(), log); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Error("Demo failed", "error", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().BoolVar(&demoDenyEnable, "deny-enable", false, "make the host reject ENABLE_MENU_BUTTON")
}

// runDemo assembles the bridge and walks the full exchange: query the menu
// button state, enable the button, query again.
func runDemo(ctx context.Context, cfg *config.Config, out io.Writer, log *slog.Logger) error {
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

	enabled, err := queryState(ctx, cfg.Bridge, client)
	if err != nil {
		return fmt.Errorf("query menu button state: %w", err)
	}
	fmt.Fprintf(out, "menu button enabled: %v\n", enabled)

	if err := enableButton(ctx, cfg.Bridge, client); err != nil {
		return fmt.Errorf("enable menu button: %w", err)
	}
	fmt.Fprintln(out, "menu button enable confirmed")

	enabled, err = queryState(ctx, cfg.Bridge, client)
	if err != nil {
		return fmt.Errorf("query menu button state: %w", err)
	}
	fmt.Fprintf(out, "menu button enabled: %v\n", enabled)

	stopHost()
	if err := <-hostErr; err != nil {
		return fmt.Errorf("host responder: %w", err)
	}
	return nil
}

func queryState(ctx context.Context, cfg config.BridgeConfig, client *webchannel.Client) (bool, error) {
	callCtx, cancel := withRequestTimeout(ctx, cfg)
	defer cancel()
	return client.QueryMenuButtonEnabled(callCtx)
}

func enableButton(ctx context.Context, cfg config.BridgeConfig, client *webchannel.Client) error {
	callCtx, cancel := withRequestTimeout(ctx, cfg)
	defer cancel()
	return client.EnableMenuButton(callCtx)
}

// withRequestTimeout applies the configured per-call deadline. The bridge
// itself never imposes one; deadlines belong to the caller.
func withRequestTimeout(ctx context.Context, cfg config.BridgeConfig) (context.Context, context.CancelFunc) {
	timeout := cfg.RequestTimeout()
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
