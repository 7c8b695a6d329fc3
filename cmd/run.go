package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"

	"tedep/internal/app"
	"tedep/internal/cluster"
	"tedep/internal/config"
	"tedep/internal/reconciler"
	"tedep/pkg/logging"
	"tedep/pkg/strings"
)

type runOptions struct {
	reconcileInterval       int
	retryInterval           int
	httpAddress             string
	configPath              string
	debug                   bool
	logFormat               string
	maxConcurrentReconciles int
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <namespace>",
		Short: "Run the tedep controllers in a namespace",
		Long: `Runs every enabled controller against the given namespace and serves
health and metrics over HTTP.

Before anything is watched, each controller checks that the namespace
exists and that its resource type is installed. If any check fails, every
failure is printed and the command exits without starting a controller (exit code 2).

Configuration is read from --config when given; flags that are set
explicitly take precedence over the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.reconcileInterval, "reconcile-interval", int(config.DefaultReconcileInterval/time.Second), "Seconds between reconciles of a healthy object")
	cmd.Flags().IntVar(&opts.retryInterval, "retry-interval", int(config.DefaultRetryInterval/time.Second), "Seconds before retrying a failed reconcile")
	cmd.Flags().StringVar(&opts.httpAddress, "http-address", config.DefaultHTTPAddress, "Listen address of the health and metrics endpoints")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path of a YAML configuration file")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", string(logging.FormatText), "Log format (text or json)")
	cmd.Flags().IntVar(&opts.maxConcurrentReconciles, "max-concurrent-reconciles", 0, "Maximum parallel reconciles per controller (0 = unbounded)")

	return cmd
}

// appConfig translates the flags into the application configuration. Only
// flags set on the command line override the configuration file.
func (o *runOptions) appConfig(cmd *cobra.Command, namespace string) (*app.Config, error) {
	format, err := logging.ParseFormat(o.logFormat)
	if err != nil {
		return nil, err
	}

	cfg := app.NewConfig(namespace, o.configPath, o.debug)
	cfg.LogFormat = format
	cfg.Version = GetVersion()

	flags := cmd.Flags()
	if flags.Changed("reconcile-interval") {
		if o.reconcileInterval <= 0 {
			return nil, fmt.Errorf("--reconcile-interval must be positive, got %d", o.reconcileInterval)
		}
		cfg.ReconcileInterval = time.Duration(o.reconcileInterval) * time.Second
	}
	if flags.Changed("retry-interval") {
		if o.retryInterval <= 0 {
			return nil, fmt.Errorf("--retry-interval must be positive, got %d", o.retryInterval)
		}
		cfg.RetryInterval = time.Duration(o.retryInterval) * time.Second
	}
	if flags.Changed("http-address") {
		cfg.HTTPAddress = o.httpAddress
	}
	if flags.Changed("max-concurrent-reconciles") {
		if o.maxConcurrentReconciles < 0 {
			return nil, fmt.Errorf("--max-concurrent-reconciles must not be negative, got %d", o.maxConcurrentReconciles)
		}
		cfg.MaxConcurrentReconciles = o.maxConcurrentReconciles
	}
	return cfg, nil
}

func (o *runOptions) run(cmd *cobra.Command, namespace string) error {
	cfg, err := o.appConfig(cmd, namespace)
	if err != nil {
		return err
	}

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	restConfig, err := ctrl.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	c, err := cluster.New(restConfig, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to cluster: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx, c); err != nil {
		var startupErr *app.StartupError
		if errors.As(err, &startupErr) {
			printStartupFailures(cmd.ErrOrStderr(), startupErr)
		}
		return err
	}
	return nil
}

// printStartupFailures renders one row per controller that failed its preflight.
func printStartupFailures(w io.Writer, err *app.StartupError) {
	failures := err.Failures()

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("%d controller(s) failed to start", len(failures)))
	t.AppendHeader(table.Row{"#", "CONTROLLER", "NAMESPACE", "CHECK", "REASON", "ERROR"})

	for _, f := range failures {
		check, reason := "-", "-"
		var pe *reconciler.PreflightError
		if errors.As(f.Err, &pe) {
			check = string(pe.Check)
			reason = text.FgRed.Sprint(string(pe.Reason))
		}

		msg := f.Err.Error()
		if pe != nil && pe.Err != nil {
			msg = pe.Err.Error()
		}
		t.AppendRow(table.Row{f.Index, f.Err.Controller, f.Err.Namespace, check, reason, strings.SingleLine(msg, strings.DefaultMessageMaxLen)})
	}

	t.Render()
}
