package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"tedep/internal/app"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeStartupFailed indicates that at least one controller failed its
	// preflight and nothing was started.
	ExitCodeStartupFailed = 2
)

// rootCmd represents the base command for the tedep entrypoint.
var rootCmd = &cobra.Command{
	Use:   "tedep-ep",
	Short: "Kubernetes controllers for Terraform workspaces",
	Long: `tedep-ep runs the tedep controllers against a Kubernetes cluster.

Every controller watches one resource type in one namespace, keeps its
finalizer on the watched objects and reconciles them periodically.
The cluster connection is taken from the usual kubeconfig locations
(--kubeconfig, KUBECONFIG, in-cluster service account, ~/.kube/config).`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "tedep-ep version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	var startupErr *app.StartupError
	if errors.As(err, &startupErr) {
		return ExitCodeStartupFailed
	}

	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateCRDsCmd())
	rootCmd.AddCommand(newRunCmd())
}
