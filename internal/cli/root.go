package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// exitUsage is returned for flag/usage/initialization errors so 0/1/2 stay
// reserved for the health status contract.
const exitUsage = 3

type options struct {
	configPath string
	verbose    bool
	exitCode   int
}

// NewRootCmd wires the cobra command tree.
func NewRootCmd(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "healthcheck",
		Short: "Operational health evaluation for the RAG deployment",
		Long: `healthcheck runs a fixed battery of probes against the running
deployment (container runtime, declared containers, service endpoints,
system resources, filesystem layout, log freshness and the external
validation hook), aggregates the outcomes and exits 0 (healthy),
1 (warnings) or 2 (failures).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// bare invocation behaves like `healthcheck run`
			return runOnce(cmd, o, false, 0)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&o.configPath, "config", "healthcheck.yaml", "Path to the deployment manifest")
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "Also log diagnostics to stderr")

	root.AddCommand(newRunCmd(o))
	root.AddCommand(newServeCmd(o))
	root.AddCommand(newWatchCmd(o))
	root.AddCommand(newHistoryCmd(o))
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	o := &options{}
	root := NewRootCmd(o)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitUsage
	}
	return o.exitCode
}

func configExplicit(cmd *cobra.Command) bool {
	return cmd.Root().PersistentFlags().Changed("config")
}
