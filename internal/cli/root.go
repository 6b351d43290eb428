// Package cli provides the command-line interface for litedb.
package cli

import (
	"fmt"
	"os"

	"github.com/leapstack-labs/litedb/internal/cli/commands"
	"github.com/leapstack-labs/litedb/internal/cli/config"
	sharedcfg "github.com/leapstack-labs/litedb/internal/config"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "litedb",
		Short: "litedb - a small SQLite data store",
		Long: `litedb opens a single SQLite database file and runs table creation,
queries and mutations against it.

Relative database paths are resolved against the project root (the
directory holding litedb.yaml, or the working directory) and missing
parent directories are created on open.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := config.NewLogger(os.Stderr, cfg.Verbose)
			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)

			if cfg.Verbose && cfgFile != "" {
				logger.Debug("using config file", "path", cfgFile)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./litedb.yaml)")
	flags.String("db", "", "Path to the database file (default: "+sharedcfg.DefaultDatabase+")")
	flags.Bool("relative", sharedcfg.DefaultRelative, "Resolve the database path against the base directory")
	flags.String("base-dir", "", "Base directory for relative database paths (default: project root)")
	flags.Bool("foreign-keys", false, "Enforce foreign key constraints")
	flags.Duration("busy-timeout", sharedcfg.DefaultBusyTimeout, "How long to wait on a locked database")
	flags.Bool("read-only", false, "Open the database read-only")
	flags.StringP("format", "f", "", "Output format (table|json|csv|md|yaml)")
	flags.BoolP("verbose", "v", false, "Verbose output")

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return sharedcfg.Formats, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewCreateTableCommand())
	rootCmd.AddCommand(commands.NewAddColumnCommand())
	rootCmd.AddCommand(commands.NewSelectCommand())
	rootCmd.AddCommand(commands.NewMutateCommand())
	rootCmd.AddCommand(commands.NewExecCommand())
	rootCmd.AddCommand(commands.NewTablesCommand())
	rootCmd.AddCommand(commands.NewSchemaCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewREPLCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for litedb.

To load completions:

Bash:
  $ source <(litedb completion bash)

Zsh:
  $ litedb completion zsh > "${fpath[1]}/_litedb"

Fish:
  $ litedb completion fish | source

PowerShell:
  PS> litedb completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
