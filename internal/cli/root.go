package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lu-zhengda/pytestmap/internal/config"
)

var (
	jsonFlag    bool
	verboseFlag bool
	configPath  string
	appConfig   *config.Config
	logger      = zap.NewNop()
	closeLog    = func() {}

	// Set via ldflags at build time.
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "pytestmap [reports...]",
	Short: "Explore pytest durations as a zoomable treemap",
	Long: "pytestmap reads pytest JSON reports and shows where test time goes as a nested treemap.\n" +
		"Launch with report files (or - for stdin) for the interactive viewer.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Flags().Changed("version") {
			appConfig = config.Default()
			return nil
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		appConfig = cfg

		if cmd.Name() != "validate" {
			for _, w := range appConfig.Validate() {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w.Message)
			}
		}

		l, closeFn, err := newLogger(appConfig.Log, verboseFlag, isInteractive(cmd))
		if err != nil {
			return err
		}
		logger, closeLog = l, closeFn
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLog()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if shell, _ := cmd.Flags().GetString("generate-completion"); shell != "" {
			switch shell {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			default:
				return fmt.Errorf("unsupported shell: %s (use bash, zsh, or fish)", shell)
			}
		}
		if len(reportArgs(args)) == 0 {
			return cmd.Help()
		}
		return runViewer(cmd, args, viewFlags)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("pytestmap %s\n", version))
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log debug details")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.config/pytestmap/config.yaml)")
	rootCmd.Flags().String("generate-completion", "", "Generate shell completion (bash, zsh, fish)")
	rootCmd.Flags().MarkHidden("generate-completion")
	addLoadFlags(rootCmd, &viewFlags)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(messageCmd)
	rootCmd.AddCommand(configCmd)
}

// RootCmd returns the root cobra command for documentation generation.
func RootCmd() *cobra.Command {
	return rootCmd
}

// isInteractive reports whether cmd takes over the terminal, in which case
// logs must not go to stderr.
func isInteractive(cmd *cobra.Command) bool {
	if !cmd.HasParent() {
		return true
	}
	if cmd.Name() == "message" {
		out, _ := cmd.Flags().GetString("output")
		return out == "" && !jsonFlag
	}
	return false
}
