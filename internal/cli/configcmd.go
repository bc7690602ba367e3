package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lu-zhengda/pytestmap/internal/config"
	"github.com/lu-zhengda/pytestmap/internal/utils"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, err := resolveConfigPath()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(cfgPath)
		if err != nil {
			return fmt.Errorf("failed to read config file %q: %w", cfgPath, err)
		}

		_, warnings, err := config.LoadAndValidate(data)
		if err != nil {
			return err
		}

		if jsonFlag {
			return printJSON(buildValidateJSON(cfgPath, warnings))
		}

		if len(warnings) == 0 {
			fmt.Printf("Config OK (%s)\n", cfgPath)
			return nil
		}

		fmt.Printf("Found %d warning(s) in %s:\n", len(warnings), cfgPath)
		for _, w := range warnings {
			if w.Field != "" {
				fmt.Printf("  [%s] %s\n", w.Field, w.Message)
			} else {
				fmt.Printf("  %s\n", w.Message)
			}
			if w.Suggestion != "" {
				fmt.Printf("    suggestion: %s\n", w.Suggestion)
			}
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonFlag {
			return printJSON(appConfig)
		}
		data, err := yaml.Marshal(appConfig)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, err := resolveConfigPath()
		if err != nil {
			return err
		}
		if utils.FileExists(cfgPath) && !configInitForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
		}
		if err := config.Default().Save(cfgPath); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", cfgPath)
		return nil
	},
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultPath()
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
