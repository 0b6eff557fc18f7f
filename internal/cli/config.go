package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/sem-merge/internal/config"
	"github.com/dshills/sem-merge/internal/providers"
)

var flagProjectConfig bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage sem-merge configuration",
}

// configTarget returns the file config init and set operate on.
func configTarget() (string, error) {
	if flagProjectConfig {
		return config.ProjectFile, nil
	}
	return config.ConfigPath()
}

func saveTo(path string, cfg config.Config) error {
	if !flagProjectConfig {
		return config.Save(cfg)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configTarget()
		if err != nil {
			return err
		}

		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Config file already exists at %s\n", path)
			return nil
		}

		if err := saveTo(path, config.Default()); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Config file created at %s\n", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  "Set a configuration value. Keys: " + fmt.Sprint(config.Keys),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configTarget()
		if err != nil {
			return err
		}

		cfg := config.Default()
		if err := config.LoadFile(&cfg, path); err != nil {
			return err
		}

		if err := config.SetField(&cfg, args[0], args[1]); err != nil {
			return err
		}

		if err := saveTo(path, cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], args[1])
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, string(data))
		for _, spec := range providers.Specs() {
			state := "not set"
			if cfg.Credentials.Key(spec.Name) != "" {
				state = "set"
			}
			fmt.Fprintf(out, "# %s: %s\n", spec.KeyEnv, state)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.PersistentFlags().BoolVar(&flagProjectConfig, "project", false, "Use "+config.ProjectFile+" in the working directory instead of the user config file")
}
