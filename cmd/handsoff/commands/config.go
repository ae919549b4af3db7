package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayusman/handsoff/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration handsoff would run with, as YAML.

Values come from the configuration file layered over the defaults.
Pass --path to print only the file location.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		showPath, err := cmd.Flags().GetBool("path")
		if err != nil {
			return fmt.Errorf("failed to read 'path' flag: %w", err)
		}

		if showPath {
			p := configPath
			if p == "" {
				if p, err = config.DefaultPath(); err != nil {
					return err
				}
			}
			fmt.Println(p)
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out, err := cfg.Marshal()
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}

func init() {
	configCmd.Flags().Bool("path", false, "print the configuration file path")
}
