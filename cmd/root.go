// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scout-cli/internal/config"
	"github.com/xkilldash9x/scout-cli/internal/observability"
)

const envPrefix = "SCOUT"

// cliContext carries the per invocation viper instance and the resolved
// configuration between the root command and its subcommands.
type cliContext struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
}

// NewRootCommand builds the command tree. Every call returns an independent
// tree with its own viper instance, which keeps tests isolated.
func NewRootCommand() *cobra.Command {
	cc := &cliContext{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "scout",
		Short:         "Scout is a semi-autonomous web exploration agent.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cc.initializeConfig(); err != nil {
				// Fallback logger so the failure is still reported in a readable form.
				observability.InitializeLogger(config.NewDefaultConfig().Logger)
				return err
			}
			observability.InitializeLogger(cc.cfg.Logger)
			observability.GetLogger().Debug("Starting Scout-CLI", zap.String("version", Version))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cc.cfgFile, "config", "c", "", "config file (default is ./scout.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newExploreCmd(cc))
	rootCmd.AddCommand(newConfigCmd(cc))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the command tree with ctx. The logger is flushed on return.
func Execute(ctx context.Context) error {
	defer observability.Sync()
	return NewRootCommand().ExecuteContext(ctx)
}

// initializeConfig reads the config file and environment into the viper
// instance and resolves the validated configuration.
func (cc *cliContext) initializeConfig() error {
	v := cc.v
	config.SetDefaults(v)

	if cc.cfgFile != "" {
		v.SetConfigFile(cc.cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("scout")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults/env vars
	}

	cfg, err := config.NewConfigFromViper(v)
	if err != nil {
		return err
	}
	cc.cfg = cfg
	return nil
}
