// Package cmd implements historyctl, an operator CLI that runs history
// searches directly against the REST backend.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"backoffice/internal/history/adapters/backend"
	"backoffice/internal/platform/config"
)

const envPrefix = "HISTORYCTL"

// Execute runs the root command. Called once by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// NewRootCmd builds a fresh command tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "historyctl",
		Short: "Search client and order history from the command line",
		Long: `historyctl reconciles a search term (name, phone or email) against the
backend's registered clients and orders, the same way the back-office does.

Settings come from flags, HISTORYCTL_* environment variables, or
~/.historyctl.yaml.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v, cfgFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $HOME/.historyctl.yaml)")
	flags.String("backend-url", "", "base URL of the REST backend")
	flags.String("backend-token", "", "bearer token for the backend")
	flags.String("clients-path", config.DefaultClientsPath, "path of the clients collection")
	flags.String("orders-path", config.DefaultOrdersPath, "path of the orders collection")
	flags.Duration("timeout", config.DefaultTimeout, "per-collection fetch timeout")
	flags.Bool("json", false, "output as JSON")

	cobra.CheckErr(v.BindPFlag("backend.url", flags.Lookup("backend-url")))
	cobra.CheckErr(v.BindPFlag("backend.token", flags.Lookup("backend-token")))
	cobra.CheckErr(v.BindPFlag("backend.clients_path", flags.Lookup("clients-path")))
	cobra.CheckErr(v.BindPFlag("backend.orders_path", flags.Lookup("orders-path")))
	cobra.CheckErr(v.BindPFlag("backend.timeout", flags.Lookup("timeout")))
	cobra.CheckErr(v.BindPFlag("json", flags.Lookup("json")))

	root.AddCommand(newSearchCmd(v), newOrdersCmd(v))
	return root
}

func initConfig(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(".historyctl")
	}

	if err := v.ReadInConfig(); err != nil {
		// The default config file is optional; an explicit one is not.
		if _, missing := err.(viper.ConfigFileNotFoundError); !missing || cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// backendFrom builds the backend client from resolved settings.
func backendFrom(v *viper.Viper) (*backend.Client, error) {
	url := strings.TrimRight(v.GetString("backend.url"), "/")
	if url == "" {
		return nil, fmt.Errorf("backend URL is required (--backend-url or %s_BACKEND_URL)", envPrefix)
	}
	timeout := v.GetDuration("backend.timeout")
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	return backend.New(config.BackendConfig{
		BaseURL:     url,
		Token:       v.GetString("backend.token"),
		ClientsPath: v.GetString("backend.clients_path"),
		OrdersPath:  v.GetString("backend.orders_path"),
		Timeout:     timeout,
	}), nil
}
