package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/cmd/auth"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/cmd/groups"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/cmd/users"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/client"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/config"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/logger"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/session"
	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

// TokenEnv supplies a token that bypasses the session file.
const TokenEnv = config.EnvPrefix + "_TOKEN"

var (
	configFile string
	sessionDir string
)

var rootCmd = &cobra.Command{
	Use:   "xusersctl",
	Short: "xusers CLI - user and group administration client",
	Long: `xusersctl is the command-line interface for the xusers admin API.
Use it to log in, list and edit users, manage group memberships, or run the
interactive console.

Settings resolve from flags, then XUSERS_* environment variables, then
~/.xusers/config.yaml.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(cmd)
		if err != nil {
			return err
		}
		cmd.SetContext(config.InjectConfig(cmd.Context(), cfg))
		return nil
	},
}

func buildConfig(cmd *cobra.Command) (*config.GlobalConfig, error) {
	dir := sessionDir
	if dir == "" {
		var err error
		if dir, err = session.DefaultDir(); err != nil {
			return nil, err
		}
	}

	v := config.NewViper()
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}
	settings, err := config.Load(v, dir, configFile)
	if err != nil {
		return nil, err
	}

	log := logger.New(settings.LogLevel, cmd.ErrOrStderr())

	var store sdk.SessionStore
	if settings.Ephemeral {
		store = sdk.NewMemoryStore()
	} else {
		fileStore, err := session.NewFileStore(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to create session store: %w", err)
		}
		store = fileStore
	}

	provider := client.NewProvider(settings.ServerURL, store, client.WithLogger(log))
	if token := os.Getenv(TokenEnv); token != "" {
		provider.SetToken(token)
	}

	log.Sugar().Debugw("configuration resolved",
		"server", settings.ServerURL,
		"timeout", settings.Timeout,
		"ephemeral", settings.Ephemeral,
	)
	return &config.GlobalConfig{
		Settings:       *settings,
		Logger:         log,
		Store:          store,
		ClientProvider: provider,
	}, nil
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", client.WithLoginHint(err))
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("server", config.DefaultServerURL, "xusers API server URL")
	flags.String("log-level", config.DefaultLogLevel, "Diagnostic log level (debug, info, warn, error)")
	flags.Duration("timeout", config.DefaultTimeout, "Per-request timeout")
	flags.Bool("ephemeral", false, "Keep the session in memory instead of ~/.xusers/session.json")
	flags.StringVar(&configFile, "config", "", "Config file (default ~/.xusers/config.yaml)")
	flags.StringVar(&sessionDir, "session-dir", "", "Directory holding the session and config files (default ~/.xusers)")

	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(users.UsersCmd)
	rootCmd.AddCommand(groups.GroupsCmd)
	rootCmd.AddCommand(consoleCmd)
}
