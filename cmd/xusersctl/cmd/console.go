package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/config"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/tui"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open the interactive admin console",
	Long: `Opens a full-screen console with users and groups tabs.

Rows expand in place into their edit forms and membership lists. Without a
stored session the console starts on the login form.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		model := tui.NewModel(tui.Options{
			Clients: cfg.ClientProvider,
			Store:   cfg.Store,
			Logger:  cfg.Logger,
			Timeout: cfg.Timeout,
		})
		program := tea.NewProgram(model,
			tea.WithAltScreen(),
			tea.WithContext(cmd.Context()),
		)
		_, err := program.Run()
		return err
	},
}
