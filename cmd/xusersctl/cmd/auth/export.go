package auth

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/config"
	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

// tokenVariable is read by the root command ahead of the session file.
const tokenVariable = config.EnvPrefix + "_TOKEN"

var shellFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the stored token as a shell variable",
	Long: `Prints the stored token as an XUSERS_TOKEN assignment so scripts and CI
jobs can authenticate without a session file.

Supported shells:
  - posix (bash, zsh, sh) - default
  - fish
  - powershell

Usage:
  # POSIX shells (bash/zsh/sh)
  eval $(xusersctl auth export)

  # Fish shell
  eval (xusersctl auth export --shell fish)

  # PowerShell
  xusersctl auth export --shell powershell | Invoke-Expression`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&shellFormat, "shell", "", "Shell format: posix, fish, powershell (auto-detected if not specified)")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := config.MustFromContext(cmd.Context())

	token, ok := sdk.Token(cfg.Store)
	if !ok {
		return fmt.Errorf("no stored token\n\nPlease run 'xusersctl auth login' first")
	}

	shell := strings.ToLower(shellFormat)
	if shell == "" {
		shell = detectShell()
	}
	line, err := exportLine(shell, token)
	if err != nil {
		return err
	}

	// Instructions only when a person is looking, not when piped into eval.
	if isTerminal(cmd.OutOrStdout()) {
		fmt.Fprintln(cmd.ErrOrStderr(), "# Run this command to configure your shell:")
		fmt.Fprintln(cmd.ErrOrStderr(), "#   eval $(xusersctl auth export)")
		fmt.Fprintln(cmd.ErrOrStderr())
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
	return nil
}

func exportLine(shell, token string) (string, error) {
	switch shell {
	case "posix", "bash", "zsh", "sh":
		return fmt.Sprintf("export %s='%s'", tokenVariable, strings.ReplaceAll(token, "'", `'\''`)), nil
	case "fish":
		escaped := strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(token)
		return fmt.Sprintf("set -x %s '%s'", tokenVariable, escaped), nil
	case "powershell", "pwsh", "ps1":
		return fmt.Sprintf("$env:%s='%s'", tokenVariable, strings.ReplaceAll(token, "'", "''")), nil
	}
	return "", fmt.Errorf("unsupported shell format: %s\n\nSupported formats: posix, fish, powershell", shell)
}

// detectShell guesses the shell from $SHELL, defaulting to posix.
func detectShell() string {
	switch filepath.Base(os.Getenv("SHELL")) {
	case "fish":
		return "fish"
	case "pwsh", "powershell":
		return "powershell"
	default:
		return "posix"
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
