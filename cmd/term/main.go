package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/portfolio/internal/client"
	"github.com/GriffinCanCode/portfolio/internal/domain/profile"
	"github.com/GriffinCanCode/portfolio/internal/domain/terminal"
	"github.com/GriffinCanCode/portfolio/internal/infrastructure/config"
	"github.com/GriffinCanCode/portfolio/internal/infrastructure/logging"
)

var (
	apiURL      string
	themeName   string
	profileFile string
	logFile     string
	offline     bool
	timeout     time.Duration
	exitDelay   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "term",
	Short: "Portfolio terminal in your shell",
	Long: `term runs the portfolio terminal locally.

Commands execute on this machine; only the project list is fetched from the
portfolio API. Type 'help' once it starts, 'exit' to leave.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := terminal.ParseTheme(themeName); !ok {
			return fmt.Errorf("unknown theme %q", themeName)
		}
		return run(cmd.Context())
	},
}

func init() {
	defaults := config.LoadOrDefault()

	rootCmd.Flags().StringVar(&apiURL, "api-url", defaults.Client.BaseURL, "Portfolio API base URL")
	rootCmd.Flags().StringVar(&themeName, "theme", string(terminal.ThemeCmd), "Initial theme (cmd, magic, angler)")
	rootCmd.Flags().StringVar(&profileFile, "profile", defaults.Terminal.ProfileFile, "Profile TOML file (default: built-in)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Write debug logs to this file")
	rootCmd.Flags().BoolVar(&offline, "offline", false, "Do not fetch projects from the API")
	rootCmd.Flags().DurationVar(&timeout, "timeout", defaults.Client.Timeout, "API request timeout")
	rootCmd.Flags().DurationVar(&exitDelay, "exit-delay", defaults.Terminal.ExitDelay, "Delay before exit restores the default theme")
}

func run(ctx context.Context) error {
	logger := logging.Nop()
	if logFile != "" {
		var err error
		logger, err = logging.New(logging.Config{Level: "debug", OutputPaths: []string{logFile}})
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
	}

	prof := profile.Default()
	if profileFile != "" {
		var err error
		if prof, err = profile.Load(profileFile); err != nil {
			return err
		}
	}

	var source terminal.ProjectSource
	if !offline {
		api := client.New(client.Config{
			BaseURL:   apiURL,
			Timeout:   timeout,
			RetryMax:  2,
			RateLimit: 5,
			Logger:    logger.Component("client"),
		})
		source = client.ProjectSource{Client: api}
	}

	// The program is created after the session, so theme changes reach it
	// through this indirection. Sends happen off the event loop because
	// SetTheme runs inside Update.
	var program *tea.Program
	themes := terminal.NewThemeState(terminal.Theme(themeName), func(t terminal.Theme) {
		if program != nil {
			go program.Send(themeMsg(t))
		}
	})

	session := terminal.NewSession(terminal.Config{
		Profile:   prof,
		Theme:     themes,
		Projects:  source,
		ExitDelay: exitDelay,
		Logger:    logger.Component("terminal"),
	})
	defer session.Close()
	session.Mount(ctx)

	program = tea.NewProgram(newModel(session, themes), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		logger.Error("terminal exited with error", zap.Error(err))
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
