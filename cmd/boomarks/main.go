package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/boomarks/internal/auth"
	"github.com/nikbrunner/boomarks/internal/tui"
)

var (
	configPath string
	logLevel   string
)

func main() {
	rootCmd := rootCmd()

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/boomarks/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(rmCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(cullCmd())
	rootCmd.AddCommand(openCmd())
	rootCmd.AddCommand(serveCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var user, search, title, url string

	cmd := &cobra.Command{
		Use:   "boomarks",
		Short: "Bookmarks stored on your AT Protocol PDS",
		Long: `boomarks keeps bookmarks as community.lexicon.bookmarks.bookmark
records in your PDS. Without a subcommand it opens the terminal UI.

TUI keys:
  j/k, h/l, gg/G   move (h/l in grid view)
  enter / Y        open in browser / copy URL
  /  t             search (#tag filters tags) / filter by first tag
  v  o             toggle list/grid / toggle newest/oldest first
  a  d             add / delete (own bookmarks only)
  u  r             view another user / reload
  ?  q             help / quit`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := newEnv(ctx, envOptions{})
			if err != nil {
				return err
			}
			defer e.Close()

			signedIn := e.restore(ctx)
			if signedIn == nil && user == "" {
				signedIn = promptLogin(ctx, e, "")
			}

			app := tui.NewApp(tui.AppParams{
				Session:      e.newSession(ctx, signedIn, e.presentation(false, false)),
				Context:      ctx,
				Timeout:      e.cfg.HTTPTimeout,
				Debounce:     e.cfg.SearchDebounce,
				User:         user,
				Search:       search,
				PrefillURL:   url,
				PrefillTitle: title,
			})
			if _, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
				return fmt.Errorf("run app: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "view another user's bookmarks")
	cmd.Flags().StringVarP(&search, "search", "s", "", "initial search term")
	cmd.Flags().StringVar(&title, "title", "", "open the add form with this title")
	cmd.Flags().StringVar(&url, "url", "", "open the add form with this URL")
	return cmd
}

// promptLogin runs the interactive sign-in. It returns nil when the user
// skips it or sign-in fails, leaving the session anonymous.
func promptLogin(ctx context.Context, e *env, handle string) *auth.Session {
	final, err := tea.NewProgram(newLoginPrompt(handle), tea.WithContext(ctx)).Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running login prompt: %v\n", err)
		return nil
	}
	p := final.(loginPrompt)
	if !p.Submitted() {
		return nil
	}

	s, err := e.authn.SignIn(ctx, p.Handle(), p.Password())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sign-in failed: %v\n", err)
		return nil
	}
	return s
}
