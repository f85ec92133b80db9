package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/boomarks/internal/auth"
	"github.com/nikbrunner/boomarks/internal/culler"
	"github.com/nikbrunner/boomarks/internal/exporter"
	"github.com/nikbrunner/boomarks/internal/importer"
	"github.com/nikbrunner/boomarks/internal/logger"
	"github.com/nikbrunner/boomarks/internal/model"
	"github.com/nikbrunner/boomarks/internal/picker"
	"github.com/nikbrunner/boomarks/internal/render"
	"github.com/nikbrunner/boomarks/internal/search"
	"github.com/nikbrunner/boomarks/internal/session"
	"github.com/nikbrunner/boomarks/internal/web"
)

var errNotSignedIn = errors.New("not signed in, run 'boomarks login <handle>' first")

// loadView points a fresh session at user, or at the signed-in account.
func loadView(ctx context.Context, e *env, user string, opts session.Options) (*session.AppSession, error) {
	signedIn := e.restore(ctx)
	sess := e.newSession(ctx, signedIn, opts)

	var err error
	switch {
	case user != "":
		err = sess.ViewGuest(ctx, user)
	case signedIn != nil:
		err = sess.LoadSelf(ctx)
	default:
		return nil, errNotSignedIn
	}
	if err := loadFailure(err); err != nil {
		return nil, err
	}
	if notice := sess.Notice(); notice != "" {
		fmt.Fprintln(os.Stderr, notice)
	}
	return sess, nil
}

// loadSelf is loadView for commands that write.
func loadSelf(ctx context.Context, e *env) (*session.AppSession, error) {
	signedIn := e.restore(ctx)
	if signedIn == nil {
		return nil, errNotSignedIn
	}
	sess := e.newSession(ctx, signedIn, session.Options{})
	if err := loadFailure(sess.LoadSelf(ctx)); err != nil {
		return nil, err
	}
	return sess, nil
}

// loadFailure turns a load error into a command error. A repository
// without the bookmark collection yet holds zero bookmarks, which import
// and add still write into.
func loadFailure(err error) error {
	if err == nil || errors.Is(err, session.ErrLexiconAbsent) {
		return nil
	}
	return errors.New(session.Notice(err))
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <handle>",
		Short: "Sign in with an app password",
		Long:  "Sign in with an app password. BOOMARKS_APP_PASSWORD skips the prompt.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := newEnv(ctx, envOptions{})
			if err != nil {
				return err
			}
			defer e.Close()

			var s *auth.Session
			if password := os.Getenv("BOOMARKS_APP_PASSWORD"); password != "" {
				s, err = e.authn.SignIn(ctx, args[0], password)
				if err != nil {
					return err
				}
			} else if s = promptLogin(ctx, e, args[0]); s == nil {
				return errors.New("not signed in")
			}

			fmt.Printf("Signed in as @%s (%s)\n", s.Handle, s.DID)
			return nil
		},
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := newEnv(ctx, envOptions{})
			if err != nil {
				return err
			}
			defer e.Close()

			signedIn := e.restore(ctx)
			if signedIn == nil {
				// A rejected session was already cleared by restore.
				fmt.Println("Not signed in")
				return nil
			}
			if err := e.newSession(ctx, signedIn, session.Options{}).Logout(ctx); err != nil {
				return err
			}
			fmt.Printf("Signed out @%s\n", signedIn.Handle)
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	var user, term string
	var grid, oldest bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print bookmarks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := newEnv(ctx, envOptions{})
			if err != nil {
				return err
			}
			defer e.Close()

			sess, err := loadView(ctx, e, user, e.presentation(grid, oldest))
			if err != nil {
				return err
			}
			printView(cmd.OutOrStdout(), sess.Render(time.Now(), term), sess.Count())
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "list another user's bookmarks")
	cmd.Flags().StringVarP(&term, "search", "s", "", "only show matches (#tag filters tags)")
	cmd.Flags().BoolVar(&grid, "grid", false, "card layout")
	cmd.Flags().BoolVar(&oldest, "oldest", false, "oldest first")
	return cmd
}

// printView writes the view-model as plain text.
func printView(w io.Writer, view render.View, count int) {
	switch view.Layout {
	case render.LayoutGrid:
		for _, c := range view.Cards {
			if c.Hidden {
				continue
			}
			title := c.Primary
			if c.Secondary != "" {
				title += " / " + c.Secondary
			}
			fmt.Fprintf(w, "[%s on %s, %s] %s\n", c.Style.Foreground, c.Style.Background, c.Style.FontFamily, title)
			fmt.Fprintf(w, "    %s", c.URL)
			if len(c.Tags) > 0 {
				fmt.Fprintf(w, "  %s", strings.Join(c.Tags, " "))
			}
			fmt.Fprintln(w)
		}
	default:
		for _, r := range view.Rows {
			if r.Hidden {
				continue
			}
			fmt.Fprintf(w, "%s  (%s)\n", r.Title, r.Date)
			fmt.Fprintf(w, "    %s", r.URL)
			if len(r.Tags) > 0 {
				fmt.Fprintf(w, "  %s", strings.Join(r.Tags, " "))
			}
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintf(w, "%d bookmarks in PDS", count)
	if view.Visible != view.Total {
		fmt.Fprintf(w, " (%d shown)", view.Visible)
	}
	fmt.Fprintln(w)
}

func addCmd() *cobra.Command {
	var title, tags string

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Add a bookmark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := newEnv(ctx, envOptions{})
			if err != nil {
				return err
			}
			defer e.Close()

			signedIn := e.restore(ctx)
			if signedIn == nil {
				return errNotSignedIn
			}
			b, err := e.newSession(ctx, signedIn, session.Options{}).Create(ctx, args[0], title, tags)
			if err != nil {
				return errors.New(session.Notice(err))
			}
			fmt.Printf("Saved %s\n  %s\n", b.ResolvedTitle(), b.RecordURI)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "bookmark title")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags")
	return cmd
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <record-uri>",
		Short: "Delete a bookmark by its at:// record URI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := newEnv(ctx, envOptions{})
			if err != nil {
				return err
			}
			defer e.Close()

			sess, err := loadSelf(ctx, e)
			if err != nil {
				return err
			}
			uri := args[0]
			if !containsURI(sess.Bookmarks(), uri) {
				return fmt.Errorf("no bookmark %s", uri)
			}
			if err := sess.Delete(ctx, uri); err != nil {
				return errors.New(session.Notice(err))
			}
			fmt.Printf("Deleted %s\n", uri)
			return nil
		},
	}
}

func containsURI(bookmarks []model.Bookmark, uri string) bool {
	for _, b := range bookmarks {
		if b.RecordURI == uri {
			return true
		}
	}
	return false
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.html>",
		Short: "Import a Netscape bookmark file, folders become tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := newEnv(ctx, envOptions{})
			if err != nil {
				return err
			}
			defer e.Close()

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer file.Close()

			entries, err := importer.ParseHTMLBookmarks(file)
			if err != nil {
				return fmt.Errorf("parse HTML: %w", err)
			}

			sess, err := loadSelf(ctx, e)
			if err != nil {
				return err
			}

			sum, err := importer.Import(ctx, sess, entries, e.log)
			fmt.Printf("Imported %d bookmarks", sum.Created)
			if sum.Skipped > 0 {
				fmt.Printf(" (%d duplicates skipped)", sum.Skipped)
			}
			if sum.Failed > 0 {
				fmt.Printf(" (%d failed, see log)", sum.Failed)
			}
			fmt.Println()
			if err != nil {
				return errors.New(session.Notice(err))
			}
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Export bookmarks to Netscape HTML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := newEnv(ctx, envOptions{})
			if err != nil {
				return err
			}
			defer e.Close()

			outputPath := ""
			if len(args) == 1 {
				outputPath = args[0]
			} else if outputPath, err = exporter.DefaultExportPath(time.Now()); err != nil {
				return fmt.Errorf("default export path: %w", err)
			}

			sess, err := loadView(ctx, e, user, session.Options{})
			if err != nil {
				return err
			}
			bookmarks := render.DisplayOrder(sess.Bookmarks(), false)
			if err := exporter.WriteFile(outputPath, bookmarks); err != nil {
				return fmt.Errorf("write file: %w", err)
			}
			fmt.Printf("Exported %d bookmarks to %s\n", len(bookmarks), outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "export another user's bookmarks")
	return cmd
}

func cullCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "cull",
		Short: "Find dead links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := newEnv(ctx, envOptions{})
			if err != nil {
				return err
			}
			defer e.Close()

			sess, err := loadView(ctx, e, user, session.Options{})
			if err != nil {
				return err
			}

			results := culler.CheckURLs(ctx, sess.Bookmarks(), culler.Options{
				Concurrency:    e.cfg.Cull.Concurrency,
				Timeout:        e.cfg.Cull.Timeout,
				ExcludeDomains: e.cfg.Cull.ExcludeDomains,
				OnProgress: func(completed, total int) {
					fmt.Fprintf(os.Stderr, "\rChecking %d/%d", completed, total)
				},
			})
			fmt.Fprintln(os.Stderr)

			printCullReport(cmd.OutOrStdout(), results)
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "check another user's bookmarks")
	return cmd
}

func printCullReport(w io.Writer, results []culler.Result) {
	for _, r := range results {
		switch r.Status {
		case culler.Dead:
			fmt.Fprintf(w, "DEAD  %d  %s\n      %s\n", r.StatusCode, r.Bookmark.ResolvedTitle(), r.Bookmark.Subject)
		case culler.Unreachable:
			fmt.Fprintf(w, "??    %s  %s\n      %s\n", r.Error, r.Bookmark.ResolvedTitle(), r.Bookmark.Subject)
		}
	}
	counts := culler.Summarize(results)
	fmt.Fprintf(w, "%d healthy, %d dead, %d unreachable\n",
		counts[culler.Healthy], counts[culler.Dead], counts[culler.Unreachable])
}

func openCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "open <query>",
		Short: "Fuzzy find a bookmark and open it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			query := strings.Join(args, " ")

			e, err := newEnv(ctx, envOptions{})
			if err != nil {
				return err
			}
			defer e.Close()

			sess, err := loadView(ctx, e, user, session.Options{})
			if err != nil {
				return err
			}

			results := search.FuzzySearchBookmarks(sess.Bookmarks(), query)
			if len(results) == 0 {
				fmt.Printf("No bookmarks found for '%s'\n", query)
				return nil
			}

			var selected *model.Bookmark
			if len(results) == 1 {
				selected = results[0].Bookmark
				fmt.Printf("Opening: %s\n", selected.ResolvedTitle())
			} else {
				final, err := tea.NewProgram(picker.New(results, query), tea.WithContext(ctx)).Run()
				if err != nil {
					return fmt.Errorf("run picker: %w", err)
				}
				p := final.(picker.Picker)
				if p.Cancelled() {
					return nil
				}
				selected = p.SelectedBookmark()
			}
			if selected == nil {
				return nil
			}

			return picker.OpenURL(selected.Subject)
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "search another user's bookmarks")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := newEnv(ctx, envOptions{logToStderr: true})
			if err != nil {
				return err
			}
			defer e.Close()

			if addr == "" {
				addr = e.cfg.Serve.Addr
			}

			srv := web.New(web.Params{
				Addr:    addr,
				Session: e.newSession(ctx, e.restore(ctx), e.presentation(false, false)),
				Logger:  e.log.With(logger.String("component", "web")),
				Timeout: e.cfg.HTTPTimeout,
			})

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case <-ctx.Done():
				e.log.Info("shutting down gracefully")
			case err := <-errCh:
				return err
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Stop(shutdownCtx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config)")
	return cmd
}
