package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"studytrack/internal/bootstrap"
	focusdto "studytrack/internal/modules/focus/dto"
	subjectdto "studytrack/internal/modules/subject/dto"
	focusview "studytrack/internal/ui/views/focus"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "studytrack",
		Short:         "Track study time per subject",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "directory for config, cache and journal")

	root.AddCommand(newSubjectCmd(&dataDir))
	root.AddCommand(newFocusCmd(&dataDir))
	root.AddCommand(newStatsCmd(&dataDir))
	root.AddCommand(newJournalCmd(&dataDir))
	root.AddCommand(newTUICmd(&dataDir))
	root.AddCommand(newServeCmd(&dataDir))
	return root
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "studytrack")
	}
	return ".studytrack"
}

// withApp builds the app for one command and closes it afterwards.
func withApp(dataDir string, logOutput io.Writer, fn func(*bootstrap.App) error) error {
	app, err := bootstrap.New(bootstrap.Options{DataDir: dataDir, LogOutput: logOutput})
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

func newSubjectCmd(dataDir *string) *cobra.Command {
	subject := &cobra.Command{Use: "subject", Short: "Manage study subjects"}

	var color, image string
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a subject",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*dataDir, nil, func(app *bootstrap.App) error {
				out, err := app.SubjectCLI.Add(cmd.Context(), strings.Join(args, " "), color, image)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", out.Name, out.ID)
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&color, "color", "", "hex color, e.g. #89b4fa")
	addCmd.Flags().StringVar(&image, "image", "", "image reference")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List subjects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, nil, func(app *bootstrap.App) error {
				subjects, err := app.SubjectCLI.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(subjects) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no subjects")
					return nil
				}
				for _, s := range subjects {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", s.ID, s.Color, s.Name)
				}
				return nil
			})
		},
	}

	var newName, newColor, newImage string
	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Rename or recolor a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := subjectdto.UpdateInput{ID: args[0]}
			if cmd.Flags().Changed("name") {
				input.Name = &newName
			}
			if cmd.Flags().Changed("color") {
				input.Color = &newColor
			}
			if cmd.Flags().Changed("image") {
				input.Image = &newImage
			}
			return withApp(*dataDir, nil, func(app *bootstrap.App) error {
				out, err := app.SubjectCLI.Edit(cmd.Context(), input)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "updated %s (%s)\n", out.Name, out.ID)
				return nil
			})
		},
	}
	editCmd.Flags().StringVar(&newName, "name", "", "new name")
	editCmd.Flags().StringVar(&newColor, "color", "", "new hex color")
	editCmd.Flags().StringVar(&newImage, "image", "", "new image reference")

	rmCmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a subject; its sessions are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*dataDir, nil, func(app *bootstrap.App) error {
				if err := app.SubjectCLI.Remove(cmd.Context(), args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
				return nil
			})
		},
	}

	subject.AddCommand(addCmd, listCmd, editCmd, rmCmd)
	return subject
}

func newFocusCmd(dataDir *string) *cobra.Command {
	focus := &cobra.Command{Use: "focus", Short: "Control the focus timer"}

	transition := func(use, short string, fn func(context.Context, *bootstrap.App) (focusdto.StateOutput, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(*dataDir, nil, func(app *bootstrap.App) error {
					st, err := fn(cmd.Context(), app)
					if err != nil {
						return err
					}
					printState(cmd.OutOrStdout(), st)
					return nil
				})
			},
		}
	}

	startCmd := &cobra.Command{
		Use:   "start <subject-id>",
		Short: "Start a new focus chain on a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*dataDir, nil, func(app *bootstrap.App) error {
				st, err := app.FocusCLI.Start(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printState(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, nil, func(app *bootstrap.App) error {
				out, err := app.FocusCLI.Sessions(cmd.Context())
				if err != nil {
					return err
				}
				if len(out.Sessions) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
					return nil
				}
				for _, s := range out.Sessions {
					flag := ""
					if s.IsInterrupted {
						flag = " interrupted"
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s%s\n",
						s.StartTime.Local().Format("2006-01-02 15:04"), focusview.FormatClock(s.DurationSeconds), s.SubjectID, s.Description, flag)
				}
				return nil
			})
		},
	}

	focus.AddCommand(
		startCmd,
		transition("pause", "Pause the running segment", func(ctx context.Context, app *bootstrap.App) (focusdto.StateOutput, error) {
			return app.FocusCLI.Pause(ctx)
		}),
		transition("resume", "Resume the paused chain", func(ctx context.Context, app *bootstrap.App) (focusdto.StateOutput, error) {
			return app.FocusCLI.Resume(ctx)
		}),
		transition("stop", "Stop and reset the chain", func(ctx context.Context, app *bootstrap.App) (focusdto.StateOutput, error) {
			return app.FocusCLI.Stop(ctx)
		}),
		transition("status", "Show the reconciled focus state", func(ctx context.Context, app *bootstrap.App) (focusdto.StateOutput, error) {
			return app.FocusCLI.Status(ctx)
		}),
		sessionsCmd,
	)
	return focus
}

func printState(w io.Writer, st focusdto.StateOutput) {
	switch st.Status {
	case "running":
		note := ""
		if st.Pending {
			note = " (offline, not yet synced)"
		}
		_, _ = fmt.Fprintf(w, "running %s %s%s\n", st.SubjectID, focusview.FormatClock(st.DisplaySeconds), note)
	case "paused":
		_, _ = fmt.Fprintf(w, "paused %s %s\n", st.LastSubjectID, focusview.FormatClock(st.AccumulatedSeconds))
	default:
		_, _ = fmt.Fprintln(w, "idle")
	}
}

func newStatsCmd(dataDir *string) *cobra.Command {
	var window string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show study totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, nil, func(app *bootstrap.App) error {
				out, err := app.AnalyticsCLI.Stats(cmd.Context(), window)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "%s since %s: %s (streak %d days)\n", out.Window, out.From.Format("2006-01-02"), out.Formatted, out.Streak)
				for _, s := range out.Subjects {
					name := s.Name
					if s.Deleted {
						name += " (deleted)"
					}
					_, _ = fmt.Fprintf(w, "  %-24s %s\n", name, s.Formatted)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&window, "window", "week", "today|week|month|Nd")
	return cmd
}

func newJournalCmd(dataDir *string) *cobra.Command {
	journal := &cobra.Command{Use: "journal", Short: "Markdown study journal"}

	var days int
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write one markdown note per day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, nil, func(app *bootstrap.App) error {
				out, err := app.AnalyticsCLI.ExportJournal(cmd.Context(), days)
				if err != nil {
					return err
				}
				for _, note := range out.Notes {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), note)
				}
				return nil
			})
		},
	}
	exportCmd.Flags().IntVar(&days, "days", 7, "number of days back from today")
	journal.AddCommand(exportCmd)
	return journal
}

func newTUICmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal timer",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := os.MkdirAll(*dataDir, 0o755); err != nil {
				return err
			}
			logFile, err := os.OpenFile(filepath.Join(*dataDir, "studytrack.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return err
			}
			defer logFile.Close()
			return withApp(*dataDir, logFile, func(app *bootstrap.App) error {
				return app.RunTUI()
			})
		},
	}
}

func newServeCmd(dataDir *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and keep the focus loop running",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return withApp(*dataDir, nil, func(app *bootstrap.App) error {
				return app.Serve(ctx, addr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to http_addr from config)")
	return cmd
}
