package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/harrisonrobin/gradary/pkg/app"
	"github.com/harrisonrobin/gradary/pkg/auth"
	"github.com/harrisonrobin/gradary/pkg/colors"
	"github.com/harrisonrobin/gradary/pkg/config"
	"github.com/harrisonrobin/gradary/pkg/dashboard"
	"github.com/harrisonrobin/gradary/pkg/focus"
	"github.com/harrisonrobin/gradary/pkg/google"
	"github.com/harrisonrobin/gradary/pkg/index"
	"github.com/harrisonrobin/gradary/pkg/model"
	"github.com/harrisonrobin/gradary/pkg/orgmode"
	"github.com/harrisonrobin/gradary/pkg/tasks"
	"github.com/harrisonrobin/gradary/pkg/taskwarrior"
	"github.com/harrisonrobin/gradary/pkg/tui"
	"github.com/harrisonrobin/gradary/pkg/urgency"
	"github.com/harrisonrobin/gradary/pkg/util"
)

// cli carries what every command needs: where config lives and the loaded config.
type cli struct {
	configDir string
	cfg       *config.Config
	now       func() time.Time
}

func newRootCmd() *cobra.Command {
	return newRootCmdAt(time.Now)
}

func newRootCmdAt(now func() time.Time) *cobra.Command {
	c := &cli{now: now}

	rootCmd := &cobra.Command{
		Use:          "gradary",
		Short:        "Track coursework deadlines, study goals and focus sessions",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}
	rootCmd.PersistentFlags().StringVar(&c.configDir, "config-dir", "", "configuration directory (default ~/.config/gradary)")

	rootCmd.AddCommand(
		c.addCmd(),
		c.listCmd(),
		c.doneCmd(),
		c.rmCmd(),
		c.dashboardCmd(),
		c.subjectsCmd(),
		c.goalsCmd(),
		c.focusCmd(),
		c.importCmd(),
		c.calendarCmd(),
		c.configCmd(),
	)
	return rootCmd
}

func (c *cli) loadConfig() error {
	if c.configDir == "" {
		dir, err := config.Dir()
		if err != nil {
			return fmt.Errorf("could not find path to configuration directory: %w", err)
		}
		c.configDir = dir
	}
	cfg, err := config.Load(c.configDir)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

func (c *cli) open() (*app.State, error) {
	return app.Open(c.cfg.Backend, c.cfg.ResolveDataDir(c.configDir), app.WithClock(c.now))
}

// withState opens the store for the duration of fn.
func (c *cli) withState(fn func(*app.State) error) error {
	state, err := c.open()
	if err != nil {
		return err
	}
	defer func() {
		if err := state.Close(); err != nil {
			log.Printf("Warning: failed to close store: %v", err)
		}
	}()
	return fn(state)
}

func (c *cli) addCmd() *cobra.Command {
	var subject, typ, due string
	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := tasks.ParseInput(strings.Join(args, " "), subject, typ, due)
			if err != nil {
				return err
			}
			return c.withState(func(s *app.State) error {
				created, err := s.Tasks.Import([]tasks.Input{in})
				for _, t := range created {
					fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s\n", shortID(t.ID), t.Title)
				}
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "subject or course (required)")
	cmd.Flags().StringVarP(&typ, "type", "t", string(model.Assignment), "assignment, exam, project, lab or other")
	cmd.Flags().StringVarP(&due, "due", "d", "", "due date as YYYY-MM-DD (required)")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var pending, completed bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks with their urgency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withState(func(s *app.State) error {
				list := s.Tasks.All()
				switch {
				case pending:
					list = s.Tasks.Pending()
				case completed:
					list = s.Tasks.Completed()
				}
				writeTasks(cmd.OutOrStdout(), list, s.Now())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&pending, "pending", false, "only pending tasks")
	cmd.Flags().BoolVar(&completed, "completed", false, "only completed tasks")
	cmd.MarkFlagsMutuallyExclusive("pending", "completed")
	return cmd
}

func (c *cli) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done ID",
		Short: "Toggle a task between pending and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withState(func(s *app.State) error {
				t, err := s.Tasks.Resolve(args[0])
				if err != nil {
					return err
				}
				if err := s.Tasks.Toggle(t.ID); err != nil {
					return err
				}
				state := "completed"
				if t.Completed {
					state = "pending"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", t.Title, state)
				return nil
			})
		},
	}
}

func (c *cli) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withState(func(s *app.State) error {
				t, err := s.Tasks.Resolve(args[0])
				if err != nil {
					return err
				}
				if err := s.Tasks.Delete(t.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", t.Title)
				return nil
			})
		},
	}
}

func (c *cli) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show totals, priority tasks and workload",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withState(func(s *app.State) error {
				writeDashboard(cmd.OutOrStdout(), s.Summary(), s.Goals.Get(), s.Now())
				return nil
			})
		},
	}
}

func (c *cli) subjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subjects",
		Short: "Show progress per subject",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withState(func(s *app.State) error {
				writeSubjects(cmd.OutOrStdout(), s.Summary().Subjects)
				return nil
			})
		},
	}
}

func (c *cli) goalsCmd() *cobra.Command {
	var cgpa string
	var hours float64
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Show or set study goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withState(func(s *app.State) error {
				if cmd.Flags().Changed("cgpa") {
					if err := s.Goals.SetCGPATarget(cgpa); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("hours") {
					if err := s.Goals.SetDailyStudyHours(hours); err != nil {
						return err
					}
				}
				writeGoals(cmd.OutOrStdout(), s.Goals.Get())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&cgpa, "cgpa", "", "CGPA target; empty clears it")
	cmd.Flags().Float64Var(&hours, "hours", 0, "daily study hours")
	return cmd
}

func (c *cli) focusCmd() *cobra.Command {
	var minutes int
	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Run the focus timer",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("minutes") {
				minutes = c.cfg.FocusMinutes
			}
			if minutes <= 0 {
				return fmt.Errorf("%w: %d", focus.ErrInvalidDuration, minutes)
			}
			return c.withState(func(s *app.State) error {
				timer := focus.New(focus.WithMinutes(minutes))
				defer timer.Reset()

				m := tui.NewFocusModel(timer, s.Summary().Priority)
				_, err := tea.NewProgram(m, tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout())).Run()
				return err
			})
		},
	}
	cmd.Flags().IntVarP(&minutes, "minutes", "m", focus.DefaultMinutes, "session length in minutes")
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	var fromOrg, fromTaskwarrior bool
	cmd := &cobra.Command{
		Use:   "import (--org FILE... | --taskwarrior [FILE])",
		Short: "Import tasks from Org-mode files or Taskwarrior",
		Long: `Import tasks from Org-mode files or a Taskwarrior export.

With --taskwarrior and no FILE, "task export" is run. A FILE of "-" reads stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var inputs []tasks.Input
			switch {
			case fromOrg:
				if len(args) == 0 {
					return errors.New("--org needs at least one file")
				}
				parsed, err := orgmode.ParseFiles(args)
				if err != nil {
					return err
				}
				inputs = parsed
			case fromTaskwarrior:
				twTasks, err := readTaskwarrior(cmd, args)
				if err != nil {
					return err
				}
				inputs = taskwarrior.ToInputs(twTasks, time.Local)
			default:
				return errors.New("one of --org or --taskwarrior is required")
			}

			return c.withState(func(s *app.State) error {
				created, err := s.Tasks.Import(inputs)
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks\n", len(created))
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&fromOrg, "org", false, "read Org-mode files")
	cmd.Flags().BoolVar(&fromTaskwarrior, "taskwarrior", false, "read Taskwarrior export JSON")
	cmd.MarkFlagsMutuallyExclusive("org", "taskwarrior")
	return cmd
}

func readTaskwarrior(cmd *cobra.Command, args []string) ([]taskwarrior.Task, error) {
	client := taskwarrior.NewClient()
	if len(args) == 0 {
		return client.GetTasks(cmd.Context(), nil)
	}
	if args[0] == "-" {
		return client.ParseTasks(cmd.InOrStdin())
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return client.ParseTasks(f)
}

func (c *cli) calendarCmd() *cobra.Command {
	calendarCmd := &cobra.Command{
		Use:   "calendar",
		Short: "Export tasks to Google Calendar",
	}

	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.RemoveToken(c.configDir); err != nil {
				return err
			}
			if _, err := auth.GetCalendarService(cmd.Context(), c.configDir); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Authentication successful! Token saved to %s\n", auth.TokenFile)
			return nil
		},
	}

	var calendarName string
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Create, update and remove calendar events to match tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			name := c.cfg.Calendar
			if calendarName != "" {
				name = calendarName
			}
			return c.withState(func(s *app.State) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
				defer cancel()

				client, err := google.NewClient(ctx, c.configDir, name, index.NewEventIndex(s.Gateway))
				if err != nil {
					return err
				}
				report, err := client.Sync(ctx, s.Tasks.All(), colors.NewColorCache(s.Gateway), s.Now())
				fmt.Fprintf(cmd.OutOrStdout(), "Synced to %q: %d created, %d updated, %d unchanged, %d deleted, %d skipped, %d failed\n",
					name, report.Created, report.Updated, report.Unchanged, report.Deleted, report.Skipped, report.Failed)
				return err
			})
		},
	}
	syncCmd.Flags().StringVar(&calendarName, "calendar", "", "calendar name (overrides config)")

	calendarCmd.AddCommand(authCmd, syncCmd)
	return calendarCmd
}

func (c *cli) configCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "backend: %s\n", c.cfg.Backend)
			fmt.Fprintf(out, "data_dir: %s\n", c.cfg.ResolveDataDir(c.configDir))
			fmt.Fprintf(out, "calendar: %s\n", c.cfg.Calendar)
			fmt.Fprintf(out, "focus_minutes: %d\n", c.cfg.FocusMinutes)
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:       "set KEY VALUE",
		Short:     "Set backend, data_dir, calendar or focus_minutes",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"backend", "data_dir", "calendar", "focus_minutes"},
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			switch key {
			case "backend":
				c.cfg.Backend = value
			case "data_dir":
				c.cfg.DataDir = value
			case "calendar":
				c.cfg.Calendar = value
			case "focus_minutes":
				m, err := strconv.Atoi(value)
				if err != nil {
					return fmt.Errorf("focus_minutes must be a whole number: %w", err)
				}
				c.cfg.FocusMinutes = m
			default:
				return fmt.Errorf("unknown config key %q", key)
			}
			if err := config.Save(c.configDir, c.cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s set to: %s\n", key, value)
			return nil
		},
	}

	configCmd.AddCommand(setCmd)
	return configCmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func badge(t urgency.Tier) string {
	return tui.TierStyle(t).Render(string(t))
}

func writeTasks(w io.Writer, list []model.Task, now time.Time) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSUBJECT\tTYPE\tDUE\tSTATUS")
	for _, t := range list {
		status := "done"
		if !t.Completed {
			status = badge(urgency.Classify(t.DueDate, now))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(t.ID), t.Title, t.Subject, t.Type, util.FormatDate(t.DueDate), status)
	}
	tw.Flush()
}

func writeDashboard(w io.Writer, sum dashboard.Summary, g model.Goals, now time.Time) {
	fmt.Fprintf(w, "%s!\n\n", dashboard.Greeting(now))
	fmt.Fprintf(w, "Tasks: %d total, %d completed, %d pending\n",
		sum.Counts.Total, sum.Counts.Completed, sum.Counts.Pending)
	fmt.Fprintf(w, "Pending by type: %d assignment, %d exam, %d project, %d lab\n",
		sum.Types.Assignment, sum.Types.Exam, sum.Types.Project, sum.Types.Lab)
	fmt.Fprintf(w, "Streak: %d days\n", g.Streak)

	fmt.Fprintln(w, "\nPriority:")
	if len(sum.Priority) == 0 {
		fmt.Fprintln(w, "  Nothing pending.")
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, item := range sum.Priority {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n",
			item.Task.Title, item.Task.Subject, util.FormatDate(item.Task.DueDate), badge(item.Urgency))
	}
	tw.Flush()

	if len(sum.Subjects) > 0 {
		fmt.Fprintln(w, "\nSubjects:")
		writeSubjects(w, sum.Subjects)
	}
}

func writeSubjects(w io.Writer, subjects []dashboard.SubjectRollup) {
	if len(subjects) == 0 {
		fmt.Fprintln(w, "No subjects.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SUBJECT\tDONE\tPENDING\tPROGRESS\tWORKLOAD")
	for _, s := range subjects {
		fmt.Fprintf(tw, "%s\t%d/%d\t%d\t%d%%\t%s\n", s.Subject, s.Completed, s.Total, s.Pending, s.Percent, s.Workload)
	}
	tw.Flush()
}

func writeGoals(w io.Writer, g model.Goals) {
	cgpa := "not set"
	if g.CGPATarget.IsSet() {
		cgpa = g.CGPATarget.String()
	}
	fmt.Fprintf(w, "CGPA target: %s\n", cgpa)
	fmt.Fprintf(w, "Daily study hours: %g\n", g.DailyStudyHours)
	fmt.Fprintf(w, "Streak: %d\n", g.Streak)
	if g.LastVisit != "" {
		fmt.Fprintf(w, "Last visit: %s\n", g.LastVisit)
	}
}
