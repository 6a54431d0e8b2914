package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/kingrea/tasklaunch/convention"
	"github.com/kingrea/tasklaunch/internal/config"
	"github.com/kingrea/tasklaunch/internal/logging"
	"github.com/kingrea/tasklaunch/internal/tui"
	"github.com/kingrea/tasklaunch/launcher"
	"github.com/kingrea/tasklaunch/plugins"
	"github.com/kingrea/tasklaunch/task"
)

type options struct {
	configPath string
	tasksDir   string
	noBuiltins bool
}

// session is everything a subcommand needs once flags are parsed.
type session struct {
	cfg      *config.Config
	launcher *launcher.Launcher
	log      *logging.Logger
	in       io.Reader
	out      io.Writer
}

func (s *session) Close() error { return s.log.Close() }

func (s *session) runContext() *task.RunContext {
	rc := task.NewRunContext(task.NewConsole(s.in, s.out))
	if s.log != nil {
		rc = rc.WithLogger(s.log)
	}
	if s.cfg.Styled(isTerminal(s.out)) {
		rc = rc.WithHeaderStyle(tui.HeaderStyle)
	}
	return rc
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "tasks",
		Short:         "Run interactive console tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", config.FileName, "path to the config file")
	root.PersistentFlags().StringVar(&opts.tasksDir, "tasks-dir", "", "directory with task scripts and manifests (overrides config)")
	root.PersistentFlags().BoolVar(&opts.noBuiltins, "no-builtins", false, "skip the built-in demo tasks")

	root.AddCommand(
		newInitCmd(opts),
		newListCmd(opts),
		newRunCmd(opts),
		newAllCmd(opts),
		newPickCmd(opts),
	)
	return root
}

func openSession(cmd *cobra.Command, opts *options) (*session, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if dir := strings.TrimSpace(opts.tasksDir); dir != "" {
		cfg.TasksDir = filepath.Clean(dir)
	}
	var log *logging.Logger
	if cfg.LogFile != "" {
		if log, err = logging.Open(cfg.LogFile, logging.Rotation{MaxSizeMB: cfg.LogMaxSizeMB, MaxBackups: cfg.LogMaxBackup}); err != nil {
			return nil, err
		}
	}

	l := launcher.New(launcher.WithDefaults(cfg.TaskOptions()...))
	catalog := plugins.Catalog{}
	if !opts.noBuiltins {
		if err := registerBuiltins(l); err != nil {
			_ = log.Close()
			return nil, err
		}
		catalog = builtinCatalog()
	}
	if err := plugins.Discover(l, cfg.TasksDir, catalog); err != nil {
		_ = log.Close()
		return nil, err
	}
	log.Printf("session config=%s tasks_dir=%s", cfg.Path, cfg.TasksDir)
	return &session{
		cfg:      cfg,
		launcher: l,
		log:      log,
		in:       cmd.InOrStdin(),
		out:      cmd.OutOrStdout(),
	}, nil
}

func newInitCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			created, err := config.WriteDefault(opts.configPath)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", opts.configPath)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", opts.configPath)
			}
			return nil
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()
			set, err := s.launcher.Tasks()
			if err != nil {
				return err
			}
			for _, t := range set.All() {
				fmt.Fprintf(s.out, "%-24s %s\n", t.Name, convention.Key(t.Name))
			}
			return nil
		},
	}
}

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run NAME...",
		Short: "Run tasks by display name or key form (send_message)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.launcher.Run(s.runContext(), args...)
		},
	}
}

func newAllCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run every registered task in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.launcher.RunAll(s.runContext())
		},
	}
}

func newPickCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Choose a task from an interactive list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()
			set, err := s.launcher.Tasks()
			if err != nil {
				return err
			}
			picked, err := tui.Pick(set, s.in, s.out)
			if err != nil || picked == nil {
				return err
			}
			return picked.Run(s.runContext())
		},
	}
}
