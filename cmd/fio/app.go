package main

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Cyclone1070/fio/internal/config"
	"github.com/Cyclone1070/fio/internal/directory"
	"github.com/Cyclone1070/fio/internal/errutil"
	"github.com/Cyclone1070/fio/internal/file"
	"github.com/Cyclone1070/fio/internal/fsutil"
)

// app holds the dependencies commands share. They are built once flags are
// parsed, in the root command's PersistentPreRunE.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	exit   func(code int)

	cfgFile  string
	workdir  string
	logLevel string

	cfg  *config.Config
	log  *log.Logger
	fs   *fsutil.FS
	dirs *directory.Manager
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{
		in:     in,
		out:    out,
		errOut: errOut,
		exit:   os.Exit,
		cfg:    config.DefaultConfig(),
		log:    log.New(),
	}
}

func (a *app) execute(args []string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fio",
		Short: "File and directory operations with classified errors",
		Long: `fio reads and writes files through buffered handles with explicit text
encodings, manages directories, and runs batch scripts of such operations.

Failures carry a kind from a fixed taxonomy (NotFoundError, EncodingError, ...).
An unhandled failure is reported with its kind lineage and the frames it crossed.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return a.setup() },
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.config/fio/config.json)")
	root.PersistentFlags().StringVarP(&a.workdir, "chdir", "C", "", "change to this directory before running the command")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (overrides log.level from config)")

	root.AddCommand(
		a.catCmd(),
		a.headCmd(),
		a.writeCmd("write", "Write text to a file, truncating it", "w"),
		a.writeCmd("append", "Append text to a file", "a"),
		a.lsCmd(),
		a.mkdirCmd(),
		a.mvCmd(),
		a.rmCmd(),
		a.rmdirCmd(),
		a.rmtreeCmd(),
		a.pwdCmd(),
		a.batchCmd(),
	)
	return root
}

// setup loads configuration, configures logging and builds the namespace.
func (a *app) setup() error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return errutil.Wrap(err, errutil.InvalidArgument, "invalid --log-level")
	}
	a.log.SetOutput(a.errOut)
	a.log.SetLevel(lvl)
	if cfg.Log.Format == "json" {
		a.log.SetFormatter(&log.JSONFormatter{})
	} else {
		a.log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	}

	a.fs = fsutil.NewOS()
	a.dirs = directory.New(a.fs, directory.WithLogger(a.log), directory.WithConfig(cfg))

	if a.workdir != "" {
		dir, err := expand(a.workdir)
		if err != nil {
			return err
		}
		if err := a.dirs.SetCurrentDirectory(dir); err != nil {
			return err
		}
	}
	a.log.WithField("config", a.cfgFile).Debug("fio ready")
	return nil
}

func (a *app) loadConfig() (*config.Config, error) {
	loader := config.NewLoader()
	if a.cfgFile == "" {
		return loader.Load()
	}
	path, err := expand(a.cfgFile)
	if err != nil {
		return nil, err
	}
	return loader.LoadFile(path)
}

func (a *app) fileOpts() []file.Option {
	return []file.Option{file.WithLogger(a.log), file.WithConfig(a.cfg)}
}

// terminator reports unhandled errors with the configured colours.
func (a *app) terminator() *errutil.Terminator {
	return &errutil.Terminator{
		Out:    a.errOut,
		Render: renderReport(a.cfg.UI),
		Exit:   a.exit,
	}
}

func renderReport(ui config.UIConfig) func(errutil.Report) string {
	headline := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ui.ColorError))
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(ui.ColorMuted))

	return func(r errutil.Report) string {
		lines := []string{headline.Render("unhandled") + " " + r.Message}
		lineage := make([]string, len(r.Lineage))
		for i, k := range r.Lineage {
			lineage[i] = string(k)
		}
		lines = append(lines, muted.Render("  kind: "+strings.Join(lineage, " < ")))
		for _, f := range r.Frames {
			lines = append(lines, muted.Render("  at "+f))
		}
		for _, extra := range r.Also {
			lines = append(lines, muted.Render("  also: "+extra))
		}
		return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
	}
}

// expand resolves a leading ~ in a user-supplied path.
func expand(path string) (string, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return "", errutil.OpError(errutil.InvalidArgument, "expand", path, err)
	}
	return p, nil
}

// inFrame runs fn in a frame named after the command so unhandled errors
// record where they came from.
func inFrame(name string, fn func() error) error {
	return errutil.Try(fn, errutil.Named(name))
}
