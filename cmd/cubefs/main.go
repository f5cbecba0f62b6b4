// cubefs copies, moves and deletes file trees with recoverable failures,
// either as one-shot commands or as a daemon running configured jobs.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cube-soft/cube.core-sub000/internal/config"
	"github.com/cube-soft/cube.core-sub000/internal/engine"
	"github.com/cube-soft/cube.core-sub000/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// errExit is a sentinel error returned by cobra RunE functions to signal
// non-zero exit. The command has already written its own error to stderr.
var errExit = errors.New("exit")

// options holds the persistent flags shared by every subcommand.
type options struct {
	configPath  string
	logLevel    string
	retries     int
	interactive bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// run executes the cubefs CLI with the given args, writing output to stdout
// and errors to stderr. Returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	return runWithInput(args, os.Stdin, stdout, stderr)
}

func runWithInput(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(stdin, stdout, stderr)
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errExit) {
			fmt.Fprintf(stderr, "cubefs: %v\n", err) //nolint:errcheck // best-effort stderr
		}
		return 1
	}
	return 0
}

// newRootCmd creates the root cobra command with all subcommands.
func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	o := &options{stdin: stdin, stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:           "cubefs",
		Short:         "Recoverable file-system operations",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			fmt.Fprintf(stderr, "cubefs: unknown command %q\n", args[0]) //nolint:errcheck // best-effort stderr
			return errExit
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "", "path to the YAML configuration (default $CUBEFS_CONFIG)")
	flags.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.IntVar(&o.retries, "retries", 0, "retry a failed operation up to n times with back-off (0 = fail fast)")
	flags.BoolVarP(&o.interactive, "interactive", "i", false, "ask before retrying a failed operation")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		newStatCmd(o),
		newLsCmd(o),
		newMkdirCmd(o),
		newRmCmd(o),
		newCpCmd(o),
		newMvCmd(o),
		newUniqueCmd(o),
		newRunCmd(o),
		newVersionCmd(stdout),
	)
	return root
}

// loadConfig resolves the configuration: file (flag, then CUBEFS_CONFIG),
// then CUBEFS_* overrides, then flags. Without a file the defaults apply.
func (o *options) loadConfig() (*config.Config, string, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, "", err
	}
	path := o.configPath
	if path == "" {
		path = env.Config
	}

	cfg := config.Default()
	if path != "" {
		if cfg, err = config.Load(path); err != nil {
			return nil, "", err
		}
	}
	env.Apply(cfg)
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	return cfg, path, nil
}

// newEngine builds the engine for one-shot commands.
func (o *options) newEngine() (*engine.Engine, *zap.Logger, error) {
	cfg, _, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}

	opts := []engine.Option{engine.WithLogger(log)}
	switch {
	case o.interactive:
		opts = append(opts, engine.WithObserver(prompt(o.stdin, o.stderr)))
	case o.retries > 0:
		r := cfg.Retry
		r.MaxAttempts = o.retries
		opts = append(opts, engine.WithObserver(unattended(context.Background(), r, log)))
	}
	return engine.New(opts...), log, nil
}
