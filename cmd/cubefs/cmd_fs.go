package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cube-soft/cube.core-sub000/internal/engine"
)

func newStatCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stat <path>...",
		Short: "Show what the engine knows about paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			e, _, err := o.newEngine()
			if err != nil {
				return err
			}
			for i, p := range args {
				if i > 0 {
					fmt.Fprintln(o.stdout) //nolint:errcheck // best-effort stdout
				}
				s := e.Get(p)
				fmt.Fprintf(o.stdout, "path:       %s\n", s.FullName) //nolint:errcheck // best-effort stdout
				fmt.Fprintf(o.stdout, "exists:     %t\n", s.Exists)   //nolint:errcheck // best-effort stdout
				if !s.Exists {
					continue
				}
				kind := "file"
				if s.IsDirectory {
					kind = "directory"
				}
				fmt.Fprintf(o.stdout, "type:       %s\n", kind)                            //nolint:errcheck // best-effort stdout
				fmt.Fprintf(o.stdout, "size:       %d\n", s.Length)                        //nolint:errcheck // best-effort stdout
				fmt.Fprintf(o.stdout, "attributes: %s\n", s.Attributes)                    //nolint:errcheck // best-effort stdout
				fmt.Fprintf(o.stdout, "created:    %s\n", s.CreationTime.Format(timeFmt))   //nolint:errcheck // best-effort stdout
				fmt.Fprintf(o.stdout, "modified:   %s\n", s.LastWriteTime.Format(timeFmt))  //nolint:errcheck // best-effort stdout
				fmt.Fprintf(o.stdout, "accessed:   %s\n", s.LastAccessTime.Format(timeFmt)) //nolint:errcheck // best-effort stdout
			}
			return nil
		},
	}
}

const timeFmt = "2006-01-02 15:04:05 -0700"

func newLsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [dir]",
		Short: "List a directory, subdirectories first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			e, _, err := o.newEngine()
			if err != nil {
				return err
			}
			if s := e.Get(dir); !s.Exists || !s.IsDirectory {
				return fmt.Errorf("ls %s: not a directory", dir)
			}
			for _, d := range e.Directories(dir) {
				fmt.Fprintf(o.stdout, "%s%c\n", filepath.Base(d), filepath.Separator) //nolint:errcheck // best-effort stdout
			}
			for _, f := range e.Files(dir) {
				fmt.Fprintln(o.stdout, filepath.Base(f)) //nolint:errcheck // best-effort stdout
			}
			return nil
		},
	}
}

func newMkdirCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <dir>...",
		Short: "Create directories and their parents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			e, _, err := o.newEngine()
			if err != nil {
				return err
			}
			return o.each("mkdir", args, func(p string) (bool, error) { return e.CreateDirectory(p) })
		},
	}
}

func newRmCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path>...",
		Short: "Delete files and directory trees, including read-only entries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			e, _, err := o.newEngine()
			if err != nil {
				return err
			}
			return o.each("rm", args, func(p string) (bool, error) { return e.Delete(p) })
		},
	}
}

func newCpCmd(o *options) *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "cp <src> <dest>",
		Short: "Copy a file or merge a directory tree into dest",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			e, _, err := o.newEngine()
			if err != nil {
				return err
			}
			return o.transfer(e, "cp", e.Copy, args[0], args[1], overwrite)
		},
	}
	cmd.Flags().BoolVarP(&overwrite, "overwrite", "f", false, "replace existing files")
	return cmd
}

func newMvCmd(o *options) *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "mv <src> <dest>",
		Short: "Move a file or directory tree to dest",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			e, _, err := o.newEngine()
			if err != nil {
				return err
			}
			return o.transfer(e, "mv", e.Move, args[0], args[1], overwrite)
		},
	}
	cmd.Flags().BoolVarP(&overwrite, "overwrite", "f", false, "replace existing files (rolled back on failure)")
	return cmd
}

func newUniqueCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "unique <path>",
		Short: "Print path, or the first free \"name (n).ext\" sibling",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			e, _, err := o.newEngine()
			if err != nil {
				return err
			}
			fmt.Fprintln(o.stdout, e.UniqueName(args[0])) //nolint:errcheck // best-effort stdout
			return nil
		},
	}
}

// each applies fn to every path and reports each failure on stderr.
func (o *options) each(name string, paths []string, fn func(string) (bool, error)) error {
	failed := false
	for _, p := range paths {
		ok, err := fn(p)
		if !o.report(name, p, ok, err) {
			failed = true
		}
	}
	if failed {
		return errExit
	}
	return nil
}

// transfer runs a copy or move, treating a missing source as a failure.
func (o *options) transfer(e *engine.Engine, name string, fn func(string, string, bool) (bool, error), src, dest string, overwrite bool) error {
	if !e.Exists(src) {
		fmt.Fprintf(o.stderr, "cubefs %s: %s: no such file or directory\n", name, src) //nolint:errcheck // best-effort stderr
		return errExit
	}
	ok, err := fn(src, dest, overwrite)
	if !o.report(name, src, ok, err) {
		return errExit
	}
	return nil
}

// report prints the outcome of one mutation and reports whether it
// succeeded.
func (o *options) report(name, path string, ok bool, err error) bool {
	var rb *engine.RollbackError
	switch {
	case errors.As(err, &rb):
		fmt.Fprintf(o.stderr, "cubefs %s: %v\nprevious content of %s is at %s\n", name, err, rb.Destination, rb.Temp) //nolint:errcheck // best-effort stderr
	case err != nil:
		fmt.Fprintf(o.stderr, "cubefs %s: %v\n", name, err) //nolint:errcheck // best-effort stderr
	case !ok:
		fmt.Fprintf(o.stderr, "cubefs %s: %s: not completed\n", name, path) //nolint:errcheck // best-effort stderr
	default:
		return true
	}
	return false
}
