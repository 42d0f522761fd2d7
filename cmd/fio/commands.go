package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Cyclone1070/fio/internal/adapter"
	"github.com/Cyclone1070/fio/internal/directory"
	"github.com/Cyclone1070/fio/internal/errutil"
	"github.com/Cyclone1070/fio/internal/file"
)

// encodingFlag registers --encoding/-e and --binary on cmd.
func encodingFlag(cmd *cobra.Command, encoding *string, binary *bool) {
	cmd.Flags().StringVarP(encoding, "encoding", "e", "", "text encoding (default from config io.default_encoding)")
	cmd.Flags().BoolVar(binary, "binary", false, "copy raw bytes instead of decoding text")
}

func (a *app) encoding(flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.IO.DefaultEncoding
}

func (a *app) catCmd() *cobra.Command {
	var (
		encoding string
		binary   bool
	)
	cmd := &cobra.Command{
		Use:   "cat FILE...",
		Short: "Print files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inFrame("cat", func() error {
				for _, arg := range args {
					path, err := expand(arg)
					if err != nil {
						return err
					}
					if err := a.cat(path, encoding, binary); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	encodingFlag(cmd, &encoding, &binary)
	return cmd
}

func (a *app) cat(path, encoding string, binary bool) error {
	read := file.Mode{Access: file.Read}
	if binary {
		return file.WithBinary(a.fs, path, read, func(f *file.BinaryFile) error {
			p, err := f.Read(-1)
			if err != nil {
				return err
			}
			_, err = a.out.Write(p)
			return err
		}, a.fileOpts()...)
	}
	return file.WithText(a.fs, path, read, a.encoding(encoding), func(f *file.TextFile) error {
		s, err := f.Read(-1)
		if err != nil {
			return err
		}
		_, err = io.WriteString(a.out, s)
		return err
	}, a.fileOpts()...)
}

func (a *app) headCmd() *cobra.Command {
	var (
		encoding string
		lines    int
	)
	cmd := &cobra.Command{
		Use:   "head FILE",
		Short: "Print the first lines of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inFrame("head", func() error {
				if lines < 0 {
					return errutil.Newf(errutil.InvalidArgument, "--lines must be >= 0, got %d", lines)
				}
				path, err := expand(args[0])
				if err != nil {
					return err
				}
				return file.WithText(a.fs, path, file.Mode{Access: file.Read}, a.encoding(encoding), func(f *file.TextFile) error {
					for i := 0; i < lines; i++ {
						line, err := f.ReadLine(-1)
						if err != nil {
							return err
						}
						if line == "" {
							return nil
						}
						if _, err := io.WriteString(a.out, line); err != nil {
							return err
						}
					}
					return nil
				}, a.fileOpts()...)
			})
		},
	}
	cmd.Flags().StringVarP(&encoding, "encoding", "e", "", "text encoding (default from config io.default_encoding)")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "number of lines to print")
	return cmd
}

func (a *app) writeCmd(name, short, access string) *cobra.Command {
	var (
		encoding  string
		exclusive bool
	)
	cmd := &cobra.Command{
		Use:   name + " FILE [TEXT...]",
		Short: short,
		Long:  short + ". Without TEXT the content is read from standard input.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inFrame(name, func() error {
				path, err := expand(args[0])
				if err != nil {
					return err
				}
				content := strings.Join(args[1:], " ")
				if len(args) == 1 {
					data, err := io.ReadAll(a.in)
					if err != nil {
						return errutil.Classify("read", "stdin", err)
					}
					content = string(data)
				}

				mode := access
				if exclusive {
					mode = "x"
				}
				m, err := file.ParseMode(mode)
				if err != nil {
					return err
				}
				return file.WithText(a.fs, path, m, a.encoding(encoding), func(f *file.TextFile) error {
					n, err := f.Write(content)
					if err != nil {
						return err
					}
					a.log.WithField("path", path).Debugf("wrote %d characters", n)
					return nil
				}, a.fileOpts()...)
			})
		},
	}
	cmd.Flags().StringVarP(&encoding, "encoding", "e", "", "text encoding (default from config io.default_encoding)")
	if name == "write" {
		cmd.Flags().BoolVarP(&exclusive, "exclusive", "x", false, "fail if the file already exists")
	}
	return cmd
}

func (a *app) lsCmd() *cobra.Command {
	var visible bool
	cmd := &cobra.Command{
		Use:   "ls [DIR]",
		Short: "List directory entries in lexical order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inFrame("ls", func() error {
				dir := ""
				if len(args) == 1 {
					p, err := expand(args[0])
					if err != nil {
						return err
					}
					dir = p
				}
				list := a.dirs.ListEntries
				if visible {
					list = a.dirs.ListVisible
				}
				names, err := list(dir)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(a.out, name)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&visible, "visible", false, "hide entries excluded by .gitignore files")
	return cmd
}

// eachPath applies fn to every argument after home expansion, stopping at the
// first failure.
func eachPath(args []string, fn func(string) error) error {
	for _, arg := range args {
		path, err := expand(arg)
		if err != nil {
			return err
		}
		if err := fn(path); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) mkdirCmd() *cobra.Command {
	var parents bool
	cmd := &cobra.Command{
		Use:   "mkdir DIR...",
		Short: "Create directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mkdir := a.dirs.MakeDirectory
			if parents {
				mkdir = a.dirs.MakeDirectories
			}
			return inFrame("mkdir", func() error { return eachPath(args, mkdir) })
		},
	}
	cmd.Flags().BoolVarP(&parents, "parents", "p", false, "create missing parents; existing directories are not an error")
	return cmd
}

func (a *app) mvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv OLD NEW",
		Short: "Rename a file or directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inFrame("mv", func() error {
				from, err := expand(args[0])
				if err != nil {
					return err
				}
				to, err := expand(args[1])
				if err != nil {
					return err
				}
				return a.dirs.Rename(from, to)
			})
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "rm FILE...",
		Short: "Remove files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inFrame("rm", func() error {
				return eachPath(args, func(path string) error {
					if !force {
						return a.dirs.RemoveFile(path)
					}
					return errutil.Try(func() error {
						return a.dirs.RemoveFile(path)
					}, errutil.Catch(func(error) error { return nil }, errutil.NotFound))
				})
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "ignore files that do not exist")
	return cmd
}

func (a *app) rmdirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rmdir DIR...",
		Short: "Remove empty directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inFrame("rmdir", func() error { return eachPath(args, a.dirs.RemoveEmptyDirectory) })
		},
	}
}

func (a *app) rmtreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rmtree DIR...",
		Short: "Remove directory trees",
		Long: `Remove directory trees. Removal is best effort: it continues past failures
and lists whatever could not be removed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inFrame("rmtree", func() error {
				return eachPath(args, func(path string) error {
					err := a.dirs.RemoveTree(path)
					var partial *directory.PartialRemovalError
					if errors.As(err, &partial) {
						for _, p := range partial.Remaining {
							fmt.Fprintf(a.errOut, "remaining: %s\n", p)
						}
					}
					return err
				})
			})
		},
	}
}

func (a *app) pwdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pwd",
		Short: "Print the working directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return inFrame("pwd", func() error {
				dir, err := a.dirs.CurrentDirectory()
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, dir)
				return nil
			})
		},
	}
}

func (a *app) batchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch SCRIPT",
		Short: "Run a JSON script of operations",
		Long: `Run a JSON script of operations. SCRIPT is a file path, or "-" for standard input.

A script is an array of steps:

  [{"op": "mkdir", "args": {"path": "out"}},
   {"op": "write_text", "args": {"path": "out/a.txt", "content": "hi\n"}},
   {"op": "remove", "args": {"path": "stale"}, "on_error": ["NotFoundError"]}]

Each step prints its JSON result. A step that fails with a kind listed in its
on_error continues the batch; any other failure stops it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inFrame("batch", func() error {
				data, err := a.readScript(args[0])
				if err != nil {
					return err
				}
				steps, err := adapter.ParseScript(data)
				if err != nil {
					return err
				}
				env := &adapter.Env{
					FS:       a.fs,
					Dirs:     a.dirs,
					Encoding: a.cfg.IO.DefaultEncoding,
					FileOpts: a.fileOpts(),
				}
				runner := adapter.NewRunner(a.log, adapter.Ops(env)...)
				results, err := runner.Run(cmd.Context(), steps)
				for _, r := range results {
					if r.Tolerated != nil {
						fmt.Fprintf(a.out, "%d %s tolerated: %v\n", r.Step, r.Op, r.Tolerated)
						continue
					}
					fmt.Fprintf(a.out, "%d %s %s\n", r.Step, r.Op, r.Output)
				}
				return err
			})
		},
	}
}

func (a *app) readScript(arg string) ([]byte, error) {
	if arg == "-" {
		data, err := io.ReadAll(a.in)
		if err != nil {
			return nil, errutil.Classify("read", "stdin", err)
		}
		return data, nil
	}
	path, err := expand(arg)
	if err != nil {
		return nil, err
	}
	var data []byte
	err = file.WithBinary(a.fs, path, file.Mode{Access: file.Read}, func(f *file.BinaryFile) error {
		p, rerr := f.Read(-1)
		data = p
		return rerr
	}, a.fileOpts()...)
	return data, err
}
