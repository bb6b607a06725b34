package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/gpapi/packages/workspace"
)

var fsCmd = &cobra.Command{
	Use:   "fs",
	Short: "Manage the workspace of request files",
	Long: `Manage the workspace of request files. Paths are relative to the
workspace root (--root, or the "workspace" setting) and may not leave it.`,
}

var (
	fsRootFlag  string
	fsWatchFlag bool
)

var fsTreeCmd = &cobra.Command{
	Use:   "tree [PATH]",
	Short: "Print the workspace as a tree",
	Args:  rangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) == 1 {
			path = args[0]
		}
		return withWorkspace(cmd, func(a *app, ws *workspace.Workspace) error {
			if err := printTree(a, ws, path); err != nil {
				return err
			}
			if !fsWatchFlag {
				return nil
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")
			return ws.Watch(cmd.Context(), path, func(changed string) {
				a.log.Debug("workspace changed", zap.String("path", changed))
				if err := printTree(a, ws, path); err != nil {
					a.out.FormatError(err)
				}
			})
		})
	},
}

func printTree(a *app, ws *workspace.Workspace, path string) error {
	node, err := ws.Tree(path)
	if err != nil {
		return err
	}
	return a.out.FormatTree(node)
}

var fsCatCmd = &cobra.Command{
	Use:   "cat PATH",
	Short: "Print a file",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(a *app, ws *workspace.Workspace) error {
			content, err := ws.ReadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), content)
			return nil
		})
	},
}

var fsWriteCmd = &cobra.Command{
	Use:   "write PATH [CONTENT]",
	Short: "Write a file, reading stdin when CONTENT is omitted",
	Args:  rangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(a *app, ws *workspace.Workspace) error {
			var content string
			if len(args) == 2 {
				content = args[1]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				content = string(data)
			}
			return ws.WriteFile(args[0], content)
		})
	},
}

var fsRmCmd = &cobra.Command{
	Use:   "rm PATH",
	Short: "Remove a file or directory",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(a *app, ws *workspace.Workspace) error {
			return ws.Remove(args[0])
		})
	},
}

var fsMvCmd = &cobra.Command{
	Use:   "mv FROM TO",
	Short: "Rename or move a file or directory",
	Args:  exactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(a *app, ws *workspace.Workspace) error {
			return ws.Rename(args[0], args[1])
		})
	},
}

var fsMkdirCmd = &cobra.Command{
	Use:   "mkdir PATH",
	Short: "Create a directory and missing parents",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(a *app, ws *workspace.Workspace) error {
			return ws.Mkdir(args[0])
		})
	},
}

var fsTouchCmd = &cobra.Command{
	Use:   "touch PATH",
	Short: "Create an empty file or update its times",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(a *app, ws *workspace.Workspace) error {
			return ws.Touch(args[0])
		})
	},
}

// withWorkspace opens the workspace and reports any error from fn.
func withWorkspace(cmd *cobra.Command, fn func(*app, *workspace.Workspace) error) error {
	a, err := loadApp(cmd, false)
	if err != nil {
		return err
	}

	root := a.cfg.Workspace
	if fsRootFlag != "" {
		root = fsRootFlag
	}
	ws, err := workspace.NewOS(root, workspace.WithLogger(a.log))
	if err != nil {
		return a.fail(err)
	}

	if err := fn(a, ws); err != nil {
		return a.fail(err)
	}
	return nil
}

func init() {
	fsCmd.PersistentFlags().StringVar(&fsRootFlag, "root", "", "Workspace root (default from settings, the current directory)")
	fsTreeCmd.Flags().BoolVarP(&fsWatchFlag, "watch", "w", false, "Print the tree again whenever it changes")

	fsCmd.AddCommand(fsTreeCmd)
	fsCmd.AddCommand(fsCatCmd)
	fsCmd.AddCommand(fsWriteCmd)
	fsCmd.AddCommand(fsRmCmd)
	fsCmd.AddCommand(fsMvCmd)
	fsCmd.AddCommand(fsMkdirCmd)
	fsCmd.AddCommand(fsTouchCmd)
}
