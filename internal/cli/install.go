package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/picoforge/picoforge/internal/pkgindex"
	"github.com/picoforge/picoforge/internal/project"
)

// InstallOptions holds flags for the install command.
type InstallOptions struct {
	*RootOptions
	Directory string // target installation directory override
	IndexURL  string // package index override

	// Installer allows substituting the index client (for testing).
	Installer *pkgindex.Installer
}

// installResult is one package's install outcome for structured output.
type installResult struct {
	Package string   `json:"package"`
	Files   []string `json:"files,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// NewInstallCommand creates the install command.
func NewInstallCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InstallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "install <package>...",
		Short: "Install MicroPython packages into the project lib directory",
		Long: `Install packages from the MicroPython package index.

Files are downloaded into the project's lib directory (or --directory).
Standard-library packages ship with the firmware and are refused; a failing
package never blocks installation of the remaining packages.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Directory, "directory", "", "target installation directory (default <source>/lib)")
	cmd.Flags().StringVar(&opts.IndexURL, "index", "", "package index URL override")

	return cmd
}

func runInstall(opts *InstallOptions, packages []string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	root, _, err := loadProject(opts.RootOptions, false)
	if err != nil {
		return commandError(formatter, err)
	}

	// The target directory must exist up front: a vanished lib directory
	// with no override is fatal for the whole install, not per package.
	target := opts.Directory
	if target == "" {
		target = root.LibDir()
	}
	if info, statErr := os.Stat(target); statErr != nil || !info.IsDir() {
		missing := &project.MissingDirectoryError{Path: target, Root: root.Path}
		return commandError(formatter, WrapExitError(ExitCommandError, "install target missing", missing))
	}

	installer := opts.Installer
	if installer == nil {
		installer = pkgindex.NewInstaller()
	}
	if opts.IndexURL != "" {
		installer.Client.BaseURL = opts.IndexURL
	}

	results := make([]installResult, 0, len(packages))
	failed := 0
	for _, pkg := range packages {
		slog.Debug("installing package", "package", pkg, "target", target)
		files, err := installer.Install(cmd.Context(), pkg, target)

		res := installResult{Package: pkg, Files: files}
		if err != nil {
			res.Error = installErrorMessage(err)
			failed++
		}
		results = append(results, res)
	}

	if formatter.Format == "json" {
		if err := formatter.JSON(results); err != nil {
			return err
		}
	} else {
		renderInstall(formatter, results)
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d package(s) failed to install", failed))
	}
	return nil
}

// installErrorMessage keeps index errors terse for display.
func installErrorMessage(err error) string {
	var stdlib *pkgindex.StandardLibraryError
	if errors.As(err, &stdlib) {
		return stdlib.Error()
	}
	return err.Error()
}

func renderInstall(formatter *OutputFormatter, results []installResult) {
	succeeded := 0
	for _, res := range results {
		if res.Error != "" {
			fmt.Fprintf(formatter.Writer, "  %s  failed: %s\n", res.Package, res.Error)
			continue
		}
		succeeded++
		fmt.Fprintf(formatter.Writer, "  %s  installed (%d file(s))\n", res.Package, len(res.Files))
		for _, f := range res.Files {
			formatter.VerboseLog("    %s", f)
		}
	}
	mark := "✓"
	if succeeded < len(results) {
		mark = "✗"
	}
	fmt.Fprintf(formatter.Writer, "%s %d of %d package(s) installed\n", mark, succeeded, len(results))
}
