package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/maquette-dev/maquette/internal/enginerr"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔╦╗┌─┐┌─┐ ┬ ┬┌─┐┌┬┐┌┬┐┌─┐
  ║║║├─┤│─┼┐│ │├┤  │  │ ├┤
  ╩ ╩┴ ┴└─┘└└─┘└─┘ ┴  ┴ └─┘
`

func main() {
	// Local overrides for tenant ids, S3 buckets and the like.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "maquette",
		Short: "Manifest-driven page rendering engine",
		Long: `Maquette assembles pages from component manifests.

A manifest describes a page as a tree of typed, versioned components.
Maquette validates it, resolves each component through the registry,
applies design tokens, and renders an output tree with per-component
failure isolation. Features include:

  • Structural manifest validation with errors and warnings
  • Versioned component registry with lazy loading
  • Theme token inheritance (node, manifest, brand, global)
  • Live preview server with debounced re-rendering
  • Bundle export with assets and generated docs`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		initCmd(),
		serveCmd(),
		validateCmd(),
		exportCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		var me *enginerr.Error
		if errors.As(err, &me) {
			fmt.Fprintln(os.Stderr, me.Format())
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

// printBanner prints the Maquette ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
