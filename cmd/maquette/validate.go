package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maquette-dev/maquette/internal/enginerr"
	"github.com/maquette-dev/maquette/pkg/components"
	"github.com/maquette-dev/maquette/pkg/manifest"
	"github.com/maquette-dev/maquette/pkg/registry"
)

func validateCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <manifest>...",
		Short: "Validate manifest files",
		Long: `Validate one or more manifest files without rendering them.

Errors block rendering; warnings do not. With --strict, warnings also
fail the command.

Examples:
  maquette validate manifests/landing.json
  maquette validate --strict manifests/*.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args, strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as failures")

	return cmd
}

func runValidate(paths []string, strict bool) error {
	reg := registry.New()
	components.RegisterAll(reg)

	failed := false
	for _, path := range paths {
		m, err := loadManifest(path)
		if err != nil {
			var me *enginerr.Error
			if errors.As(err, &me) {
				errorMsg("%s:", path)
				os.Stderr.WriteString(me.Format() + "\n")
			} else {
				errorMsg("%s: %s", path, err)
			}
			failed = true
			continue
		}

		result := manifest.Validate(m, manifest.Options{KnownTypes: reg})
		report(path, result)
		if !result.IsValid || (strict && len(result.Warnings) > 0) {
			failed = true
		}
	}

	if failed {
		return enginerr.New("M101").
			WithDetail("one or more manifests failed validation")
	}
	return nil
}

func report(path string, result manifest.Result) {
	switch {
	case !result.IsValid:
		errorMsg("%s: invalid", path)
	case len(result.Warnings) > 0:
		warn("%s: valid with warnings", path)
	default:
		success("%s: valid", path)
	}
	for _, f := range result.Errors {
		info("error:   %s", f)
	}
	for _, f := range result.Warnings {
		info("warning: %s", f)
	}
	for _, f := range result.Suggestions {
		info("hint:    %s", f)
	}
}

func loadManifest(path string) (*manifest.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return manifest.ParseYAML(data)
	default:
		return manifest.Parse(data)
	}
}
