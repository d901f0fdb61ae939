package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/maquette-dev/maquette/internal/config"
	"github.com/maquette-dev/maquette/internal/enginerr"
	"github.com/maquette-dev/maquette/pkg/manifest"
)

func initCmd() *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Create a new maquette project",
		Long: `Create maquette.json, the manifest directory and a starter
manifest in the current directory.

Examples:
  maquette init
  maquette init storefront --tenant=acme`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "maquette-project"
			if len(args) > 0 {
				name = args[0]
			}
			return runInit(name, tenant)
		},
	}

	cmd.Flags().StringVarP(&tenant, "tenant", "t", "", "Default tenant id for new drafts")

	return cmd
}

func runInit(name, tenant string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(cwd, config.ConfigFileName)); err == nil {
		return enginerr.New("M501").
			WithDetail("maquette.json already exists here").
			WithSuggestion("remove it or run init in an empty directory")
	}

	cfg := config.New()
	cfg.Name = name
	cfg.TenantID = tenant
	if err := cfg.Save(cwd); err != nil {
		return err
	}
	success("created %s", config.ConfigFileName)

	for _, dir := range []string{cfg.Paths.Manifests, cfg.Paths.Assets} {
		if err := os.MkdirAll(filepath.Join(cwd, dir), 0o755); err != nil {
			return err
		}
		success("created %s/", dir)
	}

	if tenant == "" {
		// Drafts must carry a tenant; "local" keeps the starter valid.
		tenant = "local"
	}
	draft := manifest.NewDraft(tenant, "Example Page")
	draft.Components = []manifest.ComponentNode{
		{ID: "header-1", Type: "header", Props: map[string]any{"title": name}},
		{ID: "text-1", Type: "text", Props: map[string]any{"content": "Edit this manifest and run 'maquette serve' to preview."}},
	}
	data, err := draft.Encode()
	if err != nil {
		return err
	}
	starter := filepath.Join(cwd, cfg.Paths.Manifests, "example.json")
	if err := os.WriteFile(starter, data, 0o644); err != nil {
		return err
	}
	success("created %s", filepath.Join(cfg.Paths.Manifests, "example.json"))

	info("")
	info("Next steps:")
	info("  maquette validate %s", filepath.Join(cfg.Paths.Manifests, "example.json"))
	info("  maquette serve")
	return nil
}
