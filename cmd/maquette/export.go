package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/maquette-dev/maquette/internal/enginerr"
	"github.com/maquette-dev/maquette/pkg/bundle"
	"github.com/maquette-dev/maquette/pkg/components"
	"github.com/maquette-dev/maquette/pkg/manifest"
	"github.com/maquette-dev/maquette/pkg/registry"
)

func exportCmd() *cobra.Command {
	var (
		output  string
		publish bool
	)

	cmd := &cobra.Command{
		Use:   "export <manifest>",
		Short: "Export a manifest as a bundle archive",
		Long: `Export a manifest as a zip bundle.

The bundle contains the manifest document, every static asset it
references, and generated documentation of the components used.
With --publish and an S3 bucket configured in maquette.json, the
archive is also uploaded.

Examples:
  maquette export manifests/landing.json
  maquette export manifests/landing.json -o dist
  maquette export manifests/landing.json --publish`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), args[0], output, publish)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default from maquette.json)")
	cmd.Flags().BoolVar(&publish, "publish", false, "Publish the bundle to the configured S3 bucket")

	return cmd
}

func runExport(ctx context.Context, path, output string, publish bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if output == "" {
		output = cfg.Export.Output
	}

	m, err := loadManifest(path)
	if err != nil {
		return err
	}

	reg := registry.New()
	components.RegisterAll(reg)
	result := manifest.Validate(m, manifest.Options{KnownTypes: reg})
	if !result.IsValid {
		report(path, result)
		return enginerr.New("M601").
			WithDetail("manifest failed validation, not exporting").
			WithSuggestion("run 'maquette validate' for details")
	}

	exporter := bundle.NewExporter(
		bundle.WithAssetSource(dirAssetSource(cfg.Paths.Assets)))

	b, err := exporter.Export(ctx, m)
	if err != nil {
		return err
	}
	for _, missing := range b.MissingAssets {
		warn("asset not found: %s", missing)
	}

	if err := os.MkdirAll(output, 0o755); err != nil {
		return err
	}
	archive := filepath.Join(output, m.ID+".zip")
	f, err := os.Create(archive)
	if err != nil {
		return err
	}
	if err := bundle.WriteZip(b, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	success("bundle written to %s (%d assets)", archive, len(b.Assets))

	if publish {
		return publishBundle(ctx, cfg.Export.S3Bucket, cfg.Export.S3Prefix, b)
	}
	return nil
}

func publishBundle(ctx context.Context, bucket, prefix string, b *bundle.Bundle) error {
	if bucket == "" {
		return enginerr.New("M602").
			WithDetail("no S3 bucket configured").
			WithSuggestion("set export.s3Bucket in maquette.json or MAQUETTE_EXPORT_S3_BUCKET")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return enginerr.New("M602").
			WithDetail("loading AWS configuration: " + err.Error()).
			Wrap(err)
	}

	publisher := bundle.NewPublisher(s3.NewFromConfig(awsCfg), bucket, prefix)
	key, err := publisher.Publish(ctx, b)
	if err != nil {
		return err
	}
	success("published s3://%s/%s", bucket, key)
	return nil
}

// dirAssetSource serves asset references from the project asset
// directory. References are prefixed "assets/"; the prefix maps onto
// the configured directory.
func dirAssetSource(dir string) bundle.AssetSource {
	return bundle.AssetSourceFunc(func(_ context.Context, path string) ([]byte, error) {
		rel := strings.TrimPrefix(path, "assets/")
		return os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	})
}
