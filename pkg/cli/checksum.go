package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/evalsight/ragtel/pkg/apperrors"
	"github.com/evalsight/ragtel/pkg/checksum"
)

func (a *app) buildChecksumCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checksum",
		Short: "Build or verify the release checksum manifest",
	}
	cmd.AddCommand(a.buildChecksumWriteCmd(), a.buildChecksumVerifyCmd())
	return cmd
}

func (a *app) buildChecksumWriteCmd() *cobra.Command {
	var (
		root string
		out  string
	)
	cmd := &cobra.Command{
		Use:   "write",
		Short: "Hash the release files and write the manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChecksumWrite(cmd, root, out)
		},
	}
	cmd.Flags().StringVar(&root, "root", ".", "Release root the glob patterns are resolved against")
	cmd.Flags().StringVar(&out, "out", "", "Manifest path (default from config)")
	return cmd
}

func (a *app) buildChecksumVerifyCmd() *cobra.Command {
	var (
		root     string
		manifest string
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the release files against the manifest",
		Long: `Rebuild the digests of every release file and compare them with the
recorded manifest. Exit code 0 means the tree is intact, 1 means at
least one file changed, disappeared or is new, 2 means the manifest
itself is missing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChecksumVerify(cmd, root, manifest)
		},
	}
	cmd.Flags().StringVar(&root, "root", ".", "Release root the glob patterns are resolved against")
	cmd.Flags().StringVar(&manifest, "manifest", "", "Manifest path (default from config)")
	return cmd
}

func (a *app) runChecksumWrite(cmd *cobra.Command, root, out string) error {
	cfg, logger, err := a.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	out = orDefault(out, cfg.Checksum.ManifestFile)
	m, err := checksum.Build(root, cfg.Checksum.Patterns)
	if err != nil {
		return err
	}
	if err := m.Write(out); err != nil {
		return err
	}
	logger.Debug("manifest written", zap.String("path", out), zap.Int("files", len(m.Entries)))
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote checksums for %d files to %s\n", len(m.Entries), out)
	return nil
}

func (a *app) runChecksumVerify(cmd *cobra.Command, root, manifest string) error {
	cfg, logger, err := a.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	manifest = orDefault(manifest, cfg.Checksum.ManifestFile)
	drifts, err := checksum.Verify(root, cfg.Checksum.Patterns, manifest)
	if err != nil {
		if errors.Is(err, apperrors.ErrManifestMissing) {
			fmt.Fprintf(cmd.OutOrStdout(), "❌ Checksum manifest not found: %s\n", manifest)
			return &exitCodeError{code: 2, err: err}
		}
		return err
	}

	out := cmd.OutOrStdout()
	if len(drifts) > 0 {
		for _, d := range drifts {
			fmt.Fprintf(out, "  ❌ %s: %s\n", d.Path, d.Reason)
		}
		fmt.Fprintf(out, "❌ Checksum verification failed: %d files drifted\n", len(drifts))
		return &exitCodeError{code: 1, err: fmt.Errorf("%w: %d files",
			apperrors.ErrManifestMismatch, len(drifts))}
	}
	fmt.Fprintln(out, "✅ Checksums verified.")
	return nil
}
