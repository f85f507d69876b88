package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func (a *app) buildDictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Manage the data dictionary",
	}
	cmd.AddCommand(a.buildDictSyncCmd())
	return cmd
}

func (a *app) buildDictSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Copy the canonical dictionary into the docs directory",
		Long: `The root data dictionary is canonical for distribution; the docs
directory carries an identical copy for browsing. Sync overwrites the
docs copy with the root file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDictSync(cmd)
		},
	}
	return cmd
}

func (a *app) runDictSync(cmd *cobra.Command) error {
	cfg, logger, err := a.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	src := cfg.DictionaryFile
	dst := filepath.Join(cfg.DocsDir, "data_dictionary.csv")

	raw, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read dictionary: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create docs directory: %w", err)
	}
	if err := os.WriteFile(dst, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write dictionary copy: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Synced %s from %s\n", dst, src)
	return nil
}
