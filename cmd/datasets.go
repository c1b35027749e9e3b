package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/datachat-io/datachat/internal/importer"
	"github.com/datachat-io/datachat/internal/registry"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "Inspect imported datasets and importable files",
}

var datasetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		snap, err := registry.Load(ctx, env.Store)
		if err != nil {
			return err
		}

		datasets := snap.Datasets()
		if len(datasets) == 0 {
			fmt.Println("No datasets imported yet. Run 'datachat import' first.")
			return nil
		}
		for _, ds := range datasets {
			fmt.Printf("%-30s %10s rows  %2d columns  [%s]\n",
				ds.Name, humanize.Comma(ds.RowCount), len(ds.Columns), ds.Status)
		}
		return nil
	},
}

var datasetsScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List importable files in the source directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		snap, err := registry.Load(ctx, env.Store)
		if err != nil {
			return err
		}

		entries, err := importer.ScanDir(cfg.Datasets.SourceDir, snap)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Printf("No importable files in %s\n", cfg.Datasets.SourceDir)
			return nil
		}
		for _, e := range entries {
			state := "new"
			if e.Imported {
				state = "imported"
			}
			fmt.Printf("%-30s %8.1f MB  %-5s  [%s]\n", e.Filename, e.SizeMB, e.Type, state)
		}
		return nil
	},
}

func init() {
	datasetsCmd.AddCommand(datasetsListCmd)
	datasetsCmd.AddCommand(datasetsScanCmd)
	rootCmd.AddCommand(datasetsCmd)
}
