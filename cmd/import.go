package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/datachat-io/datachat/internal/importer"
	"github.com/datachat-io/datachat/internal/registry"
)

var (
	importName string
	importAll  bool
)

var importCmd = &cobra.Command{
	Use:   "import [file ...]",
	Short: "Import CSV/JSON/XLSX files into queryable datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if len(args) == 0 && !importAll {
			return eris.New("pass file paths or --all")
		}
		if importName != "" && len(args) != 1 {
			return eris.New("--name requires exactly one file")
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		paths := args
		if importAll {
			snap, err := registry.Load(ctx, env.Store)
			if err != nil {
				return err
			}
			entries, err := importer.ScanDir(cfg.Datasets.SourceDir, snap)
			if err != nil {
				return eris.Wrap(err, "scan source dir")
			}
			for _, e := range entries {
				if !e.Imported {
					paths = append(paths, e.Path)
				}
			}
			if len(paths) == 0 {
				zap.L().Info("nothing to import", zap.String("dir", cfg.Datasets.SourceDir))
				return nil
			}
		}

		for _, path := range paths {
			ds, err := env.Importer.Import(ctx, path, importName)
			if err != nil {
				return eris.Wrapf(err, "import %s", path)
			}
			zap.L().Info("import complete",
				zap.String("dataset", ds.Name),
				zap.Int64("rows", ds.RowCount),
				zap.Int("columns", len(ds.Columns)),
			)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importName, "name", "", "dataset name (default: file name without extension)")
	importCmd.Flags().BoolVar(&importAll, "all", false, "import every new file from the source directory")
	rootCmd.AddCommand(importCmd)
}
