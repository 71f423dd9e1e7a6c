package cmd

import (
	"context"
	"fmt"
	"io"

	"soundbox/services"
	"soundbox/types"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var scanMetadata bool

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Print the folders and playable files of the library",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		library := services.NewLibrary(cfg.AudiosPath(), log)
		var indexer services.Indexer
		if scanMetadata {
			indexer = services.NewIndexer(library, cfg.Workers, log)
		}

		return scanLibrary(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), library, indexer)
	},
}

func init() {
	scanCmd.Flags().BoolVarP(&scanMetadata, "metadata", "m", false, "read tags and measure durations")
	rootCmd.AddCommand(scanCmd)
}

// scanLibrary writes one block per folder. With an indexer, each folder's files
// are described first while a progress bar runs on progress.
func scanLibrary(ctx context.Context, out, progress io.Writer, library services.Library, indexer services.Indexer) error {
	folders := library.Folders()
	if len(folders) == 0 {
		fmt.Fprintf(out, "No Music Yet! Create a folder in %s to get started.\n", library.AudiosPath())
		return nil
	}

	for _, folder := range folders {
		files := library.Files(folder.Name)
		if indexer != nil && len(files) > 0 {
			files = describeWithProgress(ctx, progress, indexer, folder, files)
		}

		fmt.Fprintf(out, "%s (%s)\n", folder.Label, services.SongCountLabel(len(files)))
		for _, f := range files {
			line := "  " + f.DisplayName
			if f.Metadata != nil && f.Metadata.Duration != "" {
				line += "  [" + f.Metadata.Duration + "]"
			}
			fmt.Fprintf(out, "%s  %s\n", line, f.Path)
		}
	}
	return ctx.Err()
}

func describeWithProgress(ctx context.Context, w io.Writer, indexer services.Indexer, folder types.Folder, files []types.AudioFile) []types.AudioFile {
	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(folder.Label),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	defer bar.Finish()

	return indexer.Describe(ctx, files, func(done, total int) {
		_ = bar.Set(done)
	})
}
