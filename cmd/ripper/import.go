package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jaki95/set-ripper/internal/tracklist"
)

func newImportCommand(flags *globalFlags) *cobra.Command {
	var id, url, end string
	var force bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Scrape a tracklist page into the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.setup()
			if err != nil {
				return err
			}

			set, err := tracklist.NewWebImporter(end).Import(cmd.Context(), url)
			if err != nil {
				return err
			}

			path := filepath.Join(cfg.Paths.DataDir, id+".json")
			if err := tracklist.Save(path, set, force); err != nil {
				return err
			}

			fmt.Fprintf(flags.stdout, "Saved %d tracks to %s\n", len(set.Tracks), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&id, "id", "v", "", "Video id the track list belongs to")
	cmd.Flags().StringVar(&url, "url", "", "Tracklist page")
	cmd.Flags().StringVar(&end, "end", "", "End time of the last track")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing track list")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}
