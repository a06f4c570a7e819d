package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jaki95/set-ripper/internal/deps"
)

func newCheckCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the downloader and transcoder are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.setup()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries([]deps.Requirement{
				{Name: "Downloader", Command: cfg.Downloader.Command, Description: "fetches source media"},
				{Name: "Transcoder", Command: cfg.Transcoder.Command, Description: "cuts and encodes tracks"},
			})

			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				state := "ok"
				detail := s.Path
				if !s.Available {
					state = "missing"
					detail = s.Detail
				}
				rows = append(rows, []string{s.Name, s.Command, s.Description, state, detail})
			}
			fmt.Fprintln(flags.stdout, renderTable([]string{"Name", "Command", "Description", "Status", "Detail"}, rows))

			if missing := deps.Missing(statuses); len(missing) > 0 {
				names := make([]string, len(missing))
				for i, s := range missing {
					names[i] = s.Command
				}
				return fmt.Errorf("missing required binaries: %s", strings.Join(names, ", "))
			}
			return nil
		},
	}
}
