package main

import (
	"fmt"

	"github.com/Sternrassler/character-browser/pkg/logging"
	"github.com/Sternrassler/character-browser/pkg/tui"
	"github.com/spf13/cobra"
)

func newBrowseCmd(logLevel *string) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse characters in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if page < 1 {
				return fmt.Errorf("--page must be at least 1 (got %d)", page)
			}
			cfg, err := loadConfig(*logLevel)
			if err != nil {
				return err
			}

			// Log lines would tear the alternate screen.
			logCfg := cfg.Logging()
			logCfg.Level = logging.LevelDisabled
			logging.Setup(logCfg)

			s, err := newStack(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			return tui.Run(cmd.Context(), s.cache, page)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page to start on")
	return cmd
}
