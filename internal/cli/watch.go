package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"nightshift/internal/config"
	"nightshift/internal/tui"
)

var watchInterval int

func init() {
	watchCmd.Flags().IntVar(&watchInterval, "interval", config.DefaultWatchIntervalSeconds, "Polling interval in seconds")
}

var watchCmd = &cobra.Command{
	Use:   "watch <progress-doc>",
	Short: "Live terminal view of a progress document",
	Long: `Watch polls the document on a fixed interval and renders task statuses as
they change, which is how you keep an eye on an unattended run from another
terminal. Press q to quit, r to refresh immediately.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if watchInterval <= 0 {
			return fmt.Errorf("interval must be positive, got %d", watchInterval)
		}
		return tui.Watch(args[0], time.Duration(watchInterval)*time.Second)
	},
}
