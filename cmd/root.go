package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "gallerize",
		Short: "Image preference rating client with a prediction feedback loop",
		Long: `Gallerize is a terminal client for browsing an image catalog, rating
images with like/dislike preferences, and submitting the ratings to a
prediction backend.

Each round submits the rated subset together with a weight vector, shows
the predicted subset for feedback, and reloads a fresh catalog once the
feedback is accepted.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			if verbose {
				slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
		},
	}

	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	// Add subcommands
	cmd.AddCommand(newBrowseCmd())
	cmd.AddCommand(newHistoryCmd())

	return cmd
}
