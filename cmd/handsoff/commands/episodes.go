package commands

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/handsoff/internal/app"
	"github.com/ayusman/handsoff/internal/store"
)

var episodesCmd = &cobra.Command{
	Use:   "episodes",
	Short: "List recorded touch episodes",
	Long: `List the most recent touch episodes, newest first.

An episode is a run of consecutive detection ticks classified as touched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return fmt.Errorf("failed to read 'limit' flag: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		episodes, err := st.Episodes().List(limit)
		if err != nil {
			return fmt.Errorf("list episodes: %w", err)
		}

		if kind, err := st.Settings().Get(app.SettingEmbedder); err == nil {
			fmt.Printf("embedder: %s\n\n", kind)
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if len(episodes) == 0 {
			fmt.Println("No episodes recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tDURATION\tTICKS\tSOUNDS\tPEAK\tID")
		for _, e := range episodes {
			duration := e.Duration().Round(time.Second).String()
			if e.Open() {
				duration += " (open)"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.2f\t%s\n",
				e.StartedAt.Local().Format("2006-01-02 15:04:05"), duration, e.Ticks, e.Sounds, e.PeakConfidence, e.ID)
		}
		return w.Flush()
	},
}

func init() {
	episodesCmd.Flags().IntP("limit", "n", 20, "maximum number of episodes (0 for all)")
}
