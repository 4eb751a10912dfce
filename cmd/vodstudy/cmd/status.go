package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vodstudy/vodstudy/internal/catalog"
	"github.com/vodstudy/vodstudy/internal/model"
)

// statusCmd prints the catalog state.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the video catalog",
	Long:  "Status lists every tracked video with its download and optimize state.",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cobraCmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := catalog.Open(cfg.Database, nil)
	if err != nil {
		return err
	}
	videos, err := catalog.NewVideoRepository(db).List(cobraCmd.Context())
	if err != nil {
		return err
	}
	if len(videos) == 0 {
		fmt.Println("catalog is empty")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDOWNLOAD\tOPTIMIZE\tSIZE\tTITLE")
	for _, v := range videos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			v.ID,
			jobState(v.DownloadStatus, v.DownloadProgress),
			jobState(v.OptimizeStatus, v.OptimizeProgress),
			fileSize(v.FileSize),
			v.Title,
		)
	}
	return w.Flush()
}

// jobState renders a status column, with percent for in-flight states.
func jobState(status string, progress int) string {
	switch status {
	case "":
		return "-"
	case model.StatusActive.String(), model.StatusQueued.String():
		return fmt.Sprintf("%s %d%%", status, progress)
	default:
		return status
	}
}

func fileSize(size int64) string {
	if size <= 0 {
		return "-"
	}
	return humanize.IBytes(uint64(size))
}
