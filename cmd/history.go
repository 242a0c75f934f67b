package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-sheet/internal/config"
	"github.com/kozaktomas/photo-sheet/internal/constants"
	"github.com/kozaktomas/photo-sheet/internal/database"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage saved photo sheets",
	Long: `List and remove photo sheets saved by the web editor.
The commands use the backend selected by HISTORY_BACKEND; the in-memory
backend keeps nothing between runs, so a database is required.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sheets, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved sheet",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete sheets not updated within --older-than",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyDeleteCmd, historyPruneCmd)

	historyListCmd.Flags().String("owner", "", "Only list sheets of this owner")
	historyListCmd.Flags().Int("limit", constants.DefaultHistoryPageSize, "Maximum number of sheets to list (0 for all)")
	historyListCmd.Flags().Int("offset", 0, "Number of sheets to skip")
	historyListCmd.Flags().Bool("json", false, "Output as JSON")

	historyPruneCmd.Flags().Duration("older-than", 30*24*time.Hour, "Age of the last update after which a sheet is removed")
	historyPruneCmd.Flags().Bool("dry-run", false, "Only report how many sheets would be removed")
}

// openHistory initializes the configured database backend and returns its
// store together with a release func the caller defers.
func openHistory(cmd *cobra.Command) (database.HistoryWriter, func(), error) {
	cfg := config.Load()
	if cfg.History.Backend == config.BackendMemory {
		return nil, nil, errors.New("history commands need DATABASE_URL or MARIADB_DSN")
	}
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	closer, err := initHistory(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	release := func() { closeHistory(closer, logger) }
	store, err := database.GetHistoryWriter(ctx)
	if err != nil {
		release()
		return nil, nil, err
	}
	return store, release, nil
}

// historyRow is the listing shape; state is never loaded for listings.
type historyRow struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Copies       int       `json:"copies"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, release, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer release()
	filter := database.HistoryFilter{
		OwnerID: mustGetString(cmd, "owner"),
		Limit:   max(mustGetInt(cmd, "limit"), 0),
		Offset:  max(mustGetInt(cmd, "offset"), 0),
	}

	ctx := cmd.Context()
	sheets, err := store.ListPhotosheets(ctx, filter)
	if err != nil {
		return fmt.Errorf("listing history: %w", err)
	}
	total, err := store.CountPhotosheets(ctx, filter)
	if err != nil {
		return fmt.Errorf("counting history: %w", err)
	}

	rows := make([]historyRow, 0, len(sheets))
	for _, p := range sheets {
		rows = append(rows, historyRow{
			ID:           p.ID,
			OwnerID:      p.OwnerID,
			ThumbnailURL: p.ThumbnailURL,
			Copies:       p.Copies,
			CreatedAt:    p.CreatedAt,
			UpdatedAt:    p.UpdatedAt,
		})
	}

	if mustGetBool(cmd, "json") {
		return outputJSON(cmd.OutOrStdout(), map[string]any{"items": rows, "total": total})
	}
	printHistory(cmd.OutOrStdout(), rows, total)
	return nil
}

func printHistory(out io.Writer, rows []historyRow, total int) {
	if len(rows) == 0 {
		fmt.Fprintln(out, "No saved sheets.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tOWNER\tCOPIES\tUPDATED\tTHUMBNAIL")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			r.ID, r.OwnerID, r.Copies, r.UpdatedAt.Local().Format(time.DateTime), r.ThumbnailURL)
	}
	w.Flush()
	fmt.Fprintf(out, "\nShowing %d of %d\n", len(rows), total)
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	store, release, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer release()
	ctx := cmd.Context()
	id := args[0]

	existing, err := store.GetPhotosheet(ctx, id)
	if err != nil {
		return fmt.Errorf("loading %s: %w", id, err)
	}
	if existing == nil {
		return fmt.Errorf("history entry %s not found", id)
	}
	if err := store.DeletePhotosheet(ctx, id); err != nil {
		return fmt.Errorf("deleting %s: %w", id, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
	return nil
}

// staleIDs collects the ids of every sheet last updated before cutoff.
func staleIDs(ctx context.Context, store database.HistoryReader, cutoff time.Time) ([]string, error) {
	var ids []string
	filter := database.HistoryFilter{Before: cutoff, Limit: constants.MaxHistoryPageSize}
	for {
		page, err := store.ListPhotosheets(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, p := range page {
			ids = append(ids, p.ID)
		}
		if len(page) < filter.Limit {
			return ids, nil
		}
		filter.Offset += len(page)
	}
}

// pruneHistory deletes ids one by one, advancing bar when it is non-nil.
func pruneHistory(ctx context.Context, store database.HistoryWriter, ids []string, bar *progressbar.ProgressBar) (int, error) {
	deleted := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		if err := store.DeletePhotosheet(ctx, id); err != nil {
			return deleted, fmt.Errorf("deleting %s: %w", id, err)
		}
		deleted++
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return deleted, nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	olderThan := mustGetDuration(cmd, "older-than")
	if olderThan <= 0 {
		return errors.New("--older-than must be positive")
	}
	store, release, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer release()
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	cutoff := time.Now().Add(-olderThan)

	ids, err := staleIDs(ctx, store, cutoff)
	if err != nil {
		return fmt.Errorf("listing stale sheets: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(ids) == 0 {
		fmt.Fprintln(out, "Nothing to prune.")
		return nil
	}
	if mustGetBool(cmd, "dry-run") {
		fmt.Fprintf(out, "%d sheets last updated before %s would be deleted\n", len(ids), cutoff.Format(time.DateTime))
		return nil
	}

	bar := progressbar.NewOptions(len(ids),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("Pruning history"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("sheets"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)
	deleted, err := pruneHistory(ctx, store, ids, bar)
	_ = bar.Finish()
	if err != nil {
		return err
	}
	logger.Info("pruned history", "deleted", deleted, "cutoff", cutoff.Format(time.RFC3339))
	fmt.Fprintf(out, "Deleted %d sheets\n", deleted)
	return nil
}
