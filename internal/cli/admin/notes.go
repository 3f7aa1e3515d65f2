package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/lanternlabs/lantern/internal/config"
	"github.com/lanternlabs/lantern/internal/pagination"
	"github.com/lanternlabs/lantern/internal/repository"
)

func NotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Manage stored notes",
		Long:  "List and delete stored notes directly against the database",
	}

	cmd.AddCommand(NotesListCmd())
	cmd.AddCommand(NotesDeleteCmd())

	return cmd
}

func NotesListCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored notes",
		Long:  "List stored notes newest-first",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runNotesList(outputFormat, limit, cursor)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runNotesList(outputFormat string, limit int, cursorStr string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	noteRepo := repository.NewNoteRepository(pool)

	cursor, _ := pagination.DecodeCursor(cursorStr)
	result, err := noteRepo.ListPage(ctx, cursor, limit)
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(result.Items))
		for i, note := range result.Items {
			data[i] = map[string]interface{}{
				"id":         note.ID,
				"title":      note.Title,
				"created_at": note.CreatedAt,
			}
		}
		output := map[string]interface{}{
			"items":    data,
			"cursor":   result.NextCursor,
			"has_more": result.HasMore,
		}
		jsonBytes, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		if len(result.Items) == 0 {
			fmt.Println("No notes found")
			return nil
		}
		fmt.Println("Notes:")
		for _, note := range result.Items {
			fmt.Printf("  %s: %s (created: %s)\n", note.ID, note.Title, note.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		if result.HasMore && result.NextCursor != "" {
			fmt.Printf("\nMore results available. Use --cursor %s\n", result.NextCursor)
		}
	}

	return nil
}

func NotesDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Long:  "Delete the note with the specified ID",
		Args:  cobra.ExactArgs(1),
		RunE:  runNotesDelete,
	}

	return cmd
}

func runNotesDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	id := args[0]

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	noteRepo := repository.NewNoteRepository(pool)
	if err := noteRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	fmt.Printf("Note deleted: %s\n", id)
	return nil
}

func getDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
