package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/extractify/internal/bulk"
	"github.com/MikeSquared-Agency/extractify/internal/config"
	"github.com/MikeSquared-Agency/extractify/internal/store"
)

var bulkSave bool

func init() {
	bulkCmd.Flags().BoolVar(&bulkSave, "save", false, "store each conversation in DATABASE_URL")
}

var bulkCmd = &cobra.Command{
	Use:   "bulk <file>",
	Short: "Run bulk extraction over a file and print the result as JSON",
	Long: `Run bulk extraction over an ABCD dataset, a JSON array, JSON lines or
plain text file without starting the server.

Examples:
  # Extract from an ABCD sample
  extractify bulk abcd_sample_10.json

  # Read from stdin
  cat calls.jsonl | extractify bulk -

  # Persist the results as conversations
  extractify bulk abcd_sample_10.json --save`,
	Args: cobra.ExactArgs(1),
	RunE: runBulk,
}

func runBulk(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	var (
		data     []byte
		err      error
		fileName = filepath.Base(args[0])
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
		fileName = "stdin"
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	batch, err := bulk.Parse(string(data), fileName)
	if err != nil {
		return fmt.Errorf("parse input: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ext, closeCache := newExtractor(ctx, cfg)
	defer closeCache()

	resp, err := bulk.NewRunner(ext, slog.Default()).Run(ctx, batch)
	if err != nil {
		return fmt.Errorf("bulk extraction: %w", err)
	}

	if bulkSave {
		if err := saveBulk(ctx, cfg, fileName, batch, resp); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// saveBulk stores every extracted conversation under the same titles the
// bulk-save endpoint uses.
func saveBulk(ctx context.Context, cfg config.Config, fileName string, batch bulk.Batch, resp bulk.Response) error {
	if cfg.DatabaseURL == "" {
		return errors.New("--save requires DATABASE_URL")
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	for i, x := range resp.Conversations {
		_, err := db.SaveConversation(ctx, store.NewConversation{
			Title:            fmt.Sprintf("%s - Conversation %d", fileName, i+1),
			Content:          batch.Items[i].Text,
			FileName:         fileName,
			Fields:           x.Fields(),
			Metadata:         x.Metadata,
			ExtractionMethod: x.Metadata.ExtractionMethod,
		})
		if err != nil {
			return fmt.Errorf("save conversation %d: %w", i+1, err)
		}
	}
	slog.Info("bulk conversations saved", "file_name", fileName, "count", len(resp.Conversations))
	return nil
}
