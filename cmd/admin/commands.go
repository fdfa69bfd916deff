package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"talentflow/internal/persistence"
	"talentflow/internal/storage"
)

func newSeedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the store when jobs, candidates and assessments are all empty",
		RunE: func(cmd *cobra.Command, _ []string) error {
			seeded, err := c.svc.Initialize(cmd.Context())
			if err != nil {
				return err
			}
			if seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "store seeded")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "store already has data, nothing to do")
			}
			return printCounts(cmd, c.svc)
		},
	}
}

func newResetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear every collection and seed again",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.svc.Reseed(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "store reseeded")
			return printCounts(cmd, c.svc)
		},
	}
}

func newClearCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every record from all collections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				return errors.New("refusing to clear without --yes")
			}
			if err := c.svc.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "store cleared")
			return nil
		},
	}
	cmd.Flags().Bool("yes", false, "Confirm deleting all data")
	return cmd
}

func newCountsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Print the number of records per collection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printCounts(cmd, c.svc)
		},
	}
}

func newExportCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a snapshot of every collection as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, _ := cmd.Flags().GetString("out")
			upload, _ := cmd.Flags().GetBool("upload")

			snap, err := c.svc.Export(cmd.Context())
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return fmt.Errorf("encode snapshot: %w", err)
			}

			if upload {
				client, err := storage.NewClient(c.cfg.MinIO)
				if err != nil {
					return fmt.Errorf("init storage client: %w", err)
				}
				key := storage.SnapshotKey(time.Now(), uuid.NewString())
				if _, err := client.UploadFile(cmd.Context(), key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
					return err
				}
				c.logger.Info("snapshot uploaded", slog.String("object_key", key), slog.Int("records", snap.Total()))
				fmt.Fprintln(cmd.OutOrStdout(), key)
				return nil
			}

			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			c.logger.Info("snapshot written", slog.String("path", out), slog.Int("records", snap.Total()))
			return nil
		},
	}
	cmd.Flags().StringP("out", "o", "", "Output file (default stdout)")
	cmd.Flags().Bool("upload", false, "Upload the snapshot to MinIO instead of writing it locally")
	return cmd
}

func newImportCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Upsert a snapshot from a file or a MinIO object",
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, _ := cmd.Flags().GetString("file")
			object, _ := cmd.Flags().GetString("object")
			if (file == "") == (object == "") {
				return errors.New("exactly one of --file or --object is required")
			}

			var r io.ReadCloser
			if object != "" {
				client, err := storage.NewClient(c.cfg.MinIO)
				if err != nil {
					return fmt.Errorf("init storage client: %w", err)
				}
				if r, err = client.GetObject(cmd.Context(), object); err != nil {
					if storage.IsNoSuchKey(err) {
						return fmt.Errorf("snapshot %q does not exist", object)
					}
					return err
				}
			} else {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				r = f
			}
			defer r.Close()

			var snap persistence.Snapshot
			if err := json.NewDecoder(r).Decode(&snap); err != nil {
				return fmt.Errorf("decode snapshot: %w", err)
			}
			if err := c.svc.Import(cmd.Context(), &snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records\n", snap.Total())
			return printCounts(cmd, c.svc)
		},
	}
	cmd.Flags().StringP("file", "f", "", "Snapshot file to import")
	cmd.Flags().String("object", "", "MinIO object key of the snapshot to import")
	return cmd
}

func printCounts(cmd *cobra.Command, svc *persistence.Service) error {
	counts, err := svc.Counts(cmd.Context())
	if err != nil {
		return err
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "%-20s %d\n", name, counts[name])
	}
	return nil
}
