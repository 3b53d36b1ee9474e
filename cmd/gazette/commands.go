package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/gazette-ocr/constants"
	"github.com/joseph-ayodele/gazette-ocr/internal/async"
	"github.com/joseph-ayodele/gazette-ocr/internal/common"
	"github.com/joseph-ayodele/gazette-ocr/internal/entity"
	"github.com/joseph-ayodele/gazette-ocr/internal/extract"
)

func newSearchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "search <trade name>",
		Short: "Search companies by trade name and list their notice PDFs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := c.app.Orchestrator.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func newExtractCmd(c *cli) *cobra.Command {
	var (
		maxResults int
		xlsxPath   string
	)
	cmd := &cobra.Command{
		Use:   "extract <trade name>",
		Short: "Download and read the newest gazette notices of a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxResults < 1 || maxResults > 50 {
				return fmt.Errorf("--max must be between 1 and 50")
			}
			name := args[0]
			ctx := common.WithQuery(cmd.Context(), name)
			results, err := c.app.Orchestrator.Extract(ctx, name, maxResults)
			if err != nil {
				return err
			}
			if xlsxPath != "" {
				if err := c.writeXLSX(xlsxPath, name, results); err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), entity.NewExtractResponse(name, results))
		},
	}
	cmd.Flags().IntVar(&maxResults, "max", extract.DefaultMaxResults, "maximum notices to read (1-50)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write the results to this XLSX file")
	return cmd
}

func newOCRCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "ocr <file.pdf>",
		Short: "Run the OCR cascade and notice parser on a local PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if !constants.HasPDFMagic(data) {
				return fmt.Errorf("%s is not a PDF", args[0])
			}
			limit := c.app.Config.OCR.MaxPDFBytes()
			if int64(len(data)) > limit {
				return fmt.Errorf("%s is larger than %d bytes", args[0], limit)
			}

			start := time.Now()
			notice, err := c.app.NoticeReader().Read(cmd.Context(), data)
			if err != nil {
				return err
			}
			c.app.Logger.Info("ocr done", "file", args[0], "chars", len(notice.RawText),
				"duration_ms", time.Since(start).Milliseconds())
			return writeJSON(cmd.OutOrStdout(), notice)
		},
	}
}

type batchSummary struct {
	Query          string              `json:"query"`
	Status         constants.JobStatus `json:"status"`
	TotalProcessed int                 `json:"total_processed"`
	Successful     int                 `json:"successful"`
	Error          string              `json:"error,omitempty"`
	ElapsedMs      int64               `json:"elapsed_ms"`
}

func newBatchCmd(c *cli) *cobra.Command {
	var (
		maxResults int
		xlsxPath   string
	)
	cmd := &cobra.Command{
		Use:   "batch <names-file>",
		Short: "Extract notices for every trade name in a file, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			names, err := readNames(f)
			_ = f.Close()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				return fmt.Errorf("%s lists no trade names", args[0])
			}

			var (
				mu        sync.Mutex
				all       []entity.ExtractResult
				summaries []batchSummary
			)
			q := async.NewExtractQueue(c.app.Orchestrator, func(r async.JobResult) {
				resp := entity.NewExtractResponse(r.Job.Name, r.Results)
				s := batchSummary{
					Query:          r.Job.Name,
					Status:         r.Status,
					TotalProcessed: resp.TotalProcessed,
					Successful:     resp.Successful,
					ElapsedMs:      r.Duration.Milliseconds(),
				}
				if r.Err != nil {
					s.Error = r.Err.Error()
				}
				mu.Lock()
				all = append(all, r.Results...)
				summaries = append(summaries, s)
				mu.Unlock()
			}, c.app.Logger)

			for _, n := range names {
				if err := q.Enqueue(cmd.Context(), async.Job{Name: n, MaxResults: maxResults}); err != nil {
					q.Shutdown(context.Background())
					return err
				}
			}
			q.Shutdown(cmd.Context())

			mu.Lock()
			defer mu.Unlock()
			if err := c.writeXLSX(xlsxPath, args[0], all); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summaries)
		},
	}
	cmd.Flags().IntVar(&maxResults, "max", extract.DefaultMaxResults, "maximum notices per trade name")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "batch.xlsx", "XLSX file for all results")
	return cmd
}

func (c *cli) writeXLSX(path, query string, results []entity.ExtractResult) error {
	data, err := c.app.Export.ResultsXLSX(query, results)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	c.app.Logger.Info("xlsx written", "path", path, "rows", len(results))
	return nil
}
