package export

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/gazette-ocr/internal/entity"
	"github.com/joseph-ayodele/gazette-ocr/internal/utils"
)

const (
	SheetName       = "Notices"
	excerptRunes    = 300
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Headers are the column titles of the notices sheet, in order.
var Headers = []string{
	"Registry Office",
	"Registry No",
	"Company",
	"Publication Date",
	"Issue",
	"Page",
	"Notice Kind",
	"Notice Type",
	"Confidence",
	"PDF URL",
	"Error",
	"Text Excerpt",
}

// Service produces XLSX bytes for extraction results.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger.With("component", "export")}
}

// ResultsXLSX writes one row per result, in the order given.
func (s *Service) ResultsXLSX(query string, results []entity.ExtractResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// rename the default sheet rather than adding a second one
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}

	for i, r := range results {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}
		write(1, utils.StrOrEmpty(r.RegistryOffice))
		write(2, utils.StrOrEmpty(r.RegistryNo))
		write(3, utils.StrOrEmpty(r.CompanyName))
		write(4, utils.StrOrEmpty(r.PublicationDate))
		write(5, utils.StrOrEmpty(r.IssueNo))
		write(6, utils.StrOrEmpty(r.Page))
		write(7, utils.StrOrEmpty(r.NoticeKindText))
		write(8, string(r.NoticeType))
		if !r.Failed() {
			write(9, strconv.FormatFloat(r.Confidence, 'f', 2, 64))
		}
		write(10, utils.StrOrEmpty(r.PDFURL))
		write(11, utils.StrOrEmpty(r.Error))
		write(12, utils.Excerpt(r.RawText, excerptRunes))
	}

	_ = f.SetColWidth(SheetName, "A", "B", 16)
	_ = f.SetColWidth(SheetName, "C", "C", 36)
	_ = f.SetColWidth(SheetName, "D", "I", 14)
	_ = f.SetColWidth(SheetName, "J", "J", 60)
	_ = f.SetColWidth(SheetName, "K", "K", 40)
	_ = f.SetColWidth(SheetName, "L", "L", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"query", query,
		"rows", len(results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
