package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/joseph-ayodele/gazette-ocr/internal/common"
	"github.com/joseph-ayodele/gazette-ocr/internal/export"
)

// extractXLSX runs an extraction and returns the results as a workbook.
// Query params: trade_name (required), max_results (optional, default 5).
func (s *Server) extractXLSX(c echo.Context) error {
	name := strings.TrimSpace(c.QueryParam("trade_name"))
	maxResults := defaultMaxResults
	if raw := strings.TrimSpace(c.QueryParam("max_results")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return invalidInput("max_results must be an integer")
		}
		maxResults = n
	}

	// same bounds as the JSON endpoint
	payload, _ := json.Marshal(extractRequest{TradeName: name, MaxResults: &maxResults})
	if err := extractSchema.Validate(payload); err != nil {
		return err
	}

	ctx := common.WithQuery(c.Request().Context(), name)
	results, err := s.svc.Extract(ctx, name, maxResults)
	if err != nil {
		return err
	}
	data, err := s.export.ResultsXLSX(name, results)
	if err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="notices.xlsx"`)
	return c.Blob(http.StatusOK, export.ContentTypeXLSX, data)
}
