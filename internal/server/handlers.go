package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/joseph-ayodele/gazette-ocr/internal/common"
	"github.com/joseph-ayodele/gazette-ocr/internal/entity"
)

const maxBodyBytes = 64 << 10

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", Service: serviceName})
}

func (s *Server) search(c echo.Context) error {
	var req searchRequest
	if err := bind(c, searchSchema, &req); err != nil {
		return err
	}
	resp, err := s.svc.Search(c.Request().Context(), req.TradeName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) extract(c echo.Context) error {
	var req extractRequest
	if err := bind(c, extractSchema, &req); err != nil {
		return err
	}
	maxResults := defaultMaxResults
	if req.MaxResults != nil {
		maxResults = *req.MaxResults
	}

	ctx := common.WithQuery(c.Request().Context(), req.TradeName)
	results, err := s.svc.Extract(ctx, req.TradeName, maxResults)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entity.NewExtractResponse(req.TradeName, results))
}

func (s *Server) extractURL(c echo.Context) error {
	var req extractURLRequest
	if err := bind(c, extractURLSchema, &req); err != nil {
		return err
	}
	res, err := s.svc.ExtractFromURL(c.Request().Context(), req.PDFURL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// bind validates the raw body against schema before decoding it into dst.
func bind(c echo.Context, schema *common.Schema, dst any) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes+1))
	if err != nil {
		return invalidInput("cannot read request body")
	}
	if len(body) > maxBodyBytes {
		return invalidInput("request body too large")
	}
	if err := schema.Validate(body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return common.NewAppErrorDetail(common.KindInvalidInput, "request body does not decode", err.Error(), common.ErrInvalidInput)
	}
	return nil
}
