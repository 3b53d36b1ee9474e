package server

import "github.com/joseph-ayodele/gazette-ocr/internal/common"

const (
	defaultMaxResults = 5
	maxMaxResults     = 50
)

var tradeName = map[string]any{"type": "string", "minLength": 2, "maxLength": 500}

var searchSchema = common.MustCompileSchema("search.json", map[string]any{
	"type":       "object",
	"required":   []any{"trade_name"},
	"properties": map[string]any{"trade_name": tradeName},
})

var extractSchema = common.MustCompileSchema("extract.json", map[string]any{
	"type":     "object",
	"required": []any{"trade_name"},
	"properties": map[string]any{
		"trade_name":  tradeName,
		"max_results": map[string]any{"type": "integer", "minimum": 1, "maximum": maxMaxResults},
	},
})

var extractURLSchema = common.MustCompileSchema("extract_url.json", map[string]any{
	"type":     "object",
	"required": []any{"pdf_url"},
	"properties": map[string]any{
		"pdf_url": map[string]any{"type": "string", "minLength": 10, "maxLength": 2000},
	},
})

type searchRequest struct {
	TradeName string `json:"trade_name"`
}

type extractRequest struct {
	TradeName  string `json:"trade_name"`
	MaxResults *int   `json:"max_results"`
}

type extractURLRequest struct {
	PDFURL string `json:"pdf_url"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
