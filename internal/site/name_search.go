package site

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/joseph-ayodele/gazette-ocr/constants"
	"github.com/joseph-ayodele/gazette-ocr/internal/common"
	"github.com/joseph-ayodele/gazette-ocr/internal/entity"
	"github.com/joseph-ayodele/gazette-ocr/internal/utils"
)

// CaptchaSolver answers a CAPTCHA challenge for the given context.
type CaptchaSolver interface {
	Solve(ctx context.Context, cc constants.CaptchaContext) (string, error)
}

var reDigits = regexp.MustCompile(`\d+`)

// NameSearch runs the public company-name search. No login is needed.
type NameSearch struct {
	client  *Client
	captcha CaptchaSolver
	logger  *slog.Logger
}

func NewNameSearch(client *Client, captcha CaptchaSolver, logger *slog.Logger) *NameSearch {
	if logger == nil {
		logger = slog.Default()
	}
	return &NameSearch{client: client, captcha: captcha, logger: logger.With("component", "name_search")}
}

// Search returns the matching companies and the upstream total count.
// An empty or missing result table is a NOT_FOUND error.
func (s *NameSearch) Search(ctx context.Context, name string) ([]entity.SearchRecord, int, error) {
	status, err := s.client.Visit(ctx, s.client.URL(pathNameSearchPage))
	if err != nil {
		return nil, 0, fmt.Errorf("name search init: %w", err)
	}
	if status/100 != 2 {
		s.logger.Warn("name search init page status", "status", status)
	}

	if err := s.client.Pace(ctx); err != nil {
		return nil, 0, err
	}

	answer, err := s.captcha.Solve(ctx, constants.CaptchaSearch)
	if err != nil {
		return nil, 0, err
	}

	body, err := s.client.PostForm(ctx, s.client.URL(pathNameSearchSubmit), url.Values{
		"UnvanSorgu": {name},
		"Captcha":    {answer},
		"YeniSorgu":  {"1"},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("name search submit: %w", err)
	}

	records, total, err := parseNameResults(body)
	if err != nil {
		return nil, 0, fmt.Errorf("name search parse: %w", err)
	}
	if len(records) == 0 {
		return nil, 0, common.NewAppErrorDetail(common.KindNotFound,
			fmt.Sprintf("no companies found for %q", name), "query="+name, common.ErrNotFound)
	}

	s.logger.Info("search completed", "query", name, "result_count", len(records), "total", total)
	return records, total, nil
}

func parseNameResults(body []byte) ([]entity.SearchRecord, int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	table := doc.Find(selSearchTable).First()
	if table.Length() == 0 {
		return nil, 0, nil
	}

	total := 0
	if m := reDigits.FindString(table.Find(selSearchTotalHeader).First().Text()); m != "" {
		total, _ = strconv.Atoi(m)
	}

	var records []entity.SearchRecord
	table.Find(selSearchRow).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}
		records = append(records, entity.SearchRecord{
			Title:      cellText(cells, 1),
			RegistryNo: utils.StrPtr(cellText(cells, 2)),
			TSM:        utils.StrPtr(cellText(cells, 3)),
			PDFURLs:    []string{},
		})
	})
	return records, total, nil
}

func cellText(cells *goquery.Selection, i int) string {
	return strings.TrimSpace(cells.Eq(i).Text())
}
