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

	"github.com/joseph-ayodele/gazette-ocr/internal/entity"
	"github.com/joseph-ayodele/gazette-ocr/internal/utils"
)

var reAdet = regexp.MustCompile(`(?i)\((\d+)\s*Adet\)`)

// GazetteQuery selects notices of one registry office. At least one of
// RegistryNo and CompanyName should be set.
type GazetteQuery struct {
	OfficeID    string
	RegistryNo  string
	CompanyName string
}

// GazetteSearch queries the authenticated notice viewer. The caller must
// hold a logged-in session.
type GazetteSearch struct {
	client *Client
	logger *slog.Logger
}

func NewGazetteSearch(client *Client, logger *slog.Logger) *GazetteSearch {
	if logger == nil {
		logger = slog.Default()
	}
	return &GazetteSearch{client: client, logger: logger.With("component", "gazette_search")}
}

// Search returns the notices listed for q; no rows is an empty slice.
func (s *GazetteSearch) Search(ctx context.Context, q GazetteQuery) ([]entity.GazetteRecord, error) {
	if err := s.client.Pace(ctx); err != nil {
		return nil, err
	}
	body, err := s.client.PostForm(ctx, s.client.URL(pathGazetteSubmit), url.Values{
		"SicilMudurluguId": {q.OfficeID},
		"TicSicNo":         {q.RegistryNo},
		"TicaretUnvani":    {q.CompanyName},
		"BagliIlan":        {""},
		"Tarih":            {""},
		"Tarih1":           {""},
		"Tarih2":           {""},
	})
	if err != nil {
		return nil, fmt.Errorf("gazette search submit: %w", err)
	}

	records, total, err := s.parse(body)
	if err != nil {
		return nil, fmt.Errorf("gazette search parse: %w", err)
	}
	s.logger.Info("gazette search completed",
		"office_id", q.OfficeID,
		"registry_no", q.RegistryNo,
		"company_name", q.CompanyName,
		"result_count", len(records),
		"total", total,
	)
	return records, nil
}

// parse reads the ten-column notice table: office, registry no, company,
// date, issue, page, kind, PDF link, basket, feedback.
func (s *GazetteSearch) parse(body []byte) ([]entity.GazetteRecord, int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	records := []entity.GazetteRecord{}
	table := doc.Find(selGazetteTable).First()
	if table.Length() == 0 {
		return records, 0, nil
	}

	total := -1
	doc.Find(selGazetteTotal).EachWithBreak(func(_ int, sp *goquery.Selection) bool {
		if m := reAdet.FindStringSubmatch(sp.Text()); m != nil {
			total, _ = strconv.Atoi(m[1])
			return false
		}
		return true
	})

	table.Find(selGazetteRow).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 8 {
			return
		}
		rec := entity.GazetteRecord{
			RegistryOffice:  cellText(cells, 0),
			RegistryNo:      cellText(cells, 1),
			CompanyName:     cellText(cells, 2),
			PublicationDate: utils.StrPtr(cellText(cells, 3)),
			IssueNo:         utils.StrPtr(cellText(cells, 4)),
			Page:            utils.StrPtr(cellText(cells, 5)),
			NoticeKindText:  utils.StrPtr(cellText(cells, 6)),
		}
		if href, ok := cells.Eq(7).Find(selGazettePDF).First().Attr("href"); ok {
			rec.PDFURL = utils.StrPtr(s.resolvePDF(href))
		}
		records = append(records, rec)
	})
	return records, total, nil
}

// resolvePDF keeps absolute links and anchors relative ones under the
// viewer directory of the site.
func (s *GazetteSearch) resolvePDF(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return s.client.URL(pathGazetteBase) + href
}
