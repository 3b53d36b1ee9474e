package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/gazette-ocr/internal/common"
	"github.com/joseph-ayodele/gazette-ocr/internal/entity"
	"github.com/joseph-ayodele/gazette-ocr/internal/metrics"
	"github.com/joseph-ayodele/gazette-ocr/internal/site"
	"github.com/joseph-ayodele/gazette-ocr/internal/utils"
)

const (
	DefaultNameRetries    = 2
	DefaultNameRetryDelay = 2 * time.Second
	DefaultMaxResults     = 5
)

// Deps are the pipeline stages the orchestrator drives.
type Deps struct {
	Auth    Authenticator
	Names   NameSearcher
	Gazette GazetteSearcher
	Offices OfficeResolver
	Fetcher DocumentFetcher
	Text    TextExtractor
	Parser  NoticeParser
}

type Options struct {
	NameRetries    int
	NameRetryDelay time.Duration
}

// Orchestrator runs name -> records -> PDFs -> notices.
// Records of one request are processed sequentially: they share one session
// and one rate-limited client.
type Orchestrator struct {
	deps    Deps
	reader  *NoticeReader
	opts    Options
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewOrchestrator(deps Deps, opts Options, m *metrics.Metrics, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.NameRetries < 1 {
		opts.NameRetries = DefaultNameRetries
	}
	if opts.NameRetryDelay < 0 {
		opts.NameRetryDelay = 0
	}
	return &Orchestrator{
		deps:    deps,
		reader:  NewNoticeReader(deps.Text, deps.Parser, logger),
		opts:    opts,
		metrics: m,
		logger:  logger.With("component", "orchestrator"),
	}
}

// Extract resolves the notices published for name and reads at most
// maxResults of them, newest first. A failing record does not abort the
// batch; only a batch where every record failed is an error.
func (o *Orchestrator) Extract(ctx context.Context, name string, maxResults int) ([]entity.ExtractResult, error) {
	if maxResults < 1 {
		maxResults = DefaultMaxResults
	}
	name = norm.NFC.String(strings.TrimSpace(name))
	log := o.logger.With("query", name, "request_id", common.RequestIDFromContext(ctx))

	if err := o.authenticate(ctx); err != nil {
		return nil, err
	}

	records, unknownOffices, err := o.resolveRecords(ctx, name)
	if err != nil {
		return nil, err
	}
	SortNewestFirst(records)
	if len(records) > maxResults {
		records = records[:maxResults]
	}
	if len(records) == 0 {
		detail := "query=" + name
		if unknownOffices > 0 {
			detail = fmt.Sprintf("%s; %d matching companies skipped: registry office not in the office table (TOBB_OFFICES_FILE)",
				detail, unknownOffices)
		}
		return nil, common.NewAppErrorDetail(common.KindNotFound,
			fmt.Sprintf("no gazette notices found for %q", name), detail, common.ErrNotFound)
	}

	log.Info("extract started", "records", len(records))
	results := make([]entity.ExtractResult, 0, len(records))
	failed := 0
	var lastErr string
	for _, rec := range records {
		res := o.processRecord(ctx, rec)
		if res.Failed() {
			failed++
			lastErr = *res.Error
		}
		results = append(results, res)
	}

	if failed == len(results) {
		log.Error("all records failed", "records", len(results), "last_error", lastErr)
		return nil, common.NewAppErrorDetail(common.KindOCRFailed,
			fmt.Sprintf("all %d gazette notices failed to process", len(results)), lastErr, common.ErrOCRFailed)
	}

	o.deps.Auth.Logout(ctx)
	log.Info("extract completed", "processed", len(results), "successful", len(results)-failed)
	return results, nil
}

// ExtractFromURL reads a single notice PDF by its URL. Processing failures
// are carried on the result; the session is always closed afterwards.
func (o *Orchestrator) ExtractFromURL(ctx context.Context, pdfURL string) (entity.ExtractResult, error) {
	pdfURL = strings.TrimSpace(pdfURL)
	if err := o.authenticate(ctx); err != nil {
		return entity.ExtractResult{}, err
	}
	defer o.deps.Auth.Logout(ctx)

	notice, err := o.read(ctx, pdfURL)
	if err != nil {
		o.log(ctx).Warn("pdf processing failed", "url", pdfURL, "error", err)
		o.metrics.Record("failed")
		msg := err.Error()
		return entity.ExtractResult{PDFURL: utils.StrPtr(pdfURL), Error: &msg}, nil
	}
	o.metrics.Record("success")
	return entity.ResultFromNotice(pdfURL, notice), nil
}

// Search runs the public name search and attaches each company's notice PDF
// links from the authenticated gazette search.
func (o *Orchestrator) Search(ctx context.Context, name string) (entity.SearchResponse, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	records, total, err := o.deps.Names.Search(ctx, name)
	if err != nil {
		return entity.SearchResponse{}, err
	}

	if err := o.authenticate(ctx); err != nil {
		return entity.SearchResponse{}, err
	}
	for i := range records {
		rec := &records[i]
		officeID, ok := o.officeFor(*rec)
		if !ok {
			continue
		}
		notices, err := o.deps.Gazette.Search(ctx, site.GazetteQuery{OfficeID: officeID, RegistryNo: *rec.RegistryNo})
		if err != nil {
			return entity.SearchResponse{}, err
		}
		urls := make([]string, 0, len(notices))
		for _, n := range notices {
			if u := utils.StrOrEmpty(n.PDFURL); u != "" {
				urls = append(urls, u)
			}
		}
		rec.PDFURLs = urls
	}

	return entity.SearchResponse{
		Query:        name,
		TotalResults: len(records),
		TotalRecords: total,
		Results:      records,
	}, nil
}

// log scopes the component logger to the request carried by ctx.
func (o *Orchestrator) log(ctx context.Context) *slog.Logger {
	return o.logger.With(common.LogAttrs(ctx)...)
}

// authenticate logs in, and on failure clears the session and tries once more.
func (o *Orchestrator) authenticate(ctx context.Context) error {
	err := o.deps.Auth.EnsureAuthenticated(ctx)
	if err == nil || errors.Is(err, common.ErrMissingCredentials) || ctx.Err() != nil {
		return err
	}
	o.logger.Warn("auth failed, clearing session and retrying", "error", err)
	o.deps.Auth.Logout(ctx)
	return o.deps.Auth.EnsureAuthenticated(ctx)
}

// resolveRecords finds the companies matching name and collects their
// notices, deduplicated by registry number and publication date. It also
// counts companies skipped because their office has no known id.
func (o *Orchestrator) resolveRecords(ctx context.Context, name string) ([]entity.GazetteRecord, int, error) {
	companies, err := o.searchWithFallback(ctx, name)
	if err != nil {
		return nil, 0, err
	}

	seen := make(map[entity.RecordKey]struct{})
	var out []entity.GazetteRecord
	unknown := 0
	for _, c := range companies {
		officeID, ok := o.officeFor(c)
		if !ok {
			if utils.StrOrEmpty(c.RegistryNo) != "" && utils.StrOrEmpty(c.TSM) != "" {
				unknown++
			}
			continue
		}
		notices, err := o.deps.Gazette.Search(ctx, site.GazetteQuery{OfficeID: officeID, RegistryNo: *c.RegistryNo})
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				continue
			}
			return nil, 0, err
		}
		for _, n := range notices {
			k := n.Key()
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, n)
		}
	}
	o.logger.Info("gazette records resolved", "query", name, "companies", len(companies),
		"unknown_offices", unknown, "records", len(out))
	return out, unknown, nil
}

// officeFor returns the office id for a company, or false when the company
// lacks a registry number or its office cannot be resolved.
func (o *Orchestrator) officeFor(c entity.SearchRecord) (string, bool) {
	regNo := utils.StrOrEmpty(c.RegistryNo)
	office := utils.StrOrEmpty(c.TSM)
	if regNo == "" || office == "" {
		o.logger.Info("company skipped, missing registry data", "title", c.Title, "registry_no", regNo, "office", office)
		return "", false
	}
	id, ok := o.deps.Offices.Resolve(office)
	if !ok {
		o.logger.Warn("company skipped, unknown registry office", "title", c.Title, "office", office)
		return "", false
	}
	return id, true
}

// searchWithFallback retries the name search and, when nothing matched,
// retries once more with a Turkish-uppercased form of the name.
// Exhaustion is an empty result, not an error.
func (o *Orchestrator) searchWithFallback(ctx context.Context, name string) ([]entity.SearchRecord, error) {
	records, err := o.searchWithRetry(ctx, name)
	if err != nil || len(records) > 0 {
		return records, err
	}
	alt := TurkishUpper(name)
	if alt == name {
		o.logger.Info("name search exhausted", "query", name)
		return nil, nil
	}
	o.logger.Info("name search fallback", "query", name, "fallback", alt)
	return o.searchWithRetry(ctx, alt)
}

func (o *Orchestrator) searchWithRetry(ctx context.Context, name string) ([]entity.SearchRecord, error) {
	for attempt := 1; attempt <= o.opts.NameRetries; attempt++ {
		records, _, err := o.deps.Names.Search(ctx, name)
		if err == nil && len(records) > 0 {
			return records, nil
		}
		if err != nil && !retryableSearch(err) {
			return nil, err
		}
		o.logger.Warn("name search attempt empty", "query", name, "attempt", attempt, "max_attempts", o.opts.NameRetries)
		if attempt < o.opts.NameRetries {
			if err := (site.Pacer{Delay: o.opts.NameRetryDelay}).Wait(ctx); err != nil {
				return nil, err
			}
		}
	}
	return nil, nil
}

// retryableSearch reports whether a name-search failure means "nothing yet".
// Any other HTTP status or failure ends the search.
func retryableSearch(err error) bool {
	return errors.Is(err, common.ErrNotFound) || site.IsStatus(err, http.StatusNotFound)
}

func (o *Orchestrator) processRecord(ctx context.Context, rec entity.GazetteRecord) entity.ExtractResult {
	pdfURL := utils.StrOrEmpty(rec.PDFURL)
	if pdfURL == "" {
		o.metrics.Record("no_pdf")
		return entity.ResultFromRecord(rec, "no PDF link for this notice")
	}
	notice, err := o.read(ctx, pdfURL)
	if err != nil {
		o.log(ctx).Warn("pdf processing failed", "url", pdfURL, "registry_no", rec.RegistryNo, "error", err)
		o.metrics.Record("failed")
		return entity.ResultFromRecord(rec, err.Error())
	}
	o.metrics.Record("success")
	return entity.MergeResult(rec, notice)
}

func (o *Orchestrator) read(ctx context.Context, pdfURL string) (entity.ParsedNotice, error) {
	pdf, err := o.fetchWithReauth(ctx, pdfURL)
	if err != nil {
		return entity.ParsedNotice{}, err
	}
	return o.reader.Read(ctx, pdf)
}

// fetchWithReauth refetches once after a fresh login when the viewer page
// embeds no PDF, which upstream means the session expired.
func (o *Orchestrator) fetchWithReauth(ctx context.Context, pdfURL string) ([]byte, error) {
	pdf, err := o.deps.Fetcher.Fetch(ctx, pdfURL)
	if err == nil || !errors.Is(err, common.ErrPDFLinkNotInHTML) {
		return pdf, err
	}
	o.log(ctx).Warn("pdf fetch session expired suspected", "url", pdfURL)
	o.deps.Auth.Logout(ctx)
	if err := o.deps.Auth.EnsureAuthenticated(ctx); err != nil {
		return nil, err
	}
	return o.deps.Fetcher.Fetch(ctx, pdfURL)
}

// SortNewestFirst orders records by publication date, newest first.
// Missing or malformed dates go last; ties keep their input order.
func SortNewestFirst(records []entity.GazetteRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		ti, okI := records[i].PublishedAt()
		tj, okJ := records[j].PublishedAt()
		if okI != okJ {
			return okI
		}
		return okI && ti.After(tj)
	})
}

// TurkishUpper uppercases s with Turkish rules so that "i" becomes "İ".
// The dot-above left behind by lowering "İ" is dropped first.
func TurkishUpper(s string) string {
	lower := strings.ReplaceAll(strings.ToLower(s), "\u0307", "")
	return norm.NFC.String(cases.Upper(language.Turkish).String(lower))
}
