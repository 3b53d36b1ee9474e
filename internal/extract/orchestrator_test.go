package extract

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/gazette-ocr/internal/common"
	"github.com/joseph-ayodele/gazette-ocr/internal/entity"
	"github.com/joseph-ayodele/gazette-ocr/internal/parser"
	"github.com/joseph-ayodele/gazette-ocr/internal/site"
	"github.com/joseph-ayodele/gazette-ocr/internal/utils"
)

type stubAuth struct {
	errs    []error
	ensures int
	logouts int
}

func (a *stubAuth) EnsureAuthenticated(context.Context) error {
	a.ensures++
	if len(a.errs) > 0 {
		err := a.errs[0]
		a.errs = a.errs[1:]
		return err
	}
	return nil
}

func (a *stubAuth) Logout(context.Context) { a.logouts++ }

type stubNames struct {
	byName  map[string][]entity.SearchRecord
	err     error
	queries []string
}

func (s *stubNames) Search(_ context.Context, name string) ([]entity.SearchRecord, int, error) {
	s.queries = append(s.queries, name)
	if s.err != nil {
		return nil, 0, s.err
	}
	recs, ok := s.byName[name]
	if !ok {
		return nil, 0, common.NewAppError(common.KindNotFound, "no companies", common.ErrNotFound)
	}
	return recs, len(recs), nil
}

type stubGazette struct {
	byRegistry map[string][]entity.GazetteRecord
	queries    []site.GazetteQuery
}

func (s *stubGazette) Search(_ context.Context, q site.GazetteQuery) ([]entity.GazetteRecord, error) {
	s.queries = append(s.queries, q)
	return s.byRegistry[q.RegistryNo], nil
}

type stubOffices map[string]string

func (s stubOffices) Resolve(name string) (string, bool) {
	id, ok := s[name]
	return id, ok
}

type stubFetcher struct {
	errs  map[string][]error
	calls []string
}

func (f *stubFetcher) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	f.calls = append(f.calls, rawURL)
	if errs := f.errs[rawURL]; len(errs) > 0 {
		f.errs[rawURL] = errs[1:]
		if errs[0] != nil {
			return nil, errs[0]
		}
	}
	return []byte("%PDF-1.4 " + rawURL), nil
}

type stubText struct{ err error }

func (s stubText) ExtractText(_ context.Context, pdf []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "Genel kurul toplantisi yapildi. Ana sozlesme degisikligi tescil edildi.", nil
}

type fixture struct {
	auth    *stubAuth
	names   *stubNames
	gazette *stubGazette
	fetcher *stubFetcher
	text    stubText
}

func newFixture() *fixture {
	return &fixture{
		auth: &stubAuth{},
		names: &stubNames{byName: map[string][]entity.SearchRecord{
			"Acme Ticaret": {{Title: "ACME TICARET A.S.", RegistryNo: utils.StrPtr("123456"), TSM: utils.StrPtr("ISTANBUL")}},
		}},
		gazette: &stubGazette{byRegistry: map[string][]entity.GazetteRecord{
			"123456": {
				notice("01/01/2020", "https://example.test/a.pdf"),
				notice("15/06/2024", "https://example.test/b.pdf"),
				notice("01/01/2020", "https://example.test/a-dup.pdf"),
			},
		}},
		fetcher: &stubFetcher{errs: map[string][]error{}},
	}
}

func (f *fixture) orchestrator() *Orchestrator {
	return NewOrchestrator(Deps{
		Auth:    f.auth,
		Names:   f.names,
		Gazette: f.gazette,
		Offices: stubOffices{"ISTANBUL": "34"},
		Fetcher: f.fetcher,
		Text:    f.text,
		Parser:  parser.New(nil),
	}, Options{}, nil, nil)
}

func notice(date, pdfURL string) entity.GazetteRecord {
	return entity.GazetteRecord{
		RegistryOffice:  "ISTANBUL",
		RegistryNo:      "123456",
		CompanyName:     "ACME TICARET A.S.",
		PublicationDate: utils.StrPtr(date),
		PDFURL:          utils.StrPtr(pdfURL),
	}
}

func TestExtractNewestFirstAndDeduplicated(t *testing.T) {
	f := newFixture()
	results, err := f.orchestrator().Extract(context.Background(), "Acme Ticaret", 5)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "15/06/2024", *results[0].PublicationDate)
	assert.Equal(t, "https://example.test/b.pdf", *results[0].PDFURL)
	assert.Equal(t, "01/01/2020", *results[1].PublicationDate)
	assert.Equal(t, "https://example.test/a.pdf", *results[1].PDFURL)
	for _, r := range results {
		assert.Nil(t, r.Error)
		assert.NotEmpty(t, r.RawText)
		assert.Equal(t, "ISTANBUL", *r.RegistryOffice)
	}

	assert.Equal(t, []site.GazetteQuery{{OfficeID: "34", RegistryNo: "123456"}}, f.gazette.queries)
	assert.Equal(t, 1, f.auth.logouts, "session closed after success")
}

func TestExtractTruncatesToMaxResults(t *testing.T) {
	f := newFixture()
	results, err := f.orchestrator().Extract(context.Background(), "Acme Ticaret", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "15/06/2024", *results[0].PublicationDate)
	assert.Equal(t, []string{"https://example.test/b.pdf"}, f.fetcher.calls)
}

func TestExtractNotFoundAfterFallback(t *testing.T) {
	f := newFixture()
	_, err := f.orchestrator().Extract(context.Background(), "bilinmeyen sirket", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, common.KindNotFound, common.KindOf(err))
	assert.Equal(t, []string{
		"bilinmeyen sirket", "bilinmeyen sirket",
		"BİLİNMEYEN SİRKET", "BİLİNMEYEN SİRKET",
	}, f.names.queries)
	assert.Zero(t, f.auth.logouts)
}

func TestExtractUsesTurkishFallback(t *testing.T) {
	f := newFixture()
	f.names.byName = map[string][]entity.SearchRecord{
		"İSTANBUL GİDA": {{Title: "İSTANBUL GIDA LTD", RegistryNo: utils.StrPtr("123456"), TSM: utils.StrPtr("ISTANBUL")}},
	}
	results, err := f.orchestrator().Extract(context.Background(), "ISTANBUL GIDA", 5)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, []string{"ISTANBUL GIDA", "ISTANBUL GIDA", "İSTANBUL GİDA"}, f.names.queries)
}

func TestExtractStopsOnUnexpectedHTTPStatus(t *testing.T) {
	f := newFixture()
	f.names.err = &site.StatusError{URL: "https://example.test/search", Code: http.StatusInternalServerError}
	_, err := f.orchestrator().Extract(context.Background(), "Acme Ticaret", 5)
	require.Error(t, err)
	assert.True(t, site.IsStatus(err, http.StatusInternalServerError))
	assert.Len(t, f.names.queries, 1)
}

func TestExtractRetriesName404(t *testing.T) {
	f := newFixture()
	f.names.err = &site.StatusError{URL: "https://example.test/search", Code: http.StatusNotFound}
	_, err := f.orchestrator().Extract(context.Background(), "Acme Ticaret", 5)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Len(t, f.names.queries, 4)
}

func TestExtractSkipsUnresolvableCompanies(t *testing.T) {
	f := newFixture()
	f.names.byName["Acme Ticaret"] = append([]entity.SearchRecord{
		{Title: "NO REGISTRY", TSM: utils.StrPtr("ISTANBUL")},
		{Title: "UNKNOWN OFFICE", RegistryNo: utils.StrPtr("999"), TSM: utils.StrPtr("ATLANTIS")},
	}, f.names.byName["Acme Ticaret"]...)

	results, err := f.orchestrator().Extract(context.Background(), "Acme Ticaret", 5)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Len(t, f.gazette.queries, 1)
}

func TestExtractNotFoundNamesUnknownOffices(t *testing.T) {
	f := newFixture()
	f.names.byName["Acme Ticaret"] = []entity.SearchRecord{
		{Title: "NO REGISTRY", TSM: utils.StrPtr("ISTANBUL")},
		{Title: "UNKNOWN OFFICE", RegistryNo: utils.StrPtr("999"), TSM: utils.StrPtr("ATLANTIS")},
	}

	_, err := f.orchestrator().Extract(context.Background(), "Acme Ticaret", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
	var ae *common.AppError
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Detail, "1 matching companies skipped")
	assert.Contains(t, ae.Detail, "TOBB_OFFICES_FILE")
	assert.Empty(t, f.gazette.queries)
}

func TestExtractReauthenticatesOnSessionExpiry(t *testing.T) {
	f := newFixture()
	expired := common.NewAppError(common.KindFetchFailed, "pdf link not found", common.ErrPDFLinkNotInHTML)
	f.fetcher.errs["https://example.test/b.pdf"] = []error{expired}

	results, err := f.orchestrator().Extract(context.Background(), "Acme Ticaret", 5)
	require.NoError(t, err)
	assert.Nil(t, results[0].Error)
	assert.Equal(t, []string{
		"https://example.test/b.pdf", "https://example.test/b.pdf", "https://example.test/a.pdf",
	}, f.fetcher.calls)
	assert.Equal(t, 2, f.auth.ensures)
	assert.Equal(t, 2, f.auth.logouts)
}

func TestExtractCapturesPerRecordFailures(t *testing.T) {
	f := newFixture()
	f.gazette.byRegistry["123456"][0].PDFURL = nil
	f.fetcher.errs["https://example.test/b.pdf"] = []error{
		common.NewAppError(common.KindFetchFailed, "size exceeded", common.ErrSizeExceeded),
	}
	f.gazette.byRegistry["123456"] = append(f.gazette.byRegistry["123456"], notice("02/02/2022", "https://example.test/c.pdf"))

	results, err := f.orchestrator().Extract(context.Background(), "Acme Ticaret", 5)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Contains(t, *results[0].Error, "size exceeded")
	assert.Equal(t, "15/06/2024", *results[0].PublicationDate)
	assert.Nil(t, results[1].Error)
	assert.Equal(t, "no PDF link for this notice", *results[2].Error)
	assert.Equal(t, "123456", *results[2].RegistryNo)
	assert.Equal(t, 1, f.auth.ensures, "only the expired-session symptom triggers a new login")
}

func TestExtractAllFailedIsOCRFailure(t *testing.T) {
	f := newFixture()
	f.text = stubText{err: common.NewAppError(common.KindOCRFailed, "forced ocr failed", common.ErrOCRFailed)}

	_, err := f.orchestrator().Extract(context.Background(), "Acme Ticaret", 5)
	require.Error(t, err)
	assert.Equal(t, common.KindOCRFailed, common.KindOf(err))
	assert.Contains(t, err.Error(), "all 2 gazette notices")
	assert.Zero(t, f.auth.logouts)
}

func TestAuthenticateRetriesOnce(t *testing.T) {
	f := newFixture()
	f.auth.errs = []error{common.NewAppError(common.KindAuthFailed, "login rejected", common.ErrAuthFailed)}

	_, err := f.orchestrator().Extract(context.Background(), "Acme Ticaret", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, f.auth.ensures)
	assert.Equal(t, 2, f.auth.logouts)
}

func TestAuthenticateMissingCredentialsNoRetry(t *testing.T) {
	f := newFixture()
	missing := common.NewAppError(common.KindAuthFailed, "login credentials missing", common.ErrMissingCredentials)
	f.auth.errs = []error{missing, nil}

	_, err := f.orchestrator().Extract(context.Background(), "Acme Ticaret", 5)
	assert.ErrorIs(t, err, common.ErrMissingCredentials)
	assert.Equal(t, 1, f.auth.ensures)
	assert.Empty(t, f.names.queries)
}

func TestExtractFromURL(t *testing.T) {
	f := newFixture()
	res, err := f.orchestrator().ExtractFromURL(context.Background(), " https://example.test/x.pdf ")
	require.NoError(t, err)
	assert.Nil(t, res.Error)
	assert.Equal(t, "https://example.test/x.pdf", *res.PDFURL)
	assert.NotEmpty(t, res.RawText)
	assert.Equal(t, 1, f.auth.logouts)
}

func TestExtractFromURLCapturesFailure(t *testing.T) {
	f := newFixture()
	f.fetcher.errs["https://example.test/x.pdf"] = []error{errors.New("connection reset")}

	res, err := f.orchestrator().ExtractFromURL(context.Background(), "https://example.test/x.pdf")
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Contains(t, *res.Error, "connection reset")
	assert.Equal(t, 1, f.auth.logouts)
}

func TestRecordFailureLogCarriesRequestContext(t *testing.T) {
	f := newFixture()
	f.fetcher.errs["https://example.test/b.pdf"] = []error{errors.New("connection reset")}
	var buf bytes.Buffer
	o := NewOrchestrator(Deps{
		Auth:    f.auth,
		Names:   f.names,
		Gazette: f.gazette,
		Offices: stubOffices{"ISTANBUL": "34"},
		Fetcher: f.fetcher,
		Text:    f.text,
		Parser:  parser.New(nil),
	}, Options{}, nil, slog.New(slog.NewJSONHandler(&buf, nil)))

	ctx := common.WithQuery(common.WithRequestID(context.Background(), "req-42"), "Acme Ticaret")
	_, err := o.Extract(ctx, "Acme Ticaret", 5)
	require.NoError(t, err)

	var line string
	for _, l := range strings.Split(buf.String(), "\n") {
		if strings.Contains(l, `"msg":"pdf processing failed"`) {
			line = l
		}
	}
	require.NotEmpty(t, line)
	assert.Contains(t, line, `"request_id":"req-42"`)
	assert.Contains(t, line, `"query":"Acme Ticaret"`)
}

func TestSearchEnrichesWithPDFLinks(t *testing.T) {
	f := newFixture()
	f.names.byName["Acme Ticaret"] = append(f.names.byName["Acme Ticaret"],
		entity.SearchRecord{Title: "NO OFFICE", RegistryNo: utils.StrPtr("1")})
	f.gazette.byRegistry["123456"][1].PDFURL = nil

	resp, err := f.orchestrator().Search(context.Background(), "Acme Ticaret")
	require.NoError(t, err)
	assert.Equal(t, "Acme Ticaret", resp.Query)
	assert.Equal(t, 2, resp.TotalResults)
	assert.Equal(t, 2, resp.TotalRecords)
	assert.Equal(t, []string{"https://example.test/a.pdf", "https://example.test/a-dup.pdf"}, resp.Results[0].PDFURLs)
	assert.Nil(t, resp.Results[1].PDFURLs)
}

func TestSearchPropagatesNotFound(t *testing.T) {
	f := newFixture()
	_, err := f.orchestrator().Search(context.Background(), "nothing")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Zero(t, f.auth.ensures)
}

func TestSortNewestFirst(t *testing.T) {
	recs := []entity.GazetteRecord{
		{RegistryNo: "bad", PublicationDate: utils.StrPtr("not a date")},
		{RegistryNo: "old", PublicationDate: utils.StrPtr("01/01/2020")},
		{RegistryNo: "none"},
		{RegistryNo: "new", PublicationDate: utils.StrPtr("15.06.2024")},
		{RegistryNo: "old2", PublicationDate: utils.StrPtr("01/01/2020")},
	}
	SortNewestFirst(recs)

	var order []string
	for _, r := range recs {
		order = append(order, r.RegistryNo)
	}
	assert.Equal(t, []string{"new", "old", "old2", "bad", "none"}, order)
}

func TestTurkishUpper(t *testing.T) {
	tests := []struct{ in, want string }{
		{"istanbul", "İSTANBUL"},
		{"ISTANBUL", "İSTANBUL"},
		{"İSTANBUL", "İSTANBUL"},
		{"ılık", "ILIK"},
		{"ACME", "ACME"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, TurkishUpper(tt.in))
		})
	}
}
