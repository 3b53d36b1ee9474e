package parser

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/gazette-ocr/constants"
	"github.com/joseph-ayodele/gazette-ocr/internal/entity"
)

// totalFields counts registry city, registry number, publication date,
// issue number and notice type.
const totalFields = 5

var (
	reRegistryCity = regexp.MustCompile(`(?i)Ticaret\s+Sicil.*?[Mm][uü]d[uü]rl[uü][gğ][uü]\s*[:\-]?\s*(.+?)(?:\n|$)`)
	reRegistryNo   = regexp.MustCompile(`(?i)Sicil\s+No\s*[:\-]?\s*(\d+)`)
	reDate         = regexp.MustCompile(`(\d{2}[./]\d{2}[./]\d{4})`)
	reIssueNo      = regexp.MustCompile(`[Ss]ay[iıİ]\s*[:\-]?\s*(\d+)`)
)

type noticeRule struct {
	kind     constants.NoticeType
	keywords []string
}

// noticeRules are evaluated in order; the first rule with a matching
// keyword decides the notice type.
var noticeRules = []noticeRule{
	{constants.NoticeEstablishment, []string{"kuruluş", "kurulus", "tescil", "yeni kayıt", "yeni kayit"}},
	{constants.NoticeAmendment, []string{"değişiklik", "degisiklik", "tadil", "değişik", "degisik"}},
	{constants.NoticeClosure, []string{"kapanış", "kapanis", "tasfiye", "terkin", "fesih"}},
}

// Parser extracts structured notice fields from OCR text.
type Parser struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger.With("component", "parser")}
}

// Parse never fails: missing fields stay nil and lower the confidence.
func (p *Parser) Parse(raw string) entity.ParsedNotice {
	out := entity.ParsedNotice{
		RegistryCity:    firstGroup(reRegistryCity, raw),
		RegistryNo:      firstGroup(reRegistryNo, raw),
		PublicationDate: extractDate(raw),
		IssueNo:         firstGroup(reIssueNo, raw),
		NoticeType:      Classify(raw),
		RawText:         raw,
	}

	found := 1 // notice type always resolves
	for _, f := range []*string{out.RegistryCity, out.RegistryNo, out.PublicationDate, out.IssueNo} {
		if f != nil {
			found++
		}
	}
	out.Confidence = float64(found) / totalFields

	p.logger.Info("gazette parsed",
		"found_fields", found,
		"confidence", out.Confidence,
		"notice_type", out.NoticeType,
	)
	return out
}

// Classify assigns a notice type by keyword, defaulting to NoticeOther.
func Classify(text string) constants.NoticeType {
	lower := strings.ToLower(text)
	for _, r := range noticeRules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.kind
			}
		}
	}
	return constants.NoticeOther
}

func firstGroup(re *regexp.Regexp, text string) *string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v := strings.TrimSpace(m[1])
	if v == "" {
		return nil
	}
	return &v
}

// extractDate returns the first DD.MM.YYYY or DD/MM/YYYY date in slash form.
func extractDate(text string) *string {
	m := reDate.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v := strings.ReplaceAll(m[1], ".", "/")
	return &v
}
