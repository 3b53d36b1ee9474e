package extract

import (
	"context"

	"github.com/joseph-ayodele/gazette-ocr/internal/entity"
	"github.com/joseph-ayodele/gazette-ocr/internal/site"
)

// Authenticator owns the shared upstream session.
type Authenticator interface {
	EnsureAuthenticated(ctx context.Context) error
	Logout(ctx context.Context)
}

// NameSearcher is the public company-name search.
type NameSearcher interface {
	Search(ctx context.Context, name string) ([]entity.SearchRecord, int, error)
}

// GazetteSearcher is the authenticated notice search.
type GazetteSearcher interface {
	Search(ctx context.Context, q site.GazetteQuery) ([]entity.GazetteRecord, error)
}

// OfficeResolver maps a registry-office name to the site's office id.
type OfficeResolver interface {
	Resolve(name string) (string, bool)
}

// DocumentFetcher downloads a notice PDF.
type DocumentFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// TextExtractor is Stage 1: PDF bytes -> text.
type TextExtractor interface {
	ExtractText(ctx context.Context, pdf []byte) (string, error)
}

// NoticeParser is Stage 2: text -> structured notice fields.
type NoticeParser interface {
	Parse(raw string) entity.ParsedNotice
}
