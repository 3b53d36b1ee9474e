package entity

import (
	"time"

	"github.com/joseph-ayodele/gazette-ocr/internal/utils"
)

// GazetteRecord represents one notice row of the authenticated gazette search.
type GazetteRecord struct {
	RegistryOffice  string  `json:"registry_office"`
	RegistryNo      string  `json:"registry_no"`
	CompanyName     string  `json:"company_name"`
	PublicationDate *string `json:"publication_date,omitempty"`
	IssueNo         *string `json:"issue_no,omitempty"`
	Page            *string `json:"page,omitempty"`
	NoticeKindText  *string `json:"notice_kind_text,omitempty"`
	PDFURL          *string `json:"pdf_url,omitempty"`
}

// RecordKey identifies a notice for deduplication.
type RecordKey struct {
	RegistryNo      string
	PublicationDate string
}

func (r GazetteRecord) Key() RecordKey {
	return RecordKey{RegistryNo: r.RegistryNo, PublicationDate: utils.StrOrEmpty(r.PublicationDate)}
}

// PublishedAt parses PublicationDate; ok is false when absent or malformed.
func (r GazetteRecord) PublishedAt() (time.Time, bool) {
	if r.PublicationDate == nil {
		return time.Time{}, false
	}
	t, err := utils.ParseDMY(*r.PublicationDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
