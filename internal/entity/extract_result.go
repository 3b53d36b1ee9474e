package entity

import (
	"github.com/joseph-ayodele/gazette-ocr/constants"
	"github.com/joseph-ayodele/gazette-ocr/internal/utils"
)

// ExtractResult is the per-notice output of an extraction.
// A non-nil Error means this record failed on its own; the batch carried on.
type ExtractResult struct {
	RegistryOffice  *string              `json:"registry_office,omitempty"`
	RegistryNo      *string              `json:"registry_no,omitempty"`
	CompanyName     *string              `json:"company_name,omitempty"`
	PublicationDate *string              `json:"publication_date,omitempty"`
	IssueNo         *string              `json:"issue_no,omitempty"`
	Page            *string              `json:"page,omitempty"`
	NoticeKindText  *string              `json:"notice_kind_text,omitempty"`
	NoticeType      constants.NoticeType `json:"notice_type,omitempty"`
	PDFURL          *string              `json:"pdf_url,omitempty"`
	RawText         string               `json:"raw_text"`
	Confidence      float64              `json:"confidence"`
	Error           *string              `json:"error,omitempty"`
}

// ExtractResponse wraps a batch of results.
type ExtractResponse struct {
	Query          string          `json:"query"`
	TotalProcessed int             `json:"total_processed"`
	Successful     int             `json:"successful"`
	Results        []ExtractResult `json:"results"`
}

// NewExtractResponse counts the successful results of a batch.
func NewExtractResponse(query string, results []ExtractResult) ExtractResponse {
	ok := 0
	for _, r := range results {
		if !r.Failed() {
			ok++
		}
	}
	if results == nil {
		results = []ExtractResult{}
	}
	return ExtractResponse{Query: query, TotalProcessed: len(results), Successful: ok, Results: results}
}

// Failed reports whether the record carries an error.
func (r ExtractResult) Failed() bool { return r.Error != nil }

// ResultFromRecord carries scraped metadata only, with msg as the record error.
func ResultFromRecord(rec GazetteRecord, msg string) ExtractResult {
	return ExtractResult{
		RegistryOffice:  utils.StrPtr(rec.RegistryOffice),
		RegistryNo:      utils.StrPtr(rec.RegistryNo),
		CompanyName:     utils.StrPtr(rec.CompanyName),
		PublicationDate: rec.PublicationDate,
		IssueNo:         rec.IssueNo,
		Page:            rec.Page,
		NoticeKindText:  rec.NoticeKindText,
		PDFURL:          rec.PDFURL,
		Error:           &msg,
	}
}

// MergeResult overlays parsed fields on scraped metadata: parsed values win,
// scraped values fill the gaps.
func MergeResult(rec GazetteRecord, p ParsedNotice) ExtractResult {
	return ExtractResult{
		RegistryOffice:  utils.Coalesce(p.RegistryCity, utils.StrPtr(rec.RegistryOffice)),
		RegistryNo:      utils.Coalesce(p.RegistryNo, utils.StrPtr(rec.RegistryNo)),
		CompanyName:     utils.StrPtr(rec.CompanyName),
		PublicationDate: utils.Coalesce(p.PublicationDate, rec.PublicationDate),
		IssueNo:         utils.Coalesce(p.IssueNo, rec.IssueNo),
		Page:            rec.Page,
		NoticeKindText:  rec.NoticeKindText,
		NoticeType:      p.NoticeType,
		PDFURL:          rec.PDFURL,
		RawText:         p.RawText,
		Confidence:      p.Confidence,
	}
}

// ResultFromNotice builds a result for a document fetched by URL alone.
func ResultFromNotice(pdfURL string, p ParsedNotice) ExtractResult {
	return MergeResult(GazetteRecord{PDFURL: utils.StrPtr(pdfURL)}, p)
}
