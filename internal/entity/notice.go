package entity

import "github.com/joseph-ayodele/gazette-ocr/constants"

// ParsedNotice holds the structured fields recovered from notice text.
type ParsedNotice struct {
	RegistryCity    *string              `json:"registry_city,omitempty"`
	RegistryNo      *string              `json:"registry_no,omitempty"`
	PublicationDate *string              `json:"publication_date,omitempty"`
	IssueNo         *string              `json:"issue_no,omitempty"`
	NoticeType      constants.NoticeType `json:"notice_type"`
	RawText         string               `json:"raw_text"`
	Confidence      float64              `json:"confidence"`
}
