package entity

// SearchRecord represents one row of the public company-name search.
// PDFURLs is filled by enrichment, never by the search itself.
type SearchRecord struct {
	Title      string   `json:"title"`
	RegistryNo *string  `json:"registry_no,omitempty"`
	TSM        *string  `json:"tsm,omitempty"`
	PDFURLs    []string `json:"pdf_urls"`
}

// SearchResponse is the enriched name-search result.
type SearchResponse struct {
	Query        string         `json:"query"`
	TotalResults int            `json:"total_results"`
	TotalRecords int            `json:"total_records"`
	Results      []SearchRecord `json:"results"`
}
