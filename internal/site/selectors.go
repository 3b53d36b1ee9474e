package site

// Markup selectors for the registry site, kept together so a layout change
// touches one file.
const (
	// public name search
	selSearchTable       = "table.table.table-bordered.table-striped"
	selSearchRow         = "tbody tr"
	selSearchTotalHeader = "thead th[colspan]"

	// authenticated gazette search
	selGazetteTable = "#tblIlanGoruntuleme"
	selGazetteRow   = "tbody tr"
	selGazetteTotal = "span"
	selGazettePDF   = `a[href*="pdf_goster"]`

	// PDF viewer wrappers, in priority order
	selEmbed  = "embed[src]"
	selIframe = "iframe[src]"
	selObject = "object[data]"
)

// Site paths.
const (
	pathNameSearchPage   = "view/hizlierisim/unvansorgulama.php"
	pathNameSearchSubmit = "view/hizlierisim/unvansorgulama_ok.php"
	pathGazetteBase      = "view/hizlierisim/"
	pathGazetteSubmit    = "view/hizlierisim/ilangoruntuleme_ok.php"
	PathLoginSubmit      = "view/modal/uyegirisi_ok.php"
	PathLoginCaptcha     = "captcha/captcha.php"
	PathSearchCaptcha    = "assets/captcha/captcha.php"
)
