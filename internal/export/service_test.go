package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/gazette-ocr/constants"
	"github.com/joseph-ayodele/gazette-ocr/internal/entity"
	"github.com/joseph-ayodele/gazette-ocr/internal/utils"
)

func TestResultsXLSX(t *testing.T) {
	results := []entity.ExtractResult{
		{
			RegistryOffice:  utils.StrPtr("ISTANBUL"),
			RegistryNo:      utils.StrPtr("123456"),
			CompanyName:     utils.StrPtr("ACME A.S."),
			PublicationDate: utils.StrPtr("15/06/2024"),
			NoticeType:      constants.NoticeAmendment,
			PDFURL:          utils.StrPtr("https://example.test/b.pdf"),
			RawText:         "Sermaye artirimi",
			Confidence:      0.8,
		},
		entity.ResultFromRecord(entity.GazetteRecord{RegistryNo: "123456"}, "no PDF link for this notice"),
	}

	data, err := NewService(nil).ResultsXLSX("acme", results)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, "ISTANBUL", rows[1][0])
	assert.Equal(t, "15/06/2024", rows[1][3])
	assert.Equal(t, "DEGISIKLIK", rows[1][7])
	assert.Equal(t, "0.80", rows[1][8])
	assert.Equal(t, "Sermaye artirimi", rows[1][11])

	assert.Equal(t, "123456", rows[2][1])
	assert.Equal(t, "no PDF link for this notice", rows[2][10])
}

func TestResultsXLSXEmpty(t *testing.T) {
	data, err := NewService(nil).ResultsXLSX("none", nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
