package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/gazette-ocr/constants"
)

func TestParseFields(t *testing.T) {
	p := New(nil)

	tests := []struct {
		name  string
		text  string
		check func(t *testing.T, city, no, date, issue *string)
	}{
		{"registry city", "Istanbul Ticaret Sicil Müdürlüğü: Istanbul", func(t *testing.T, city, _, _, _ *string) {
			require.NotNil(t, city)
			assert.Equal(t, "Istanbul", *city)
		}},
		{"uppercase office label", "ANKARA TICARET SICIL MÜDÜRLÜĞÜ - Ankara\nilan", func(t *testing.T, city, _, _, _ *string) {
			require.NotNil(t, city)
			assert.Equal(t, "Ankara", *city)
		}},
		{"registry number", "Sicil No: 123456", func(t *testing.T, _, no, _, _ *string) {
			require.NotNil(t, no)
			assert.Equal(t, "123456", *no)
		}},
		{"dotted date", "Tarih: 15.03.2024 ilan", func(t *testing.T, _, _, date, _ *string) {
			require.NotNil(t, date)
			assert.Equal(t, "15/03/2024", *date)
		}},
		{"slash date", "Tarih: 15/03/2024 ilan", func(t *testing.T, _, _, date, _ *string) {
			require.NotNil(t, date)
			assert.Equal(t, "15/03/2024", *date)
		}},
		{"issue number", "Sayı: 10987", func(t *testing.T, _, _, _, issue *string) {
			require.NotNil(t, issue)
			assert.Equal(t, "10987", *issue)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := p.Parse(tt.text)
			tt.check(t, n.RegistryCity, n.RegistryNo, n.PublicationDate, n.IssueNo)
		})
	}
}

func TestClassifyPriority(t *testing.T) {
	assert.Equal(t, constants.NoticeEstablishment, Classify("Bu ilan kuruluş tescil ilanıdır"))
	assert.Equal(t, constants.NoticeAmendment, Classify("Şirket değişiklik tadil ilanı"))
	assert.Equal(t, constants.NoticeClosure, Classify("Tasfiye ve terkin ilanı"))
	assert.Equal(t, constants.NoticeOther, Classify("Genel bilgilendirme metni"))
	// establishment outranks closure when both appear
	assert.Equal(t, constants.NoticeEstablishment, Classify("tasfiye sonrası yeni kayıt"))
}

func TestParseConfidence(t *testing.T) {
	p := New(nil)

	full := p.Parse("Istanbul Ticaret Sicil Müdürlüğü: Istanbul\n" +
		"Sicil No: 123456\n" +
		"Tarih: 15/03/2024\n" +
		"Sayı: 10987\n" +
		"Kuruluş tescil ilanı")
	assert.Equal(t, 1.0, full.Confidence)
	assert.Equal(t, constants.NoticeEstablishment, full.NoticeType)

	none := p.Parse("random text without any fields")
	assert.InDelta(t, 0.2, none.Confidence, 1e-9)
	assert.Equal(t, constants.NoticeOther, none.NoticeType)

	two := p.Parse("Sicil No: 1 ve 01.02.2023")
	assert.InDelta(t, 0.6, two.Confidence, 1e-9)
}

func TestParseEmptyText(t *testing.T) {
	n := New(nil).Parse("")
	assert.Equal(t, "", n.RawText)
	assert.Nil(t, n.RegistryNo)
	assert.InDelta(t, 0.2, n.Confidence, 1e-9)
}
