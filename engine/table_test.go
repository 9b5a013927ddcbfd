package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/yokatlas/models"
	"github.com/use-agent/yokatlas/normalize"
)

const listingFixture = `
<table id="mydata">
  <thead>
    <tr>
      <th>Program Kodu</th>
      <th>Üniversite Adı</th>
      <th>Program Adı</th>
      <th>Program  Özellikleri</th>
      <th>Şehir</th>
      <th>Üniversite Türü</th>
      <th>Burs Türü</th>
      <th>Başarı Sırası</th>
      <th>Taban Puan</th>
    </tr>
  </thead>
  <tbody>
    <tr>
      <td><a href="lisans.php?y=102210277">102210277</a></td>
      <td><strong>ORTA DOĞU TEKNİK ÜNİVERSİTESİ</strong></td>
      <td>Bilgisayar Mühendisliği</td>
      <td>(İngilizce)</td>
      <td>ANKARA</td>
      <td>Devlet</td>
      <td></td>
      <td>1.234</td>
      <td>512,34567</td>
    </tr>
    <tr>
      <td>203910453</td>
      <td>İSTANBUL
          ÜNİVERSİTESİ</td>
      <td>Hukuk</td>
    </tr>
  </tbody>
</table>`

func TestParseTable(t *testing.T) {
	rows, err := parseTable(listingFixture)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0].Normalize(models.CategoryQuantitative)
	assert.Equal(t, models.Record{
		UniversityName:   "ORTA DOĞU TEKNİK ÜNİVERSİTESİ",
		UniversityType:   "Devlet",
		City:             "ANKARA",
		DepartmentCode:   "102210277",
		DepartmentType:   "say",
		DepartmentName:   "Bilgisayar Mühendisliği (İngilizce)",
		MinimumPlacement: "1.234",
		BaseScore:        "512.34567",
	}, first)

	second := rows[1]
	assert.Equal(t, "İSTANBUL ÜNİVERSİTESİ", second[normalize.LabelUniversityName])
	assert.NotContains(t, second, normalize.LabelCity)
	assert.Equal(t, "", second.Normalize(models.CategoryEqualWeight).City)
}

func TestParseTable_EmptyPlaceholder(t *testing.T) {
	markup := `<table><thead><tr><th>Program Kodu</th></tr></thead>
		<tbody><tr><td class="dataTables_empty" colspan="9">Tabloda veri yok</td></tr></tbody></table>`
	rows, err := parseTable(markup)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseTable_NoHeader(t *testing.T) {
	_, err := parseTable(`<table><tbody><tr><td>x</td></tr></tbody></table>`)
	assert.Error(t, err)
}

func TestParsePageCount(t *testing.T) {
	tests := []struct {
		name    string
		markup  string
		want    int
		wantErr bool
	}{
		{
			name: "datatables bootstrap",
			markup: `<div id="mydata_paginate"><ul class="pagination">
				<li class="previous disabled"><a href="#">Önceki</a></li>
				<li class="active"><a href="#">1</a></li>
				<li><a href="#">2</a></li>
				<li class="disabled"><a href="#">…</a></li>
				<li><a href="#">87</a></li>
				<li class="next" id="mydata_next"><a href="#">Sonraki</a></li>
			</ul></div>`,
			want: 87,
		},
		{
			name:   "plain buttons",
			markup: `<div><a class="paginate_button">1</a><a class="paginate_button"> 3 </a></div>`,
			want:   3,
		},
		{
			name:   "single page",
			markup: `<ul><li class="active"><a>1</a></li></ul>`,
			want:   1,
		},
		{
			name:    "no numbers",
			markup:  `<ul><li><a>Önceki</a></li><li><a>Sonraki</a></li></ul>`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePageCount(tt.markup)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsTrackerHost(t *testing.T) {
	assert.True(t, isTrackerHost("www.google-analytics.com"))
	assert.True(t, isTrackerHost("googletagmanager.com"))
	assert.False(t, isTrackerHost("yokatlas.yok.gov.tr"))
	assert.False(t, isTrackerHost("notgoogle-analytics.com"))
}
