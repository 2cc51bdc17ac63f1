package http

import (
	"bytes"
	"encoding/base64"
	"errors"
	"html"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"riepilogo/internal/services"
	"riepilogo/internal/shared/testutil"
)

func (f *fixture) pageRouter() http.Handler {
	return NewPageHandler(f.service, f.validator, f.logger).Routes()
}

// pageText returns the body with HTML entities decoded.
func pageText(rec *httptest.ResponseRecorder) string {
	return html.UnescapeString(rec.Body.String())
}

func TestPageHandler_Index(t *testing.T) {
	f := newFixture(t, nil)
	rec := httptest.NewRecorder()

	f.pageRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := pageText(rec)
	for _, s := range []string{
		"Elaboratore Riepilogo Multi-mese",
		"Opzioni di Elaborazione",
		"Quale anno vuoi esportare?",
		"Fattore di moltiplicazione",
		"Seleziona i file CSV dei mesi",
		"Inizia caricando uno o più file CSV.",
	} {
		assert.Contains(t, body, s)
	}

	assert.Contains(t, body, `<option value="2024">2024</option>`)
	assert.Contains(t, body, `<option value="2026" selected>2026</option>`)
	assert.Contains(t, body, `step="0.1" value="1.0"`)
	assert.NotContains(t, body, "Scarica File Excel")
}

func TestPageHandler_SubmitWithoutFiles(t *testing.T) {
	f := newFixture(t, nil)
	rec := httptest.NewRecorder()

	// a browser sends an empty part when nothing was chosen
	req := newUploadRequest(t, "/", map[string]string{FieldYear: "2025", FieldMultiplier: "1.5"},
		formFile{name: "", data: nil})
	f.pageRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := pageText(rec)
	assert.Contains(t, body, "Inizia caricando uno o più file CSV.")
	assert.Contains(t, body, `<option value="2025" selected>2025</option>`)
	assert.Contains(t, body, `value="1.5"`)
}

func TestPageHandler_SubmitReferenceMonths(t *testing.T) {
	f := newFixture(t, nil)
	rec := httptest.NewRecorder()
	req := newUploadRequest(t, "/", map[string]string{FieldYear: "2025", FieldMultiplier: "2"}, referenceFiles()...)

	f.pageRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := pageText(rec)
	assert.Contains(t, body, "Risultati Anno 2025 (Moltiplicatore: x2,0)")
	assert.Contains(t, body, "<th>Giorno</th><th>01/2025</th><th>02/2025</th><th>TOTALE GENERALE</th>")
	assert.Contains(t, body, "<td>1</td><td>20,00</td><td>10,00</td><td></td>")
	assert.Contains(t, body, "<td>2</td><td>40,00</td><td></td><td></td>")
	assert.Contains(t, body, `<tr class="total"><td>TOTALE MENSILE</td><td>60,00</td><td>10,00</td><td>70,00</td>`)
	assert.Contains(t, body, `download="riepilogo_2025.xlsx"`)
	assert.Contains(t, body, "Scarica File Excel")
	assert.Contains(t, body, `value="2.0"`)

	m := regexp.MustCompile(`href="data:application/vnd\.openxmlformats-officedocument\.spreadsheetml\.sheet;base64,([A-Za-z0-9+/=]+)"`).
		FindStringSubmatch(body)
	require.Len(t, m, 2, "download link")

	data, err := base64.StdEncoding.DecodeString(m[1])
	require.NoError(t, err)
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	v, err := wb.GetCellValue("Riepilogo", "B3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "40", v)
}

func TestPageHandler_SubmitNoData(t *testing.T) {
	f := newFixture(t, nil)
	rec := httptest.NewRecorder()
	req := newUploadRequest(t, "/", map[string]string{FieldYear: "2026"}, referenceFiles()...)

	f.pageRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := pageText(rec)
	assert.Contains(t, body, `<div class="msg warning">Nessun dato trovato per l'anno 2026.</div>`)
	assert.NotContains(t, body, "Scarica File Excel")
}

func TestPageHandler_SubmitParseError(t *testing.T) {
	f := newFixture(t, nil)
	rec := httptest.NewRecorder()
	bad := testutil.NewMonthCSV("Valore").Row("31/02/2025", "1")
	req := newUploadRequest(t, "/", map[string]string{FieldYear: "2025"},
		formFile{name: "febbraio.csv", data: bad.Bytes()})

	f.pageRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := pageText(rec)
	assert.Contains(t, body, "Errore durante l'elaborazione: febbraio.csv: line 2")
	assert.Contains(t, body, `<option value="2025" selected>2025</option>`)
}

func TestPageHandler_SubmitValidationError(t *testing.T) {
	f := newFixture(t, nil)
	rec := httptest.NewRecorder()
	req := newUploadRequest(t, "/", map[string]string{FieldYear: "2025"},
		formFile{name: "gennaio.txt", data: testutil.January2025().Bytes()})

	f.pageRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, pageText(rec), "Errore durante l'elaborazione: gennaio.txt:")
}

func TestPageHandler_SubmitInternalError(t *testing.T) {
	f := newFixture(t, nil)
	svc := new(MockSummaryService)
	svc.On("Options").Return(f.service.Options())
	svc.On("DefaultRequest").Return(services.SummaryRequest{Year: 2026, Multiplier: 1})
	svc.On("Summarize", services.SummaryRequest{Year: 2025, Multiplier: 1}, 2).
		Return(nil, errors.New("boom"))

	rec := httptest.NewRecorder()
	req := newUploadRequest(t, "/", map[string]string{FieldYear: "2025"}, referenceFiles()...)
	NewPageHandler(svc, f.validator, f.logger).Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, pageText(rec), "Errore durante l'elaborazione: boom")
	svc.AssertExpectations(t)
}

func TestFormatInputNumber(t *testing.T) {
	assert.Equal(t, "1.0", formatInputNumber(1))
	assert.Equal(t, "0.1", formatInputNumber(0.1))
	assert.Equal(t, "2.25", formatInputNumber(2.25))
	assert.Equal(t, "-3.0", formatInputNumber(-3))
	// beyond the int64 range
	assert.Equal(t, "100000000000000000000.0", formatInputNumber(1e20))
}
