package middleware

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "riepilogo/internal/errors"
	"riepilogo/internal/shared/testutil"
)

type summaryForm struct {
	Year       int     `json:"year" validate:"required,allowed_year"`
	Multiplier float64 `json:"multiplier" validate:"finite"`
}

func TestValidateStruct(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewValidationMiddleware(logger, newErrorHandler(t), []int{2024, 2025, 2026})

	tests := []struct {
		name       string
		input      summaryForm
		wantFields []string
		wantMsg    string
	}{
		{
			name:  "valid",
			input: summaryForm{Year: 2025, Multiplier: 1.5},
		},
		{
			name:       "missing year",
			input:      summaryForm{Multiplier: 1},
			wantFields: []string{"year"},
			wantMsg:    "year is required",
		},
		{
			name:       "year outside configured set",
			input:      summaryForm{Year: 2019, Multiplier: 1},
			wantFields: []string{"year"},
			wantMsg:    "year must be one of: 2024, 2025, 2026",
		},
		{
			name:       "nan multiplier",
			input:      summaryForm{Year: 2024, Multiplier: math.NaN()},
			wantFields: []string{"multiplier"},
			wantMsg:    "multiplier must be a finite number",
		},
		{
			name:       "infinite multiplier and bad year",
			input:      summaryForm{Year: 1, Multiplier: math.Inf(1)},
			wantFields: []string{"year", "multiplier"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.input)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, apierrors.CodeValidationFailed, apiErr.ErrorCode)

			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)
			var fields []string
			for _, fe := range details.Errors {
				fields = append(fields, fe.Field)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, details.Errors[0].Message)
			}
		})
	}
}

func TestContentTypeValidator(t *testing.T) {
	handler := ContentTypeValidator(newErrorHandler(t), "multipart/form-data")(okHandler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/summary", nil)
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/summary", nil)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
