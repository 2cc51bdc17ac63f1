package exporter

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "zero value", input: "0", expected: "0,00"},
		{name: "integer", input: "20", expected: "20,00"},
		{name: "keeps sub-cent digits", input: "10.005", expected: "10,005"},
		{name: "trailing zeros trimmed to cents", input: "1.2500", expected: "1,25"},
		{name: "thousands", input: "1234.5", expected: "1.234,50"},
		{name: "exact group", input: "123456", expected: "123.456,00"},
		{name: "millions", input: "1234567.891", expected: "1.234.567,891"},
		{name: "negative", input: "-9876.1", expected: "-9.876,10"},
		{name: "small negative", input: "-0.5", expected: "-0,50"},
		{name: "negative sub-cent", input: "-0.015", expected: "-0,015"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatAmount(decimal.RequireFromString(tt.input)))
		})
	}
}

func TestFormatMultiplier(t *testing.T) {
	tests := []struct {
		input    decimal.Decimal
		expected string
	}{
		{decimal.NewFromInt(1), "1,0"},
		{decimal.NewFromInt(2), "2,0"},
		{decimal.NewFromFloat(1.5), "1,5"},
		{decimal.NewFromFloat(2.25), "2,25"},
		{decimal.NewFromFloat(0.1), "0,1"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatMultiplier(tt.input))
		})
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "riepilogo_2025.xlsx", Filename(2025, ExtXLSX))
	assert.Equal(t, "riepilogo_2024.csv", Filename(2024, ExtCSV))
}
