package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"riepilogo/internal/aggregator"
	apierrors "riepilogo/internal/errors"
	"riepilogo/internal/services"
	"riepilogo/internal/validation"
)

// Multipart form fields shared by the page and the API.
const (
	FieldFiles      = "files"
	FieldYear       = "year"
	FieldMultiplier = "multiplier"
)

// multipartMemory is the part of an upload kept in memory before spilling to
// temporary files. The request body itself is bounded by LimitBody.
const multipartMemory = 8 << 20

// upload is a decoded summary form.
type upload struct {
	Request services.SummaryRequest
	Inputs  []aggregator.Input
}

// readUpload decodes the multipart form. Missing year or multiplier fields
// keep the values of defaults. Parts without a file name are ignored, which
// is what browsers send when no file was chosen.
func readUpload(r *http.Request, defaults services.SummaryRequest, validator *validation.FileValidator) (*upload, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, apierrors.ErrPayloadTooLarge
		}
		return nil, apierrors.InvalidRequestWithError(err)
	}
	defer r.MultipartForm.RemoveAll()

	form := &upload{Request: defaults}

	if v := strings.TrimSpace(r.FormValue(FieldYear)); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return nil, apierrors.ErrValidation(FieldYear, "year must be an integer")
		}
		form.Request.Year = year
	}

	if v := strings.TrimSpace(r.FormValue(FieldMultiplier)); v != "" {
		m, err := services.ParseMultiplier(v)
		if err != nil {
			return nil, apierrors.ErrValidation(FieldMultiplier, "multiplier must be a number")
		}
		form.Request.Multiplier = m
	}

	var named []*multipart.FileHeader
	for _, fh := range r.MultipartForm.File[FieldFiles] {
		if fh.Filename != "" {
			named = append(named, fh)
		}
	}

	if err := validator.ValidateCount(len(named)); err != nil {
		return nil, err
	}

	for _, fh := range named {
		if err := validator.ValidateUpload(fh.Filename, fh.Size); err != nil {
			return nil, err
		}

		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
		}

		form.Inputs = append(form.Inputs, aggregator.Input{
			Name:   fh.Filename,
			Reader: bytes.NewReader(data),
		})
	}

	return form, nil
}
