package http

import (
	"errors"
	"net/http"

	"riepilogo/internal/aggregator"
	apierrors "riepilogo/internal/errors"
	"riepilogo/internal/services"
	"riepilogo/internal/validation"
)

// toAPIError maps service and domain errors onto API errors. Errors it does
// not recognize are returned unchanged and end up as 500 or 504.
func toAPIError(err error) error {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var parseErr *aggregator.ParseError
	if errors.As(err, &parseErr) {
		return apierrors.ParseFailed(parseErr.Error(), apierrors.ParseDetails{
			File:   parseErr.Source,
			Line:   parseErr.Line,
			Column: parseErr.Column,
			Value:  parseErr.Value,
		})
	}

	var noData *aggregator.NoDataError
	if errors.As(err, &noData) {
		return apierrors.NoDataForYear(noData.Year)
	}

	var fileErr *validation.FileError
	switch {
	case errors.Is(err, services.ErrNoFiles):
		return apierrors.ErrNoFiles
	case errors.Is(err, validation.ErrFileTooLarge):
		details := map[string]string{}
		if errors.As(err, &fileErr) {
			details["file"] = fileErr.File
		}
		return apierrors.NewWithDetails(http.StatusRequestEntityTooLarge, apierrors.CodePayloadTooLarge, err.Error(), details)
	case errors.As(err, &fileErr), errors.Is(err, services.ErrTooManyFiles):
		return apierrors.ErrValidation(FieldFiles, err.Error())
	case errors.Is(err, services.ErrUnsupportedFormat):
		return apierrors.NewWithDetails(http.StatusBadRequest, apierrors.CodeUnsupportedFormat, err.Error(), nil)
	}

	return err
}

// errorText renders err for the page, flattening validation details.
func errorText(err error) string {
	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}

	if v, ok := apiErr.Details.(apierrors.ValidationErrors); ok && len(v.Errors) > 0 {
		msg := v.Errors[0].Message
		for _, fe := range v.Errors[1:] {
			msg += "; " + fe.Message
		}
		return msg
	}
	return apiErr.Message
}
