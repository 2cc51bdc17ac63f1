// Package http implements the HTTP handlers of the summary service. Handlers
// are a thin layer over services.SummaryService: they decode multipart
// uploads, call the service and translate results and errors for the client.
//
// # Handlers
//
//	- PageHandler: the HTML form at / and its POST, rendering the table and
//	  an inline xlsx download
//	- SummaryHandler: the JSON API under /api (options, summary, export)
//	- HealthHandler: health, readiness, liveness and version
//
// # Uploads
//
// Both the page and the API read the same multipart form: one or more
// "files" parts, plus "year" and "multiplier" fields. The multiplier accepts
// either a comma or a dot as decimal separator.
//
// # Error Handling
//
// API errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/summary/parse-error",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "gennaio.csv: line 3, column \"Valore\": invalid number (\"abc\")",
//	    "error_code": "PARSE_ERROR",
//	    "details": {"file": "gennaio.csv", "line": 3, "column": "Valore", "value": "abc"},
//	    "trace_id": "..."
//	}
//
// The page never returns problem documents: every outcome re-renders the
// form with an info, warning or error message so the user can retry.
package http
