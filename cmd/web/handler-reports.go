package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/myrjola/habitapp/internal/errors"
)

// maxReportSize bounds the body of a browser report.
const maxReportSize = 64 * 1024

// cspReport is the legacy report-uri payload.
type cspReport struct {
	CSPReport struct {
		DocumentURI        string `json:"document-uri"`
		Referrer           string `json:"referrer"`
		ViolatedDirective  string `json:"violated-directive"`
		EffectiveDirective string `json:"effective-directive"`
		Disposition        string `json:"disposition"`
		BlockedURI         string `json:"blocked-uri"`
		LineNumber         int    `json:"line-number"`
		ColumnNumber       int    `json:"column-number"`
		SourceFile         string `json:"source-file"`
		ScriptSample       string `json:"script-sample"`
	} `json:"csp-report"`
}

// reportingAPIReport is one entry of a Reporting API batch, see
// https://developer.mozilla.org/en-US/docs/Web/API/Reporting_API.
type reportingAPIReport struct {
	Type      string         `json:"type"`
	URL       string         `json:"url"`
	UserAgent string         `json:"user_agent"`
	Body      map[string]any `json:"body"`
}

var errMalformedReport = errors.NewSentinel("malformed report")

// reportPOST accepts both the legacy CSP report-uri format and Reporting API batches and logs them.
func (app *application) reportPOST(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxReportSize))
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelWarn, "read report failed",
			errors.SlogError(errors.Wrap(err, "read report body")))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/reports+json" {
		err = app.logReportingAPIBatch(r, body)
	} else {
		err = app.logCSPReport(r, body)
	}
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelWarn, "rejected report", errors.SlogError(err),
			slog.String("content_type", mediaType))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) logCSPReport(r *http.Request, body []byte) error {
	var report cspReport
	if err := json.Unmarshal(body, &report); err != nil {
		return errors.Wrap(errors.Join(errMalformedReport, err), "parse csp report")
	}
	if report.CSPReport.ViolatedDirective == "" && report.CSPReport.EffectiveDirective == "" {
		return errors.Wrap(errMalformedReport, "csp report without directive")
	}
	app.logger.LogAttrs(r.Context(), slog.LevelWarn, "csp violation",
		slog.String("document_uri", report.CSPReport.DocumentURI),
		slog.String("violated_directive", report.CSPReport.ViolatedDirective),
		slog.String("effective_directive", report.CSPReport.EffectiveDirective),
		slog.String("blocked_uri", report.CSPReport.BlockedURI),
		slog.String("source_file", report.CSPReport.SourceFile),
		slog.Int("line_number", report.CSPReport.LineNumber),
		slog.Int("column_number", report.CSPReport.ColumnNumber),
		slog.String("script_sample", report.CSPReport.ScriptSample),
		slog.String("disposition", report.CSPReport.Disposition),
		slog.String("referrer", report.CSPReport.Referrer),
		slog.String("user_agent", r.UserAgent()))
	return nil
}

func (app *application) logReportingAPIBatch(r *http.Request, body []byte) error {
	var batch []reportingAPIReport
	if err := json.Unmarshal(body, &batch); err != nil {
		return errors.Wrap(errors.Join(errMalformedReport, err), "parse reporting api batch")
	}
	for _, report := range batch {
		app.logger.LogAttrs(r.Context(), slog.LevelWarn, "browser report",
			slog.String("type", report.Type),
			slog.String("url", report.URL),
			slog.Any("body", report.Body),
			slog.String("user_agent", report.UserAgent))
	}
	return nil
}
