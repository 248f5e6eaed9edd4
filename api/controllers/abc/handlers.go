package abc

import (
	"fmt"
	"net/http"

	"github.com/sellerpulse/sellerpulse-backend/api/responses"
	"github.com/sellerpulse/sellerpulse-backend/internal/abc"
	"github.com/sellerpulse/sellerpulse-backend/internal/abc/export"
	pkgerrors "github.com/sellerpulse/sellerpulse-backend/pkg/errors"
	"github.com/sellerpulse/sellerpulse-backend/pkg/logger"
)

// Summary serves the per-tier dashboard aggregation.
func Summary(service abc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if service == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "classification service unavailable"))
			return
		}

		req, err := parseReportRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := service.Summary(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// Items serves the filtered, paginated, optionally enriched listing.
func Items(service abc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if service == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "classification service unavailable"))
			return
		}

		req, err := parseItemsRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := service.Items(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// Export streams the full report as a CSV download. Page progress lands in
// the logs; the HTTP response is the bare file.
func Export(assembler *export.Assembler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if assembler == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "export assembler unavailable"))
			return
		}

		req, err := parseItemsRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := fmt.Sprintf("abc_report_%s_%s.csv",
			req.DateFrom.Format("2006-01-02"), req.DateTo.Format("2006-01-02"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

		progress := func(page, pages, rows int) {
			if logg == nil {
				return
			}
			ctx := logg.WithFields(r.Context(), map[string]any{
				"page":  page,
				"pages": pages,
				"rows":  rows,
			})
			logg.Info(ctx, "export.progress")
		}

		if err := assembler.WriteCSV(r.Context(), req, w, progress); err != nil {
			// The assembler collects every page before the first CSV byte,
			// so a failure here still has a clean response to write to.
			w.Header().Del("Content-Disposition")
			responses.WriteError(r.Context(), logg, w, err)
		}
	}
}
