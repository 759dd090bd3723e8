package middleware

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"planner-backend/pkg/observability"
)

// Tracing opens an X-Ray segment per request, so subsegments recorded by
// downstream adapters attach to it. Server errors are recorded on the
// segment as faults.
func Tracing(tracer *observability.Tracer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, seg := tracer.StartSegment(r.Context(), "http")
			defer seg.Close(nil)

			tracer.AddAnnotation(ctx, "method", r.Method)
			tracer.AddAnnotation(ctx, "path", r.URL.Path)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			if ww.Status() >= http.StatusInternalServerError {
				tracer.RecordError(ctx, fmt.Errorf("request failed with status %d", ww.Status()))
			}
		})
	}
}
