package handlers

import (
	"context"
	"encoding/json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"net/http"
	"roommate_service/errors"
)

type KeyListing struct{}

// maxBodyBytes bounds listing payloads.
const maxBodyBytes = 1 << 20

// MiddlewareListingDeserialization decodes the JSON body into a generic map
// and stores it on the context under KeyListing; the handler decides how to
// interpret it (full input or partial patch).
func (handler *ListingHandler) MiddlewareListingDeserialization(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, h *http.Request) {
		body := map[string]interface{}{}
		decoder := json.NewDecoder(http.MaxBytesReader(rw, h.Body, maxBodyBytes))
		if err := decoder.Decode(&body); err != nil {
			handler.logger.WithError(err).Debug("unable to decode listing body")
			errorResponse(rw, http.StatusBadRequest, errors.InvalidRequestFormatError)
			return
		}
		ctx := context.WithValue(h.Context(), KeyListing{}, body)
		next.ServeHTTP(rw, h.WithContext(ctx))
	})
}

func MiddlewareContentTypeSet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, h *http.Request) {
		rw.Header().Add("Content-Type", "application/json")
		rw.Header().Set("X-Content-Type-Options", "nosniff")
		rw.Header().Set("X-Frame-Options", "DENY")
		rw.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		next.ServeHTTP(rw, h)
	})
}

func ExtractTraceInfoMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
