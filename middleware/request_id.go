package middleware

import (
	"context"
	"net/http"

	appCtx "github.com/baechuer/otp-dashboard/internal/pkg/context"
	"github.com/google/uuid"
)

const HeaderXRequestID = "X-Request-Id"

// RequestID establishes the request id in context and echoes it back.
// The backend client forwards it on every outgoing call.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderXRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		w.Header().Set(HeaderXRequestID, reqID)

		next.ServeHTTP(w, r.WithContext(appCtx.WithRequestID(r.Context(), reqID)))
	})
}

func GetRequestID(ctx context.Context) string {
	return appCtx.GetRequestID(ctx)
}
