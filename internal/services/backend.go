package services

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/baechuer/otp-dashboard/internal/apiclient"
	"github.com/baechuer/otp-dashboard/internal/domain"
)

// Backend is the subset of apiclient.Client the services need.
type Backend interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
}

var _ Backend = (*apiclient.Client)(nil)

// toFailure classifies a client error. It returns nil for nil.
func toFailure(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := domain.AsFailure(err); ok {
		return err
	}

	var se *apiclient.StatusError
	if errors.As(err, &se) {
		return &domain.Failure{
			Kind:    kindForStatus(se.StatusCode),
			Status:  se.StatusCode,
			Message: se.Message,
			Err:     err,
		}
	}

	if errors.Is(err, apiclient.ErrTimeout) {
		return &domain.Failure{Kind: domain.KindTransport, Message: "The server took too long to respond", Err: err}
	}
	if errors.Is(err, apiclient.ErrUnavailable) {
		return &domain.Failure{Kind: domain.KindTransport, Message: "The server is unreachable", Err: err}
	}
	return &domain.Failure{Kind: domain.KindUpstream, Message: "Unexpected response from the server", Err: err}
}

func kindForStatus(status int) domain.ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return domain.KindUnauthorized
	case status == http.StatusForbidden:
		return domain.KindForbidden
	case status == http.StatusNotFound:
		return domain.KindNotFound
	case status >= 500:
		return domain.KindUpstream
	default:
		return domain.KindValidation
	}
}

func itemPath(base, id string) string {
	return base + "/" + url.PathEscape(id)
}
