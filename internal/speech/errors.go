package speech

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"vidscribe/internal/services"
)

// classifyStatus wraps an API failure with the marker matching its HTTP
// status. status 0 means the request never produced a response.
func classifyStatus(provider string, status int, err error) error {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return services.Wrap(services.ErrAuth, stageRecognize, provider, fmt.Sprintf("credentials rejected (http %d)", status), err)
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests, status >= http.StatusInternalServerError:
		return services.Wrap(services.ErrTransient, stageRecognize, provider, fmt.Sprintf("service unavailable (http %d)", status), err)
	case status > 0:
		return services.Wrap(services.ErrExternalTool, stageRecognize, provider, fmt.Sprintf("request rejected (http %d)", status), err)
	}
	return classifyTransport(provider, err)
}

// classifyTransport handles failures that carry no HTTP status.
func classifyTransport(provider string, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, stageRecognize, provider, "request timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return services.Wrap(services.ErrTransient, stageRecognize, provider, "network failure", err)
	}
	return services.Wrap(services.ErrExternalTool, stageRecognize, provider, "request failed", err)
}
