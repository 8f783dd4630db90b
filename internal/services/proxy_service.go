package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/BradenHooton/minerva/internal/models"
)

// ProxyService forwards GET requests to allowlisted external data
// sources. Every redirect hop is re-validated against the allowlist so a
// permitted host cannot bounce the request somewhere else.
type ProxyService struct {
	allowedHosts map[string]bool
	client       *http.Client
	logger       *slog.Logger
}

// UpstreamResult carries a relayed upstream response.
type UpstreamResult struct {
	StatusCode int
	Body       json.RawMessage
}

func NewProxyService(allowedHosts []string, timeout time.Duration, logger *slog.Logger) *ProxyService {
	allowed := make(map[string]bool, len(allowedHosts))
	for _, host := range allowedHosts {
		allowed[host] = true
	}

	s := &ProxyService{
		allowedHosts: allowed,
		logger:       logger,
	}

	s.client = &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if !s.hostAllowed(req.URL) {
				return fmt.Errorf("%w: %q", errRedirectBlocked, req.URL.Hostname())
			}
			return nil
		},
	}

	return s
}

func (s *ProxyService) hostAllowed(u *url.URL) bool {
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return s.allowedHosts[u.Hostname()]
}

// Fetch validates the datasource URL and relays the upstream response.
// Returns ErrForbidden for a disallowed or unparseable URL,
// ErrUpstreamUnreachable when no response arrives, and the upstream
// status and body otherwise (including upstream error statuses).
func (s *ProxyService) Fetch(ctx context.Context, datasource string) (*UpstreamResult, error) {
	u, err := url.Parse(datasource)
	if err != nil || !s.hostAllowed(u) {
		s.logger.Info("datasource rejected", slog.String("datasource", datasource))
		return nil, models.ErrForbidden
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		s.logger.Error("failed to build upstream request", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	resp, err := s.client.Do(req)
	if err != nil {
		// A blocked redirect is a policy rejection, not an upstream outage
		if errors.Is(err, errRedirectBlocked) {
			s.logger.Info("datasource redirect rejected", slog.String("datasource", datasource))
			return nil, models.ErrForbidden
		}
		s.logger.Warn("upstream unreachable", slog.String("datasource", datasource), slog.Any("error", err))
		return nil, models.ErrUpstreamUnreachable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		s.logger.Warn("failed to read upstream body", slog.Any("error", err))
		return nil, models.ErrUpstreamUnreachable
	}

	if !json.Valid(body) {
		// Wrap non-JSON payloads so the relayed body is always valid JSON
		quoted, _ := json.Marshal(string(body))
		body = quoted
	}

	return &UpstreamResult{
		StatusCode: resp.StatusCode,
		Body:       json.RawMessage(body),
	}, nil
}

const maxUpstreamBody = 10 << 20 // 10 MiB

var errRedirectBlocked = errors.New("redirect to disallowed host")
