// Package auth handles YouTrack permanent token authentication.
package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/IBM/go-sdk-core/v5/core"
	"go.uber.org/zap"
)

// Authenticator signs outgoing requests with a YouTrack permanent token.
// Permanent tokens are sent as standard bearer tokens, so the SDK core
// bearer authenticator does the header handling.
type Authenticator struct {
	authenticator core.Authenticator
	logger        *zap.Logger
}

// New creates a new authenticator for the given permanent token.
// Tokens issued by YouTrack start with "perm:"; other values are accepted
// but logged, since self-hosted instances may use plain bearer tokens.
func New(token string, logger *zap.Logger) (*Authenticator, error) {
	if token == "" {
		return nil, fmt.Errorf("API token is required")
	}

	authenticator := &core.BearerTokenAuthenticator{
		BearerToken: token,
	}

	if err := authenticator.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate authenticator: %w", err)
	}

	if !strings.HasPrefix(token, "perm:") && !strings.HasPrefix(token, "perm-") {
		logger.Warn("API token does not look like a YouTrack permanent token")
	}

	logger.Info("Bearer token authenticator initialized successfully")

	return &Authenticator{
		authenticator: authenticator,
		logger:        logger,
	}, nil
}

// Authenticate adds the Authorization header to an HTTP request
func (a *Authenticator) Authenticate(req *http.Request) error {
	if req == nil {
		return fmt.Errorf("request cannot be nil")
	}

	if err := a.authenticator.Authenticate(req); err != nil {
		a.logger.Error("Authentication failed", zap.Error(err))
		return fmt.Errorf("authentication failed: %w", err)
	}

	return nil
}

// ValidateToken checks that a token is configured and well-formed.
// Permanent tokens are static, so there is no refresh round-trip to verify;
// actual validity surfaces on the first API call.
func (a *Authenticator) ValidateToken() error {
	if bearer, ok := a.authenticator.(*core.BearerTokenAuthenticator); ok {
		if bearer.BearerToken == "" {
			return fmt.Errorf("no token configured")
		}
		return nil
	}
	return fmt.Errorf("unsupported authenticator type")
}
