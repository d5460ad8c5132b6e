// client/auth_client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	gateway_errors "github.com/notyourkokoro/FDB/errors"
	logger "github.com/notyourkokoro/FDB/logging"
	"github.com/notyourkokoro/FDB/model"
)

// IAuthClient resolves opaque bearer credentials into identities and checks
// permissions against them. Token format and validation are the auth
// service's concern; the gateway never inspects the credential itself.
type IAuthClient interface {
	Authorize(ctx context.Context, credential string) (*model.Identity, error)
	CheckPermission(identity *model.Identity, key model.ResourceKey, op model.Operation) bool
}

type AuthClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAuthClient(baseURL string, timeout time.Duration) *AuthClient {
	return &AuthClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type decodeTokenRequest struct {
	Token string `json:"token"`
}

// Authorize sends the credential to the auth service for decoding and
// returns the resolved identity with its permission set.
//
// ErrUnauthenticated and ErrUnavailable are kept distinct: the first is the
// caller's fault and final, the second means the auth service itself could
// not be reached.
func (ac *AuthClient) Authorize(ctx context.Context, credential string) (*model.Identity, error) {
	if credential == "" {
		return nil, fmt.Errorf("missing credential: %w", gateway_errors.ErrUnauthenticated)
	}

	body, err := json.Marshal(decodeTokenRequest{Token: credential})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token request: %w", err)
	}

	url := fmt.Sprintf("%s/auth/jwt/decode", ac.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ac.httpClient.Do(req)
	if err != nil {
		logger.Warn("Auth service unreachable", zap.Error(err))
		return nil, fmt.Errorf("auth service request failed: %w", gateway_errors.ErrUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fallthrough to decoding below
	case resp.StatusCode >= http.StatusInternalServerError:
		logger.Warn("Auth service error", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("auth service returned %d: %w", resp.StatusCode, gateway_errors.ErrUnavailable)
	default:
		return nil, fmt.Errorf("credential rejected with status %d: %w", resp.StatusCode, gateway_errors.ErrUnauthenticated)
	}

	var identity model.Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("failed to decode auth response: %w", gateway_errors.ErrUnavailable)
	}
	if identity.UserID == "" {
		return nil, fmt.Errorf("auth response missing user id: %w", gateway_errors.ErrUnauthenticated)
	}

	logger.Debug("Credential authorized", zap.String("userID", identity.UserID))
	return &identity, nil
}

// CheckPermission is a pure local decision over the permission set the auth
// service returned; no network call is made.
func (ac *AuthClient) CheckPermission(identity *model.Identity, key model.ResourceKey, op model.Operation) bool {
	if identity == nil {
		return false
	}
	return identity.Can(key, op)
}
