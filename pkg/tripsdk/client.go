package tripsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a client for the trips service API. Authenticated calls attach
// the bearer token returned by TokenSource; endpoints that work pre-signup
// (token verification) go out unauthenticated.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// TokenSource supplies the caller's access token per request. May be nil
	// for clients that only use public endpoints.
	TokenSource func(ctx context.Context) (string, error)
}

// NewClient creates a trips service client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithStaticToken configures the client to send a fixed bearer token.
func (c *Client) WithStaticToken(token string) *Client {
	c.TokenSource = func(context.Context) (string, error) { return token, nil }
	return c
}

// ============================================================================
// Trips
// ============================================================================

// CreateTrip creates a trip owned by the caller.
func (c *Client) CreateTrip(ctx context.Context, req CreateTripRequest) (*TripResponse, error) {
	var out TripResponse
	if err := c.do(ctx, http.MethodPost, "/v1/trips", req, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMembers returns a trip's member list, owner first.
func (c *Client) ListMembers(ctx context.Context, tripID string) (*MembersResponse, error) {
	var out MembersResponse
	path := fmt.Sprintf("/v1/trips/%s/members", url.PathEscape(tripID))
	if err := c.do(ctx, http.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// Invite invites an email address to a trip.
func (c *Client) Invite(ctx context.Context, tripID string, req InviteRequest) (*InviteResponse, error) {
	var out InviteResponse
	path := fmt.Sprintf("/v1/trips/%s/members/invite", url.PathEscape(tripID))
	if err := c.do(ctx, http.MethodPost, path, req, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveMember removes a member from a trip. Owner only.
func (c *Client) RemoveMember(ctx context.Context, tripID, userID string) error {
	path := fmt.Sprintf("/v1/trips/%s/members/%s", url.PathEscape(tripID), url.PathEscape(userID))
	return c.do(ctx, http.MethodDelete, path, nil, nil, true)
}

// ============================================================================
// Invitations
// ============================================================================

// AcceptInviteToken accepts an invitation using the emailed token.
func (c *Client) AcceptInviteToken(ctx context.Context, token string) (*MembershipResponse, error) {
	var out MembershipResponse
	if err := c.do(ctx, http.MethodPost, "/v1/invitations/accept-token", AcceptTokenRequest{Token: token}, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// AcceptInvitation accepts an invitation from the inbox.
func (c *Client) AcceptInvitation(ctx context.Context, notificationID string) (*MembershipResponse, error) {
	var out MembershipResponse
	path := fmt.Sprintf("/v1/invitations/%s/accept", url.PathEscape(notificationID))
	if err := c.do(ctx, http.MethodPost, path, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// RejectInvitation declines an invitation from the inbox.
func (c *Client) RejectInvitation(ctx context.Context, notificationID string) error {
	path := fmt.Sprintf("/v1/invitations/%s/reject", url.PathEscape(notificationID))
	return c.do(ctx, http.MethodPost, path, nil, nil, true)
}

// VerifyInviteToken resolves what an invitation link points at. Public;
// requires no authentication.
func (c *Client) VerifyInviteToken(ctx context.Context, token string) (*VerifyResponse, error) {
	var out VerifyResponse
	path := fmt.Sprintf("/v1/invitations/verify/%s", url.PathEscape(token))
	if err := c.do(ctx, http.MethodGet, path, nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteSignup links the caller's freshly registered account to its
// invitation, creating the pending membership and inbox entry.
func (c *Client) CompleteSignup(ctx context.Context, token string) (*MembershipResponse, error) {
	var out MembershipResponse
	if err := c.do(ctx, http.MethodPost, "/v1/signup/complete", CompleteSignupRequest{Token: token}, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Notifications
// ============================================================================

// ListNotifications returns the caller's inbox, newest first.
func (c *Client) ListNotifications(ctx context.Context, unreadOnly bool) (*NotificationsResponse, error) {
	path := "/v1/notifications"
	if unreadOnly {
		path += "?unread=true"
	}
	var out NotificationsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkNotificationRead flips read=true on one of the caller's notifications.
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID string) error {
	path := fmt.Sprintf("/v1/notifications/%s/read", url.PathEscape(notificationID))
	return c.do(ctx, http.MethodPost, path, nil, nil, true)
}

// ============================================================================
// Health
// ============================================================================

// Livez calls the liveness endpoint.
func (c *Client) Livez(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/livez", nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// Readyz calls the readiness endpoint. A degraded service surfaces as an
// *APIError with the 503 body still decoded into the response.
func (c *Client) Readyz(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/readyz", nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// do performs one API round trip: marshal the request (when present), attach
// auth, and decode either the success body or a typed error.
func (c *Client) do(ctx context.Context, method, path string, in, out any, authed bool) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("tripsdk: marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("tripsdk: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authed {
		if c.TokenSource == nil {
			return fmt.Errorf("tripsdk: no token source configured for authenticated call %s %s", method, path)
		}
		token, err := c.TokenSource(ctx)
		if err != nil {
			return fmt.Errorf("tripsdk: token source: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("tripsdk: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("tripsdk: read response: %w", err)
	}

	if err := parseErrorResponse(resp, raw); err != nil {
		return err
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("tripsdk: decode response: %w", err)
		}
	}
	return nil
}
