// File: /services/graphql_client.go
package services

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/blake2b"

	"trailcraft-api/models"
)

// HTTPDoer is the subset of *http.Client used by outbound clients.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TrailSubmitter sends a built payload to the external trail service.
type TrailSubmitter interface {
	Submit(ctx context.Context, payload models.MutationPayload, token string) (*models.TrailAcknowledgement, error)
}

// SubmissionResult is either an acknowledgement or the error that stopped the submission.
type SubmissionResult struct {
	Acknowledgement *models.TrailAcknowledgement `json:"acknowledgement,omitempty"`
	Mutation        string                       `json:"mutation,omitempty"`
	Err             error                        `json:"-"`
}

// Succeeded reports whether an acknowledgement came back.
func (r SubmissionResult) Succeeded() bool {
	return r.Err == nil && r.Acknowledgement != nil
}

// GraphQLClient submits createTrail mutations with bearer authentication.
// Each call makes a single attempt.
type GraphQLClient struct {
	endpoint   string
	httpClient HTTPDoer
}

// NewGraphQLClient posts to endpoint with a plain http.Client.
func NewGraphQLClient(endpoint string, timeout time.Duration) *GraphQLClient {
	return NewGraphQLClientWithHTTPDoer(endpoint, &http.Client{Timeout: timeout})
}

func NewGraphQLClientWithHTTPDoer(endpoint string, doer HTTPDoer) *GraphQLClient {
	return &GraphQLClient{endpoint: endpoint, httpClient: doer}
}

type graphQLRequest struct {
	Query string `json:"query"`
}

type graphQLResponse struct {
	Data struct {
		CreateTrail *models.TrailAcknowledgement `json:"createTrail"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Submit validates the token, renders the mutation and posts it. The token is checked
// before any network activity.
func (c *GraphQLClient) Submit(ctx context.Context, payload models.MutationPayload, token string) (*models.TrailAcknowledgement, error) {
	if err := ValidateTokenStructure(token); err != nil {
		return nil, err
	}
	token = strings.TrimSpace(token)

	mutation, err := RenderMutation(payload)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(graphQLRequest{Query: mutation})
	if err != nil {
		return nil, &EncodingError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	log.Printf("Submitting trail %q to %s (token %s)", payload.Name, c.endpoint, TokenFingerprint(token))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &NetworkError{StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", strings.TrimSpace(string(snippet)))}
	}

	var decoded graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &NetworkError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if len(decoded.Errors) > 0 {
		msgs := make([]string, len(decoded.Errors))
		for i, e := range decoded.Errors {
			msgs[i] = e.Message
		}
		return nil, &NetworkError{StatusCode: resp.StatusCode, Err: errors.New("graphql: " + strings.Join(msgs, "; "))}
	}
	if decoded.Data.CreateTrail == nil {
		return nil, &NetworkError{StatusCode: resp.StatusCode, Err: errors.New("response has no createTrail data")}
	}

	return decoded.Data.CreateTrail, nil
}

// ValidateTokenStructure checks that token is header.payload.signature with each segment
// decodable. The signature is not verified; the external service owns the key.
func ValidateTokenStructure(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return &AuthenticationError{Reason: "JWT token is required"}
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return &AuthenticationError{Reason: "Invalid JWT token format"}
	}

	parser := jwt.NewParser()
	// An unknown alg is still a well-formed token; only malformed segments are rejected.
	if _, _, err := parser.ParseUnverified(token, jwt.MapClaims{}); err != nil && errors.Is(err, jwt.ErrTokenMalformed) {
		return &AuthenticationError{Reason: "Failed to decode JWT token: " + err.Error()}
	}
	if _, err := parser.DecodeSegment(parts[2]); err != nil || parts[2] == "" {
		return &AuthenticationError{Reason: "Failed to decode JWT token signature"}
	}
	return nil
}

// TokenFingerprint identifies a token in logs without revealing it.
func TokenFingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:6])
}
