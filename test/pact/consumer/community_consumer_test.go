//go:build pact
// +build pact

package consumer_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	pacttest "github.com/Apurer/pet-community/test/pact"
)

type petPayload struct {
	ID       int64  `json:"id"`
	OwnerID  int64  `json:"ownerId"`
	Name     string `json:"name"`
	Breed    string `json:"breed"`
	Age      int    `json:"age"`
	PhotoURL string `json:"photoUrl"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status int
	title  string
	detail string
}

func (e apiError) Error() string {
	msg := e.title
	if msg == "" {
		msg = "api error"
	}
	if e.detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.detail)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.status)
}

func TestMemberDirectoryContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	example := pacttest.ExamplePets()[0]
	petMatcher := matchers.Map{
		"id":       matchers.Like(int64(1)),
		"ownerId":  matchers.Like(pacttest.ExistingMemberID),
		"name":     matchers.Like(example["name"]),
		"breed":    matchers.Like(example["breed"]),
		"age":      matchers.Like(example["age"]),
		"photoUrl": matchers.Term(example["photoUrl"].(string), `^/uploads/pets/.+$`),
	}
	jsonContentType := matchers.Regex("application/json; charset=utf-8", `application\/json(?:;\s?charset=utf-8)?`)
	problemContentType := matchers.Regex("application/problem+json", `application\/problem\+json.*`)

	pact.AddInteraction().
		Given(pacttest.StateNoSession).
		UponReceiving("a directory request without a session").
		WithRequest("GET", "/api/v1/members").
		WillRespondWith(http.StatusUnauthorized, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", problemContentType)
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/unauthorized"),
				"title":  matchers.S("Unauthorized"),
				"status": matchers.Like(http.StatusUnauthorized),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateMemberWithPets).
		UponReceiving("a request for the pets of an existing member").
		WithRequest("GET", fmt.Sprintf("/api/v1/members/%d/pets", pacttest.ExistingMemberID), func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Cookie", matchers.S(pacttest.SessionCookie))
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.EachLike(petMatcher, 1))
		})

	pact.AddInteraction().
		Given(pacttest.StateMemberMissing).
		UponReceiving("a request for the pets of a missing member").
		WithRequest("GET", fmt.Sprintf("/api/v1/members/%d/pets", pacttest.MissingMemberID), func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Cookie", matchers.S(pacttest.SessionCookie))
		}).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", problemContentType)
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		guest := newDirectoryClient(config, "")
		if err := guest.ListMembers(ctx); !hasStatus(err, http.StatusUnauthorized) {
			return fmt.Errorf("expected 401 without a session, got %v", err)
		}

		member := newDirectoryClient(config, pacttest.SessionCookie)
		pets, err := member.MemberPets(ctx, pacttest.ExistingMemberID)
		if err != nil {
			return fmt.Errorf("member pets: %w", err)
		}
		if len(pets) == 0 || pets[0].OwnerID != pacttest.ExistingMemberID {
			return fmt.Errorf("expected pets owned by %d, got %+v", pacttest.ExistingMemberID, pets)
		}

		if _, err := member.MemberPets(ctx, pacttest.MissingMemberID); !hasStatus(err, http.StatusNotFound) {
			return fmt.Errorf("expected 404 for member %d, got %v", pacttest.MissingMemberID, err)
		}
		return nil
	})
	require.NoError(t, err)
}

func hasStatus(err error, status int) bool {
	var apiErr apiError
	return errors.As(err, &apiErr) && apiErr.status == status
}

type directoryClient struct {
	baseURL    string
	cookie     string
	httpClient *http.Client
}

func newDirectoryClient(config pactconsumer.MockServerConfig, cookie string) *directoryClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	return &directoryClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		cookie:     cookie,
		httpClient: &http.Client{Transport: transport, Timeout: 10 * time.Second},
	}
}

func (c *directoryClient) ListMembers(ctx context.Context) error {
	res, err := c.get(ctx, "/api/v1/members")
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(res)
	}
	return nil
}

func (c *directoryClient) MemberPets(ctx context.Context, memberID int64) ([]petPayload, error) {
	res, err := c.get(ctx, fmt.Sprintf("/api/v1/members/%d/pets", memberID))
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(res)
	}
	var pets []petPayload
	if err := json.NewDecoder(res.Body).Decode(&pets); err != nil {
		return nil, err
	}
	return pets, nil
}

func (c *directoryClient) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}
	return c.httpClient.Do(req)
}

func decodeAPIError(res *http.Response) error {
	var problem problemDetail
	_ = json.NewDecoder(res.Body).Decode(&problem)
	status := problem.Status
	if status == 0 {
		status = res.StatusCode
	}
	return apiError{status: status, title: problem.Title, detail: problem.Detail}
}
