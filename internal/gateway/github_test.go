package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler) (*GitHubGateway, *httptest.Server) {
	server := httptest.NewServer(handler)

	// Setup REST client to point to the mock server.
	restClient := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	restClient.BaseURL = baseURL

	// Use NewEnterpriseClient to point the GraphQL client to our mock server's URL.
	graphqlClient := githubv4.NewEnterpriseClient(server.URL, server.Client())

	gateway := &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		logger:        zap.NewNop().Sugar(),
	}

	return gateway, server
}

func TestGitHubGateway_SearchIssues(t *testing.T) {
	testCases := []struct {
		name           string
		queryContains  string
		responseBody   string
		expected       []IssueItem
		expectError    bool
		expectedErrMsg string
	}{
		{
			name:          "happy path - returns issues and pull requests in API order",
			queryContains: "repo:org/zeppelin author:alice",
			responseBody: `{"data":{"search":{"edges":[` +
				`{"node":{"__typename":"Issue","number":5,"title":"docs are stale","url":"https://example.test/org/zeppelin/issues/5","createdAt":"2026-02-01T10:00:00Z","author":{"login":"alice"}}},` +
				`{"node":{"__typename":"PullRequest","number":12,"title":"fix interpreter restart","url":"https://example.test/org/zeppelin/pull/12","createdAt":"2026-02-02T10:00:00Z","author":{"login":"alice"}}}` +
				`]}}}`,
			expected: []IssueItem{
				{Number: 5, Title: "docs are stale", URL: "https://example.test/org/zeppelin/issues/5", Author: "alice", IsPullRequest: false},
				{Number: 12, Title: "fix interpreter restart", URL: "https://example.test/org/zeppelin/pull/12", Author: "alice", IsPullRequest: true},
			},
		},
		{
			name:          "missing author login yields empty Author",
			queryContains: "repo:org/zeppelin author:alice",
			responseBody: `{"data":{"search":{"edges":[` +
				`{"node":{"__typename":"Issue","number":7,"title":"ghost issue","url":"https://example.test/org/zeppelin/issues/7","createdAt":"2026-02-01T10:00:00Z"}}` +
				`]}}}`,
			expected: []IssueItem{
				{Number: 7, Title: "ghost issue", URL: "https://example.test/org/zeppelin/issues/7", IsPullRequest: false},
			},
		},
		{
			name:           "error case - GraphQL errors propagate",
			queryContains:  "repo:org/zeppelin author:alice",
			responseBody:   `{"errors":[{"message":"Something went wrong"}]}`,
			expectError:    true,
			expectedErrMsg: "failed to execute GraphQL search query",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				assert.Contains(t, string(body), tc.queryContains)

				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, tc.responseBody)
			}
			gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
			defer server.Close()

			items, err := gateway.SearchIssues(context.Background(), "org", "zeppelin", "alice")

			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
				return
			}
			assert.NoError(t, err)
			require.Len(t, items, len(tc.expected))
			for i, want := range tc.expected {
				assert.Equal(t, want.Number, items[i].Number)
				assert.Equal(t, want.Title, items[i].Title)
				assert.Equal(t, want.URL, items[i].URL)
				assert.Equal(t, want.Author, items[i].Author)
				assert.Equal(t, want.IsPullRequest, items[i].IsPullRequest)
				assert.False(t, items[i].CreatedAt.IsZero())
			}
		})
	}
}

func TestGitHubGateway_ListReviews(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/repos/org/zeppelin/pulls/12/reviews")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `[{"state":"COMMENTED","user":{"login":"carol"}},{"state":"APPROVED","user":{"login":"bob"}},{"state":"APPROVED"}]`)
	}
	gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
	defer server.Close()

	reviews, err := gateway.ListReviews(context.Background(), "org", "zeppelin", 12)

	assert.NoError(t, err)
	assert.Equal(t, []Review{
		{Reviewer: "carol", State: "COMMENTED"},
		{Reviewer: "bob", State: "APPROVED"},
		{Reviewer: "", State: "APPROVED"},
	}, reviews)
}

func TestGitHubGateway_ListComments(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/repos/org/zeppelin/issues/5/comments")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `[{"body":"looks good","user":{"login":"dave"}},{"body":"approve!","user":{"login":"erin"}}]`)
	}
	gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
	defer server.Close()

	comments, err := gateway.ListComments(context.Background(), "org", "zeppelin", 5)

	assert.NoError(t, err)
	assert.Equal(t, []Comment{
		{Author: "dave", Body: "looks good"},
		{Author: "erin", Body: "approve!"},
	}, comments)
}

func TestGitHubGateway_IsMerged(t *testing.T) {
	testCases := []struct {
		name           string
		handlerFunc    func(w http.ResponseWriter, r *http.Request)
		expectedMerged bool
		expectError    bool
		expectedErrMsg string
	}{
		{
			name: "happy path - merged flag read from PR detail",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Contains(t, r.URL.Path, "/repos/org/zeppelin/pulls/12")
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, `{"number":12,"merged":true}`)
			},
			expectedMerged: true,
		},
		{
			name: "error case - GitHub API returns an error",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message":"Internal Server Error"}`)
			},
			expectError:    true,
			expectedErrMsg: "failed to get PR #12",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gateway, server := setupTestGateway(t, http.HandlerFunc(tc.handlerFunc))
			defer server.Close()

			merged, err := gateway.IsMerged(context.Background(), "org", "zeppelin", 12)

			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expectedMerged, merged)
			}
		})
	}
}
