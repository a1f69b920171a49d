// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
)

// IssueItem is one search result: a plain issue or a pull request created
// by the queried author. Author is empty when the API omits the identity.
type IssueItem struct {
	Number        int
	Title         string
	URL           string
	Author        string
	CreatedAt     time.Time
	IsPullRequest bool
}

// Review holds the reviewer identity and state of one pull request review.
type Review struct {
	Reviewer string
	State    string
}

// Comment holds the commenter identity and body of one issue comment.
type Comment struct {
	Author string
	Body   string
}

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	// SearchIssues returns all issues and pull requests in owner/repo created
	// by author, across all states, in the order the API returns them.
	SearchIssues(ctx context.Context, owner, repo, author string) ([]IssueItem, error)
	ListReviews(ctx context.Context, owner, repo string, number int) ([]Review, error)
	ListComments(ctx context.Context, owner, repo string, number int) ([]Comment, error)
	// IsMerged reads the merged flag from the pull request's detail record.
	IsMerged(ctx context.Context, owner, repo string, number int) (bool, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *zap.SugaredLogger
}

// searchIssuesQuery fetches issues and pull requests by author in one search.
type searchIssuesQuery struct {
	Search struct {
		PageInfo struct {
			HasNextPage bool
			EndCursor   githubv4.String
		}
		Edges []struct {
			Node struct {
				Typename string `graphql:"__typename"`
				Issue    struct {
					Number    int
					Title     string
					URL       githubv4.URI
					CreatedAt githubv4.DateTime
					Author    struct {
						Login string
					}
				} `graphql:"... on Issue"`
				PullRequest struct {
					Number    int
					Title     string
					URL       githubv4.URI
					CreatedAt githubv4.DateTime
					Author    struct {
						Login string
					}
				} `graphql:"... on PullRequest"`
			}
		}
	} `graphql:"search(query: $query, type: ISSUE, first: 100, after: $cursor)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// An empty token degrades to unauthenticated rate limits.
func NewGitHubGateway(token string, logger *zap.SugaredLogger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	httpClient := &http.Client{Transport: rateLimitWaiter}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient.Transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		}
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

func (g *GitHubGateway) SearchIssues(ctx context.Context, owner, repo, author string) ([]IssueItem, error) {
	query := fmt.Sprintf("repo:%s/%s author:%s", owner, repo, author)
	variables := map[string]interface{}{
		"query":  githubv4.String(query),
		"cursor": (*githubv4.String)(nil),
	}

	var items []IssueItem
	for {
		var q searchIssuesQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to execute GraphQL search query: %w", err)
		}
		for _, edge := range q.Search.Edges {
			node := edge.Node
			item := IssueItem{IsPullRequest: node.Typename == "PullRequest"}
			if item.IsPullRequest {
				item.Number = node.PullRequest.Number
				item.Title = node.PullRequest.Title
				item.Author = node.PullRequest.Author.Login
				item.CreatedAt = node.PullRequest.CreatedAt.Time
				if node.PullRequest.URL.URL != nil {
					item.URL = node.PullRequest.URL.String()
				}
			} else {
				item.Number = node.Issue.Number
				item.Title = node.Issue.Title
				item.Author = node.Issue.Author.Login
				item.CreatedAt = node.Issue.CreatedAt.Time
				if node.Issue.URL.URL != nil {
					item.URL = node.Issue.URL.String()
				}
			}
			items = append(items, item)
		}
		if !q.Search.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Search.PageInfo.EndCursor)
		g.logger.Debugw("fetching next page of search results", "query", query)
	}
	g.logger.Debugw("completed issue search", "query", query, "count", len(items))
	return items, nil
}

func (g *GitHubGateway) ListReviews(ctx context.Context, owner, repo string, number int) ([]Review, error) {
	opts := &github.ListOptions{PerPage: 100}
	var reviews []Review
	for {
		result, resp, err := g.restClient.PullRequests.ListReviews(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list reviews for PR #%d: %w", number, err)
		}
		for _, r := range result {
			reviews = append(reviews, Review{
				Reviewer: r.GetUser().GetLogin(),
				State:    r.GetState(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return reviews, nil
}

func (g *GitHubGateway) ListComments(ctx context.Context, owner, repo string, number int) ([]Comment, error) {
	opts := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: 100}}
	var comments []Comment
	for {
		result, resp, err := g.restClient.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list comments for issue #%d: %w", number, err)
		}
		for _, c := range result {
			comments = append(comments, Comment{
				Author: c.GetUser().GetLogin(),
				Body:   c.GetBody(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return comments, nil
}

func (g *GitHubGateway) IsMerged(ctx context.Context, owner, repo string, number int) (bool, error) {
	pr, _, err := g.restClient.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return false, fmt.Errorf("failed to get PR #%d: %w", number, err)
	}
	return pr.GetMerged(), nil
}
