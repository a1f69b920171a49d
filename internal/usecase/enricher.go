// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"regexp"
	"strings"

	"github.com/kawa-dev/contrib-board/internal/domain"
	"github.com/kawa-dev/contrib-board/internal/gateway"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// unknownUser stands in for identities the API omits.
const unknownUser = "unknown"

// ApprovalMatcher decides whether a comment body counts as an approval.
type ApprovalMatcher func(body string) bool

// MatchApproveSubstring is the default matcher: a case-insensitive "approve"
// substring anywhere in the body. Deliberately naive — "please disapprove"
// counts as an approval. MatchApproveWord is the stricter alternative.
func MatchApproveSubstring(body string) bool {
	return strings.Contains(strings.ToLower(body), "approve")
}

var approveWordRe = regexp.MustCompile(`(?i)\bapproved?\b`)

// MatchApproveWord matches "approve"/"approved" only as a whole word, so
// "disapprove" no longer counts. Opt-in via approval.strict.
func MatchApproveWord(body string) bool {
	return approveWordRe.MatchString(body)
}

// Enricher fetches all issues and pull requests created by a set of users
// and annotates each with approval and merge status.
type Enricher struct {
	fetcher gateway.Fetcher
	logger  *zap.SugaredLogger
	match   ApprovalMatcher
	limit   int
}

// EnricherOption configures an Enricher.
type EnricherOption func(*Enricher)

// WithApprovalMatcher swaps the comment approval detection strategy.
func WithApprovalMatcher(m ApprovalMatcher) EnricherOption {
	return func(e *Enricher) { e.match = m }
}

// WithConcurrency bounds the per-username fan-out.
func WithConcurrency(n int) EnricherOption {
	return func(e *Enricher) {
		if n > 0 {
			e.limit = n
		}
	}
}

// NewEnricher creates an Enricher instance.
func NewEnricher(fetcher gateway.Fetcher, logger *zap.SugaredLogger, opts ...EnricherOption) *Enricher {
	e := &Enricher{
		fetcher: fetcher,
		logger:  logger,
		match:   MatchApproveSubstring,
		limit:   4,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FetchEnrichedIssues returns the enriched issues created by the given users
// in owner/repo. Usernames are processed independently; a failure for one
// user is logged and that user contributes nothing, so the caller never sees
// an error. Results keep username order, then API order within each user.
func (e *Enricher) FetchEnrichedIssues(ctx context.Context, owner, repo string, usernames []string) []domain.Issue {
	perUser := make([][]domain.Issue, len(usernames))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(e.limit)
	for i, username := range usernames {
		i, username := i, username
		eg.Go(func() error {
			issues, err := e.enrichUser(egCtx, owner, repo, username)
			if err != nil {
				e.logger.Errorw("skipping user after fetch failure",
					"repo", repo,
					"user", username,
					"error", err,
				)
				return nil
			}
			perUser[i] = issues
			return nil
		})
	}
	// Goroutines swallow their own errors, so Wait cannot fail.
	_ = eg.Wait()

	all := make([]domain.Issue, 0)
	for _, issues := range perUser {
		all = append(all, issues...)
	}
	return all
}

func (e *Enricher) enrichUser(ctx context.Context, owner, repo, username string) ([]domain.Issue, error) {
	items, err := e.fetcher.SearchIssues(ctx, owner, repo, username)
	if err != nil {
		return nil, err
	}
	issues := make([]domain.Issue, 0, len(items))
	for _, item := range items {
		issue, err := e.enrichItem(ctx, owner, repo, item)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

func (e *Enricher) enrichItem(ctx context.Context, owner, repo string, item gateway.IssueItem) (domain.Issue, error) {
	issue := domain.Issue{
		Repo:      repo,
		Number:    item.Number,
		Title:     item.Title,
		URL:       item.URL,
		Creator:   orUnknown(item.Author),
		CreatedAt: item.CreatedAt,
	}

	if item.IsPullRequest {
		reviews, err := e.fetcher.ListReviews(ctx, owner, repo, item.Number)
		if err != nil {
			return domain.Issue{}, err
		}
		// First APPROVED review wins; later approvals and dismissals are ignored.
		for _, r := range reviews {
			if r.State == "APPROVED" {
				issue.Approved = true
				issue.ApprovedBy = orUnknown(r.Reviewer)
				break
			}
		}
		merged, err := e.fetcher.IsMerged(ctx, owner, repo, item.Number)
		if err != nil {
			return domain.Issue{}, err
		}
		issue.Merged = merged
		return issue, nil
	}

	comments, err := e.fetcher.ListComments(ctx, owner, repo, item.Number)
	if err != nil {
		return domain.Issue{}, err
	}
	for _, c := range comments {
		if e.match(c.Body) {
			issue.Approved = true
			issue.ApprovedBy = orUnknown(c.Author)
			break
		}
	}
	return issue, nil
}

func orUnknown(login string) string {
	if login == "" {
		return unknownUser
	}
	return login
}
