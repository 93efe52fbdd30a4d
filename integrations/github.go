// Package integrations holds clients for outbound third-party
// services.
package integrations

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/classcollect/classcollect-api/models"
)

// IssueCreator forwards feedback submissions to a GitHub repository
// as labelled issues.
type IssueCreator struct {
	client *github.Client
	owner  string
	repo   string
}

// NewIssueCreator builds an IssueCreator from a personal access token
// and a "owner/repo" slug. It returns an error when either is missing,
// in which case feedback forwarding is simply disabled.
func NewIssueCreator(token, repoSlug string) (*IssueCreator, error) {
	if token == "" || repoSlug == "" {
		return nil, fmt.Errorf("github configuration is missing")
	}
	owner, repo, ok := strings.Cut(repoSlug, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("invalid github repo %q, expected owner/repo", repoSlug)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)

	return &IssueCreator{
		client: github.NewClient(tc),
		owner:  owner,
		repo:   repo,
	}, nil
}

// CreateFeedbackIssue opens an issue for a persisted feedback row and
// returns the issue number.
func (c *IssueCreator) CreateFeedbackIssue(ctx context.Context, feedback *models.Feedback) (int, error) {
	title := fmt.Sprintf("User Feedback - %s", feedback.CreatedAt.Format("2006-01-02 15:04:05"))
	body := fmt.Sprintf(
		"## User Feedback\n\n**Page:** %s\n**Time:** %s\n\n### Message:\n%s\n",
		feedback.PageURL,
		feedback.CreatedAt.Format("2006-01-02 15:04:05"),
		feedback.Message,
	)

	issue, _, err := c.client.Issues.Create(ctx, c.owner, c.repo, &github.IssueRequest{
		Title:  github.Ptr(title),
		Body:   github.Ptr(body),
		Labels: &[]string{"feedback"},
	})
	if err != nil {
		return 0, err
	}

	return issue.GetNumber(), nil
}
