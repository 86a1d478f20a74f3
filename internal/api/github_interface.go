package api

import "context"

// OrgClient defines the interface for GitHub organization operations.
// This allows for easy mocking in tests.
type OrgClient interface {
	Org(ctx context.Context) (map[string]any, error)
	PublicReposURL(ctx context.Context) (string, error)
	ReposPayload(ctx context.Context) ([]map[string]any, error)
	PublicRepos(ctx context.Context, license string) ([]string, error)
}

// Ensure GitHubOrgClient implements OrgClient interface
var _ OrgClient = (*GitHubOrgClient)(nil)
