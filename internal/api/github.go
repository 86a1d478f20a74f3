package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"orgrepos/internal/utils"
)

// DefaultBaseURL is the public GitHub REST API endpoint.
const DefaultBaseURL = "https://api.github.com"

// OrgURL is the organization endpoint template: base URL, then org login.
const OrgURL = "%s/orgs/%s"

// GitHubOrgClient reads an organization and its public repositories from the
// GitHub REST API.
//
// The organization document and the repositories payload are each fetched at
// most once per client; create a new client to observe changes.
type GitHubOrgClient struct {
	// BaseURL is the GitHub API base URL (https://api.github.com)
	BaseURL string

	orgName string
	fetcher JSONFetcher
	org     *utils.Memo[map[string]any]
	repos   *utils.Memo[[]map[string]any]
}

// NewGitHubOrgClient creates a client for orgName. A nil fetcher means an
// unauthenticated HTTPFetcher.
func NewGitHubOrgClient(orgName string, fetcher JSONFetcher) *GitHubOrgClient {
	if fetcher == nil {
		fetcher = NewHTTPFetcher("")
	}
	c := &GitHubOrgClient{
		BaseURL: DefaultBaseURL,
		orgName: orgName,
		fetcher: fetcher,
	}
	c.org = utils.NewMemo(c.fetchOrg)
	c.repos = utils.NewMemo(c.fetchRepos)
	return c
}

// OrgName returns the organization login this client was created for.
func (c *GitHubOrgClient) OrgName() string {
	return c.orgName
}

// Org returns the organization document.
func (c *GitHubOrgClient) Org(ctx context.Context) (map[string]any, error) {
	return c.org.Get(ctx)
}

func (c *GitHubOrgClient) fetchOrg(ctx context.Context) (map[string]any, error) {
	url := fmt.Sprintf(OrgURL, strings.TrimRight(c.BaseURL, "/"), c.orgName)
	log.Debug().Str("org", c.orgName).Str("url", url).Msg("Fetching organization")

	payload, err := c.fetcher.GetJSON(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch org %s: %w", c.orgName, err)
	}
	org, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected org payload for %s: want object, got %T", c.orgName, payload)
	}
	return org, nil
}

// PublicReposURL returns the repos_url advertised by the organization document.
// A document without repos_url yields a *utils.KeyError.
func (c *GitHubOrgClient) PublicReposURL(ctx context.Context) (string, error) {
	org, err := c.Org(ctx)
	if err != nil {
		return "", err
	}
	v, err := utils.AccessNestedMap(org, []string{"repos_url"})
	if err != nil {
		return "", err
	}
	url, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("repos_url for %s is %T, not a string", c.orgName, v)
	}
	return url, nil
}

// ReposPayload returns the decoded list of repository objects.
func (c *GitHubOrgClient) ReposPayload(ctx context.Context) ([]map[string]any, error) {
	return c.repos.Get(ctx)
}

func (c *GitHubOrgClient) fetchRepos(ctx context.Context) ([]map[string]any, error) {
	url, err := c.PublicReposURL(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("org", c.orgName).Str("url", url).Msg("Fetching repositories")

	payload, err := c.fetcher.GetJSON(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repos for %s: %w", c.orgName, err)
	}
	items, ok := payload.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected repos payload for %s: want array, got %T", c.orgName, payload)
	}

	repos := make([]map[string]any, 0, len(items))
	for i, item := range items {
		repo, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unexpected repo at index %d for %s: want object, got %T", i, c.orgName, item)
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

// PublicRepos lists repository names in payload order. A non-empty license
// restricts the result to repositories whose license key equals it.
func (c *GitHubOrgClient) PublicRepos(ctx context.Context, license string) ([]string, error) {
	repos, err := c.ReposPayload(ctx)
	if err != nil {
		return nil, err
	}

	names := []string{}
	for _, repo := range repos {
		if license != "" && !HasLicense(repo, license) {
			continue
		}
		name, ok := repo["name"].(string)
		if !ok {
			log.Debug().Str("org", c.orgName).Msg("Skipping repository without a name")
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// HasLicense reports whether repo.license.key equals licenseKey.
// Repos with no license information never match, nor does an empty key.
func HasLicense(repo map[string]any, licenseKey string) bool {
	if licenseKey == "" {
		return false
	}
	key, err := utils.AccessNestedMap(repo, []string{"license", "key"})
	if err != nil {
		return false
	}
	return key == licenseKey
}
