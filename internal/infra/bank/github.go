package bank

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

var ErrFileNotFound = errors.New("bank file not found")

// GitHubSource reads files from a private repository through the contents API.
type GitHubSource struct {
	client  *http.Client
	baseURL string
	repo    string // owner/name
	token   string
}

// NewGitHubSource creates a source for repo using token. A nil client means http.DefaultClient.
func NewGitHubSource(client *http.Client, baseURL, repo, token string) *GitHubSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &GitHubSource{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		repo:    repo,
		token:   token,
	}
}

// Name identifies the source in logs and metrics.
func (s *GitHubSource) Name() string { return "github" }

// Fetch returns the raw content of the named file.
func (s *GitHubSource) Fetch(ctx context.Context, name string) (string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/contents/%s", s.baseURL, s.repo, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "token "+s.token)
	req.Header.Set("Accept", "application/vnd.github.v3.raw")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("fetch %s: %w", name, ErrFileNotFound)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("fetch %s: unexpected status %d", name, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}

	return string(body), nil
}
