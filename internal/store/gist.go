package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/autobrief/autobrief/internal/newsletter"
)

const defaultGistBaseURL = "https://api.github.com"

// gistHTTPClient is a configured HTTP client with proper timeouts.
var gistHTTPClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// GistStore keeps one JSON document per user in a single GitHub Gist.
// Writes are whole-file replaces: the last writer wins.
type GistStore struct {
	gistID  string
	token   string
	baseURL string
	http    *http.Client
}

// GistOption configures a GistStore.
type GistOption func(*GistStore)

// WithGistBaseURL overrides the GitHub API endpoint, mainly for tests.
func WithGistBaseURL(u string) GistOption {
	return func(s *GistStore) { s.baseURL = u }
}

// WithGistHTTPClient overrides the underlying HTTP client.
func WithGistHTTPClient(h *http.Client) GistOption {
	return func(s *GistStore) { s.http = h }
}

// NewGistStore creates a store backed by the given Gist.
func NewGistStore(gistID, token string, opts ...GistOption) *GistStore {
	s := &GistStore{
		gistID:  gistID,
		token:   token,
		baseURL: defaultGistBaseURL,
		http:    gistHTTPClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type gistFile struct {
	Content   string `json:"content"`
	Truncated bool   `json:"truncated"`
	RawURL    string `json:"raw_url"`
}

type gistDocument struct {
	Files map[string]*gistFile `json:"files"`
}

// ListUsers returns the email of every user with a document in the Gist.
func (s *GistStore) ListUsers(ctx context.Context) ([]string, error) {
	doc, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	var users []string
	for name := range doc.Files {
		if strings.HasSuffix(name, ".json") {
			users = append(users, userEmailFromFile(name))
		}
	}
	return users, nil
}

// LoadGroups fetches and migrates a user's document.
func (s *GistStore) LoadGroups(ctx context.Context, userEmail string) (*newsletter.UserData, error) {
	doc, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	file, ok := doc.Files[userFileName(userEmail)]
	if !ok {
		return nil, ErrUserNotFound
	}

	content := []byte(file.Content)
	if file.Truncated {
		// The Gist API truncates large files inline; fall back to raw_url.
		content, err = s.fetchRaw(ctx, file.RawURL)
		if err != nil {
			return nil, err
		}
	}
	return newsletter.Decode(content)
}

// SaveGroups replaces a user's document in the Gist.
func (s *GistStore) SaveGroups(ctx context.Context, userEmail string, data *newsletter.UserData) error {
	raw, err := newsletter.Encode(data)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(gistDocument{
		Files: map[string]*gistFile{
			userFileName(userEmail): {Content: string(raw)},
		},
	})
	if err != nil {
		return fmt.Errorf("encoding gist update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, s.gistURL(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building gist update: %w", err)
	}
	s.setHeaders(req)

	res, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("updating gist: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("updating gist, http status %s: %s", res.Status, string(body))
	}
	return nil
}

func (s *GistStore) fetch(ctx context.Context) (*gistDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.gistURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("building gist request: %w", err)
	}
	s.setHeaders(req)

	res, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching gist: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %v, http status %s", s.gistURL(), res.Status)
	}

	var doc gistDocument
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding gist: %w", err)
	}
	return &doc, nil
}

func (s *GistStore) fetchRaw(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building raw content request: %w", err)
	}
	s.setHeaders(req)

	res, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching raw content: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %v, http status %s", rawURL, res.Status)
	}
	return io.ReadAll(res.Body)
}

func (s *GistStore) gistURL() string {
	return s.baseURL + "/gists/" + s.gistID
}

func (s *GistStore) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
}
