// package fakes provides in-memory stand-ins for the fetcher and result store
package fakes

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/desertthunder/wordcount/internal/models"
	"github.com/desertthunder/wordcount/internal/services"
	"github.com/desertthunder/wordcount/internal/shared"
)

// MockFetcher is a test double for [services.Fetcher].
//
// Pages maps URLs to bodies. Unknown URLs fail with [shared.ErrFetch].
type MockFetcher struct {
	mu    sync.Mutex
	Pages map[string]string
	Err   error
	Calls []string
}

func NewMockFetcher(pages map[string]string) *MockFetcher {
	return &MockFetcher{Pages: pages}
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) (*services.Page, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, url)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, errors.Join(shared.ErrFetch, err)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	body, ok := m.Pages[url]
	if !ok {
		return nil, errors.Join(shared.ErrFetch, errors.New("no such host"))
	}
	return &services.Page{URL: url, StatusCode: http.StatusOK, Body: []byte(body)}, nil
}

// MockResultStore is an in-memory result store. Set Err to make every Create fail.
type MockResultStore struct {
	mu      sync.Mutex
	Results map[string]*models.Result
	Err     error
	Lookups int // Get calls
}

func NewMockResultStore() *MockResultStore {
	return &MockResultStore{Results: map[string]*models.Result{}}
}

func (m *MockResultStore) Create(result *models.Result) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result.SetID(shared.GenerateID())
	result.SetSequence(len(m.Results) + 1)
	if err := result.Validate(); err != nil {
		result.SetID("")
		return err
	}
	m.Results[result.ID()] = result
	return nil
}

func (m *MockResultStore) Get(id string) (*models.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lookups++
	if r, ok := m.Results[id]; ok {
		return r, nil
	}
	return nil, shared.ErrNotFound
}

func (m *MockResultStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Results)
}
