package testutil

import "context"

// MockSignedURLProvider mints deterministic fake URLs.
type MockSignedURLProvider struct{}

func NewMockSignedURLProvider() *MockSignedURLProvider {
	return &MockSignedURLProvider{}
}

func (p *MockSignedURLProvider) SignedURL(ctx context.Context, storagePath string) (string, error) {
	return "https://signed.test/" + storagePath, nil
}
