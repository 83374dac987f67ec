package ports

import (
	"context"
	"net/http"
)

// Fetcher performs network requests on behalf of the controller.
//
//go:generate go run go.uber.org/mock/mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks
type Fetcher interface {
	// Fetch sends the request to the network.
	// A returned error means the network was unreachable; any HTTP status,
	// including errors, is reported as a response.
	Fetch(ctx context.Context, req *http.Request) (*http.Response, error)
}
