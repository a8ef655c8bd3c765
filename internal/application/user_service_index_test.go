package application_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/require"

	"github.com/foundly/foundly-api/internal/application"
)

// recordingTransport captures every request the ES client sends and
// answers 200 so the calls succeed.
type recordingTransport struct {
	mu       sync.Mutex
	requests []string // "METHOD path"
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.mu.Lock()
	rt.requests = append(rt.requests, req.Method+" "+req.URL.Path)
	rt.mu.Unlock()
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"X-Elastic-Product": []string{"Elasticsearch"}, "Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(`{}`)),
	}, nil
}

func (rt *recordingTransport) indexWrites(index string) int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	n := 0
	for _, r := range rt.requests {
		if strings.HasPrefix(r, "PUT /"+index+"/_doc/") {
			n++
		}
	}
	return n
}

func newIndexedService(t *testing.T) (*application.UsersService, *recordingTransport) {
	t.Helper()
	rt := &recordingTransport{}
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://elasticsearch.invalid:9200"},
		Transport: rt,
	})
	require.NoError(t, err)
	return application.NewUsersService(newStubRepo(), nil, nil, es, "users", 0), rt
}

func TestUpdateReindexesActiveUser(t *testing.T) {
	svc, rt := newIndexedService(t)
	ctx := context.Background()
	ids := seedUsers(t, svc, 1)
	require.Equal(t, 1, rt.indexWrites("users"))

	first := "Janet"
	_, err := svc.Update(ctx, ids[0], application.UpdateUserInput{FirstName: &first})
	require.NoError(t, err)
	require.Equal(t, 2, rt.indexWrites("users"))
}

func TestUpdateDoesNotReindexDeletedUser(t *testing.T) {
	svc, rt := newIndexedService(t)
	ctx := context.Background()
	ids := seedUsers(t, svc, 1)

	_, err := svc.Remove(ctx, ids[0])
	require.NoError(t, err)
	writesAfterRemove := rt.indexWrites("users")

	first := "Janet"
	_, err = svc.Update(ctx, ids[0], application.UpdateUserInput{FirstName: &first})
	require.NoError(t, err)
	require.Equal(t, writesAfterRemove, rt.indexWrites("users"))
}
