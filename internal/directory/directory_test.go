package directory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chybatronik/goUsersTable/internal/models"
	"github.com/chybatronik/goUsersTable/internal/validation"
)

const samplePayload = `[
  {"country": "USA", "state": [
    {"name": "Texas", "users": [
      {"id": "u1", "fullName": "Alice Smith", "balance": "$1,250.10", "isActive": true, "registered": "2019-03-02"},
      {"id": "u2", "fullName": "Bob Stone", "balance": "20", "isActive": false, "registered": "2020-01-15", "state": "stale"}
    ]},
    {"name": "Ohio", "users": [
      {"id": "u3", "fullName": "Carol King", "balance": "100", "isActive": true, "registered": "2018-07-30"}
    ]}
  ]},
  {"country": "Germany", "state": [
    {"name": "Bavaria", "users": [
      {"id": "u4", "fullName": "Dieter Müller", "balance": "5", "isActive": false, "registered": "2021-11-11", "email": "d@example.com"}
    ]},
    {"name": "Berlin", "users": []}
  ]},
  {"country": "Canada", "state": []}
]`

func TestDecodeUsersFlattensInPayloadOrder(t *testing.T) {
	users, err := DecodeUsers([]byte(samplePayload))
	require.NoError(t, err)
	require.Len(t, users, 4)

	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	assert.Equal(t, []string{"u1", "u2", "u3", "u4"}, ids)

	assert.Equal(t, models.User{
		ID: "u1", FullName: "Alice Smith", Balance: "$1,250.10", IsActive: true,
		Registered: "2019-03-02", State: "Texas", Country: "USA",
	}, users[0])
	assert.Equal(t, "Texas", users[1].State, "enclosing state wins over the user's own field")
	assert.Equal(t, "Ohio", users[2].State)
	assert.Equal(t, "Bavaria", users[3].State)
	assert.Equal(t, "Germany", users[3].Country)
}

func TestFlattenEmpty(t *testing.T) {
	assert.Empty(t, Flatten(nil))
	assert.Empty(t, Flatten([]models.Country{{Country: "Nowhere"}}))
}

func TestDecodeMalformed(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
	}{
		{"not json", "<html>oops</html>"},
		{"object instead of array", `{"country":"USA"}`},
		{"users not an array", `[{"country":"USA","state":[{"name":"Ohio","users":"none"}]}]`},
		{"user not an object", `[{"country":"USA","state":[{"name":"Ohio","users":["bob"]}]}]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeUsers([]byte(tc.payload))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestClientFetch(t *testing.T) {
	var gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePayload))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	assert.Equal(t, server.URL, client.URL())

	body, err := client.FetchRaw(context.Background())
	require.NoError(t, err)
	users, err := DecodeUsers(body)
	require.NoError(t, err)
	assert.Len(t, users, 4)
	assert.Equal(t, "application/json", gotAccept)
}

func TestClientFetchUpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, 5*time.Second).FetchRaw(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamStatus)
	assert.Contains(t, err.Error(), "503")
}

func TestClientFetchBodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat(" ", 64) + "[]"))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, 5*time.Second, WithMaxBodySize(32)).FetchRaw(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
	assert.ErrorIs(t, err, validation.ErrPayloadTooLarge)
	assert.Contains(t, err.Error(), "exceeds maximum")
}

func TestClientFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := NewClient(server.URL, 50*time.Millisecond).FetchRaw(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUpstreamStatus))
}

func TestClientFetchCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePayload))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(server.URL, 5*time.Second).FetchRaw(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
