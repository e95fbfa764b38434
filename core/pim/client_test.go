package pim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.HandlerFunc) (*httptest.Server, Client) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		BaseURL:  srv.URL,
		Login:    "sync",
		Password: "secret",
	})
	return srv, client
}

func TestFetchTree_SignsInOnce(t *testing.T) {
	signIns := 0

	_, client := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sign-in/":
			signIns++
			fmt.Fprint(w, `{"success":true,"data":{"access":{"token":"tok-1"}}}`)
		case "/catalog/22":
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			fmt.Fprint(w, `{"success":true,"data":{"id":22,"header":"Root","children":[]}}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	ctx := context.Background()

	raw, err := client.FetchTree(ctx, 22)
	require.NoError(t, err)

	var node struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &node))
	assert.Equal(t, 22, node.ID)

	// Second call reuses the cached token
	_, err = client.FetchTree(ctx, 22)
	require.NoError(t, err)
	assert.Equal(t, 1, signIns)
}

func TestCall_RefreshesExpiredTokenOnce(t *testing.T) {
	signIns := 0

	_, client := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sign-in/":
			signIns++
			fmt.Fprintf(w, `{"success":true,"data":{"access":{"token":"tok-%d"}}}`, signIns)
		case "/catalog/22":
			if r.Header.Get("Authorization") == "Bearer tok-1" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			fmt.Fprint(w, `{"success":true,"data":{"id":22,"header":"Root"}}`)
		}
	})

	ctx := context.Background()

	// Prime the token cache
	_, err := client.FetchTree(ctx, 22)
	require.NoError(t, err)
	assert.Equal(t, 2, signIns, "expired token should trigger exactly one re-auth")
}

func TestCreateNode_SendsServicePayload(t *testing.T) {
	var captured map[string]any

	_, client := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sign-in/":
			fmt.Fprint(w, `{"success":true,"data":{"access":{"token":"tok"}}}`)
		case "/catalog/rapid":
			assert.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			fmt.Fprint(w, `{"success":true}`)
		}
	})

	err := client.CreateNode(context.Background(), CreateNodeRequest{
		Header:    "Грунты",
		ParentID:  22,
		LastLevel: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Грунты", captured["header"])
	assert.Equal(t, float64(22), captured["parentId"])
	assert.Equal(t, true, captured["lastLevel"])
	assert.Equal(t, float64(0), captured["id"])
}

func TestCall_EnvelopeFailureBecomesError(t *testing.T) {
	_, client := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sign-in/":
			fmt.Fprint(w, `{"success":true,"data":{"access":{"token":"tok"}}}`)
		case "/catalog/rapid":
			fmt.Fprint(w, `{"success":false,"message":"parent not found"}`)
		}
	})

	err := client.CreateNode(context.Background(), CreateNodeRequest{Header: "X", ParentID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parent not found")
}
