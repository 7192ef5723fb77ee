package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finnyai/internal/backend"
	"github.com/MrJamesThe3rd/finnyai/internal/finance"
)

func newServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)

	return ts
}

func TestClient_Balance(t *testing.T) {
	ts := newServer(t, map[string]string{
		"/balance": `{"success":true,"data":{"total":1500.5,"income":2000,"expenses":499.5}}`,
	})

	c := backend.New(ts.URL, "tok")

	got, err := c.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, json.Number("1500.5"), got["total"])
}

func TestClient_RecentTransactions(t *testing.T) {
	var gotLimit string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":1,"description":"Uber","amount":-23.5},{"id":2,"title":"Pix"}]}`))
	}))
	defer ts.Close()

	c := backend.New(ts.URL, "")

	got, err := c.RecentTransactions(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, "30", gotLimit)
	require.Len(t, got, 2)
	assert.Equal(t, "Uber", got[0]["description"])
	assert.Equal(t, "Pix", got[1]["title"])
}

func TestClient_Categories_Wrapped(t *testing.T) {
	ts := newServer(t, map[string]string{
		"/categories": `{"success":true,"data":{"categories":[{"id":3,"name":"Transporte","typeId":1}]}}`,
	})

	c := backend.New(ts.URL+"/", "tok")

	got, err := c.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Transporte", got[0]["name"])
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name      string
		routes    map[string]string
		call      func(c *backend.Client) error
		wantUnsuc bool
	}{
		{
			name:   "Unsuccessful",
			routes: map[string]string{"/profile": `{"success":false,"data":null,"message":"expired"}`},
			call: func(c *backend.Client) error {
				_, err := c.Profile(context.Background())
				return err
			},
			wantUnsuc: true,
		},
		{
			name:   "NullData",
			routes: map[string]string{"/profile": `{"success":true,"data":null}`},
			call: func(c *backend.Client) error {
				_, err := c.Profile(context.Background())
				return err
			},
			wantUnsuc: true,
		},
		{
			name:   "NotFound",
			routes: map[string]string{},
			call: func(c *backend.Client) error {
				_, err := c.Balance(context.Background())
				return err
			},
		},
		{
			name:   "InvalidJSON",
			routes: map[string]string{"/categories": `<html>`},
			call: func(c *backend.Client) error {
				_, err := c.Categories(context.Background())
				return err
			},
		},
		{
			name:   "NoList",
			routes: map[string]string{"/categories": `{"success":true,"data":{"count":3}}`},
			call: func(c *backend.Client) error {
				_, err := c.Categories(context.Background())
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newServer(t, tt.routes)

			err := tt.call(backend.New(ts.URL, "tok"))
			require.Error(t, err)
			assert.Equal(t, tt.wantUnsuc, errors.Is(err, finance.ErrUnsuccessful))
		})
	}
}

func TestClient_Unauthorized(t *testing.T) {
	ts := newServer(t, map[string]string{"/balance": `{"success":true,"data":{}}`})

	_, err := backend.New(ts.URL, "wrong").Balance(context.Background())
	assert.ErrorContains(t, err, "401")
}
