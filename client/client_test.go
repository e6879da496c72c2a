package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nik132-eng/roastit/internal/domain"
)

func TestSubmitPost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "cat.png", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(domain.Post{ID: "p1", Title: r.FormValue("title"), ImageURL: "https://cdn.example/x.png"})
	}))
	defer server.Close()

	c := New(server.URL, "token")
	post, err := c.SubmitPost(context.Background(), "Cat", "cat.png", bytes.NewReader([]byte("png")))
	require.NoError(t, err)
	assert.Equal(t, "Cat", post.Title)
	assert.Equal(t, "https://cdn.example/x.png", post.ImageURL)
}

func TestAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Unauthorized"}`))
	}))
	defer server.Close()

	c := New(server.URL, "")
	_, err := c.SubmitRoast(context.Background(), "p1", "meh")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Unauthorized", apiErr.Message)
}

func TestListPostsAndProfileCache(t *testing.T) {
	profileCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/posts":
			assert.Equal(t, "trending", r.URL.Query().Get("sort"))
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			w.Write([]byte(`[{"id":"p1","title":"Cat"}]`))
		case "/users/u1":
			profileCalls++
			w.Write([]byte(`{"user":{"id":"u1"},"posts":[],"postCount":0}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := New(server.URL, "")
	posts, err := c.ListPosts(context.Background(), domain.FeedSortTrending, 5)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Cat", posts[0].Title)

	for i := 0; i < 2; i++ {
		profile, err := c.GetProfile(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, "u1", profile.User.ID)
	}
	assert.Equal(t, 1, profileCalls)
}
