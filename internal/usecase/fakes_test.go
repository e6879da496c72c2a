package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nik132-eng/roastit/internal/domain"
)

// memStore is an in-memory record store with the same referential rules as
// the Postgres schema.
type memStore struct {
	mu     sync.Mutex
	seq    int
	clock  time.Time
	users  map[string]domain.User
	posts  []domain.Post
	roasts []domain.Roast
	failOn string
}

func newMemStore() *memStore {
	return &memStore{
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users: map[string]domain.User{},
	}
}

func (m *memStore) next(prefix string) (string, time.Time) {
	m.seq++
	m.clock = m.clock.Add(time.Minute)
	return fmt.Sprintf("%s-%d", prefix, m.seq), m.clock
}

func (m *memStore) addUser(id string) {
	name := "user " + id
	m.users[id] = domain.User{ID: id, Name: &name}
}

type memUsers struct{ *memStore }
type memPosts struct{ *memStore }
type memRoasts struct{ *memStore }

func (m memUsers) Upsert(ctx context.Context, user domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return user, nil
}

func (m memUsers) Get(ctx context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.NotFound("user")
	}
	return u, nil
}

func (m memPosts) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn == "post" {
		return domain.Post{}, errors.New("connection reset")
	}
	if _, ok := m.users[post.AuthorID]; !ok {
		return domain.Post{}, domain.InvalidInput("author does not exist", nil)
	}
	post.ID, post.CreatedAt = m.next("post")
	m.posts = append(m.posts, post)
	return post, nil
}

func (m memPosts) Get(ctx context.Context, id string) (domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.ID == id {
			author := m.users[p.AuthorID]
			p.Author = &author
			return p, nil
		}
	}
	return domain.Post{}, domain.NotFound("post")
}

func (m memPosts) List(ctx context.Context, query domain.FeedQuery) ([]domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn == "list" {
		return nil, errors.New("read timeout")
	}
	out := make([]domain.Post, 0, len(m.posts))
	for _, p := range m.posts {
		author := m.users[p.AuthorID]
		p.Author = &author
		if query.Sort == domain.FeedSortTrending {
			var n int64
			for _, r := range m.roasts {
				if r.PostID == p.ID {
					n++
				}
			}
			p.RoastCount = &n
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if query.Sort == domain.FeedSortTrending && *out[i].RoastCount != *out[j].RoastCount {
			return *out[i].RoastCount > *out[j].RoastCount
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

func (m memPosts) ListByAuthor(ctx context.Context, authorID string) ([]domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Post
	for i := len(m.posts) - 1; i >= 0; i-- {
		if m.posts[i].AuthorID == authorID {
			out = append(out, m.posts[i])
		}
	}
	return out, nil
}

func (m memPosts) ReferencedImageKeys(ctx context.Context, keys []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]bool{}
	for _, k := range keys {
		for _, p := range m.posts {
			if p.ImageKey == k {
				out[k] = true
			}
		}
	}
	return out, nil
}

func (m memRoasts) Create(ctx context.Context, roast domain.Roast) (domain.Roast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn == "roast" {
		return domain.Roast{}, errors.New("connection reset")
	}
	found := false
	for _, p := range m.posts {
		if p.ID == roast.PostID {
			found = true
		}
	}
	if !found {
		return domain.Roast{}, domain.InvalidInput("post does not exist", nil)
	}
	roast.ID, roast.CreatedAt = m.next("roast")
	m.roasts = append(m.roasts, roast)
	return roast, nil
}

func (m memRoasts) ListByPost(ctx context.Context, postID string) ([]domain.Roast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Roast
	for i := len(m.roasts) - 1; i >= 0; i-- {
		if m.roasts[i].PostID == postID {
			out = append(out, m.roasts[i])
		}
	}
	return out, nil
}

type mockMedia struct {
	url     string
	err     error
	uploads [][]byte
	metas   []domain.MediaUpload
	objects []domain.MediaObject
	deleted []string
}

func (m *mockMedia) Upload(ctx context.Context, data []byte, meta domain.MediaUpload) (domain.MediaObject, error) {
	m.uploads = append(m.uploads, data)
	m.metas = append(m.metas, meta)
	if m.err != nil {
		return domain.MediaObject{}, m.err
	}
	return domain.MediaObject{Key: "uploads/abc.png", URL: m.url}, nil
}

func (m *mockMedia) List(ctx context.Context) ([]domain.MediaObject, error) {
	return m.objects, nil
}

func (m *mockMedia) Delete(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	return nil
}

type mockSignal struct {
	channels []string
	events   []domain.Event
	err      error
}

func (m *mockSignal) Publish(ctx context.Context, channel string, event domain.Event) error {
	m.channels = append(m.channels, channel)
	m.events = append(m.events, event)
	return m.err
}

type mockCache struct {
	pages       map[domain.FeedQuery][]domain.Post
	invalidated int
}

func newMockCache() *mockCache {
	return &mockCache{pages: map[domain.FeedQuery][]domain.Post{}}
}

func (m *mockCache) Get(ctx context.Context, query domain.FeedQuery) ([]domain.Post, bool) {
	p, ok := m.pages[query]
	return p, ok
}

func (m *mockCache) Set(ctx context.Context, query domain.FeedQuery, posts []domain.Post) {
	m.pages[query] = posts
}

func (m *mockCache) Invalidate(ctx context.Context) {
	m.invalidated++
	m.pages = map[domain.FeedQuery][]domain.Post{}
}

// pngBytes is the smallest prefix the sniffer recognizes as image/png.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
