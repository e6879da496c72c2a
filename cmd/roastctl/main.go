// roastctl is a small command line client for a RoastIt server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nik132-eng/roastit/client"
	"github.com/nik132-eng/roastit/internal/domain"
	"github.com/nik132-eng/roastit/jwt"
)

const usage = `usage: roastctl [flags] <command> [args]

commands:
  token <provider> <account-id> [name]   mint a session token (needs -secret, -audience)
  post <title> <image-file>               submit a post
  roast <post-id> <text>                  roast a post
  feed [recent|trending]                  list posts
  show <post-id>                          show a post with its roasts
  profile <user-id>                       show a user profile
  me                                      show the signed in user
`

func main() {
	endpoint := flag.String("endpoint", envOr("ROASTIT_ENDPOINT", "http://localhost:8000"), "server endpoint")
	token := flag.String("token", os.Getenv("ROASTIT_TOKEN"), "session token")
	secret := flag.String("secret", os.Getenv("ROASTIT_SESSION_SECRET"), "session secret, for token")
	audience := flag.String("audience", "localhost", "token audience, for token")
	limit := flag.Int("limit", 0, "feed size")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	c := client.New(*endpoint, *token)

	var result any
	var err error
	switch cmd := args[0]; {
	case cmd == "token" && len(args) >= 3:
		name := ""
		if len(args) > 3 {
			name = args[3]
		}
		result, err = jwt.Issue(args[2], args[1], name, "", *audience, *secret, 24*time.Hour)
	case cmd == "post" && len(args) == 3:
		var f *os.File
		f, err = os.Open(args[2])
		if err == nil {
			defer f.Close()
			result, err = c.SubmitPost(ctx, args[1], filepath.Base(args[2]), f)
		}
	case cmd == "roast" && len(args) == 3:
		result, err = c.SubmitRoast(ctx, args[1], args[2])
	case cmd == "feed" && len(args) <= 2:
		sort := domain.FeedSortRecent
		if len(args) == 2 {
			sort = domain.FeedSort(args[1])
		}
		result, err = c.ListPosts(ctx, sort, *limit)
	case cmd == "show" && len(args) == 2:
		result, err = c.GetPost(ctx, args[1])
	case cmd == "profile" && len(args) == 2:
		result, err = c.GetProfile(ctx, args[1])
	case cmd == "me":
		result, err = c.Me(ctx)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(result)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
