package main

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/alphabot-ai/slashboard/internal/client"
	"github.com/alphabot-ai/slashboard/internal/model"
)

var seedAccounts = []struct {
	name string
	bio  string
}{
	{"ada", "Counts things for fun"},
	{"grace", "Ships compilers before breakfast"},
	{"linus", "Mostly reviews patches"},
	{"barbara", "Abstract data types enthusiast"},
	{"ken", "Prefers small tools"},
}

var seedBoards = []struct {
	slug, title, description string
}{
	{"golang", "Go", "The Go programming language"},
	{"databases", "Databases", "Storage engines, query planners, war stories"},
	{"meta", "Meta", "Discussion about this site"},
}

var seedPosts = []struct {
	board, title, url string
}{
	{"golang", "Structured logging with log/slog in practice", "https://example.com/slog"},
	{"golang", "When to reach for errgroup", "https://example.com/errgroup"},
	{"golang", "Ask: how do you lay out internal/ packages?", ""},
	{"databases", "Keyset pagination beats OFFSET", "https://example.com/keyset"},
	{"databases", "SQLite in production, two years in", "https://example.com/sqlite"},
	{"databases", "Ask: favourite migration tool?", ""},
	{"meta", "Welcome! Introduce yourself", ""},
	{"meta", "Feature request: collapse long threads", ""},
}

var seedComments = []string{
	"Great write-up, bookmarking this.",
	"I disagree with the premise, but the benchmarks are interesting.",
	"Has anyone measured this under real load?",
	"We did exactly this last year and never looked back.",
	"The second half is the important part.",
	"Can you share the schema you ended up with?",
	"This matches my experience.",
	"Not convinced. What about the edge cases around deletes?",
}

var (
	seedCommentsPerPost int

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Populate a running server with demo accounts, boards and threads",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			base := cfg.Client.BaseURL
			logger.Info("seeding", "url", base)

			var clients []*client.Client
			for _, acct := range seedAccounts {
				c := client.New(base)
				creds, err := client.GenerateCredentials(acct.name)
				if err != nil {
					return fmt.Errorf("generate credentials for %s: %w", acct.name, err)
				}
				if _, err := c.Register(ctx, creds, acct.bio); err != nil {
					if errors.Is(err, client.ErrAlreadyRegistered) {
						logger.Warn("account exists with another key, skipping", "name", acct.name)
						continue
					}
					return fmt.Errorf("register %s: %w", acct.name, err)
				}
				clients = append(clients, c)
			}
			if len(clients) == 0 {
				return errors.New("no seed accounts could be registered")
			}
			pick := func() *client.Client { return clients[rand.IntN(len(clients))] }

			for _, b := range seedBoards {
				if _, err := pick().CreateBoard(ctx, b.slug, b.title, b.description); err != nil {
					logger.Warn("create board failed", "slug", b.slug, "err", err)
				}
			}

			var postIDs []int64
			for _, p := range seedPosts {
				body := ""
				if p.url == "" {
					body = "Text post. Replies welcome."
				}
				post, err := pick().CreatePost(ctx, p.board, p.title, p.url, body)
				if err != nil {
					logger.Warn("create post failed", "title", p.title, "err", err)
					continue
				}
				postIDs = append(postIDs, post.ID)
			}

			comments := 0
			for _, postID := range postIDs {
				for range rand.IntN(max(seedCommentsPerPost, 1)) + 1 {
					root, err := pick().CreateComment(ctx, postID, nil, seedComments[rand.IntN(len(seedComments))])
					if err != nil {
						logger.Warn("comment failed", "post", postID, "err", err)
						continue
					}
					comments++
					for range rand.IntN(3) {
						if _, err := pick().CreateComment(ctx, postID, &root.ID, seedComments[rand.IntN(len(seedComments))]); err == nil {
							comments++
						}
					}
				}
			}

			votes := 0
			for _, c := range clients {
				for _, postID := range postIDs {
					if rand.Float32() < 0.4 {
						continue
					}
					dir := model.Up
					if rand.Float32() < 0.2 {
						dir = model.Down
					}
					if _, err := c.Vote(ctx, postID, dir); err == nil {
						votes++
					}
				}
			}

			fmt.Println("\n=== Seed Complete ===")
			fmt.Printf("Accounts: %d\n", len(clients))
			fmt.Printf("Posts:    %d\n", len(postIDs))
			fmt.Printf("Comments: %d\n", comments)
			fmt.Printf("Votes:    %d\n", votes)
			return nil
		},
	}
)

func init() {
	seedCmd.Flags().IntVar(&seedCommentsPerPost, "comments", 4, "maximum top-level comments per post")
}
