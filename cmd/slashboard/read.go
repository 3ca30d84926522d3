package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alphabot-ai/slashboard/internal/client"
	"github.com/alphabot-ai/slashboard/internal/feed"
	"github.com/alphabot-ai/slashboard/internal/model"
	"github.com/alphabot-ai/slashboard/internal/view"
)

var (
	readSort    string
	readWindow  string
	readType    string
	readLimit   int
	readPages   int
	readProfile int64
	threadDepth int

	readCmd = &cobra.Command{
		Use:   "read [board]",
		Short: "Page through a board, the board directory, or a profile feed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := client.BoardsPath()
			switch {
			case readProfile > 0:
				path = client.AccountFeedPath(readProfile)
			case len(args) == 1:
				path = client.BoardPostsPath(args[0])
			}
			req := feed.Request{
				Sort:    model.ParseSort(readSort),
				Window:  model.ParseWindow(readWindow),
				Content: model.ParseContentFilter(readType),
				Limit:   readLimit,
			}
			return browse(cmd.Context(), client.PageURL(path, req), readPages, 0, os.Stdout)
		},
	}

	threadCmd = &cobra.Command{
		Use:   "thread <post-id>",
		Short: "Show a post and its discussion tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid post id %q", args[0])
			}
			c, _ := newClient()
			post, err := c.Post(cmd.Context(), postID)
			if err != nil {
				return err
			}
			printItem(os.Stdout, post, 0)
			if pc, ok := post.Content.(model.PostContent); ok && pc.Body != "" {
				fmt.Printf("\n  %s\n", pc.Body)
			}
			fmt.Println()
			req := feed.Request{Sort: model.ParseSort(readSort), Limit: readLimit}
			return browse(cmd.Context(), client.PageURL(client.CommentsPath(postID), req), readPages, threadDepth, os.Stdout)
		},
	}
)

func init() {
	for _, cmd := range []*cobra.Command{readCmd, threadCmd} {
		cmd.Flags().StringVar(&readSort, "sort", string(model.DefaultSort), "sort order: new or top")
		cmd.Flags().IntVar(&readLimit, "limit", 0, "items per page (server default when 0)")
		cmd.Flags().IntVar(&readPages, "pages", 1, "number of pages to load")
	}
	readCmd.Flags().StringVar(&readWindow, "t", string(model.WindowAll), "time window for top: hour, day, week, month, year, all")
	readCmd.Flags().StringVar(&readType, "type", string(model.ContentAll), "profile content: all, posts, comments")
	readCmd.Flags().Int64Var(&readProfile, "profile", 0, "read an account's activity instead of a board")
	threadCmd.Flags().IntVar(&threadDepth, "expand", 0, "extra reply pages to load under each truncated comment")
}

// browse mounts a view on url, loads pages worth of items and, for threads,
// expands truncated reply lists expand times.
func browse(ctx context.Context, url string, pages, expand int, w io.Writer) error {
	c, viewer := newClient()
	session, err := view.NewSession(c, cfg.Client.SnapshotCache, logger)
	if err != nil {
		return err
	}
	ctrl := view.NewController(session)
	ctrl.Mount(session.History.Navigate(url), viewer)
	ctrl.Wait()
	if err := ctrl.Err(); err != nil {
		return err
	}
	for i := 1; i < pages && !ctrl.Store().EndOfItems(); i++ {
		if err := ctrl.LoadMore(ctx); err != nil {
			return err
		}
	}
	for range expand {
		truncated := collectTruncated(ctrl.Store().Items())
		if len(truncated) == 0 {
			break
		}
		for _, id := range truncated {
			if err := ctrl.ShowMoreReplies(ctx, id); err != nil {
				return err
			}
		}
	}

	items := ctrl.Store().Items()
	if len(items) == 0 {
		fmt.Fprintln(w, "  (nothing here yet)")
	}
	for _, it := range items {
		printTree(w, it, 0)
	}
	if !ctrl.Store().EndOfItems() {
		fmt.Fprintln(w, "  ... more available (use --pages)")
	}
	ctrl.Unmount()
	return nil
}

func collectTruncated(items []model.Item) []int64 {
	var ids []int64
	for _, it := range items {
		if it.HasMoreChildren {
			ids = append(ids, it.ID)
		}
		ids = append(ids, collectTruncated(it.Children)...)
	}
	return ids
}

func printTree(w io.Writer, it model.Item, depth int) {
	printItem(w, it, depth)
	for _, child := range it.Children {
		printTree(w, child, depth+1)
	}
	if it.HasMoreChildren {
		fmt.Fprintf(w, "%s  ... more replies (#%d)\n", strings.Repeat("    ", depth+1), it.ID)
	}
}

func printItem(w io.Writer, it model.Item, depth int) {
	indent := strings.Repeat("    ", depth)
	marker := " "
	switch it.Vote {
	case model.Up:
		marker = "▲"
	case model.Down:
		marker = "▼"
	}
	fmt.Fprintf(w, "%s%s #%d %s\n", indent, marker, it.ID, it.Summary())
	if it.Kind == model.KindBoard {
		fmt.Fprintf(w, "%s    %d posts\n", indent, it.Score)
		return
	}
	author := it.AuthorName
	if author == "" {
		author = "-"
	}
	fmt.Fprintf(w, "%s    %d pts | %s | %s\n", indent, it.Score, author, it.CreatedAt.Format("2006-01-02 15:04"))
}
