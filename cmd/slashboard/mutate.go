package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alphabot-ai/slashboard/internal/model"
)

var (
	postBoard string
	postTitle string
	postLink  string
	postBody  string

	commentParent int64

	postCmd = &cobra.Command{
		Use:   "post",
		Short: "Submit a post to a board",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authenticatedClient()
			if err != nil {
				return err
			}
			it, err := c.CreatePost(cmd.Context(), postBoard, postTitle, postLink, postBody)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Posted #%d: %s\n", it.ID, it.Summary())
			return nil
		},
	}

	commentCmd = &cobra.Command{
		Use:   "comment <post-id> <text>",
		Short: "Comment on a post or reply to a comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid post id %q", args[0])
			}
			c, err := authenticatedClient()
			if err != nil {
				return err
			}
			var parent *int64
			if commentParent > 0 {
				parent = &commentParent
			}
			it, err := c.CreateComment(cmd.Context(), postID, parent, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("✓ Comment #%d on post #%d\n", it.ID, postID)
			return nil
		},
	}

	voteCmd = &cobra.Command{
		Use:   "vote <item-id> <up|down|clear>",
		Short: "Vote on a post or comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}
			dir, err := parseDirection(args[1])
			if err != nil {
				return err
			}
			c, err := authenticatedClient()
			if err != nil {
				return err
			}
			patch, err := c.Vote(cmd.Context(), itemID, dir)
			if err != nil {
				return err
			}
			fmt.Printf("✓ #%d now at %d points\n", patch.ID, *patch.Score)
			return nil
		},
	}

	deleteCmd = &cobra.Command{
		Use:     "delete <item-id>",
		Aliases: []string{"rm"},
		Short:   "Delete one of your posts or comments",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}
			c, err := authenticatedClient()
			if err != nil {
				return err
			}
			if _, err := c.Delete(cmd.Context(), itemID); err != nil {
				return err
			}
			fmt.Printf("✓ Deleted #%d\n", itemID)
			return nil
		},
	}
)

func init() {
	postCmd.Flags().StringVar(&postBoard, "board", "", "board slug (required)")
	postCmd.Flags().StringVar(&postTitle, "title", "", "post title (required)")
	postCmd.Flags().StringVar(&postLink, "link", "", "link URL")
	postCmd.Flags().StringVar(&postBody, "text", "", "text body")
	_ = postCmd.MarkFlagRequired("board")
	_ = postCmd.MarkFlagRequired("title")

	commentCmd.Flags().Int64Var(&commentParent, "parent", 0, "comment to reply to")
}

func parseDirection(s string) (model.Direction, error) {
	switch s {
	case "up", "+1", "1":
		return model.Up, nil
	case "down", "-1":
		return model.Down, nil
	case "clear", "none", "0":
		return model.None, nil
	}
	return model.None, fmt.Errorf("unknown vote %q (want up, down or clear)", s)
}
