package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/memkeep/memkeep/pkg/logstore"
)

func newSearchCmd() *cobra.Command {
	var (
		from  string
		to    string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search raw conversation logs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			logs := logstore.New(cfg.Capture.LogDir)
			results, err := logs.Search(args[0], logstore.SearchOptions{
				DateFrom: from,
				DateTo:   to,
				Limit:    limit,
			})
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Println("No matches.")
				return nil
			}
			for _, r := range results {
				user := r.Entry.UserID
				if user == "" {
					user = "unknown"
				}
				fmt.Printf("[%s] %s (%s)\n", r.Date, user, r.Entry.Channel)
				fmt.Printf("  %s\n", strings.TrimSpace(r.MatchContext))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "earliest date to search (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&to, "to", "", "latest date to search (YYYY-MM-DD, inclusive)")
	cmd.Flags().IntVar(&limit, "limit", logstore.DefaultSearchLimit, "maximum number of results")
	return cmd
}
