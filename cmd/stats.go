package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/secmentor/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show activity and progression recorded on this machine",
	RunE: func(cmd *cobra.Command, args []string) error {
		recent, _ := cmd.Flags().GetInt("recent")

		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := context.Background()
		sum, err := st.JournalRepo().Summary(ctx)
		if err != nil {
			return fmt.Errorf("summarize journal: %w", err)
		}
		out := cmd.OutOrStdout()
		printSummary(out, sum)

		if recent <= 0 {
			return nil
		}
		events, err := st.JournalRepo().Recent(ctx, recent)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		fmt.Fprintln(out)
		printEvents(out, events)
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("recent", 0, "Also list this many recent events")
}

func printSummary(w io.Writer, s store.Summary) {
	if s.Logins == 0 && s.Turns == 0 {
		fmt.Fprintln(w, "No activity recorded yet.")
		return
	}

	fmt.Fprintf(w, "Rank:          %d %s\n", s.LastRank, s.LastRankName)
	fmt.Fprintf(w, "XP:            %d\n", s.LastXP)
	fmt.Fprintf(w, "XP earned:     %d\n", s.XPEarned)
	fmt.Fprintf(w, "Logins:        %d\n", s.Logins)
	fmt.Fprintf(w, "Questions:     %d (%d restricted)\n", s.Turns, s.Restricted)
	fmt.Fprintf(w, "Quizzes:       %d answered, %d correct, %d skipped\n", s.QuizAnswered, s.QuizCorrect, s.QuizSkipped)
	if !s.LastSeen.IsZero() {
		fmt.Fprintf(w, "Last seen:     %s\n", s.LastSeen.Local().Format("2006-01-02 15:04:05"))
	}
}

func printEvents(w io.Writer, events []store.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return
	}

	fmt.Fprintf(w, "%-19s  %-6s  %-12s  %-6s  %-6s  %s\n",
		"Timestamp", "Kind", "User", "XP", "Delta", "Note")
	fmt.Fprintln(w, strings.Repeat("─", 70))

	for _, e := range events {
		note := ""
		switch {
		case e.Kind == store.EventChat && e.Restricted:
			note = "restricted"
		case e.Kind == store.EventQuiz && e.Correct:
			note = "✓"
		case e.Kind == store.EventQuiz:
			note = "✗"
		}
		user := e.UserID
		if len(user) > 12 {
			user = user[:12]
		}
		fmt.Fprintf(w, "%-19s  %-6s  %-12s  %-6d  %-6d  %s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Kind,
			user,
			e.XP,
			e.XPDelta,
			note,
		)
	}
}
