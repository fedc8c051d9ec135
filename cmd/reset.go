package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/secmentor/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the saved user ID so the next start asks for it",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.PrefRepo().Delete(context.Background(), store.SessionUserKey); err != nil {
			return fmt.Errorf("clear saved user id: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved user ID cleared.")
		return nil
	},
}
