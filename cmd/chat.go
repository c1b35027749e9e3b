package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/datachat-io/datachat/internal/chat"
	"github.com/datachat-io/datachat/internal/registry"
)

var (
	chatOsint          bool
	chatConversationID string
	chatShowSQL        bool
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Ask one question against the imported datasets",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		snap, err := registry.Load(ctx, env.Store)
		if err != nil {
			return err
		}

		resp, err := env.Chat.Handle(ctx, snap, chat.Request{
			Message:        strings.Join(args, " "),
			ConversationID: chatConversationID,
			AIMode:         chatOsint,
		})
		if err != nil {
			return err
		}

		if chatShowSQL && resp.SQL != "" {
			fmt.Printf("SQL: %s\n\n", resp.SQL)
		}
		fmt.Println(resp.Response)
		return nil
	},
}

func init() {
	chatCmd.Flags().BoolVar(&chatOsint, "osint", false, "enrich the top match with an OSINT scan and report")
	chatCmd.Flags().StringVar(&chatConversationID, "conversation", "", "continue an existing conversation")
	chatCmd.Flags().BoolVar(&chatShowSQL, "sql", false, "print the generated SQL")
	rootCmd.AddCommand(chatCmd)
}
