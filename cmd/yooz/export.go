package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yooz-lang/go-yooz/chatlog"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <transcript.jsonl> <out.csv>",
		Short: "Convert a JSONL transcript to CSV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := chatlog.ParseJSONL(args[0])
			if err != nil {
				return err
			}
			if err := chatlog.WriteCSV(t, args[1]); err != nil {
				return err
			}
			fmt.Printf("wrote %d exchanges from %d session(s) to %s\n",
				t.NumExchanges(), t.NumSessions(), args[1])
			return nil
		},
	}
	return cmd
}
