package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func queryCmd(flags *rootFlags) *cobra.Command {
	var showSource bool

	cmd := &cobra.Command{
		Use:   "query <rules.yz> <utterance>",
		Short: "Answer a single utterance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := loadEngine(flags, args[0])
			if err != nil {
				return err
			}

			session := eng.NewSession()
			res, err := session.Respond(args[1])
			if err != nil {
				return err
			}

			fmt.Println(res.Text)
			if showSource {
				fmt.Printf("(source: %s, matched: %v)\n", res.Source, res.Matched)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showSource, "source", false, "Show which mechanism produced the reply")
	return cmd
}
