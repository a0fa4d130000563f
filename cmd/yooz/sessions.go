package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yooz-lang/go-yooz/store"
)

func sessionsCmd(flags *rootFlags) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List stored sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				cfg, err := LoadConfig(flags.configPath)
				if err != nil {
					return err
				}
				dbPath = cfg.Database
			}
			if dbPath == "" {
				return fmt.Errorf("no database: pass --db or set database in the config")
			}

			db, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			infos, err := db.ListSessions()
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Println("no sessions")
				return nil
			}
			for _, info := range infos {
				state := "ended"
				if info.Active {
					state = "active"
				}
				fmt.Printf("%s  %s  turns=%d  %s\n",
					info.ID, info.StartedAt.Format("2006-01-02 15:04:05"), info.Turns, state)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path")
	return cmd
}
