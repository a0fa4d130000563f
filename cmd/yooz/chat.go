package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yooz-lang/go-yooz/chatlog"
	"github.com/yooz-lang/go-yooz/engine"
	"github.com/yooz-lang/go-yooz/store"
)

func chatCmd(flags *rootFlags) *cobra.Command {
	var (
		transcriptPath string
		dbPath         string
		sessionID      string
	)

	cmd := &cobra.Command{
		Use:   "chat <rules.yz>",
		Short: "Interactive conversation",
		Long: `Chat starts an interactive conversation against a rule file.

With --transcript every exchange is appended to a JSONL file. With --db
sessions persist to SQLite and --session resumes an earlier one, restoring
its variables. Type /quit (or Ctrl-D) to leave.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, cfg, err := loadEngine(flags, args[0])
			if err != nil {
				return err
			}
			if transcriptPath == "" {
				transcriptPath = cfg.Transcript
			}
			if dbPath == "" {
				dbPath = cfg.Database
			}
			return runChat(eng, transcriptPath, dbPath, sessionID)
		},
	}

	cmd.Flags().StringVar(&transcriptPath, "transcript", "", "Append exchanges to a JSONL file")
	cmd.Flags().StringVar(&dbPath, "db", "", "Persist sessions to a SQLite database")
	cmd.Flags().StringVar(&sessionID, "session", "", "Resume a stored session (requires --db)")
	return cmd
}

func runChat(eng *engine.Engine, transcriptPath, dbPath, sessionID string) error {
	var writer *chatlog.Writer
	if transcriptPath != "" {
		w, err := chatlog.OpenWriter(transcriptPath)
		if err != nil {
			return err
		}
		writer = w
		defer writer.Close()
	}

	var db *store.SessionStore
	if dbPath != "" {
		s, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		db = s
		defer db.Close()
	}

	var session *engine.Session
	switch {
	case sessionID != "" && db != nil:
		session = eng.NewSessionWithID(sessionID)
		vars, err := db.LoadVariables(sessionID)
		if err != nil {
			return err
		}
		for name, value := range vars {
			session.SetVar(name, value)
		}
	case sessionID != "":
		return fmt.Errorf("--session requires --db")
	default:
		session = eng.NewSession()
		if db != nil {
			if err := db.CreateSession(session.ID()); err != nil {
				return err
			}
		}
	}

	fmt.Printf("session %s (type /quit to leave)\n", session.ID())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/quit" || input == "/exit" {
			break
		}

		res, err := session.Respond(input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(res.Text)

		ex := chatlog.Exchange{
			SessionID: session.ID(),
			Turn:      res.Turn,
			Input:     input,
			Response:  res.Text,
			Source:    string(res.Source),
			Matched:   res.Matched,
			Timestamp: time.Now().UTC(),
		}
		if writer != nil {
			if err := writer.Write(ex); err != nil {
				fmt.Fprintf(os.Stderr, "transcript: %v\n", err)
			}
		}
		if db != nil {
			if err := db.AppendExchange(ex); err != nil {
				fmt.Fprintf(os.Stderr, "store: %v\n", err)
			}
			if err := db.SaveVariables(session.ID(), session.Vars()); err != nil {
				fmt.Fprintf(os.Stderr, "store: %v\n", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	if db != nil {
		return db.EndSession(session.ID())
	}
	return nil
}
