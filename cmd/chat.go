package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/college-counselor/internal/conversation"
	"github.com/spigell/college-counselor/internal/ranking"
	"github.com/spigell/college-counselor/internal/storage"
)

const (
	PromptContinue        = "Continue the conversation"
	PromptRecommendations = "Show recommendations"
	PromptProfile         = "Show profile"
	PromptDocumentToFile  = "Dump session document to file"
	PromptQuit            = "Quit"
)

var errExit = errors.New("exit requested")

var menu = promptui.Select{
	Label: "What next?",
	Items: []string{PromptContinue, PromptRecommendations, PromptProfile, PromptDocumentToFile, PromptQuit},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the counselor in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		chat(cmd)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("session", "s", "", "session id to use (default is a new random id)")
}

func chat(cmd *cobra.Command) {
	// Logs go to stderr so they do not interleave with the conversation.
	logger, config := bootstrap(true)
	defer logger.Sync()

	ctx := context.Background()

	app, err := buildApp(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the counselor", zap.Error(err))
	}
	defer app.Close()

	sessionID, _ := cmd.Flags().GetString("session")

	fmt.Printf("%s: Hi! I'm %s, your college counselor. Tell me about your studies and what you are looking for.\n",
		app.driver.Counselor(), app.driver.Counselor())

	if err := converse(ctx, app.driver, sessionID); err != nil && !errors.Is(err, errExit) {
		logger.Fatal("chat failed", zap.Error(err))
	}
}

func converse(ctx context.Context, driver *conversation.Driver, sessionID string) error {
	input := promptui.Prompt{Label: "You"}
	askMenu := false

	for {
		if askMenu {
			_, action, err := menu.Run()
			if err != nil {
				return errExit
			}

			switch action {
			case PromptQuit:
				return errExit
			case PromptRecommendations:
				recs, err := driver.RecommendFor(sessionID, 0)
				if err != nil {
					return err
				}
				printRecommendations(recs)
				continue
			case PromptProfile:
				snap, ok := driver.Snapshot(sessionID)
				if !ok {
					return conversation.ErrSessionNotFound
				}
				if err := printJSON(snap.Profile.NonEmpty()); err != nil {
					return err
				}
				continue
			case PromptDocumentToFile:
				path, err := dumpDocument(ctx, driver, sessionID)
				if err != nil {
					return err
				}
				fmt.Printf("session document written to %s\n", path)
				continue
			}
		}

		message, err := input.Run()
		if err != nil {
			// ^C or ^D ends the conversation.
			return errExit
		}
		if strings.TrimSpace(message) == "" {
			continue
		}
		if isQuit(message) {
			return errExit
		}

		res, err := driver.Handle(ctx, sessionID, message)
		if err != nil {
			return err
		}
		sessionID = res.SessionID

		fmt.Printf("%s: %s\n", driver.Counselor(), res.Reply)
		if len(res.Extracted) > 0 {
			fmt.Printf("  (noted: %s)\n", strings.Join(res.Extracted, ", "))
		}
		if res.JustReady {
			printRecommendations(res.Recommendations)
		}

		askMenu = res.Ready
	}
}

func isQuit(message string) bool {
	switch strings.ToLower(strings.TrimSpace(message)) {
	case "quit", "exit", "bye":
		return true
	}
	return false
}

func printRecommendations(recs []ranking.Recommendation) {
	if len(recs) == 0 {
		fmt.Println("No colleges to recommend yet.")
		return
	}
	for i, rec := range recs {
		fmt.Printf("%d. %s (%s) score %d\n", i+1, rec.Name, rec.Location, rec.MatchScore)
		for _, reason := range rec.MatchReasons {
			fmt.Printf("     - %s\n", reason)
		}
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func dumpDocument(ctx context.Context, driver *conversation.Driver, sessionID string) (string, error) {
	doc, err := driver.Document(ctx, sessionID)
	if err != nil {
		return "", err
	}
	data, err := storage.Encode(doc)
	if err != nil {
		return "", err
	}

	path, err := filepath.Abs(storage.FileName(sessionID))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
