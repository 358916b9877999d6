// Command client is an interactive terminal demo of the suggestion
// pipeline. It reads lines from stdin as if they were typed into an
// editor, runs the context extractor and debounce over them, and prints
// ranked suggestions as they arrive.
package main

import (
	"bufio"
	"fmt"
	"os"

	"citation-engine-be/internal/pkg/logger"
	"citation-engine-be/pkg/protocol"
	"citation-engine-be/pkg/textctx"
	"citation-engine-be/pkg/throttle"
	"citation-engine-be/pkg/wsclient"

	"github.com/fatih/color"
)

func main() {
	url := os.Getenv("SUGGEST_WS_URL")
	if url == "" {
		url = "ws://localhost:3000/ws/suggest"
	}
	token := os.Getenv("SUGGEST_TOKEN")

	identity := token
	if identity == "" {
		identity = "anonymous"
	}

	log := logger.NewIsolatedLogger("logs/client.log")
	manager := wsclient.ForIdentity(identity, wsclient.Config{
		URL:   url,
		Token: token,
	}, log)

	manager.RegisterConnectionStateListener(func(s wsclient.ConnectionState) {
		color.New(color.Faint).Printf("[connection: %s]\n", s)
	})
	manager.RegisterSuggestionsListener(printSuggestions)
	manager.RegisterErrorListener(func(e protocol.ErrorMessage) {
		color.Red("error: %s", e.Message)
	})

	manager.Connect()

	th := throttle.New(throttle.DefaultConfig(), manager, func(text string, ctx textctx.TextContext) {
		manager.RequestSuggestions(text, ctx)
	})
	defer th.Stop()

	fmt.Println("Type text and press enter; suggestions follow the sentence under the cursor.")
	fmt.Println("Ctrl-D to exit.")

	var document string
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if document != "" {
			document += "\n"
		}
		document += scanner.Text()
		th.OnContextChanged(textctx.Extract(document, len([]rune(document))))
	}

	wsclient.ReleaseIdentity(identity)
}

func printSuggestions(msg protocol.SuggestionsMessage) {
	if len(msg.Results) == 0 {
		color.New(color.Faint).Println("(no suggestions)")
		return
	}
	for i, s := range msg.Results {
		tier := color.New(color.FgRed)
		switch s.Tier {
		case "high":
			tier = color.New(color.FgGreen, color.Bold)
		case "medium":
			tier = color.New(color.FgYellow)
		}
		year := ""
		if s.Year != nil {
			year = fmt.Sprintf(" (%d)", *s.Year)
		}
		fmt.Printf("%2d. %s%s  ", i+1, s.Title, year)
		tier.Printf("%.2f %s\n", s.Confidence, s.Tier)
		color.New(color.Faint).Printf("    %s\n", s.ChunkText)
	}
}
