package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	route     string
	threadID  string
	timeout   time.Duration
)

type queryRequest struct {
	Query    string `json:"query"`
	Route    string `json:"route"`
	ThreadId string `json:"threadId,omitempty"`
}

type queryResponse struct {
	Message  string `json:"message"`
	ThreadId string `json:"threadId"`
	Actions  []struct {
		Type        string `json:"type"`
		ElementId   string `json:"elementId"`
		Description string `json:"description"`
		Route       string `json:"route"`
	} `json:"actions"`
}

var rootCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the onboarding assistant a question from the terminal",
	Long: `Send questions to a running onboarding assistant server.

With a question argument, asks once and prints the reply.
Without one, starts an interactive session that keeps the same thread.`,
	RunE: runAsk,
}

var contextCmd = &cobra.Command{
	Use:   "context <route>",
	Short: "Show the context the server resolves for a route",
	Args:  cobra.ExactArgs(1),
	RunE:  runContext,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:5000/api", "assistant API base URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 60*time.Second, "request timeout")
	rootCmd.Flags().StringVarP(&route, "route", "r", "", "UI route the question is asked from")
	rootCmd.Flags().StringVarP(&threadID, "thread", "t", "", "continue an existing thread")
	rootCmd.AddCommand(contextCmd)

	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: timeout}

	if len(args) > 0 {
		_, err := ask(client, strings.Join(args, " "))
		return err
	}

	color.Cyan("Onboarding assistant (route %q). Empty line or Ctrl+D to quit.", route)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(color.YellowString("> "))
		if !scanner.Scan() {
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			return nil
		}
		resp, err := ask(client, question)
		if err != nil {
			color.Red("Failed: %v", err)
			continue
		}
		threadID = resp.ThreadId
	}
}

func ask(client *http.Client, question string) (*queryResponse, error) {
	body, err := json.Marshal(queryRequest{Query: question, Route: route, ThreadId: threadID})
	if err != nil {
		return nil, err
	}

	resp, err := client.Post(strings.TrimSuffix(serverURL, "/")+"/query", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	var out queryResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	color.Green("%s", out.Message)
	for _, a := range out.Actions {
		switch a.Type {
		case "highlight":
			color.Magenta("  [highlight] %s: %s", a.ElementId, a.Description)
		case "navigate":
			color.Magenta("  [navigate] %s", a.Route)
		}
	}
	color.HiBlack("thread: %s", out.ThreadId)
	return &out, nil
}

func runContext(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: timeout}
	target := strings.TrimSuffix(serverURL, "/") + "/context?route=" + url.QueryEscape(args[0])

	resp, err := client.Get(target)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var out interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		color.Yellow("Status: %s", resp.Status)
	}

	pretty, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(pretty))
	return nil
}
