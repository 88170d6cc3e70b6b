package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/saleh1312/BarCloudTask/config"
	"github.com/saleh1312/BarCloudTask/internal/api"
	"github.com/saleh1312/BarCloudTask/internal/credentials"
	"github.com/saleh1312/BarCloudTask/internal/intent"
	"github.com/saleh1312/BarCloudTask/internal/llm"
	"github.com/saleh1312/BarCloudTask/internal/session"
)

var (
	cfg    *config.Config
	logger zerolog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "barcloud",
		Short: "Natural-language chat front-end for pre-templated SQL queries",
		Long: `BarCloudTask turns natural-language questions into one of a fixed set of
pre-templated SQL queries, using a single LLM completion call per turn.
Queries are returned as text and never executed.

Provider selection (PROVIDER env var):
  openai     Direct OpenAI API (OPENAI_API_KEY)
  azure      Azure OpenAI managed endpoint (AZURE_OPENAI_* settings)
  anthropic  Anthropic API (ANTHROPIC_API_KEY)

Examples:
  barcloud serve --port 8080
  barcloud ask "What were sales last month?"
  barcloud chat
  barcloud config setup`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}

			level, _ := zerolog.ParseLevel(cfg.LogLevel)
			logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().
				Timestamp().
				Logger()

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newStore() (*session.Store, llm.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	client, err := llm.New(cfg)
	if err != nil {
		return nil, nil, err
	}

	catalog, err := intent.Load(cfg.IntentsPath)
	if err != nil {
		return nil, nil, err
	}

	logger.Info().Str("client", client.Name()).Int("intents", len(catalog.All())).Msg("provider ready")

	return session.NewStore(client, catalog, logger), client, nil
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long:  "Start the REST API server exposing POST /api/chat and the static chat page",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				cfg.ServerPort = port
			}

			store, client, err := newStore()
			if err != nil {
				return err
			}

			server := api.NewServer(store, client.Name(), cfg.ServerPort, logger)
			return server.Start()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default: 8080)")
	return cmd
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question",
		Long:  "Ask a single question through a throwaway session and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := newStore()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			sess := store.GetOrCreate("cli")
			result, err := sess.HandleUserMessage(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			printResult(result)
			return nil
		},
	}
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long:  "Start an interactive session; every turn shares the same transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat()
		},
	}
}

func runChat() error {
	store, _, err := newStore()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nGoodbye!")
		cancel()
		os.Exit(0)
	}()

	fmt.Println("BarCloudTask - chat with your sales data")
	fmt.Println("========================================")
	fmt.Println("Ask a question and get the matching SQL query and answer.")
	fmt.Println()
	fmt.Println("Type 'exit' or 'quit' to end the session, 'clear' to reset it.")
	fmt.Println()

	sessionID := "chat"
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("You: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if input == "exit" || input == "quit" {
			fmt.Println("Goodbye!")
			return nil
		}

		if input == "clear" {
			store.Delete(sessionID)
			fmt.Println("Session cleared.")
			continue
		}

		sess := store.GetOrCreate(sessionID)
		result, err := sess.HandleUserMessage(ctx, input)
		if err != nil {
			fmt.Printf("Error: %v\n\n", err)
			continue
		}

		printResult(result)
	}
}

func printResult(result *session.Result) {
	fmt.Printf("Assistant: %s\n", result.Answer)
	if result.Query != session.NoSQL {
		fmt.Printf("SQL: %s\n", result.Query)
	}
	fmt.Printf("Tokens: %d prompt, %d completion, %d total\n\n",
		result.Usage.PromptTokens,
		result.Usage.CompletionTokens,
		result.Usage.TotalTokens)
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage credentials stored in OS keychain",
		Long: `Manage API credentials stored securely in your OS keychain.

Credentials are stored in:
  - macOS: Keychain Access
  - Windows: Credential Manager
  - Linux: Secret Service (GNOME Keyring)

Examples:
  barcloud config setup          # Interactive setup
  barcloud config show           # Show configured credentials
  barcloud config clear          # Remove all stored credentials`,
	}

	cmd.AddCommand(configSetupCmd())
	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configClearCmd())

	return cmd
}

func configSetupCmd() *cobra.Command {
	var openaiKey, azureKey, anthropicKey string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Configure API credentials",
		Long:  "Interactively configure and store API credentials in OS keychain",
		RunE: func(cmd *cobra.Command, args []string) error {
			if openaiKey == "" {
				fmt.Print("OpenAI API Key (press Enter to skip): ")
				key, _ := readPassword()
				openaiKey = strings.TrimSpace(key)
			}

			if azureKey == "" {
				fmt.Print("Azure OpenAI API Key (press Enter to skip): ")
				key, _ := readPassword()
				azureKey = strings.TrimSpace(key)
			}

			if anthropicKey == "" {
				fmt.Print("Anthropic API Key (press Enter to skip): ")
				key, _ := readPassword()
				anthropicKey = strings.TrimSpace(key)
			}

			if err := credentials.Setup(openaiKey, azureKey, anthropicKey); err != nil {
				return fmt.Errorf("failed to store credentials: %w", err)
			}

			fmt.Println("\nCredentials stored securely in OS keychain.")
			fmt.Println("You can now run barcloud without setting environment variables.")
			return nil
		},
	}

	cmd.Flags().StringVar(&openaiKey, "openai-key", "", "OpenAI API key")
	cmd.Flags().StringVar(&azureKey, "azure-key", "", "Azure OpenAI API key")
	cmd.Flags().StringVar(&anthropicKey, "anthropic-key", "", "Anthropic API key")

	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show configured credentials",
		Long:  "Display which credentials are configured in the OS keychain",
		RunE: func(cmd *cobra.Command, args []string) error {
			configured := credentials.ListConfigured()

			fmt.Println("Credential Status (stored in OS keychain):")
			fmt.Println("==========================================")

			status := func(ok bool) string {
				if ok {
					return "configured"
				}
				return "not set"
			}

			fmt.Printf("  OpenAI API Key:        %s\n", status(configured[credentials.KeyOpenAI]))
			fmt.Printf("  Azure OpenAI API Key:  %s\n", status(configured[credentials.KeyAzure]))
			fmt.Printf("  Anthropic API Key:     %s\n", status(configured[credentials.KeyAnthropic]))

			fmt.Println("\nNote: Environment variables override keychain values.")
			return nil
		},
	}
}

func configClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all stored credentials",
		Long:  "Remove all credentials from the OS keychain",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print("Are you sure you want to clear all stored credentials? [y/N]: ")
			reader := bufio.NewReader(os.Stdin)
			response, _ := reader.ReadString('\n')
			response = strings.TrimSpace(strings.ToLower(response))

			if response != "y" && response != "yes" {
				fmt.Println("Cancelled.")
				return nil
			}

			if err := credentials.ClearAll(); err != nil {
				fmt.Printf("Warning: some credentials may not have been cleared: %v\n", err)
			}

			fmt.Println("All credentials cleared from keychain.")
			return nil
		},
	}
}

func readPassword() (string, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		return string(bytes), err
	}
	reader := bufio.NewReader(os.Stdin)
	return reader.ReadString('\n')
}
