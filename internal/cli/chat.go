package cli

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/netwave-ai/netwave/internal/agent"
	"github.com/netwave-ai/netwave/internal/cnmaestro"
	"github.com/netwave-ai/netwave/internal/config"
	"github.com/netwave-ai/netwave/internal/history"
	"github.com/netwave-ai/netwave/internal/llm"
	"github.com/netwave-ai/netwave/internal/mapgen"
	"github.com/netwave-ai/netwave/internal/planner"
	"github.com/netwave-ai/netwave/internal/schema"
	"github.com/netwave-ai/netwave/internal/session"
	"github.com/netwave-ai/netwave/internal/tools"
	"github.com/netwave-ai/netwave/internal/weather"
)

//go:embed prompt.txt
var defaultSystemPrompt string

func chatCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	conversation, err := buildConversation(cfg)
	if err != nil {
		return err
	}

	return chatLoop(cmd.Context(), conversation)
}

// buildConversation assembles the full stack: model client, token estimator,
// history compressor, the domain API clients and the tool registry, checked
// against the tool schema before the first prompt.
func buildConversation(cfg config.Config) (*agent.Conversation, error) {
	llmClient, err := llm.New(llm.Config{
		APIKey:       strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Model:        cfg.LLM.Model,
		SummaryModel: cfg.LLM.SummaryModel,
	})
	if err != nil {
		return nil, err
	}

	maestro := cnmaestro.NewClient(cnmaestro.Config{
		Host:         cfg.Maestro.Host,
		ClientID:     cfg.Maestro.ClientID,
		ClientSecret: cfg.Maestro.ClientSecret,
	})

	state := session.NewState(tools.MaestroInventory{Maestro: maestro})

	dispatcher := tools.NewRegistry(tools.Deps{
		Maestro: maestro,
		Weather: weather.NewClient("", nil),
		Planner: planner.NewClient(cfg.Planner.URL, cfg.Planner.Secret, nil, maestro),
		Maps:    &mapgen.Generator{OutputDir: cfg.Maps.Dir, BaseURL: cfg.Maps.BaseURL, Maestro: maestro},
		State:   state,
		UTCNow:  weather.CurrentUTCTime,
	})

	toolDefs, err := schema.Load()
	if err != nil {
		return nil, err
	}
	if err := schema.VerifyCoverage(toolDefs, dispatcher.Names()); err != nil {
		return nil, err
	}

	compressor := &history.Compressor{
		Estimator:        history.NewEstimator(cfg.LLM.Model),
		Summarizer:       llmClient,
		MaxPromptTokens:  cfg.History.MaxPromptTokens,
		RecentTurns:      cfg.History.RecentTurns,
		SummaryMaxTokens: cfg.History.SummaryMaxTokens,
	}

	systemPrompt, err := loadSystemPrompt(cfg.SystemPromptPath)
	if err != nil {
		return nil, err
	}

	conversation := agent.New(systemPrompt, llmClient, dispatcher, compressor, toolDefs)
	conversation.Notify = func(text string) {
		fmt.Println(styleThought.Render(text))
	}
	return conversation, nil
}

func loadSystemPrompt(path string) (string, error) {
	if path == "" {
		return defaultSystemPrompt, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("load system prompt: %w", err)
	}
	return string(data), nil
}

func chatLoop(ctx context.Context, conversation *agent.Conversation) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println(styleBanner.Render("cnWave Network Analyst") + styleDim.Render("  type 'exit' to quit"))

	for {
		input, err := line.Prompt(stylePrompt.Render("you> "))
		if err != nil {
			// Ctrl-C or EOF ends the session like an explicit exit.
			printUsage(conversation)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if lowered := strings.ToLower(input); lowered == "exit" || lowered == "quit" {
			printUsage(conversation)
			return nil
		}

		answer, err := conversation.ProcessTurn(ctx, input)
		if err != nil {
			fmt.Println(styledError("turn failed", err.Error()))
			continue
		}
		if answer == "" {
			fmt.Println(styleDim.Render("(no answer)"))
			continue
		}

		fmt.Println(renderAnswer(answer))
	}
}

func printUsage(conversation *agent.Conversation) {
	usage := conversation.Usage()
	fmt.Println(styleDim.Render(fmt.Sprintf("input tokens used:  %d", usage.PromptTokens)))
	fmt.Println(styleDim.Render(fmt.Sprintf("output tokens used: %d", usage.CompletionTokens)))
}
