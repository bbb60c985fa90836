// Command execution for CLI commands.
//
// Information Hiding:
// - Agent, browser and storage wiring hidden
// - Output formatting hidden

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rabbitlabs/rabbit/agent"
	"github.com/rabbitlabs/rabbit/browser"
	"github.com/rabbitlabs/rabbit/config"
	"github.com/rabbitlabs/rabbit/llm"
	"github.com/rabbitlabs/rabbit/memory"
	"github.com/rabbitlabs/rabbit/tools"
)

// Options holds CLI execution options.
type Options struct {
	Provider  string
	SessionID string
	StartURL  string
	DBPath    string
	Headless  bool
	KeepOpen  bool
	MaxIter   int
	Verbose   bool
}

// RunTask executes a single browser task with an agent.
func RunTask(ctx context.Context, task string, opts Options) error {
	settings, provider, err := createProvider(opts.Provider)
	if err != nil {
		return err
	}

	manager := llm.NewManager(provider).WithTimeout(settings.LLM.Timeout)

	registry := tools.NewRegistry()
	if err := tools.WithUtilities(registry); err != nil {
		return fmt.Errorf("failed to register utility tools: %w", err)
	}

	controller := browser.NewController().
		Headless(opts.Headless || settings.Browser.Headless).
		WithProfileDir(settings.Browser.ProfileDir)
	if err := controller.Start(ctx); err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		if opts.KeepOpen {
			fmt.Print("Press Enter to close the browser...")
			bufio.NewReader(os.Stdin).ReadString('\n')
		}
		controller.Stop()
	}()

	if err := browser.WithBrowserTools(registry, controller); err != nil {
		return fmt.Errorf("failed to register browser tools: %w", err)
	}

	if opts.StartURL != "" {
		fmt.Printf("Opening %s...\n", opts.StartURL)
		if err := controller.Navigate(ctx, opts.StartURL); err != nil {
			return fmt.Errorf("failed to open start page: %w", err)
		}
	}

	db, err := openDB(opts, settings)
	if err != nil {
		return err
	}
	defer db.Close()

	store := memory.NewStore(opts.SessionID).
		WithPersister(db).
		WithSummarizer(llm.NewSummarizer(manager))

	// A reused session continues its persisted step sequence.
	if opts.SessionID != "" {
		prior, err := db.LoadSteps(ctx, opts.SessionID)
		if err != nil {
			return fmt.Errorf("failed to load session history: %w", err)
		}
		if len(prior) > 0 {
			store = store.WithSteps(prior)
			fmt.Printf("Resuming session '%s' (%d steps)\n", opts.SessionID, len(prior))
		}
	}

	cfg := agent.Config{
		MaxIterations:   opts.MaxIter,
		PlanningRetries: settings.Agent.PlanningRetries,
		ContextSteps:    settings.Agent.ContextSteps,
		ToolTimeout:     settings.Agent.ToolTimeout,
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = settings.Agent.MaxIterations
	}

	a := agent.New(cfg, manager, registry, store)
	if opts.Verbose {
		a = a.Verbose(true)
	}

	fmt.Printf("Running task with %s (%s)...\n\n", provider.Name(), provider.Model())

	response := a.Run(ctx, task)

	status := "success"
	if !response.IsSuccess() {
		status = "failure"
	}
	if err := db.SaveTaskResult(ctx, store.SessionID(), task, response.ResultText(), status, len(response.Steps)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save task result: %v\n", err)
	}

	switch response.Type {
	case agent.ResponseSuccess:
		if opts.Verbose {
			printSteps(response.Steps)
		}
		fmt.Printf("%s\n\n", response.Result)
		printRunStats(response.Metadata, len(response.Steps))
		return nil
	case agent.ResponseFailure:
		if opts.Verbose {
			printSteps(response.Steps)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", response.Err)
		printRunStats(response.Metadata, len(response.Steps))
		return fmt.Errorf("task failed: %w", response.Err)
	default:
		return fmt.Errorf("unknown response type: %v", response.Type)
	}
}

// History prints recent task runs from the database, newest first.
func History(ctx context.Context, sessionID string, limit int, opts Options) error {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = os.Getenv("RABBIT_DB_PATH")
	}
	if dbPath == "" {
		dbPath = "rabbit.db"
	}

	db, err := memory.OpenSqlite(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	records, err := db.TaskHistory(ctx, sessionID, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No task history.")
		return nil
	}

	for _, r := range records {
		fmt.Printf("[%s] %s (%s, %d steps)\n", r.CreatedAt.Format(time.DateTime), r.Status, r.SessionID, r.StepCount)
		fmt.Printf("  Task:   %s\n", truncateString(r.Task, 120))
		fmt.Printf("  Result: %s\n\n", truncateString(r.Result, 240))
	}
	return nil
}

// ListTools lists all available tools. Browser tools are registered against
// an unstarted controller; registration does not need a live session.
func ListTools(verbose bool) error {
	registry := tools.NewRegistry()
	if err := tools.WithUtilities(registry); err != nil {
		return err
	}
	if err := browser.WithBrowserTools(registry, browser.NewController()); err != nil {
		return err
	}

	fmt.Println("Available tools:")
	fmt.Println()

	for _, meta := range registry.List() {
		fmt.Printf("  %s\n", meta.Name)
		fmt.Printf("    %s\n", meta.Description)

		if verbose && len(meta.Parameters) > 0 {
			fmt.Println("    Parameters:")
			for _, param := range meta.Parameters {
				req := ""
				if param.Required {
					req = "*"
				}
				fmt.Printf("      %s%s: %s - %s\n", param.Name, req, param.Type, param.Description)
			}
		}
		fmt.Println()
	}
	return nil
}

// Helper functions

func createProvider(providerName string) (config.Settings, llm.Provider, error) {
	if providerName == "" {
		return config.Settings{}, nil, fmt.Errorf("--provider is required for this command")
	}

	providerType, err := llm.ParseProviderType(providerName)
	if err != nil {
		return config.Settings{}, nil, err
	}

	settings, err := config.New(providerName)
	if err != nil {
		return config.Settings{}, nil, err
	}

	apiKey, err := config.APIKeyFor(providerName)
	if err != nil {
		return config.Settings{}, nil, err
	}

	provider, err := providerType.
		Model(settings.LLM.Model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		APIKey(apiKey)
	if err != nil {
		return config.Settings{}, nil, err
	}
	return settings, provider, nil
}

func openDB(opts Options, settings config.Settings) (*memory.SqliteStore, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = settings.Storage.DBPath
	}
	db, err := memory.OpenSqlite(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

const maxObservationLen = 400

func printSteps(steps []memory.Step) {
	fmt.Println("--- Steps ---")
	for _, step := range steps {
		fmt.Printf("[%d] %s\n", step.Seq, step.Thought)
		switch {
		case step.Final:
			fmt.Printf("    Final answer: %s\n", truncateString(step.Answer, maxObservationLen))
		case step.Failed():
			fmt.Printf("    Action: %s(%s)\n", step.Tool, step.Input)
			fmt.Printf("    Failed: %s\n", truncateString(step.Err, maxObservationLen))
		default:
			fmt.Printf("    Action: %s(%s)\n", step.Tool, step.Input)
			fmt.Printf("    Observation: %s\n", truncateString(step.Observation, maxObservationLen))
		}
		fmt.Println()
	}
	fmt.Println("-------------")
	fmt.Println()
}

func printRunStats(meta agent.Metadata, stepCount int) {
	fmt.Printf("(%d steps, %d LLM calls, %dms, session %s)\n",
		stepCount, meta.LLMCalls, meta.ExecutionTimeMs, meta.SessionID)
}

// truncateString truncates a string to maxLen runes, preserving UTF-8 boundaries.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
