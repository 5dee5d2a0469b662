package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"nano-agent/internal/app"
	"nano-agent/internal/tui"
)

const version = "0.1.0"

var (
	runMaxTurns int
	runYes      bool
	runMock     bool
	runOutput   string
	runCwd      string
	runConfig   string
	runsLimit   int
)

func main() {
	root := &cobra.Command{
		Use:     "nag",
		Short:   "nag - a shell-running task agent",
		Long:    "nag accomplishes a stated task by iteratively asking a language model for shell commands, confirming each one with you, executing it, and feeding the output back until the model submits a final result.",
		Version: version,
	}

	runCmd := &cobra.Command{
		Use:   "run [task]",
		Short: "Run the agent on a task",
		Long:  "Run the agent loop on a task.\n\nExamples:\n  - nag run \"print hello\"\n  - nag run --max-turns 5 --yes \"count the Go files here\"\n  - nag run --mock \"smoke test\"",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAgent,
	}
	runCmd.Flags().IntVarP(&runMaxTurns, "max-turns", "l", 0, "Maximum number of model turns (default from config)")
	runCmd.Flags().BoolVarP(&runYes, "yes", "y", false, "Auto-accept every command (no confirmation gate)")
	runCmd.Flags().BoolVarP(&runMock, "mock", "m", false, "Use a scripted model instead of the API")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Trajectory output path (default: trajectory dir/<run id>.json)")
	runCmd.Flags().StringVar(&runCwd, "cwd", "", "Working directory for commands (default: current directory)")
	runCmd.Flags().StringVar(&runConfig, "config", "", "Config file path (default: user config dir)")
	root.AddCommand(runCmd)

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		RunE:  listRuns,
	}
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Maximum number of runs to list")
	root.AddCommand(runsCmd)

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cfg.APIKey = redactKey(cfg.APIKey)
			fmt.Printf("config: %s\n\n", app.DefaultConfigPath())
			fmt.Printf("model:           %s\n", cfg.Model)
			fmt.Printf("base_url:        %s\n", cfg.BaseURL)
			fmt.Printf("api_key:         %s\n", cfg.APIKey)
			fmt.Printf("max_turns:       %d\n", cfg.MaxTurns)
			fmt.Printf("max_tokens:      %d\n", cfg.MaxTokens)
			fmt.Printf("auto_confirm:    %v\n", cfg.AutoConfirm)
			fmt.Printf("trajectory_dir:  %s\n", cfg.TrajectoryDir)
			return nil
		},
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.DefaultConfigPath()
			if path == "" {
				return fmt.Errorf("cannot resolve the user config dir")
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config already exists at %s", path)
			}
			if err := app.SaveConfig(app.DefaultConfig(), path); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	})
	root.AddCommand(configCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (app.Config, error) {
	path := runConfig
	if path == "" {
		path = app.DefaultConfigPath()
	}
	cfg, err := app.LoadConfig(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv("NAG_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("NAG_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("NAG_MODEL"); v != "" {
		cfg.Model = v
	}
	return cfg, nil
}

func runAgent(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runMaxTurns > 0 {
		cfg.MaxTurns = runMaxTurns
	}

	task := ""
	if len(args) > 0 {
		task = args[0]
	} else {
		fmt.Println("Enter your task (Ctrl+D when done):")
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("error reading input: %w", err)
		}
		task = strings.TrimSpace(string(data))
	}
	if task == "" {
		return fmt.Errorf("no task provided")
	}

	projectRoot := runCwd
	if projectRoot == "" {
		projectRoot, err = os.Getwd()
		if err != nil {
			return err
		}
	}

	if app.RunningAsRoot() {
		fmt.Fprintln(os.Stderr, "warning: running as root; confirmed commands execute with full privileges")
	}

	logger := app.NewLogger(app.DefaultLogWriter())

	var model app.Model
	if runMock {
		model = app.NewScriptedModel(app.MockTaskScript(task)...)
	} else {
		if cfg.APIKey == "" {
			return fmt.Errorf("NAG_API_KEY not set; set it in the environment or in %s", app.DefaultConfigPath())
		}
		model = app.NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.MaxTokens, app.Pricing{
			PromptPer1K:     cfg.PromptCostPer1K,
			CompletionPer1K: cfg.CompletionCostPer1K,
		})
	}

	env := app.NewLocalEnvironment(logger)
	env.OutputLimit = cfg.OutputLimitBytes
	if cfg.ExecTimeoutSec > 0 {
		env.Timeout = time.Duration(cfg.ExecTimeoutSec) * time.Second
	}

	var confirmer app.Confirmer = tui.Confirmer{}
	if runYes || cfg.AutoConfirm || !isatty.IsTerminal(os.Stdin.Fd()) {
		confirmer = app.AutoConfirmer{}
	}

	loop := app.NewAgentLoop(model, env, confirmer, logger, cfg.MaxTurns, projectRoot)

	index, err := app.NewRunIndex(cfg.TrajectoryDir)
	if err != nil {
		logger.Warn("run index unavailable", map[string]interface{}{"error": err.Error()})
		index = nil
	} else {
		defer index.Close()
	}
	recorder := app.NewTrajectoryRecorder(cfg.TrajectoryDir, logger, index)

	startedAt := time.Now().UTC()
	outcome := executeGuarded(ctx, loop, task, logger)

	trajectory := app.Trajectory{
		RunID:      uuid.NewString(),
		Task:       task,
		Messages:   loop.Messages(),
		ExitStatus: outcome.ExitStatus,
		Result:     outcome.Result,
		ExtraInfo:  outcome.ExtraInfo,
		Telemetry:  model.Telemetry(),
		StartedAt:  startedAt,
		EndedAt:    time.Now().UTC(),
	}
	path, persistErr := recorder.Persist(app.RedactTrajectory(trajectory, cfg.APIKey), runOutput)
	if persistErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write trajectory: %v\n", persistErr)
	}

	telemetry := model.Telemetry()
	fmt.Printf("\nExit status: %s\n", outcome.ExitStatus)
	if outcome.Result != "" {
		fmt.Printf("Result:\n%s\n", outcome.Result)
	}
	fmt.Printf("Model calls: %d  cost: $%.4f  model: %s\n", telemetry.CallsMade, telemetry.AccumulatedCost, telemetry.ModelIdentifier)
	if path != "" {
		fmt.Printf("Trajectory: %s\n", path)
	}

	if outcome.ExitStatus == app.StatusModelError || outcome.ExitStatus == app.StatusEnvironmentError {
		return fmt.Errorf("run failed: %s", outcome.Result)
	}
	return nil
}

// executeGuarded converts any panic escaping the loop into an outcome so the
// trajectory is written on every exit path.
func executeGuarded(ctx context.Context, loop *app.AgentLoop, task string, logger *app.Logger) (outcome app.RunOutcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("run panicked", map[string]interface{}{"panic": fmt.Sprint(r)})
			outcome = app.RunOutcome{
				ExitStatus: app.ExitStatus(fmt.Sprintf("%T", r)),
				Result:     fmt.Sprint(r),
				ExtraInfo:  map[string]interface{}{"stack": string(debug.Stack())},
			}
		}
	}()
	outcome, err := loop.Run(ctx, task)
	if err != nil {
		logger.Error("run failed", map[string]interface{}{"error": err.Error()})
	}
	return outcome
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	index, err := app.NewRunIndex(cfg.TrajectoryDir)
	if err != nil {
		return err
	}
	defer index.Close()

	runs, err := index.List(runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}
	for _, r := range runs {
		task := r.Task
		if len(task) > 60 {
			task = task[:57] + "..."
		}
		fmt.Printf("%s  %-18s  calls=%-3d  $%.4f  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.ExitStatus, r.CallsMade, r.Cost, task)
	}
	return nil
}

func redactKey(key string) string {
	if len(key) <= 8 {
		if key == "" {
			return "(unset)"
		}
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
