package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/tvme/intro-LangGraph/internal/config"
	"github.com/tvme/intro-LangGraph/internal/lessons"
	"github.com/tvme/intro-LangGraph/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	envFile  string
	logLevel string
	backend  string
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "academy",
		Short:         "LangGraph introduction lessons",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before the environment")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug|info|warn|error|none (overrides LOG_LEVEL)")
	root.PersistentFlags().StringVar(&flags.backend, "checkpoints", "", "postgres|redis|sqlite|memory (overrides CHECKPOINT_BACKEND)")

	root.AddCommand(
		lessonCmd(&flags, "basics", "Chat with gpt-4o and search the web", true, lessons.RunBasics),
		lessonCmd(&flags, "simple-graph", "Run the branching mood graph", false, lessons.RunSimpleGraph),
		lessonCmd(&flags, "chain", "Bind the multiply tool and run a one-node chain", true, lessons.RunChain),
		lessonCmd(&flags, "agent", "Run the arithmetic agent", true, lessons.RunAgent),
		lessonCmd(&flags, "agent-memory", "Run the arithmetic agent on a persisted thread", true, lessons.RunAgentMemory),
		newTrimCmd(&flags),
		lessonCmd(&flags, "schemas", "Run a graph with input and output schemas", false, lessons.RunSchemas),
		newSummaryBotCmd(&flags),
		newDrawCmd(),
	)
	return root
}

type lessonFunc func(ctx context.Context, env *lessons.Env) error

// setup loads configuration and the logger and builds the lesson
// environment. The returned func flushes traces and closes the log file.
func setup(cmd *cobra.Command, flags *globalFlags, needsModel bool) (*lessons.Env, func(), error) {
	cfg, err := config.Load(flags.envFile)
	if err != nil {
		return nil, nil, err
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.backend != "" {
		cfg.CheckpointBackend = flags.backend
	}
	if needsModel {
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger := log.New(log.Options{Level: level, File: cfg.LogFile, Output: cmd.ErrOrStderr()})
	log.SetDefault(logger)

	env, err := lessons.NewEnv(cfg, logger)
	if err != nil {
		_ = logger.Close()
		return nil, nil, err
	}
	env.Out = cmd.OutOrStdout()
	env.In = cmd.InOrStdin()

	cleanup := func() {
		if err := env.Close(context.WithoutCancel(cmd.Context())); err != nil {
			logger.Warn("flush traces: %v", err)
		}
		_ = logger.Close()
	}
	return env, cleanup, nil
}

func lessonCmd(flags *globalFlags, use, short string, needsModel bool, run lessonFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, cleanup, err := setup(cmd, flags, needsModel)
			if err != nil {
				return err
			}
			defer cleanup()
			return run(cmd.Context(), env)
		},
	}
}

func newTrimCmd(flags *globalFlags) *cobra.Command {
	var filter bool
	cmd := lessonCmd(flags, "trim", "Trim the conversation to the last 100 tokens", true,
		func(ctx context.Context, env *lessons.Env) error {
			return lessons.RunTrim(ctx, env, filter)
		})
	cmd.Flags().BoolVar(&filter, "filter", false, "remove all but the two most recent messages first")
	return cmd
}

func newSummaryBotCmd(flags *globalFlags) *cobra.Command {
	var transcript, diagramDir string
	cmd := lessonCmd(flags, "summary-bot", "Chat with a bot that summarizes long conversations", true,
		func(ctx context.Context, env *lessons.Env) error {
			env.TranscriptPath = transcript
			env.DiagramDir = diagramDir
			return lessons.RunSummaryBot(ctx, env)
		})
	cmd.Flags().StringVar(&transcript, "transcript", "", "write the final conversation as HTML to this file")
	cmd.Flags().StringVar(&diagramDir, "diagram-dir", ".", "directory for the graph diagram")
	return cmd
}
