// Command seedagents installs or refreshes the default prompt-enhancement
// agents. Safe to rerun; existing agents are updated by name.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

type seedAgent struct {
	Name         string
	Type         string
	SystemPrompt string
	Config       map[string]any
}

var defaultAgents = []seedAgent{
	{
		Name: "Image Stylist",
		Type: domain.ContentTypeImage,
		SystemPrompt: "You are an expert prompt engineer for image generation models. " +
			"Rewrite the user's prompt into a single richly detailed prompt. " +
			"Add concrete visual details: composition, lighting, color palette, texture and mood. " +
			"Keep the subject and intent of the original prompt. Reply with the rewritten prompt only.",
		Config: map[string]any{"temperature": 0.7, "max_tokens": 300},
	},
	{
		Name: "Cinematic Director",
		Type: domain.ContentTypeVideo,
		SystemPrompt: "You are a film director writing prompts for video generation models. " +
			"Rewrite the user's prompt as one continuous shot description: camera movement, " +
			"framing, lighting, pacing and atmosphere. Keep the subject of the original prompt. " +
			"Reply with the rewritten prompt only.",
		Config: map[string]any{"temperature": 0.8, "max_tokens": 300},
	},
	{
		Name: "Sound Designer",
		Type: domain.ContentTypeAudio,
		SystemPrompt: "You are a composer writing prompts for music and audio generation models. " +
			"Rewrite the user's prompt with genre, instrumentation, tempo, dynamics and mood. " +
			"Keep the intent of the original prompt. Reply with the rewritten prompt only.",
		Config: map[string]any{"temperature": 0.8, "max_tokens": 300},
	},
}

func main() {
	model := flag.String("model", "gpt-4o", "completion model assigned to the seeded agents")
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout")
	flag.Parse()

	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Fprintln(os.Stderr, "seedagents: DATABASE_URL is required")
		os.Exit(1)
	}

	logger := infra.NewLogger(os.Getenv("APP_ENV"))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := infra.NewDBPool(ctx, &infra.Config{DatabaseURL: databaseURL})
	if err != nil {
		logger.Fatal().Err(err).Msg("seedagents: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	for _, a := range defaultAgents {
		cfg, err := json.Marshal(a.Config)
		if err != nil {
			logger.Fatal().Err(err).Str("agent", a.Name).Msg("seedagents: config encode failed")
		}
		var id string
		err = runner.QueryRow(ctx, sqlinline.QUpsertAgent, a.Name, a.Type, a.SystemPrompt, *model, cfg).Scan(&id)
		if err != nil {
			logger.Fatal().Err(err).Str("agent", a.Name).Msg("seedagents: upsert failed")
		}
		logger.Info().Str("agent", a.Name).Str("type", a.Type).Str("id", id).Msg("agent seeded")
	}
}
