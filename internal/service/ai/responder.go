package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/personifai/backend/internal/config"
	"github.com/personifai/backend/internal/model/character"
	"github.com/personifai/backend/internal/respond"
)

const responseTimeout = 10 * time.Second

// Service generates in-character replies with a chat model. When the
// model fails or times out it falls back to the canned selector, so a
// session never goes unanswered.
type Service struct {
	chain    compose.Runnable[map[string]any, *schema.Message]
	fallback *respond.Selector
}

// NewService compiles the prompt-plus-model chain. Call it only when
// model credentials are configured.
func NewService(ctx context.Context, cfg config.AIConfig, fallback *respond.Selector) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile chat chain: %w", err)
	}

	return &Service{chain: runnable, fallback: fallback}, nil
}

// Respond produces one reply for a finalized transcript.
func (s *Service) Respond(ctx context.Context, transcript string, c character.Character) string {
	ctx, cancel := context.WithTimeout(ctx, responseTimeout)
	defer cancel()

	out, err := s.chain.Invoke(ctx, map[string]any{
		"system": systemPrompt(c),
		"query":  transcript,
	})
	if err != nil {
		log.Printf("[ai] model call failed for character=%s: %v", c.ID, err)
		return s.fallback.Select(transcript, c)
	}

	reply := strings.TrimSpace(out.Content)
	if reply == "" {
		log.Printf("[ai] model returned empty reply for character=%s", c.ID)
		return s.fallback.Select(transcript, c)
	}
	return reply
}
