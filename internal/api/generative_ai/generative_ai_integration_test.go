//go:build integration

package generativeAI

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-day-planner/config"
	"github.com/FACorreiaa/go-trip-day-planner/internal/types"
)

func integrationClient(t *testing.T) *AIClient {
	t.Helper()
	key := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if key == "" {
		t.Skip("Skipping integration test: GOOGLE_GEMINI_API_KEY not set")
	}
	client, err := NewAIClient(context.Background(), config.LLMConfig{APIKey: key, Temperature: 0.2},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return client
}

func TestChatOnce_Integration(t *testing.T) {
	client := integrationClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	reply, err := client.ChatOnce(ctx, "Answer with one bolded place name only.",
		[]types.ChatMessage{{Role: types.RoleUser, Content: "I am going to Paris."}, {Role: types.RoleAssistant, Content: "Great!"}},
		"Name the most famous museum there.")
	require.NoError(t, err)
	assert.Contains(t, reply, "Louvre")
}

func TestGenerateJSON_Integration(t *testing.T) {
	client := integrationClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	out, err := client.GenerateJSON(ctx, `Return {"places": ["Colosseum, Rome"]} exactly.`)
	require.NoError(t, err)
	assert.Contains(t, out, "Colosseum")
}
