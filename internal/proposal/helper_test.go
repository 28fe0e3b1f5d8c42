package proposal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/scout-cli/api/schemas"
	"github.com/xkilldash9x/scout-cli/internal/agent"
)

// MockLLMClient is a testify mock of schemas.LLMClient.
type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) Generate(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockLLMClient) Close() error {
	return m.Called().Error(0)
}

func newObservedLogger(t *testing.T) (*zap.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func record(kind agent.ActionKind, target string) agent.ActionRecord {
	return agent.ActionRecord{
		ChosenAction: agent.ChosenAction{Action: kind, Target: target},
		Success:      true,
		ExecutedAt:   time.Date(2025, 10, 26, 10, 0, 0, 0, time.UTC),
	}
}

func formatted(cs []agent.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = agent.FormatCandidate(c)
	}
	return out
}

const docsSummary = "URL: https://docs.python.org/3/\nTitle: 3.14 Documentation\n\n" +
	"Visible Links: Download, Library Reference, Tutorial, What's New\n"
