package factory

import (
	"context"
	"time"

	"github.com/mcoot/quickchess/internal/dependencies/mocks"
	"github.com/mcoot/quickchess/internal/services/matchmaker"
	"github.com/mcoot/quickchess/internal/services/registry"
	"github.com/mcoot/quickchess/internal/storage/memory"
	"github.com/mcoot/quickchess/internal/testutil"
)

// testMatchTimeout keeps matchmaker timeouts short in tests
const testMatchTimeout = 100 * time.Millisecond

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app, err := newWithDependencies(
		context.Background(),
		store,
		mockClock,
		mockRandom,
		registry.DefaultConfig(),
		matchmaker.Config{RequestTimeout: testMatchTimeout},
		testutil.NopLogger(),
	)
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
