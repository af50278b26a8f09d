package session

import (
	"context"

	"github.com/stretchr/testify/mock"

	"assessment-games-go/internal/game"
)

// MockSplitter is a mock implementation of Splitter
type MockSplitter struct {
	mock.Mock
}

func (m *MockSplitter) Split(ctx context.Context, imageURL string, rows, cols int) ([]game.PuzzlePiece, error) {
	args := m.Called(ctx, imageURL, rows, cols)
	pieces, _ := args.Get(0).([]game.PuzzlePiece)
	return pieces, args.Error(1)
}

// MockSink records completion calls
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Complete(ctx context.Context, o Outcome) error {
	return m.Called(ctx, o).Error(0)
}
