package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockLogPDF is a mock implementation of core.LogPDF.
type MockLogPDF struct {
	mock.Mock
}

func (m *MockLogPDF) Dim() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockLogPDF) Evaluate(ctx context.Context, x []float64) (float64, error) {
	args := m.Called(ctx, x)
	return args.Get(0).(float64), args.Error(1)
}
