package activity_test

import (
	"context"
	"testing"

	"github.com/avasiliu/plantops/internal/domain/activity"
	"github.com/avasiliu/plantops/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestActivityService_LogStampsTime(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ActivityRepository{}
	repo.On("Log", ctx, mock.Anything).Return(nil)

	svc := activity.NewService(repo, nil)
	entry := &activity.Entry{Type: activity.TypeOrderPlaced, Summary: "order OP-0001 placed"}
	require.NoError(t, svc.Log(ctx, entry))
	require.False(t, entry.CreatedAt.IsZero())
}

func TestActivityService_LogNilEntry(t *testing.T) {
	svc := activity.NewService(&mocks.ActivityRepository{}, nil)
	require.ErrorIs(t, svc.Log(context.Background(), nil), activity.ErrInvalidInput)
}
