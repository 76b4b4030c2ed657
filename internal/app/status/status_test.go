package status_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stylepost/stylepost/internal/app/status"
	"github.com/stylepost/stylepost/internal/model"
	"github.com/stylepost/stylepost/internal/storage/storagemock"
)

func TestServiceStatus(t *testing.T) {
	tests := map[string]struct {
		taskID     string
		setupMocks func(repo *storagemock.MockRepository)
		expErr     bool
		validate   func(t *testing.T, st *status.TaskStatus)
	}{
		"Task with items": {
			taskID: "task1",
			setupMocks: func(repo *storagemock.MockRepository) {
				repo.On("GetTask", mock.Anything, "task1").
					Return(&model.Task{ID: "task1", Status: model.TaskStatusProcessing, TotalItems: 2, CompletedItems: 1}, nil)
				repo.On("ListItems", mock.Anything, "task1").
					Return([]model.Item{
						{TaskID: "task1", Index: 0, Status: model.ItemStatusSucceeded},
						{TaskID: "task1", Index: 1, Status: model.ItemStatusPending},
					}, nil)
			},
			validate: func(t *testing.T, st *status.TaskStatus) {
				assert.Equal(t, "task1", st.Task.ID)
				assert.Len(t, st.Items, 2)
				assert.Equal(t, model.ItemStatusSucceeded, st.Items[0].Status)
			},
		},
		"Task without items": {
			taskID: "task1",
			setupMocks: func(repo *storagemock.MockRepository) {
				repo.On("GetTask", mock.Anything, "task1").
					Return(&model.Task{ID: "task1", Status: model.TaskStatusPending}, nil)
				repo.On("ListItems", mock.Anything, "task1").
					Return([]model.Item{}, nil)
			},
			validate: func(t *testing.T, st *status.TaskStatus) {
				assert.Empty(t, st.Items)
			},
		},
		"Unknown task returns error": {
			taskID: "missing",
			setupMocks: func(repo *storagemock.MockRepository) {
				repo.On("GetTask", mock.Anything, "missing").
					Return((*model.Task)(nil), model.ErrNotFound)
			},
			expErr: true,
		},
		"Empty task id returns error": {
			taskID:     "",
			setupMocks: func(repo *storagemock.MockRepository) {},
			expErr:     true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			repo := &storagemock.MockRepository{}
			tt.setupMocks(repo)

			svc, err := status.NewService(status.ServiceConfig{Repository: repo})
			require.NoError(t, err)

			st, err := svc.Status(context.TODO(), tt.taskID)

			if tt.expErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				tt.validate(t, st)
			}

			repo.AssertExpectations(t)
		})
	}
}
