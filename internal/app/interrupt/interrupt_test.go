package interrupt_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stylepost/stylepost/internal/app/interrupt"
	"github.com/stylepost/stylepost/internal/model"
	"github.com/stylepost/stylepost/internal/storage/storagemock"
)

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		cfg    interrupt.ServiceConfig
		expErr bool
	}{
		"Valid config": {
			cfg: interrupt.ServiceConfig{Repository: &storagemock.MockRepository{}},
		},
		"Missing repository returns error": {
			cfg:    interrupt.ServiceConfig{},
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			svc, err := interrupt.NewService(tt.cfg)

			if tt.expErr {
				require.Error(t, err)
				assert.Nil(t, svc)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestServiceInterrupt(t *testing.T) {
	tests := map[string]struct {
		taskID     string
		setupMocks func(repo *storagemock.MockRepository)
		expErr     bool
		expStatus  model.TaskStatus
	}{
		"Processing task gets flagged": {
			taskID: "task1",
			setupMocks: func(repo *storagemock.MockRepository) {
				repo.On("GetTask", mock.Anything, "task1").
					Return(&model.Task{ID: "task1", Status: model.TaskStatusProcessing}, nil)
				repo.On("UpdateTask", mock.Anything, mock.MatchedBy(func(tk model.Task) bool {
					return tk.ID == "task1" && tk.Status == model.TaskStatusInterrupted
				})).Return(nil)
			},
			expStatus: model.TaskStatusInterrupted,
		},
		"Pending task gets flagged": {
			taskID: "task1",
			setupMocks: func(repo *storagemock.MockRepository) {
				repo.On("GetTask", mock.Anything, "task1").
					Return(&model.Task{ID: "task1", Status: model.TaskStatusPending}, nil)
				repo.On("UpdateTask", mock.Anything, mock.Anything).Return(nil)
			},
			expStatus: model.TaskStatusInterrupted,
		},
		"Already interrupted task is a no-op": {
			taskID: "task1",
			setupMocks: func(repo *storagemock.MockRepository) {
				repo.On("GetTask", mock.Anything, "task1").
					Return(&model.Task{ID: "task1", Status: model.TaskStatusInterrupted}, nil)
			},
			expStatus: model.TaskStatusInterrupted,
		},
		"Succeeded task cannot be interrupted": {
			taskID: "task1",
			setupMocks: func(repo *storagemock.MockRepository) {
				repo.On("GetTask", mock.Anything, "task1").
					Return(&model.Task{ID: "task1", Status: model.TaskStatusSucceeded}, nil)
			},
			expErr: true,
		},
		"Failed task cannot be interrupted": {
			taskID: "task1",
			setupMocks: func(repo *storagemock.MockRepository) {
				repo.On("GetTask", mock.Anything, "task1").
					Return(&model.Task{ID: "task1", Status: model.TaskStatusFailed}, nil)
			},
			expErr: true,
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

			svc, err := interrupt.NewService(interrupt.ServiceConfig{Repository: repo})
			require.NoError(t, err)

			task, err := svc.Interrupt(context.TODO(), tt.taskID)

			if tt.expErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expStatus, task.Status)
			}

			repo.AssertExpectations(t)
		})
	}
}
