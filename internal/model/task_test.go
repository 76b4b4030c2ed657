package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylepost/stylepost/internal/model"
)

func TestTaskValidate(t *testing.T) {
	validTask := func() model.Task {
		return model.Task{
			ID:          "01HRW9YZTEST000000000000",
			Status:      model.TaskStatusPending,
			TotalItems:  3,
			RecordsPath: "/data/records.csv",
			ImagesDir:   "/data/images",
			CreatedAt:   time.Now().UTC(),
		}
	}

	tests := map[string]struct {
		task   func() model.Task
		expErr bool
	}{
		"Valid task": {
			task:   validTask,
			expErr: false,
		},
		"Missing ID returns error": {
			task: func() model.Task {
				tk := validTask()
				tk.ID = ""
				return tk
			},
			expErr: true,
		},
		"Missing records path returns error": {
			task: func() model.Task {
				tk := validTask()
				tk.RecordsPath = ""
				return tk
			},
			expErr: true,
		},
		"Missing images dir returns error": {
			task: func() model.Task {
				tk := validTask()
				tk.ImagesDir = ""
				return tk
			},
			expErr: true,
		},
		"Completed items above total returns error": {
			task: func() model.Task {
				tk := validTask()
				tk.CompletedItems = 5
				return tk
			},
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			task := tt.task()
			err := task.Validate()

			if tt.expErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrNotValid)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestTaskStatusTerminal(t *testing.T) {
	tests := map[string]struct {
		status      model.TaskStatus
		expTerminal bool
	}{
		"Pending is not terminal":     {status: model.TaskStatusPending, expTerminal: false},
		"Processing is not terminal":  {status: model.TaskStatusProcessing, expTerminal: false},
		"Succeeded is terminal":       {status: model.TaskStatusSucceeded, expTerminal: true},
		"Failed is terminal":          {status: model.TaskStatusFailed, expTerminal: true},
		"Interrupted is not terminal": {status: model.TaskStatusInterrupted, expTerminal: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expTerminal, tt.status.Terminal())
		})
	}
}

func TestItemStatusDone(t *testing.T) {
	tests := map[string]struct {
		status  model.ItemStatus
		expDone bool
	}{
		"Pending is not done":    {status: model.ItemStatusPending, expDone: false},
		"Processing is not done": {status: model.ItemStatusProcessing, expDone: false},
		"Succeeded is done":      {status: model.ItemStatusSucceeded, expDone: true},
		"Failed is not done":     {status: model.ItemStatusFailed, expDone: false},
		"Skipped is done":        {status: model.ItemStatusSkipped, expDone: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expDone, tt.status.Done())
		})
	}
}

func TestCountSucceededAndAllDone(t *testing.T) {
	tests := map[string]struct {
		items        []model.Item
		expSucceeded int
		expAllDone   bool
	}{
		"No items": {
			items:        nil,
			expSucceeded: 0,
			expAllDone:   true,
		},
		"All succeeded": {
			items: []model.Item{
				{Index: 0, Status: model.ItemStatusSucceeded},
				{Index: 1, Status: model.ItemStatusSucceeded},
			},
			expSucceeded: 2,
			expAllDone:   true,
		},
		"Skipped items are done but not counted as succeeded": {
			items: []model.Item{
				{Index: 0, Status: model.ItemStatusSucceeded},
				{Index: 1, Status: model.ItemStatusSkipped},
			},
			expSucceeded: 1,
			expAllDone:   true,
		},
		"Failed item blocks all done": {
			items: []model.Item{
				{Index: 0, Status: model.ItemStatusSucceeded},
				{Index: 1, Status: model.ItemStatusFailed},
			},
			expSucceeded: 1,
			expAllDone:   false,
		},
		"Pending item blocks all done": {
			items: []model.Item{
				{Index: 0, Status: model.ItemStatusPending},
			},
			expSucceeded: 0,
			expAllDone:   false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expSucceeded, model.CountSucceeded(tt.items))
			assert.Equal(t, tt.expAllDone, model.AllDone(tt.items))
		})
	}
}
