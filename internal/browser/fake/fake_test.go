package fake_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylepost/stylepost/internal/browser/fake"
	"github.com/stylepost/stylepost/internal/model"
)

func TestDriverSessionLifecycle(t *testing.T) {
	driver, err := fake.NewDriver(fake.DriverConfig{})
	require.NoError(t, err)

	ctx := context.TODO()

	assert.False(t, driver.Opened())
	require.NoError(t, driver.Open(ctx))
	assert.True(t, driver.Opened())

	require.NoError(t, driver.Close(ctx))
	assert.True(t, driver.Closed())
}

func TestDriverScriptedFailures(t *testing.T) {
	driver, err := fake.NewDriver(fake.DriverConfig{})
	require.NoError(t, err)

	ctx := context.TODO()
	expErr := errors.New("element gone")
	driver.FailOn("click-and-settle", "#register", expErr)

	assert.ErrorIs(t, driver.ClickAndSettle(ctx, "#register"), expErr)
	assert.NoError(t, driver.ClickAndSettle(ctx, "#other"))
}

func TestDriverScriptedState(t *testing.T) {
	driver, err := fake.NewDriver(fake.DriverConfig{})
	require.NoError(t, err)

	ctx := context.TODO()

	driver.SetCount("table.salons tbody tr", 2)
	driver.SetText("登録が完了しました", false)
	driver.SetCellText("tbody tr", 1, "td:nth-child(1)", "H000111")

	n, err := driver.Count(ctx, "table.salons tbody tr")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	err = driver.WaitForText(ctx, "登録が完了しました", 0)
	assert.ErrorIs(t, err, model.ErrElementNotFound)

	text, err := driver.NthCellText(ctx, "tbody tr", 1, "td:nth-child(1)")
	require.NoError(t, err)
	assert.Equal(t, "H000111", text)

	_, err = driver.NthCellText(ctx, "tbody tr", 5, "td:nth-child(1)")
	assert.ErrorIs(t, err, model.ErrElementNotFound)
}

func TestDriverRecordsCalls(t *testing.T) {
	driver, err := fake.NewDriver(fake.DriverConfig{})
	require.NoError(t, err)

	ctx := context.TODO()

	require.NoError(t, driver.Fill(ctx, "#loginId", "user"))
	require.NoError(t, driver.Click(ctx, "#submit"))
	_ = driver.Screenshot(ctx, "task-item-0")

	assert.Equal(t, []string{
		"fill:#loginId",
		"click:#submit",
		"screenshot:task-item-0",
	}, driver.Calls())
}
