package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"budget/apperr"
	"budget/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCLI() (*cli, *bytes.Buffer) {
	var out bytes.Buffer
	svc := ledger.NewService(ledger.NewMemoryStore(), ledger.Options{StrictCategories: false})
	return &cli{svc: svc, owner: 1, out: &out}, &out
}

func TestCLI_Commands(t *testing.T) {
	c, out := newTestCLI()
	ctx := context.Background()

	require.NoError(t, c.run(ctx, []string{"income", "1000"}))
	require.NoError(t, c.run(ctx, []string{"add", "Gas", "40", "road", "trip"}))
	require.NoError(t, c.run(ctx, []string{"add", "Bills", "100.5"}))
	assert.Contains(t, out.String(), "已添加消费 #2: Bills - $100.50")

	out.Reset()
	require.NoError(t, c.run(ctx, []string{"list"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Bills")
	assert.Contains(t, lines[2], "(road trip)")

	require.NoError(t, c.run(ctx, []string{"edit", "1", "Fun", "60"}))
	require.NoError(t, c.run(ctx, []string{"delete", "2"}))

	out.Reset()
	require.NoError(t, c.run(ctx, []string{"summary"}))
	assert.Contains(t, out.String(), "总收入: $1000.00")
	assert.Contains(t, out.String(), "总支出: $60.00")
	assert.Contains(t, out.String(), "结余:   $940.00")

	out.Reset()
	require.NoError(t, c.run(ctx, []string{"reset-income"}))
	assert.Contains(t, out.String(), "已清空 1 条收入")
}

func TestCLI_Errors(t *testing.T) {
	c, _ := newTestCLI()
	ctx := context.Background()

	assert.Error(t, c.run(ctx, nil))
	assert.Error(t, c.run(ctx, []string{"fly"}))
	assert.Error(t, c.run(ctx, []string{"add", "Bills"}))
	assert.Error(t, c.run(ctx, []string{"delete", "x"}))
	assert.ErrorIs(t, c.run(ctx, []string{"add", "Bills", "-1"}), apperr.ErrValidation)
	assert.ErrorIs(t, c.run(ctx, []string{"delete", "9"}), apperr.ErrNotFound)
}

func TestCLI_Interactive(t *testing.T) {
	c, out := newTestCLI()
	input := strings.NewReader("1\nFood\n12.5\n2\n9\n3\n")

	require.NoError(t, c.interactive(context.Background(), input))
	s := out.String()
	assert.Contains(t, s, "已添加消费: Food - $12.50")
	assert.Contains(t, s, "Food: $12.50")
	assert.Contains(t, s, "无效选项")
	assert.Contains(t, s, "再见")
}

func TestCLI_InteractiveEOF(t *testing.T) {
	c, _ := newTestCLI()
	assert.NoError(t, c.interactive(context.Background(), strings.NewReader("")))
}
