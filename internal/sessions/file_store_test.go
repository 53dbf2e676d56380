package sessions

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/haasonsaas/nexus/pkg/models"
	"github.com/stretchr/testify/require"
)

func TestFileStore_CreateLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	sess, err := store.Create(ctx, "sess-1", "/work/dir")
	require.NoError(t, err)
	require.Equal(t, "sess-1", sess.ID)

	msg := &models.Message{
		ID:   "m1",
		Role: models.RoleUser,
		Blocks: []models.Block{
			models.NewTextBlock("hello"),
		},
	}
	require.NoError(t, store.AppendMessage(ctx, "sess-1", msg))
	require.NoError(t, store.AppendUsage(ctx, "sess-1", models.Usage{
		PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15,
		OperationType: models.OperationAgent,
	}))

	loaded, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, "/work/dir", loaded.Metadata.Workdir)
	require.Len(t, loaded.Messages, 1)
	require.Equal(t, "hello", loaded.Messages[0].Text())
	require.Len(t, loaded.Usages, 1)
	require.Equal(t, int64(15), loaded.Usages[0].TotalTokens)
}

func TestFileStore_LoadMissingSession(t *testing.T) {
	store := NewFileStore(t.TempDir())
	_, err := store.Load(context.Background(), "does-not-exist")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestFileStore_RepairsDanglingToolBlockOnLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileStore(dir)

	_, err := store.Create(ctx, "sess-2", "/work/dir")
	require.NoError(t, err)

	dangling := &models.Message{
		ID:   "m1",
		Role: models.RoleAssistant,
		Blocks: []models.Block{
			models.NewToolBlockStart("call-1", "Bash"),
		},
	}
	require.NoError(t, store.AppendMessage(ctx, "sess-2", dangling))

	loaded, err := store.Load(ctx, "sess-2")
	require.NoError(t, err)
	require.Len(t, loaded.Messages, 1)
	block := loaded.Messages[0].Blocks[0]
	require.Equal(t, models.ToolStageEnd, block.Stage)
	require.NotNil(t, block.Success)
	require.False(t, *block.Success)
	require.NotEmpty(t, block.Error)
}

func TestFileStore_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileStore(dir)

	_, err := store.Create(ctx, "a", "/wd")
	require.NoError(t, err)
	_, err = store.Create(ctx, "b", "/wd")
	require.NoError(t, err)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, ids)

	require.NoError(t, store.Delete(ctx, "a"))
	ids, err = store.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, ids)
}

func TestDefaultSessionRoot_SanitizesWorkdir(t *testing.T) {
	root, err := DefaultSessionRoot("/tmp/some project")
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(root))
	require.Contains(t, root, ".wave")
	require.Contains(t, root, "sessions")
}
