package log

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	got := format(now, LevelWarn, CatInject, "resource skipped", []any{"key", "dialog.js", "orphan"})

	require.Equal(t, "2026-01-02T03:04:05 [WARN] [inject] resource skipped key=dialog.js orphan=<missing>\n", got)
}

func TestInitWriter_LevelsAndToggle(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(func() { defaultLogger = nil })

	SetMinLevel(LevelInfo)
	Debug(CatCatalog, "hidden")
	Info(CatCatalog, "loaded", "features", 3)
	ErrorErr(CatDB, "open failed", errors.New("boom"))
	ErrorErr(CatDB, "nil error", nil)

	SetEnabled(false)
	Error(CatDB, "also hidden")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "[INFO] [catalog] loaded features=3")
	require.Contains(t, out, "[ERROR] [db] open failed error=boom")
	require.Contains(t, out, "error=<nil>")
}

func TestSubscribe(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(func() { defaultLogger = nil })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := Subscribe(ctx)
	require.NotNil(t, ch)

	Info(CatHTTP, "request", "path", "/")

	select {
	case ev := <-ch:
		require.Contains(t, ev.Payload, "[http] request path=/")
	case <-time.After(time.Second):
		require.Fail(t, "no log event")
	}
}

func TestSubscribe_NotInitialized(t *testing.T) {
	defaultLogger = nil
	require.Nil(t, Subscribe(context.Background()))
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	require.Equal(t, LevelDebug, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	require.Equal(t, LevelInfo, lvl)

	_, err = ParseLevel("loud")
	require.Error(t, err)
}
