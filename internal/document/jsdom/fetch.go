//go:build js && wasm

package jsdom

import (
	"context"
	"fmt"
	"strings"
	"syscall/js"

	"github.com/zjrosen/mirrorkit/internal/bundle"
)

// FetchSource loads payloads over HTTP with the browser's fetch API.
// It must not be called from the JS event loop goroutine.
type FetchSource struct {
	BaseURL string
}

// Compile-time check that FetchSource implements bundle.Source.
var _ bundle.Source = (*FetchSource)(nil)

type fetchResult struct {
	text string
	err  error
}

// Payload fetches BaseURL/key.
func (s *FetchSource) Payload(ctx context.Context, key string) (string, error) {
	cleaned, err := bundle.CleanKey(key)
	if err != nil {
		return "", err
	}
	url := strings.TrimSuffix(s.BaseURL, "/") + "/" + cleaned

	done := make(chan fetchResult, 1)
	var onText, onResponse, onError js.Func
	release := func() {
		onText.Release()
		onResponse.Release()
		onError.Release()
	}

	onError = js.FuncOf(func(_ js.Value, args []js.Value) any {
		msg := "fetch failed"
		if len(args) > 0 {
			msg = args[0].Call("toString").String()
		}
		done <- fetchResult{err: fmt.Errorf("fetching %s: %s", url, msg)}
		return nil
	})
	onText = js.FuncOf(func(_ js.Value, args []js.Value) any {
		done <- fetchResult{text: args[0].String()}
		return nil
	})
	onResponse = js.FuncOf(func(_ js.Value, args []js.Value) any {
		resp := args[0]
		if status := resp.Get("status").Int(); status == 404 {
			done <- fetchResult{err: fmt.Errorf("%w: %s", bundle.ErrNotFound, cleaned)}
			return nil
		} else if !resp.Get("ok").Bool() {
			done <- fetchResult{err: fmt.Errorf("fetching %s: status %d", url, status)}
			return nil
		}
		resp.Call("text").Call("then", onText, onError)
		return nil
	})

	js.Global().Call("fetch", url).Call("then", onResponse, onError)

	select {
	case r := <-done:
		// The remaining callbacks can no longer fire once a result is in.
		release()
		return r.text, r.err
	case <-ctx.Done():
		// Callbacks may still fire; done is buffered so they never block.
		return "", ctx.Err()
	}
}
