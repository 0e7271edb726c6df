//go:build js && wasm

// Command mirrorkit-wasm activates catalog features in the hosting page.
//
// It defines a global mirrorkit object:
//
//	mirrorkit.activate("search", "vim").then(report => ...)
//
// Payloads are fetched relative to mirrorkit.baseURL (default
// "node_modules/codemirror"). Resources already in the page are skipped.
package main

import (
	"context"
	"fmt"
	"sync"
	"syscall/js"

	"github.com/zjrosen/mirrorkit/internal/catalog"
	"github.com/zjrosen/mirrorkit/internal/document/jsdom"
	"github.com/zjrosen/mirrorkit/internal/domain/feature"
)

const defaultBaseURL = "node_modules/codemirror"

type activator struct {
	defs []catalog.FeatureDef
	doc  *jsdom.Document
	api  js.Value

	mu  sync.Mutex // guards inj across overlapping activate calls
	inj *feature.Injector
}

func newActivator(api js.Value) (*activator, error) {
	defs, err := catalog.Load(catalog.DefaultFS())
	if err != nil {
		return nil, err
	}
	doc, err := jsdom.Current()
	if err != nil {
		return nil, err
	}
	inj := feature.NewInjector(doc, nil)
	for _, s := range doc.Resources() {
		if id, err := feature.ParseResourceID(s); err == nil {
			inj.Adopt(id)
		}
	}
	return &activator{defs: defs, doc: doc, inj: inj, api: api}, nil
}

func (a *activator) baseURL() string {
	if v := a.api.Get("baseURL"); v.Type() == js.TypeString && v.String() != "" {
		return v.String()
	}
	return defaultBaseURL
}

// activate builds only the requested features and their dependencies, so
// only their payloads are fetched. Each call gets a fresh registry; the new
// injector adopts everything placed so far.
func (a *activator) activate(ctx context.Context, names []string) (*feature.Activation, error) {
	defs, err := catalog.Select(a.defs, names...)
	if err != nil {
		return nil, err
	}
	reg := feature.NewRegistry()
	if err := catalog.Build(ctx, defs, &jsdom.FetchSource{BaseURL: a.baseURL()}, reg); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	inj := feature.NewInjector(a.doc, reg)
	inj.Adopt(a.inj.Injected()...)
	a.inj = inj
	return inj.ActivateNames(names...)
}

func report(act *feature.Activation) map[string]any {
	keys := func(rs []*feature.Resource) []any {
		out := make([]any, len(rs))
		for i, r := range rs {
			out[i] = r.Key()
		}
		return out
	}
	features := make([]any, len(act.Features))
	for i, f := range act.Features {
		features[i] = f.Name()
	}
	return map[string]any{
		"features": features,
		"injected": keys(act.Injected),
		"skipped":  keys(act.Skipped),
	}
}

// promise runs fn off the event loop and settles a JS Promise with its result.
func promise(fn func() (any, error)) js.Value {
	var executor js.Func
	executor = js.FuncOf(func(_ js.Value, args []js.Value) any {
		resolve, reject := args[0], args[1]
		go func() {
			defer executor.Release()
			v, err := fn()
			if err != nil {
				reject.Invoke(js.Global().Get("Error").New(err.Error()))
				return
			}
			resolve.Invoke(v)
		}()
		return nil
	})
	return js.Global().Get("Promise").New(executor)
}

func main() {
	api := js.Global().Get("Object").New()
	js.Global().Set("mirrorkit", api)

	a, err := newActivator(api)
	if err != nil {
		js.Global().Get("console").Call("error", fmt.Sprintf("mirrorkit: %v", err))
		return
	}

	api.Set("activate", js.FuncOf(func(_ js.Value, args []js.Value) any {
		names := make([]string, len(args))
		for i, arg := range args {
			names[i] = arg.String()
		}
		return promise(func() (any, error) {
			act, err := a.activate(context.Background(), names)
			if err != nil {
				return nil, err
			}
			return report(act), nil
		})
	}))
	api.Set("injected", js.FuncOf(func(js.Value, []js.Value) any {
		a.mu.Lock()
		ids := a.inj.Injected()
		a.mu.Unlock()
		out := make([]any, len(ids))
		for i, id := range ids {
			out[i] = id.String()
		}
		return out
	}))

	select {}
}
