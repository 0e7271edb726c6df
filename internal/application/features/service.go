package features

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/mirrorkit/internal/bundle"
	"github.com/zjrosen/mirrorkit/internal/catalog"
	"github.com/zjrosen/mirrorkit/internal/config"
	"github.com/zjrosen/mirrorkit/internal/domain/feature"
	"github.com/zjrosen/mirrorkit/internal/domain/option"
	"github.com/zjrosen/mirrorkit/internal/flags"
	"github.com/zjrosen/mirrorkit/internal/log"
	"github.com/zjrosen/mirrorkit/internal/pubsub"
	"github.com/zjrosen/mirrorkit/internal/tracing"
)

// ErrOptionFeature is returned under the strict-options flag when an editor
// option needs a feature the catalog does not define.
var ErrOptionFeature = errors.New("editor option needs an unregistered feature")

// ReloadEvent describes one Reload attempt.
type ReloadEvent struct {
	Features int
	Duration time.Duration
	Err      error // nil on success
}

// Options configures a Service.
type Options struct {
	// Base is the built-in catalog; nil uses catalog.DefaultFS().
	Base fs.FS
	// UserDir holds a catalog/ directory merged over Base when the
	// user-catalog flag is on.
	UserDir string
	// Source supplies resource payloads. Required.
	Source bundle.Source
	Flags  *flags.Registry
	// Tracer records activation and build spans; nil disables them.
	Tracer trace.Tracer
}

// invalidator is implemented by sources holding cached payloads.
type invalidator interface {
	Invalidate(ctx context.Context) error
}

// Service owns the current feature registry.
type Service struct {
	opts     Options
	tracer   trace.Tracer
	registry atomic.Pointer[feature.Registry]
	reloadMu sync.Mutex
	events   *pubsub.Broker[ReloadEvent]
}

// NewService builds the initial registry. Unlike Reload, a failure here is
// returned since there is no previous registry to fall back to.
func NewService(ctx context.Context, opts Options) (*Service, error) {
	if opts.Source == nil {
		return nil, errors.New("features: payload source is required")
	}
	if opts.Base == nil {
		opts.Base = catalog.DefaultFS()
	}
	s := &Service{
		opts:   opts,
		tracer: opts.Tracer,
		events: pubsub.NewBroker[ReloadEvent](),
	}
	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer("")
	}

	reg, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	s.registry.Store(reg)
	return s, nil
}

// definitions loads the built-in catalog and, when flagged, merges the user
// catalog over it.
func (s *Service) definitions() ([]catalog.FeatureDef, error) {
	defs, err := catalog.Load(s.opts.Base)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if !s.opts.Flags.Enabled(flags.FlagUserCatalog) || s.opts.UserDir == "" {
		return defs, nil
	}

	info, err := os.Stat(s.opts.UserDir)
	if err != nil || !info.IsDir() {
		log.Debug(log.CatCatalog, "No user catalog", "dir", s.opts.UserDir)
		return defs, nil
	}
	user, err := catalog.Load(os.DirFS(s.opts.UserDir))
	if err != nil {
		return nil, fmt.Errorf("load user catalog: %w", err)
	}
	log.Info(log.CatCatalog, "Merged user catalog", "dir", s.opts.UserDir, "features", len(user))
	return catalog.Merge(defs, user), nil
}

func (s *Service) build(ctx context.Context) (*feature.Registry, error) {
	ctx, span := s.tracer.Start(ctx, tracing.SpanCatalogBuild)
	defer span.End()

	defs, err := s.definitions()
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	reg := feature.NewRegistry()
	if err := catalog.Build(ctx, defs, s.opts.Source, reg); err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	span.SetAttributes(attribute.Int(tracing.AttrFeatureCount, reg.Len()))
	return reg, nil
}

// Registry returns the registry currently in use.
func (s *Service) Registry() *feature.Registry {
	return s.registry.Load()
}

// List returns every feature in registration order.
func (s *Service) List() []*feature.Feature {
	return s.Registry().List()
}

// ByCategory returns the features of one category in registration order.
func (s *Service) ByCategory(c feature.Category) []*feature.Feature {
	return s.Registry().ByCategory(c)
}

// Lookup returns the named feature.
func (s *Service) Lookup(name string) (*feature.Feature, error) {
	return s.Registry().Lookup(name)
}

// Resolve returns the requested features and their dependencies in load
// order, without touching any document.
func (s *Service) Resolve(ctx context.Context, names ...string) ([]*feature.Feature, error) {
	_, span := s.tracer.Start(ctx, tracing.SpanResolve,
		trace.WithAttributes(attribute.StringSlice(tracing.AttrFeatureNames, names)))
	defer span.End()

	requested, err := s.Registry().LookupAll(names...)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	ordered := feature.ResolveAll(requested...)
	span.SetAttributes(attribute.Int(tracing.AttrFeatureCount, len(ordered)))
	return ordered, nil
}

// EditorFeatures returns the feature names an editor configuration asks
// for: those its options need, then editor.features. Option features the
// catalog lacks are dropped with a warning, or fail under strict-options.
// Unknown names in editor.features always fail at activation.
func (s *Service) EditorFeatures(editor config.EditorConfig) ([]string, error) {
	opts, err := editor.Options()
	if err != nil {
		return nil, err
	}

	reg := s.Registry()
	strict := s.opts.Flags.Enabled(flags.FlagStrictOptions)
	seen := make(map[string]bool)
	var names []string

	for _, name := range option.RequiredFeatures(opts) {
		if _, err := reg.Lookup(name); err != nil {
			if strict {
				return nil, fmt.Errorf("%w: %s", ErrOptionFeature, name)
			}
			log.Warn(log.CatRegistry, "Editor option needs unknown feature", "feature", name)
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	for _, name := range editor.Features {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names, nil
}

// NewInjector returns an injector for doc bound to the current registry. A
// later reload does not change the registry the injector activates from.
func (s *Service) NewInjector(doc feature.Document) *feature.Injector {
	return feature.NewInjector(doc, s.Registry())
}

// Activate injects the named features into the injector's document. The
// injector remembers what it has placed, so repeated calls for the same
// document only add what is new.
func (s *Service) Activate(ctx context.Context, inj *feature.Injector, names ...string) (*feature.Activation, error) {
	attrs := []attribute.KeyValue{attribute.StringSlice(tracing.AttrFeatureNames, names)}
	if id := tracing.RequestIDFromContext(ctx); id != "" {
		attrs = append(attrs, attribute.String(tracing.AttrRequestID, id))
	}
	_, span := s.tracer.Start(ctx, tracing.SpanActivate, trace.WithAttributes(attrs...))
	defer span.End()

	activation, err := inj.ActivateNames(names...)
	if activation != nil {
		for _, r := range activation.Injected {
			span.AddEvent(tracing.EventResourceInjected,
				trace.WithAttributes(attribute.String(tracing.AttrResourceKey, r.Key())))
		}
		span.SetAttributes(
			attribute.Int(tracing.AttrFeatureCount, len(activation.Features)),
			attribute.Int(tracing.AttrInjectedCount, len(activation.Injected)),
			attribute.Int(tracing.AttrSkippedCount, len(activation.Skipped)),
		)
	}
	if err != nil {
		tracing.RecordError(span, err)
		log.ErrorErr(log.CatInject, "Activation failed", err, "features", names)
		return activation, err
	}

	log.Debug(log.CatInject, "Activated features",
		"features", names,
		"injected", len(activation.Injected),
		"skipped", len(activation.Skipped))
	return activation, nil
}

// Reload rebuilds the registry from the catalogs and source and swaps it in.
// On failure the current registry stays in use and the error is returned.
func (s *Service) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	ctx, span := s.tracer.Start(ctx, tracing.SpanReload)
	defer span.End()
	start := time.Now()

	if inv, ok := s.opts.Source.(invalidator); ok {
		if err := inv.Invalidate(ctx); err != nil {
			log.ErrorErr(log.CatCache, "Failed to invalidate payload cache", err)
		}
	}

	reg, err := s.build(ctx)
	event := ReloadEvent{Duration: time.Since(start), Err: err}
	if err != nil {
		span.AddEvent(tracing.EventReloadFailed)
		tracing.RecordError(span, err)
		log.ErrorErr(log.CatCatalog, "Reload failed, keeping current catalog", err)
		s.events.Publish(pubsub.FailedEvent, event)
		return err
	}

	s.registry.Store(reg)
	event.Features = reg.Len()
	log.Info(log.CatCatalog, "Reloaded catalog", "features", event.Features, "duration", event.Duration)
	s.events.Publish(pubsub.ReloadedEvent, event)
	return nil
}

// Subscribe returns reload events published after the call.
func (s *Service) Subscribe(ctx context.Context) <-chan pubsub.Event[ReloadEvent] {
	return s.events.Subscribe(ctx)
}

// SubscribeSince is Subscribe for a client that last saw event seq; a newer
// reload it missed is delivered first.
func (s *Service) SubscribeSince(ctx context.Context, seq uint64) <-chan pubsub.Event[ReloadEvent] {
	return s.events.SubscribeSince(ctx, seq)
}

// Close closes every subscription.
func (s *Service) Close() {
	s.events.Close()
}
