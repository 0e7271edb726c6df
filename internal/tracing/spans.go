package tracing

// Span attribute keys.
const (
	AttrFeatureNames  = "feature.names"
	AttrFeatureCount  = "feature.count"
	AttrResourceKey   = "resource.key"
	AttrInjectedCount = "resource.injected"
	AttrSkippedCount  = "resource.skipped"
	AttrCatalogSource = "catalog.source"
	AttrDocumentID    = "document.id"
	AttrRequestID     = "request.id"
	AttrHTTPMethod    = "http.method"
	AttrHTTPRoute     = "http.route"
	AttrHTTPStatus    = "http.status_code"
	AttrErrorType     = "error.type"
)

// Span names.
const (
	SpanActivate     = "feature.activate"
	SpanResolve      = "feature.resolve"
	SpanCatalogBuild = "catalog.build"
	SpanReload       = "catalog.reload"
	SpanBundleImport = "bundle.import"
	SpanPrefixHTTP   = "http."
)

// Event names.
const (
	EventResourceInjected = "resource.injected"
	EventReloadFailed     = "reload.failed"
)
