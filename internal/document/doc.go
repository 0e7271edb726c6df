// Package document holds the Document implementations resources are
// injected into: htmldoc for server side HTML pages and jsdom for the live
// browser DOM under WebAssembly.
package document

// ResourceAttr labels every injected element with the resource it hosts.
const ResourceAttr = "data-mirrorkit-resource"
