package option

import (
	"fmt"
	"sort"
)

// AddOnOption names an option that CodeMirror only understands once the
// add-on defining it is loaded.
type AddOnOption string

const (
	StyleActiveLine           AddOnOption = "styleActiveLine"
	MatchBrackets             AddOnOption = "matchBrackets"
	AutoCloseBrackets         AddOnOption = "autoCloseBrackets"
	AutoCloseTags             AddOnOption = "autoCloseTags"
	MatchTags                 AddOnOption = "matchTags"
	FoldGutter                AddOnOption = "foldGutter"
	Lint                      AddOnOption = "lint"
	ShowTrailingSpace         AddOnOption = "showTrailingSpace"
	Placeholder               AddOnOption = "placeholder"
	StyleSelectedText         AddOnOption = "styleSelectedText"
	HighlightSelectionMatches AddOnOption = "highlightSelectionMatches"
	FullScreen                AddOnOption = "fullScreen"
	Rulers                    AddOnOption = "rulers"
	ContinueComments          AddOnOption = "continueComments"
)

// addOnFeatures maps each add-on option to the catalog feature defining it.
var addOnFeatures = map[AddOnOption]string{
	StyleActiveLine:           "active-line",
	MatchBrackets:             "matchbrackets",
	AutoCloseBrackets:         "closebrackets",
	AutoCloseTags:             "closetag",
	MatchTags:                 "matchtags",
	FoldGutter:                "foldgutter",
	Lint:                      "lint",
	ShowTrailingSpace:         "trailingspace",
	Placeholder:               "placeholder",
	StyleSelectedText:         "mark-selection",
	HighlightSelectionMatches: "match-highlighter",
	FullScreen:                "fullscreen",
	Rulers:                    "rulers",
	ContinueComments:          "continuecomment",
}

// AddOnOptions returns every known add-on option sorted by name.
func AddOnOptions() []AddOnOption {
	opts := make([]AddOnOption, 0, len(addOnFeatures))
	for o := range addOnFeatures {
		opts = append(opts, o)
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i] < opts[j] })
	return opts
}

// ParseAddOnOption checks that s names a known add-on option.
func ParseAddOnOption(s string) (AddOnOption, error) {
	o := AddOnOption(s)
	if _, ok := addOnFeatures[o]; !ok {
		return "", fmt.Errorf("%w: unknown add-on option %q", ErrInvalidValue, s)
	}
	return o, nil
}

// Feature returns the feature that defines the option.
func (o AddOnOption) Feature() string {
	return addOnFeatures[o]
}

// EditorOptions is the subset of a CodeMirror configuration that affects
// which features must be loaded.
type EditorOptions struct {
	Theme          string
	KeyMap         string
	Mode           string
	InputStyle     InputStyle
	ReadOnly       ReadOnly
	Direction      Direction
	ScrollbarStyle ScrollbarStyle
	LineSeparator  LineSeparator
	AddOns         []AddOnOption // add-on options switched on
}

// RequiredFeatures lists the feature names the options need, in a stable
// order: mode, key map, theme, then add-ons. "default" theme and key map are
// built into the core and need nothing.
func RequiredFeatures(o EditorOptions) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}

	add(o.Mode)
	if o.KeyMap != "default" {
		add(o.KeyMap)
	}
	if o.Theme != "default" {
		add(o.Theme)
	}
	if o.ScrollbarStyle == ScrollbarSimple || o.ScrollbarStyle == ScrollbarOverlay {
		add("simplescrollbars")
	}
	for _, opt := range o.AddOns {
		add(opt.Feature())
	}
	return names
}

// addOnDefaults holds the values switched-on add-on options take when
// true is not accepted.
var addOnDefaults = map[AddOnOption]any{
	Placeholder: "",
	Rulers:      []map[string]int{{"column": 80}},
}

// Config returns the options as the object CodeMirror's constructor takes.
// Empty mode and the "null" line separator map to null.
func (o EditorOptions) Config() map[string]any {
	cfg := map[string]any{
		"theme":          o.Theme,
		"keyMap":         o.KeyMap,
		"inputStyle":     string(o.InputStyle),
		"direction":      string(o.Direction),
		"scrollbarStyle": string(o.ScrollbarStyle),
		"mode":           nil,
		"lineSeparator":  nil,
	}
	if o.Mode != "" {
		cfg["mode"] = o.Mode
	}
	if o.LineSeparator != "" && o.LineSeparator != LineSeparatorAny {
		cfg["lineSeparator"] = string(o.LineSeparator)
	}
	switch o.ReadOnly {
	case ReadOnlyTrue:
		cfg["readOnly"] = true
	case ReadOnlyNoCursor:
		cfg["readOnly"] = string(ReadOnlyNoCursor)
	default:
		cfg["readOnly"] = false
	}
	if o.ScrollbarStyle == ScrollbarNull {
		cfg["scrollbarStyle"] = nil
	}
	for _, opt := range o.AddOns {
		if v, ok := addOnDefaults[opt]; ok {
			cfg[string(opt)] = v
			continue
		}
		cfg[string(opt)] = true
	}
	return cfg
}
