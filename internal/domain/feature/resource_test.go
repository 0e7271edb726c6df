package feature

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewResource(t *testing.T) {
	r, err := NewResource("addon/dialog/dialog.css", KindStyle, ".CodeMirror-dialog {}")

	require.NoError(t, err)
	require.Equal(t, "addon/dialog/dialog.css", r.Key())
	require.Equal(t, KindStyle, r.Kind())
	require.Equal(t, ".CodeMirror-dialog {}", r.Payload())
	require.Equal(t, ResourceID{Kind: KindStyle, Key: "addon/dialog/dialog.css"}, r.ID())
}

func TestNewResource_EmptyPayload(t *testing.T) {
	r, err := NewResource("addon/dialog/dialog.js", KindScript, "")

	require.ErrorIs(t, err, ErrEmptyPayload)
	require.Nil(t, r)
}

func TestNewResource_EmptyKey(t *testing.T) {
	_, err := Script("", "var x;")

	require.ErrorIs(t, err, ErrEmptyKey)
}

func TestResourceID_SameKeyDifferentKind(t *testing.T) {
	js, err := Script("addon/fold/foldgutter", "x")
	require.NoError(t, err)
	css, err := Style("addon/fold/foldgutter", "y")
	require.NoError(t, err)

	require.NotEqual(t, js.ID(), css.ID())
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "script", want: KindScript},
		{in: "js", want: KindScript},
		{in: "style", want: KindStyle},
		{in: "css", want: KindStyle},
		{in: "html", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestKind_String(t *testing.T) {
	require.Equal(t, "script", KindScript.String())
	require.Equal(t, "style", KindStyle.String())
	require.Equal(t, "unknown", Kind(42).String())
}

func TestParseResourceID(t *testing.T) {
	tests := []struct {
		in      string
		want    ResourceID
		wantErr bool
	}{
		{in: "script:lib/codemirror.js", want: ResourceID{Kind: KindScript, Key: "lib/codemirror.js"}},
		{in: "style:theme/a:b.css", want: ResourceID{Kind: KindStyle, Key: "theme/a:b.css"}},
		{in: "lib/codemirror.js", wantErr: true},
		{in: "script:", wantErr: true},
		{in: "image:logo.png", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseResourceID(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.in, got.String())
		})
	}
}
