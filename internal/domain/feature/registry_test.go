package feature

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NotNil(t, reg)
	require.Empty(t, reg.List())
	require.Equal(t, 0, reg.Len())
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	f, _ := NewFeature("dialog", CategoryAddOn)

	require.NoError(t, reg.Register(f))

	got, err := reg.Lookup("dialog")
	require.NoError(t, err)
	require.Same(t, f, got)
}

func TestRegistry_Register_Nil(t *testing.T) {
	reg := NewRegistry()

	require.ErrorIs(t, reg.Register(nil), ErrNilFeature)
	require.Empty(t, reg.List())
}

func TestRegistry_Register_DuplicateName(t *testing.T) {
	reg := NewRegistry()
	first := mkFeature(t, reg, "dialog", "dialog.js")

	second, _ := NewFeature("dialog", CategoryTheme)
	err := reg.Register(second)

	require.ErrorIs(t, err, ErrDuplicateName)
	got, err := reg.Lookup("dialog")
	require.NoError(t, err)
	require.Same(t, first, got, "first registration must stay intact")
	require.Equal(t, []*Feature{first}, got.Resolve())
}

func TestRegistry_Create_DuplicateAcrossCategories(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Create("vim", CategoryKeyMap)
	require.NoError(t, err)

	_, err = reg.Create("vim", CategoryMode)

	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestRegistry_Create_InvalidName(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Create("", CategoryAddOn)

	require.ErrorIs(t, err, ErrInvalidName)
	require.Equal(t, 0, reg.Len())
}

func TestRegistry_Lookup_Unknown(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Lookup("missing")

	require.ErrorIs(t, err, ErrUnknownFeature)
	var unknown *UnknownFeatureError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "missing", unknown.Name)
}

func TestRegistry_LookupAll(t *testing.T) {
	reg := NewRegistry()
	a := mkFeature(t, reg, "a")
	b := mkFeature(t, reg, "b")

	got, err := reg.LookupAll("b", "a")
	require.NoError(t, err)
	require.Equal(t, []*Feature{b, a}, got)

	_, err = reg.LookupAll("a", "nope")
	require.ErrorIs(t, err, ErrUnknownFeature)
}

func TestRegistry_ListAndCategories(t *testing.T) {
	reg := NewRegistry()
	dialog, _ := reg.Create("dialog", CategoryAddOn)
	monokai, _ := reg.Create("monokai", CategoryTheme)
	emacs, _ := reg.Create("emacs", CategoryKeyMap)
	search, _ := reg.Create("search", CategoryAddOn)

	require.Equal(t, []*Feature{dialog, monokai, emacs, search}, reg.List())
	require.Equal(t, []*Feature{dialog, search}, reg.ByCategory(CategoryAddOn))
	require.Equal(t, []*Feature{monokai}, reg.ByCategory(CategoryTheme))
	require.Empty(t, reg.ByCategory(CategoryMode))
	require.Equal(t, []string{"dialog", "emacs", "monokai", "search"}, reg.Names())
}

func TestRegistry_ListReturnsCopy(t *testing.T) {
	reg := NewRegistry()
	mkFeature(t, reg, "a")

	list := reg.List()
	list[0] = nil

	require.NotNil(t, reg.List()[0])
}
