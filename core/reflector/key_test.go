package reflector

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKey_SameType(t *testing.T) {
	require.Equal(t, KeyFor[testStruct](), KeyFor[testStruct]())
	require.Equal(t, KeyFor[testStruct](), KeyOf(testStruct{Name: "x"}))
	require.Equal(t, KeyFor[*testStruct](), KeyOf(&testStruct{}))
}

func TestKey_DistinctTypes(t *testing.T) {
	keys := []Key{
		KeyFor[testStruct](),
		KeyFor[*testStruct](),
		KeyFor[anotherStruct](),
		KeyFor[string](),
		KeyFor[[]string](),
	}
	seen := map[Key]int{}
	for i, k := range keys {
		if j, ok := seen[k]; ok {
			t.Fatalf("key %d collides with key %d: %s", i, j, k)
		}
		seen[k] = i
	}
}

func TestKey_LocalTypesWithSameName(t *testing.T) {
	k1 := func() Key {
		type svc struct{ A int }
		return KeyFor[svc]()
	}()
	k2 := func() Key {
		type svc struct{ B string }
		return KeyFor[svc]()
	}()

	require.NotEqual(t, k1, k2)
	require.NotZero(t, k1.Compare(k2))
	require.Equal(t, -k1.Compare(k2), k2.Compare(k1))
}

func TestKey_String(t *testing.T) {
	require.Equal(t, testStructName, KeyFor[testStruct]().String())
	require.Equal(t, "*"+testStructName, KeyFor[*testStruct]().String())
	require.Equal(t, "<nil>", KeyOf(nil).String())
	require.True(t, KeyOf(nil).IsZero())
}

func TestKey_Ordering(t *testing.T) {
	keys := []Key{
		KeyFor[testStruct](),
		KeyFor[anotherStruct](),
		KeyFor[int](),
	}
	slices.SortFunc(keys, Key.Compare)

	require.Equal(t, KeyFor[anotherStruct](), keys[0])
	require.Equal(t, KeyFor[testStruct](), keys[1])
	require.Equal(t, KeyFor[int](), keys[2])
	require.True(t, keys[0].Less(keys[1]))
	require.Zero(t, keys[0].Compare(keys[0]))
}
