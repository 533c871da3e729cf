package name

import (
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntern_Idempotent(t *testing.T) {
	tbl := NewTable()

	a := tbl.Intern("Cube")
	b := tbl.Intern("Cube")
	c := tbl.Intern("Sphere")

	assert.Equal(t, a, b)
	assert.True(t, a == b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, "Cube", a.String())
	assert.Equal(t, 4, a.Len())
	assert.Equal(t, 2, tbl.Len())
}

func TestIntern_Empty(t *testing.T) {
	tbl := NewTable()

	empty := tbl.Intern("")
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, Name{}, empty)
	assert.Equal(t, "", empty.String())
	assert.Equal(t, 0, tbl.Len())

	n, ok := tbl.Lookup("")
	assert.True(t, ok)
	assert.Equal(t, empty, n)
}

func TestIntern_ByteContentDecidesIdentity(t *testing.T) {
	tbl := NewTable()

	buf := []byte("Separator")
	fromBytes := tbl.InternBytes(buf)
	fromString := tbl.Intern("Separator")
	require.Equal(t, fromString, fromBytes)

	// The table owns its copy; mutating the caller's buffer has no effect.
	buf[0] = 'X'
	assert.Equal(t, "Separator", fromBytes.String())

	assert.NotEqual(t, tbl.Intern("cube"), tbl.Intern("Cube"))
	assert.NotEqual(t, tbl.Intern("a\x00"), tbl.Intern("a"))
}

func TestLookup_DoesNotInsert(t *testing.T) {
	tbl := NewTable()

	_, ok := tbl.Lookup("Missing")
	assert.False(t, ok)
	assert.Equal(t, 0, tbl.Len())

	want := tbl.Intern("Present")
	got, ok := tbl.Lookup("Present")
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestDefaultTable(t *testing.T) {
	a := Intern("scenegrid.default")
	b := InternBytes([]byte("scenegrid.default"))
	assert.Equal(t, a, b)

	got, ok := Lookup("scenegrid.default")
	require.True(t, ok)
	assert.Equal(t, a, got)
	assert.Same(t, Default(), std)
}

// TestIntern_ConcurrentFirstUse races many goroutines on the first intern of
// the same strings and verifies they all observe one handle per content.
func TestIntern_ConcurrentFirstUse(t *testing.T) {
	tbl := NewTable()
	workers := runtime.GOMAXPROCS(0) * 4
	const distinct = 64

	results := make([][]Name, workers)
	var start sync.WaitGroup
	start.Add(1)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			start.Wait()
			out := make([]Name, distinct)
			for i := 0; i < distinct; i++ {
				// Vary the order per worker to spread the races.
				j := (i + w) % distinct
				out[j] = tbl.Intern(fmt.Sprintf("name-%d", j))
			}
			results[w] = out
		}(w)
	}
	start.Done()
	wg.Wait()

	for w := 1; w < workers; w++ {
		for i := 0; i < distinct; i++ {
			require.True(t, results[0][i] == results[w][i], "worker %d saw a different handle for name-%d", w, i)
		}
	}
	assert.Equal(t, distinct, tbl.Len())
}

func TestIdentChars(t *testing.T) {
	assert.True(t, IsIdentStartChar('a'))
	assert.True(t, IsIdentStartChar('_'))
	assert.False(t, IsIdentStartChar('7'))
	assert.True(t, IsIdentChar('7'))
	assert.False(t, IsIdentChar('-'))
	assert.False(t, IsIdentChar(0xe9))

	assert.True(t, ValidIdent("Cube_2"))
	assert.False(t, ValidIdent("2Cube"))
	assert.False(t, ValidIdent(""))
}

func TestBaseNameChars(t *testing.T) {
	assert.True(t, IsBaseNameStartChar('B'))
	assert.False(t, IsBaseNameStartChar('-'))
	assert.True(t, IsBaseNameChar('-'))
	for _, c := range []byte("\"'+.\\{} ") {
		assert.False(t, IsBaseNameChar(c), "char %q", c)
	}
	assert.False(t, IsBaseNameChar(0x7f))

	assert.True(t, ValidBaseName("left-wheel"))
	assert.False(t, ValidBaseName("left.wheel"))
	assert.False(t, ValidBaseName("9lives"))
	assert.False(t, ValidBaseName(""))
}
