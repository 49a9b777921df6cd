package inbuf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmallStaysInline(t *testing.T) {
	t.Parallel()

	var arr [16]byte
	st := NewStats(nil)

	b := MakeAlloc(arr[:], st)

	require.NoError(t, b.AppendString("0123"))
	require.NoError(t, b.AppendByte('4'))
	require.NoError(t, b.Append([]byte("56789")))
	require.NoError(t, b.AppendRune('a'))
	require.NoError(t, b.AppendString("bcdef"))

	assert.Equal(t, "0123456789abcdef", string(b.Bytes()))
	assert.Equal(t, 16, b.Len())
	assert.Equal(t, 16, b.Cap())
	assert.False(t, b.OnHeap())

	assert.Same(t, &arr[0], &b.Bytes()[0], "data must be in inline array")

	b.Free()

	assert.Equal(t, int64(0), st.Allocs.Load())
	assert.Equal(t, int64(0), st.Frees.Load())
}

func TestSingleChar(t *testing.T) {
	t.Parallel()

	var arr [512]byte
	b := Make(arr[:])
	defer b.Free()

	require.NoError(t, b.AppendByte('c'))
	require.NoError(t, b.AppendString("c"))

	assert.Equal(t, "cc", b.String())

	for i := 0; i < 2048; i++ {
		require.NoError(t, b.AppendByte('c'))
	}

	assert.Equal(t, 2050, b.Len())
	assert.True(t, b.OnHeap())

	for i, c := range b.Bytes() {
		if c != 'c' {
			t.Fatalf("byte %d: %q", i, c)
		}
	}
}

func TestResetAfterHeap(t *testing.T) {
	t.Parallel()

	var arr [10]byte
	st := NewStats(nil)

	b := MakeAlloc(arr[:], st)

	require.NoError(t, b.AppendString("0123456789"))
	assert.False(t, b.OnHeap())
	assert.Equal(t, int64(0), st.Allocs.Load())

	require.NoError(t, b.AppendString("0123456789"))
	assert.True(t, b.OnHeap())
	assert.Equal(t, "01234567890123456789", b.String())
	assert.Equal(t, 20, b.Cap())
	assert.Equal(t, int64(1), st.Allocs.Load())

	b.Reset()

	assert.Equal(t, 0, b.Len())
	assert.Equal(t, "", b.String())
	assert.Len(t, b.Bytes(), 0)

	require.NoError(t, b.AppendString("543210"))
	assert.Equal(t, "543210", b.String())
	assert.False(t, b.OnHeap())

	require.NoError(t, b.AppendString("98765432109876543210"))
	assert.Equal(t, "54321098765432109876543210", b.String())
	assert.Equal(t, 40, b.Cap())

	assert.Equal(t, int64(2), st.Allocs.Load())
	assert.Equal(t, int64(1), st.Frees.Load())

	b.Free()

	assert.Equal(t, int64(2), st.Frees.Load())
	assert.Equal(t, int64(0), st.InUse())
}

func TestResetReusesHeap(t *testing.T) {
	t.Parallel()

	var arr [8]byte
	st := NewStats(nil)

	b := MakeAlloc(arr[:], st)
	defer b.Free()

	require.NoError(t, b.AppendString(strings.Repeat("x", 30)))
	assert.Equal(t, 32, b.Cap())

	b.Reset()

	require.NoError(t, b.AppendString("short"))
	require.NoError(t, b.AppendString(strings.Repeat("y", 20)))

	assert.Equal(t, "short"+strings.Repeat("y", 20), b.String())
	assert.Equal(t, int64(1), st.Allocs.Load(), "heap must be reused")
	assert.Equal(t, 32, b.Cap())
}

func TestRepeatedChunks(t *testing.T) {
	t.Parallel()

	var arr [512]byte
	b := Make(arr[:])
	defer b.Free()

	for i := 0; i < 1026; i++ {
		require.NoError(t, b.AppendString("0123456789"))
	}

	require.Equal(t, 10260, b.Len())

	for i, c := range b.Bytes() {
		if c != byte('0'+i%10) {
			t.Fatalf("byte %d: %q", i, c)
		}
	}
}

func TestMigrateOnce(t *testing.T) {
	t.Parallel()

	var arr [8]byte
	st := NewStats(nil)

	b := MakeAlloc(arr[:], st)
	defer b.Free()

	require.NoError(t, b.AppendString("abcdefgh"))
	require.NoError(t, b.AppendByte('i'))

	require.True(t, b.migrated)

	// inline array is not read after migration
	copy(arr[:], "XXXXXXXX")

	assert.Equal(t, "abcdefghi", b.String())

	for i := 0; i < 100; i++ {
		require.NoError(t, b.AppendByte('j'))
	}

	assert.Equal(t, "abcdefghi"+strings.Repeat("j", 100), b.String())

	// 16, 32, 64, 128
	assert.Equal(t, int64(4), st.Allocs.Load())
	assert.Equal(t, int64(3), st.Frees.Load())
}

func TestChunkGrowsSeveralTimes(t *testing.T) {
	t.Parallel()

	var arr [4]byte
	st := NewStats(nil)

	b := MakeAlloc(arr[:], st)
	defer b.Free()

	require.NoError(t, b.AppendString("ab"))
	require.NoError(t, b.AppendString(strings.Repeat("z", 100)))

	assert.Equal(t, 128, b.Cap())
	assert.Equal(t, int64(1), st.Allocs.Load(), "one allocation per call")
	assert.Equal(t, "ab"+strings.Repeat("z", 100), b.String())
}

func TestCapacityMonotonic(t *testing.T) {
	t.Parallel()

	var arr [5]byte
	b := Make(arr[:])
	defer b.Free()

	prev := b.Cap()

	check := func() {
		t.Helper()

		assert.GreaterOrEqual(t, b.Cap(), prev)
		assert.GreaterOrEqual(t, b.Cap(), b.Len())

		prev = b.Cap()
	}

	for i := 0; i < 200; i++ {
		switch i % 7 {
		case 0:
			_ = b.AppendByte('a')
		case 1, 2:
			_ = b.AppendString(strings.Repeat("b", i%13))
		case 3:
			_ = b.AppendRune('ж')
		case 4:
			_ = b.Append([]byte("ccc"))
		case 5:
			if i%5 == 0 {
				b.Reset()
			}
		case 6:
			_ = b.AppendRune('€')
		}

		check()
	}
}

func TestAppendRune(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"a", "ж", "€", "𝄞", "x€жy𝄞"} {
		var arr [2]byte
		b := Make(arr[:])

		for _, r := range s {
			require.NoError(t, b.AppendRune(r))
		}

		assert.Equal(t, s, b.String())
		assert.Equal(t, len(s), b.Len())

		b.Free()
	}

	var arr [8]byte
	b := Make(arr[:])

	require.NoError(t, b.AppendRune(-1))
	assert.Equal(t, "�", b.String())
}

func TestFreeTwice(t *testing.T) {
	t.Parallel()

	var arr [4]byte
	st := NewStats(nil)

	b := MakeAlloc(arr[:], st)

	require.NoError(t, b.AppendString("long enough"))

	frees := st.Frees.Load()

	b.Free()
	assert.Equal(t, frees+1, st.Frees.Load())

	b.Free()
	assert.Equal(t, frees+1, st.Frees.Load())

	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 4, b.Cap())

	require.NoError(t, b.AppendString("ok"))
	assert.Equal(t, "ok", b.String())
	assert.False(t, b.OnHeap())
}

func TestAllocFailure(t *testing.T) {
	t.Parallel()

	var arr [4]byte

	b := MakeAlloc(arr[:], Limit{Max: 8})
	defer b.Free()

	require.NoError(t, b.AppendString("abcd"))
	require.NoError(t, b.AppendString("efgh"))

	err := b.AppendString("i")
	assert.ErrorIs(t, err, ErrTooLarge)

	assert.Equal(t, "abcdefgh", b.String(), "data must not be changed on failure")
	assert.Equal(t, 8, b.Cap())

	err = b.AppendByte('i')
	assert.ErrorIs(t, err, ErrTooLarge)

	assert.Equal(t, "abcdefgh", b.String())
}

func TestZeroValue(t *testing.T) {
	t.Parallel()

	var b Buffer

	assert.Equal(t, "", b.String())
	assert.Nil(t, b.Copy())

	require.NoError(t, b.AppendByte('a'))
	require.NoError(t, b.AppendString("bcd"))

	assert.Equal(t, "abcd", b.String())
	assert.True(t, b.OnHeap())
	assert.Equal(t, 0, b.Inline())

	b.Free()
}

func TestAppendSelf(t *testing.T) {
	t.Parallel()

	var arr [4]byte
	b := MakeAlloc(arr[:], DefaultPool())
	defer b.Free()

	require.NoError(t, b.AppendString("abc"))

	for i := 0; i < 6; i++ {
		require.NoError(t, b.Append(b.Bytes()))
	}

	assert.Equal(t, strings.Repeat("abc", 64), b.String())
}

func TestViews(t *testing.T) {
	t.Parallel()

	var arr [4]byte
	b := Make(arr[:0])
	defer b.Free()

	assert.Equal(t, 4, b.Inline())

	require.NoError(t, b.Append([]byte{'a', 0x80, 0xff}))

	assert.Equal(t, []int8{'a', -128, -1}, b.Int8s())
	assert.Equal(t, []int8{'a', -128, -1}, View[int8](&b))
	assert.Equal(t, []byte{'a', 0x80, 0xff}, View[byte](&b))

	type myByte byte

	assert.Equal(t, []myByte{'a', 0x80, 0xff}, View[myByte](&b))

	c := b.Copy()
	v := b.Bytes()

	require.NoError(t, b.AppendString("more data"))

	assert.Equal(t, []byte{'a', 0x80, 0xff}, c)
	assert.Len(t, v, 3)
	assert.Equal(t, 3, cap(v), "view must not allow appending into the buffer")

	assert.Equal(t, []byte("xa"), b.AppendTo([]byte("x"))[:2])
}
