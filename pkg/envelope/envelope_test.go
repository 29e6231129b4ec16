package envelope

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/fieldnotes/pkg/codec"
)

// noteV0 and noteV1 are two generations of the same record
type noteV0 struct {
	Text string
}

func (n *noteV0) Version() int { return 0 }
func (n *noteV0) Reset()       { n.Text = "" }
func (n *noteV0) Decode(r *codec.Reader, version int) error {
	n.Text, _ = r.ReadString()
	return r.Err()
}
func (n *noteV0) Encode(w *codec.Writer) { w.WriteString(n.Text) }

type noteV1 struct {
	Text     string
	Priority int32
}

func (n *noteV1) Version() int { return 1 }
func (n *noteV1) Reset() {
	n.Text = ""
	n.Priority = 5
}
func (n *noteV1) Decode(r *codec.Reader, version int) error {
	n.Text, _ = r.ReadString()
	if version >= 1 {
		n.Priority, _ = r.ReadInt32()
	}
	return r.Err()
}
func (n *noteV1) Encode(w *codec.Writer) {
	w.WriteString(n.Text)
	w.WriteInt32(n.Priority)
}

func TestMarshal_Layout(t *testing.T) {
	data := Marshal(&noteV1{Text: "a", Priority: 2})

	want := []byte{
		0, 0, 0, 1, // version
		0, 0, 0, 9, // size
		0, 0, 0, 1, 'a',
		0, 0, 0, 2,
	}
	assert.Equal(t, want, data)

	h, err := Peek(data)
	require.NoError(t, err)
	assert.Equal(t, Header{Version: 1, Size: 9}, h)
}

func TestUnmarshal_SameVersion(t *testing.T) {
	src := &noteV1{Text: "hello", Priority: 9}
	got := &noteV1{}
	require.NoError(t, Unmarshal(Marshal(src), got))
	assert.Equal(t, src, got)
}

func TestUnmarshal_OlderWriter(t *testing.T) {
	got := &noteV1{}
	require.NoError(t, Unmarshal(Marshal(&noteV0{Text: "old"}), got))
	assert.Equal(t, "old", got.Text)
	assert.Equal(t, int32(5), got.Priority)
}

func TestRead_NewerWriterSkipsUnknownFields(t *testing.T) {
	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	Write(w, &noteV1{Text: "first", Priority: 1})
	Write(w, &noteV1{Text: "second", Priority: 2})

	r := codec.NewReader(buf.Bytes())
	first := &noteV0{}
	h, err := Read(r, first)
	require.NoError(t, err)
	assert.Equal(t, 1, h.Version)
	assert.Equal(t, "first", first.Text)

	second := &noteV0{}
	_, err = Read(r, second)
	require.NoError(t, err)
	assert.Equal(t, "second", second.Text)
	assert.Equal(t, 0, r.Remaining())
}

func TestRead_StrictRejectsNewerWriter(t *testing.T) {
	err := Options{Strict: true}.Unmarshal(Marshal(&noteV1{Text: "x"}), &noteV0{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, codec.ErrDecode))
	assert.True(t, codec.IsKind(err, codec.KindUnsupportedVersion))
}

func TestRead_Malformed(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
		kind codec.ErrorKind
	}{
		{"empty", nil, codec.KindBufferUnderflow},
		{"short header", []byte{0, 0, 0, 1, 0}, codec.KindBufferUnderflow},
		{"negative size", []byte{0, 0, 0, 1, 0xFF, 0xFF, 0xFF, 0xFF}, codec.KindInvalidLength},
		{"size past end", []byte{0, 0, 0, 1, 0, 0, 0, 9, 0}, codec.KindInvalidLength},
		{"negative version", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 0}, codec.KindInvalidLength},
		{"payload shorter than record", []byte{0, 0, 0, 1, 0, 0, 0, 2, 0, 0}, codec.KindBufferUnderflow},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Unmarshal(tc.data, &noteV1{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, codec.ErrDecode))
			assert.True(t, codec.IsKind(err, tc.kind), "got %v", err)
		})
	}
}

func TestList_MixedGenerations(t *testing.T) {
	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	w.WriteInt32(2)
	Write(w, &noteV0{Text: "v0"})
	Write(w, &noteV1{Text: "v1", Priority: 7})

	got, err := ReadList(codec.NewReader(buf.Bytes()), func() *noteV1 { return &noteV1{} })
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, &noteV1{Text: "v0", Priority: 5}, got[0])
	assert.Equal(t, &noteV1{Text: "v1", Priority: 7}, got[1])
}

func TestList_RoundTripAndEmpty(t *testing.T) {
	for _, items := range [][]*noteV1{nil, {{Text: "a"}}, {{Text: "a"}, {Text: "b", Priority: 3}}} {
		var buf bytes.Buffer
		WriteList(codec.NewWriter(&buf), items)

		got, err := ReadList(codec.NewReader(buf.Bytes()), func() *noteV1 { return &noteV1{} })
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Len(t, got, len(items))
		for i := range items {
			assert.Equal(t, items[i], got[i])
		}
	}
}

func TestList_NegativeCount(t *testing.T) {
	_, err := ReadList(codec.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF}), func() *noteV0 { return &noteV0{} })
	assert.True(t, codec.IsKind(err, codec.KindInvalidLength))
}
