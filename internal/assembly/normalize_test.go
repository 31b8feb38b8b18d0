package assembly

import (
	"bytes"
	"testing"
)

func id3Header(size int) []byte {
	return []byte{'I', 'D', '3', 4, 0, 0,
		byte(size>>21) & 0x7f, byte(size>>14) & 0x7f, byte(size>>7) & 0x7f, byte(size) & 0x7f}
}

func TestStripLeadingTag(t *testing.T) {
	for _, size := range []int{0, 1, 127, 128, 300, 1 << 14} {
		body := []byte("frame-data")
		data := append(id3Header(size), make([]byte, size)...)
		data = append(data, body...)

		got := StripContainerMetadata(data)
		if len(data)-len(got) != 10+size {
			t.Fatalf("size %d: removed %d bytes, want %d", size, len(data)-len(got), 10+size)
		}
		if !bytes.Equal(got, body) {
			t.Fatalf("size %d: got %q", size, got)
		}
	}
}

func TestStripIgnoresSizeHighBits(t *testing.T) {
	// Only the low seven bits of each size byte count: 0x80 0x80 0x81 0x80 is 128.
	header := []byte{'I', 'D', '3', 4, 0, 0, 0x80, 0x80, 0x81, 0x80}
	body := []byte("frame-data")
	data := append(append(header, make([]byte, 128)...), body...)

	got := StripContainerMetadata(data)
	if len(data)-len(got) != 10+128 {
		t.Fatalf("removed %d bytes, want %d", len(data)-len(got), 10+128)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("got %q", got)
	}
}

func TestStripTruncatedHeader(t *testing.T) {
	if got := StripContainerMetadata([]byte("ID3\x04\x00")); len(got) != 0 {
		t.Fatalf("got %q", got)
	}
	// Declared size runs past the end of the buffer.
	data := append(id3Header(50), []byte("short")...)
	if got := StripContainerMetadata(data); len(got) != 0 {
		t.Fatalf("got %q", got)
	}
}

func TestStripTrailer(t *testing.T) {
	body := bytes.Repeat([]byte{0xff}, 40)
	trailer := make([]byte, 128)
	copy(trailer, "TAG")
	got := StripContainerMetadata(append(append([]byte{}, body...), trailer...))
	if !bytes.Equal(got, body) {
		t.Fatalf("trailer not stripped: %d bytes left", len(got))
	}

	// Exactly 128 bytes is not longer than the trailer, so nothing is removed.
	if got := StripContainerMetadata(trailer); len(got) != 128 {
		t.Fatalf("bare trailer changed: %d bytes", len(got))
	}
}

func TestStripUntagged(t *testing.T) {
	data := []byte("plain mp3 frames")
	if got := StripContainerMetadata(data); !bytes.Equal(got, data) {
		t.Fatalf("got %q", got)
	}
	if got := StripContainerMetadata(nil); len(got) != 0 {
		t.Fatalf("got %q", got)
	}
}

func TestStripIdempotent(t *testing.T) {
	trailer := make([]byte, 128)
	copy(trailer, "TAG")
	inputs := [][]byte{
		nil,
		[]byte("abc"),
		append(append(id3Header(4), "xxxxbody-bytes"...), trailer...),
		append(bytes.Repeat([]byte{0x55}, 200), trailer...),
		id3Header(0),
	}
	for i, in := range inputs {
		once := append([]byte{}, StripContainerMetadata(in)...)
		twice := StripContainerMetadata(once)
		if !bytes.Equal(once, twice) {
			t.Fatalf("input %d: %q != %q", i, once, twice)
		}
	}
}
