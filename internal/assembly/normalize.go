package assembly

import "bytes"

const (
	id3v2HeaderLen = 10
	id3v1TagLen    = 128
)

var (
	id3v2Magic = []byte("ID3")
	id3v1Magic = []byte("TAG")
)

// StripContainerMetadata drops a leading ID3v2 tag and a trailing ID3v1 tag
// so MP3 frame data from separately encoded files can be concatenated.
//
// The ID3v2 size field is four syncsafe bytes at offset 6: only the low
// seven bits of each byte count. The ID3v1 trailer is a fixed 128-byte block
// starting with "TAG". Truncated headers yield an empty result. The returned
// slice aliases data.
func StripContainerMetadata(data []byte) []byte {
	if bytes.HasPrefix(data, id3v2Magic) {
		if len(data) < id3v2HeaderLen {
			return data[:0]
		}
		size := syncsafe(data[6:10])
		end := id3v2HeaderLen + size
		if end > len(data) {
			return data[:0]
		}
		data = data[end:]
	}

	if len(data) > id3v1TagLen {
		trailer := data[len(data)-id3v1TagLen:]
		if bytes.HasPrefix(trailer, id3v1Magic) {
			data = data[:len(data)-id3v1TagLen]
		}
	}
	return data
}

func syncsafe(b []byte) int {
	return int(b[0]&0x7f)<<21 | int(b[1]&0x7f)<<14 | int(b[2]&0x7f)<<7 | int(b[3]&0x7f)
}
