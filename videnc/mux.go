package videnc

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Muxer is a minimal streaming writer of H.26x samples in a custom
// container, not MP4: a 9-byte file header (magic "DVZM", packed
// width/height, HEVC flag), then per sample a 13-byte header (payload
// length, presentation timestamp, keyframe flag) and the payload. It
// tracks accumulated duration, grounded on the five82-drapto/reel
// encoders' sample-bookkeeping idiom.
type Muxer struct {
	w             io.WriteCloser
	width, height uint32
	isHEVC        bool
	wroteHeader   bool
	pts           uint64
}

// NewMuxer creates a muxer writing to w for the given picture size and
// codec.
func NewMuxer(w io.WriteCloser, width, height uint32, isHEVC bool) *Muxer {
	return &Muxer{w: w, width: width, height: height, isHEVC: isHEVC}
}

// WriteNAL writes one length-prefixed sample and advances the muxer's
// running presentation timestamp by duration (in 90kHz units).
func (m *Muxer) WriteNAL(data []byte, duration uint32, keyframe bool) error {
	if !m.wroteHeader {
		if err := m.writeFileHeader(); err != nil {
			return err
		}
		m.wroteHeader = true
	}
	var hdr [13]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(len(data)))
	binary.BigEndian.PutUint64(hdr[4:12], m.pts)
	if keyframe {
		hdr[12] = 1
	}
	if _, err := m.w.Write(hdr[:]); err != nil {
		return fmt.Errorf("videnc: write nal header: %w", err)
	}
	if _, err := m.w.Write(data); err != nil {
		return fmt.Errorf("videnc: write nal payload: %w", err)
	}
	m.pts += uint64(duration)
	return nil
}

func (m *Muxer) writeFileHeader() error {
	var hdr [9]byte
	copy(hdr[0:4], "DVZM")
	binary.BigEndian.PutUint32(hdr[4:8], m.width<<16|m.height&0xffff)
	if m.isHEVC {
		hdr[8] = 1
	}
	_, err := m.w.Write(hdr[:])
	return err
}

// Close closes the underlying writer.
func (m *Muxer) Close() error {
	return m.w.Close()
}
