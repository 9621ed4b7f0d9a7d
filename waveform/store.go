package waveform

import (
	"io"

	"github.com/calebcase/wlf/bitpack"
	"github.com/calebcase/wlf/schema"
)

// MaxAddress is the largest address a record can reference.
var MaxAddress = bitpack.Max(schema.WaveformAddressBits)

// Staged is a block ready to be committed to a Store.
type Staged struct {
	Shot    int64
	Address uint64

	// Data is nil when the block of the previous shot is reused.
	Data []byte
}

// Reused reports whether the staged block points at an existing block.
func (s Staged) Reused() bool {
	return s.Data == nil
}

// Store appends encoded blocks to a scratch writer, reusing the previous
// block for consecutive appends of the same shot.
type Store struct {
	codec *Codec
	w     io.Writer

	size   int64
	blocks int64

	have     bool
	lastShot int64
	lastAddr uint64
}

// NewStore returns a store writing blocks to w.
func NewStore(codec *Codec, w io.Writer) *Store {
	return &Store{
		codec: codec,
		w:     w,
	}
}

// Codec returns the codec of the store.
func (s *Store) Codec() *Codec {
	return s.codec
}

// Prepare encodes b for shot without writing it. When shot equals the shot
// of the last committed block, b is ignored and the last address is returned.
// The staged data is valid until the next call to Prepare.
func (s *Store) Prepare(shot int64, b Block) (st Staged, err error) {
	if s.have && shot == s.lastShot {
		return Staged{Shot: shot, Address: s.lastAddr}, nil
	}

	if b == nil {
		return st, Error.New("shot %d: missing waveform block", shot)
	}

	data, err := s.codec.Encode(b)
	if err != nil {
		return st, err
	}

	addr := uint64(s.size)
	if addr+uint64(len(data)) > MaxAddress {
		return st, Error.New("waveform region full at %d bytes", s.size)
	}

	return Staged{Shot: shot, Address: addr, Data: data}, nil
}

// Commit writes a staged block.
func (s *Store) Commit(st Staged) error {
	if st.Reused() {
		return nil
	}

	if st.Address != uint64(s.size) {
		return Error.New("stale staged block: address %d, store at %d", st.Address, s.size)
	}

	n, err := s.w.Write(st.Data)
	s.size += int64(n)
	if err != nil {
		return Error.Wrap(err)
	}

	s.blocks++
	s.have = true
	s.lastShot = st.Shot
	s.lastAddr = st.Address

	return nil
}

// Append prepares and commits b in one step.
func (s *Store) Append(shot int64, b Block) (addr uint64, err error) {
	st, err := s.Prepare(shot, b)
	if err != nil {
		return 0, err
	}

	err = s.Commit(st)
	if err != nil {
		return 0, err
	}

	return st.Address, nil
}

// Size returns the number of bytes written.
func (s *Store) Size() int64 {
	return s.size
}

// Blocks returns the number of distinct blocks written.
func (s *Store) Blocks() int64 {
	return s.blocks
}
