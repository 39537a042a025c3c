package codec

// Head is the per-stream tip record (spec.md §3.5): {lastSequence,
// lastHash, lastTick}. For an empty stream the head key is absent and
// callers synthesize Empty.
type Head struct {
	LastSequence int64
	LastHash     [32]byte
	LastTick     int64
}

// Empty is the sentinel head of a stream with no events: {-1, zeros, -1}.
var Empty = Head{LastSequence: -1, LastTick: -1}

// EncodeHead writes the canonical 3-element array
// [lastSequence, lastHash, lastTick].
func EncodeHead(h Head) []byte {
	w := NewWriter(nil)
	w.WriteVarint(h.LastSequence)
	w.WriteFixed(h.LastHash[:])
	w.WriteVarint(h.LastTick)

	return w.Bytes()
}

// DecodeHead parses the current 3-element head layout, falling back to
// the legacy single-field layout [lastSequence] when the buffer is
// exhausted after the first field (spec.md §6.2, §7). The legacy
// boolean return reports which layout was found so callers (eventstore's
// getHead) know to look up the corresponding event record to recover
// lastHash and lastTick, and to upgrade the stored layout on next write.
func DecodeHead(data []byte) (h Head, legacy bool, err error) {
	r := NewReader(data)

	h.LastSequence, err = r.ReadVarint()
	if err != nil {
		return Head{}, false, err
	}
	if r.Done() {
		return Head{LastSequence: h.LastSequence}, true, nil
	}

	hash, err := r.ReadFixed(32)
	if err != nil {
		return Head{}, false, err
	}
	copy(h.LastHash[:], hash)
	if h.LastTick, err = r.ReadVarint(); err != nil {
		return Head{}, false, err
	}

	return h, false, nil
}
