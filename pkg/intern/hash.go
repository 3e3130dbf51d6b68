package intern

// FNV-1a parameters. The tokenizer folds these in byte by byte while it scans
// a line, so Hash and the streaming form must stay in step.
const (
	Offset64 uint64 = 0xcbf29ce484222325
	Prime64  uint64 = 0x100000001b3
)

// Hash returns the 64-bit FNV-1a hash of b.
func Hash(b []byte) uint64 {
	h := Offset64
	for _, c := range b {
		h ^= uint64(c)
		h *= Prime64
	}
	return h
}
