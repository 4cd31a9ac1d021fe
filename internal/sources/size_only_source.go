package sources

import (
	"hash"

	"github.com/webpack/webpack-sources/internal/sourcemap"
)

// SizeOnlySource stands in for a source whose content was dropped to save
// memory. Anything but "Size" panics with ErrContentUnavailable.
type SizeOnlySource struct {
	size int
}

func NewSizeOnlySource(size int) *SizeOnlySource {
	return &SizeOnlySource{size: size}
}

func (*SizeOnlySource) isSource() {}

func (s *SizeOnlySource) Size() int {
	return s.size
}

func (*SizeOnlySource) Text() string {
	panicWithUsageError(ErrContentUnavailable)
	return ""
}

func (*SizeOnlySource) Bytes() []byte {
	panicWithUsageError(ErrContentUnavailable)
	return nil
}

func (*SizeOnlySource) Map(Options) *sourcemap.SourceMap {
	panicWithUsageError(ErrContentUnavailable)
	return nil
}

func (*SizeOnlySource) TextAndMap(Options) (string, *sourcemap.SourceMap) {
	panicWithUsageError(ErrContentUnavailable)
	return "", nil
}

func (*SizeOnlySource) UpdateHash(hash.Hash) {
	panicWithUsageError(ErrContentUnavailable)
}

func (*SizeOnlySource) StreamChunks(Options, OnChunk, OnSource, OnName) GeneratedInfo {
	panicWithUsageError(ErrContentUnavailable)
	return GeneratedInfo{}
}
