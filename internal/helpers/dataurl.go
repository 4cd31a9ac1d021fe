package helpers

import (
	"encoding/base64"
	"strings"
)

const sourceMapDataURLPrefix = "data:application/json;charset=utf-8;base64,"

// SourceMapDataURL encodes a serialized source map so that it can be
// referenced inline from a "sourceMappingURL" comment
func SourceMapDataURL(json []byte) string {
	sb := strings.Builder{}
	sb.Grow(len(sourceMapDataURLPrefix) + base64.StdEncoding.EncodedLen(len(json)))
	sb.WriteString(sourceMapDataURLPrefix)
	encoder := base64.NewEncoder(base64.StdEncoding, &sb)
	encoder.Write(json)
	encoder.Close()
	return sb.String()
}

// DecodeSourceMapDataURL is the inverse of SourceMapDataURL. It accepts any
// base64 "application/json" data URL, with or without a charset.
func DecodeSourceMapDataURL(url string) ([]byte, bool) {
	const prefix = "data:application/json"
	if !strings.HasPrefix(url, prefix) {
		return nil, false
	}
	comma := strings.IndexByte(url, ',')
	if comma == -1 || !strings.HasSuffix(url[:comma], ";base64") {
		return nil, false
	}
	decoded, err := base64.StdEncoding.DecodeString(url[comma+1:])
	if err != nil {
		return nil, false
	}
	return decoded, true
}
