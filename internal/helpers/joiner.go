package helpers

// Joiner concatenates many string and byte slices with a single allocation.
// It remembers where each piece goes, then allocates the final buffer once
// its exact size is known.
type Joiner struct {
	strings  []joinerString
	bytes    []joinerBytes
	length   int
	lastByte byte
}

type joinerString struct {
	data   string
	offset int
}

type joinerBytes struct {
	data   []byte
	offset int
}

func (j *Joiner) AddString(data string) {
	if len(data) == 0 {
		return
	}
	j.lastByte = data[len(data)-1]
	j.strings = append(j.strings, joinerString{data, j.length})
	j.length += len(data)
}

func (j *Joiner) AddBytes(data []byte) {
	if len(data) == 0 {
		return
	}
	j.lastByte = data[len(data)-1]
	j.bytes = append(j.bytes, joinerBytes{data, j.length})
	j.length += len(data)
}

func (j *Joiner) LastByte() byte {
	return j.lastByte
}

func (j *Joiner) Length() int {
	return j.length
}

func (j *Joiner) EnsureNewlineAtEnd() {
	if j.length > 0 && j.lastByte != '\n' {
		j.AddString("\n")
	}
}

func (j *Joiner) Done() []byte {
	if len(j.strings) == 0 && len(j.bytes) == 1 {
		// No need to allocate if there was only a single byte array written
		return j.bytes[0].data
	}
	buffer := make([]byte, j.length)
	for _, item := range j.strings {
		copy(buffer[item.offset:], item.data)
	}
	for _, item := range j.bytes {
		copy(buffer[item.offset:], item.data)
	}
	return buffer
}
