package cache

import "errors"

// ModKey identifies a version of a file from its metadata. Two equal keys
// mean the file is assumed to be unchanged.
type ModKey struct {
	inode     uint64
	size      int64
	mtimeSec  int64
	mtimeNsec int64
	mode      uint32
	uid       uint32
}

// Some file systems have a time resolution of two seconds. Files whose
// modification time is within this many seconds of now may still change
// without their key changing, so their key is not used.
const modKeySafetyGap = 3

var errModKeyUnusable = errors.New("the modification key is unusable")
