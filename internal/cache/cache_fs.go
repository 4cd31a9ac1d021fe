package cache

import (
	"os"
	"sync"
)

// This cache uses information from the "stat" syscall to try to avoid re-
// reading files from the file system during subsequent builds if the file
// hasn't changed. The assumption is reading the file metadata is faster than
// reading the file contents.

type FSCache struct {
	entries map[string]*fsEntry
	mutex   sync.Mutex
}

type fsEntry struct {
	contents       string
	modKey         ModKey
	isModKeyUsable bool
}

func (c *FSCache) ReadFile(path string) (string, error) {
	entry := func() *fsEntry {
		c.mutex.Lock()
		defer c.mutex.Unlock()
		return c.entries[path]
	}()

	// If the file's modification key hasn't changed since it was cached, assume
	// the contents of the file are also the same and skip reading the file.
	modKey, modKeyErr := modKey(path)
	if entry != nil && entry.isModKeyUsable && modKeyErr == nil && entry.modKey == modKey {
		return entry.contents, nil
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	contents := string(bytes)

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries[path] = &fsEntry{
		contents:       contents,
		modKey:         modKey,
		isModKeyUsable: modKeyErr == nil,
	}
	return contents, nil
}

func (c *FSCache) Invalidate(path string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	_, ok := c.entries[path]
	delete(c.entries, path)
	return ok
}
