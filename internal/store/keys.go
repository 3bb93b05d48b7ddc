package store

import "bytes"

// Key layout. Documents live under prefix+id. Index entries live under
// prefix+"idx:"+name+":"+value+"\x00"+id and hold the document id, so one
// value can point at many documents.
const (
	indexMarker = "idx:"

	// indexSep separates an index value from the owning document id, so
	// that values sharing a prefix ("Fiction", "Fiction Classics") never
	// collide.
	indexSep = "\x00"
)

// docKey returns the key a document is stored under.
func docKey(prefix, id string) []byte {
	return []byte(prefix + id)
}

// indexValuePrefix returns the prefix shared by every index entry of
// name=value.
func indexValuePrefix(prefix, name, value string) []byte {
	return []byte(prefix + indexMarker + name + ":" + value + indexSep)
}

// indexKey returns the index entry for name=value pointing at id.
func indexKey(prefix, name, value, id string) []byte {
	return append(indexValuePrefix(prefix, name, value), id...)
}

// isIndexKey reports whether key, found under prefix, is an index entry.
func isIndexKey(prefix string, key []byte) bool {
	return bytes.HasPrefix(key[len(prefix):], []byte(indexMarker))
}
