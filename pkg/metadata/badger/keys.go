package badger

// Database Key Namespace Design
// ==============================
//
// BadgerDB is a flat key-value store, so the three indexes a metadata
// store needs are encoded as prefixed key namespaces:
//
//	Data Type        Prefix  Key Format              Value
//	=========================================================
//	Entries          "e:"    e:<path>                FileEntry (JSON)
//	Children Index   "c:"    c:<parent>\x00<name>    child path (bytes)
//	Inode Index      "i:"    i:<id>\x00<path>        path (bytes)
//
// The children index is denormalized (one key per child, not one record
// per directory) so a directory listing is a single prefix scan and
// adding/removing a child touches exactly one key. The \x00 separator
// cannot appear in a path component, so prefixes never collide between a
// directory and another directory whose path is a string prefix of it
// (e.g. "/a" and "/ab").
//
// The inode index serves FindByID: all paths sharing one inode ID are a
// prefix scan over i:<id>\x00.

const (
	entryPrefix = "e:"
	childPrefix = "c:"
	inodePrefix = "i:"
	sep         = "\x00"
)

func entryKey(path string) []byte {
	return []byte(entryPrefix + path)
}

func childKey(parent, name string) []byte {
	return []byte(childPrefix + parent + sep + name)
}

func childScanPrefix(parent string) []byte {
	return []byte(childPrefix + parent + sep)
}

func inodeKey(id, path string) []byte {
	return []byte(inodePrefix + id + sep + path)
}

func inodeScanPrefix(id string) []byte {
	return []byte(inodePrefix + id + sep)
}
