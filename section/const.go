package section

const (
	// MagicSize is the length of the magic byte sequence opening every
	// container file.
	MagicSize = 4

	// SyncMarkerSize is the length of the sync marker generated once per
	// file and repeated after every block.
	SyncMarkerSize = 16
)

// Magic identifies a container file: the literal bytes "Obj" followed by a
// format version byte.
var Magic = [MagicSize]byte{'O', 'b', 'j', 0x01}

// Reserved header metadata keys. Writers populate both from their
// configuration; ReadHeader rejects headers missing either.
const (
	MetaSchemaKey = "schema" // schema text the file was written with
	MetaCodecKey  = "codec"  // name of the block compression codec
)

// SyncMarker is the 16-byte marker separating blocks. It is generated
// randomly when a file is opened for writing, so an accidental match with
// record data is vanishingly unlikely and a mismatch reliably signals a
// misaligned or damaged stream.
type SyncMarker [SyncMarkerSize]byte
