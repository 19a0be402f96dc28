package hash

// Canonical built-in type names. The exact UTF-8 bytes of these
// strings define the built-in type hashes; they are part of the wire
// contract and must never change.
//
// Built-in names live in the reserved dacite.core namespace. Extension
// names are any other UTF-8 string and hash the same way, with no
// central coordination; uniqueness is the extender's responsibility.
const (
	TypeNull   = "dacite.core/null"
	TypeBool   = "dacite.core/bool"
	TypeI8     = "dacite.core/i8"
	TypeI16    = "dacite.core/i16"
	TypeI32    = "dacite.core/i32"
	TypeI64    = "dacite.core/i64"
	TypeI128   = "dacite.core/i128"
	TypeI256   = "dacite.core/i256"
	TypeU8     = "dacite.core/u8"
	TypeU16    = "dacite.core/u16"
	TypeU32    = "dacite.core/u32"
	TypeU64    = "dacite.core/u64"
	TypeU128   = "dacite.core/u128"
	TypeU256   = "dacite.core/u256"
	TypeF32    = "dacite.core/f32"
	TypeF64    = "dacite.core/f64"
	TypeChar   = "dacite.core/char"
	TypeString = "dacite.core/string"
	TypeBlob   = "dacite.core/blob"
	TypeVector = "dacite.core/vector"
	TypeMap    = "dacite.core/map"
)

// BuiltinTypes enumerates all built-in type names.
var BuiltinTypes = []string{
	TypeNull, TypeBool,
	TypeI8, TypeI16, TypeI32, TypeI64, TypeI128, TypeI256,
	TypeU8, TypeU16, TypeU32, TypeU64, TypeU128, TypeU256,
	TypeF32, TypeF64, TypeChar,
	TypeString, TypeBlob, TypeVector, TypeMap,
}

// builtinTypeHashes is computed once at init and read-only thereafter.
var builtinTypeHashes map[string]Hash

func init() {
	builtinTypeHashes = make(map[string]Hash, len(BuiltinTypes))
	for _, name := range BuiltinTypes {
		builtinTypeHashes[name] = Sum([]byte(name))
	}
}

// TypeHash returns the type hash for a canonical type name:
// SHA-256 of the UTF-8 bytes of the name. Built-in names are served
// from a precomputed table; extension names hash on demand.
func TypeHash(name string) Hash {
	if h, ok := builtinTypeHashes[name]; ok {
		return h
	}
	return Sum([]byte(name))
}

// ValueHash combines a type hash and a data hash into a value hash:
// fuse(type_hash, data_hash). This is the content address of a value.
func ValueHash(typeHash, dataHash Hash) (Hash, error) {
	return Fuse(typeHash, dataHash)
}
