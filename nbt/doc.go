// Package nbt implements the NBT typed binary tree format: the tag data
// model and its big-endian wire codec, the Mojangson text notation that
// round-trips to the same trees, a path language for querying and
// iterating within a tree, and the sector-based region file container
// that stores many independently compressed trees addressed by chunk
// coordinate.
//
// A Tag is a closed sum type over scalars, strings, packed numeric
// arrays, homogeneous lists, and insertion-ordered compounds. Trees are
// built with the typed constructors, by decoding wire bytes (DecodeRoot,
// Load), or by parsing Mojangson text (Parse). The only in-place
// mutations are the explicit compound operations Set, Delete, Append,
// and Update; everything else treats tags as values.
//
// Strings travel in the format's modified UTF-8: NUL as the two-byte
// overlong form and supplementary code points as six-byte surrogate
// pairs. This deviates from standard UTF-8 deliberately and is preserved
// exactly for wire compatibility.
//
// Path queries address nodes with dotted keys, bracketed indices,
// wildcards, and structural {filter} matches:
//
//	id, err := nbt.AtPath(root, "Items[0].id")
//	pears, err := nbt.FindPath(root, `Items[{id:"pear"}]`)
//
// HasPath, CountPath, and IterPath treat a path that addresses the wrong
// node variant as matching nothing; only malformed path text is an error.
package nbt
