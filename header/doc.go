// Package header implements the self describing ASCII header of a WLF file.
//
// The header occupies the first Size bytes of every file. It is made of
// order independent tagged lines followed by an end marker and space padding:
//
//	[VERSION] = WLF library V1.00 - 10/14/26
//	[HEADER SIZE] = 65536
//	[RECORD SIZE] = 37
//	[NUMBER OF RECORDS] = 1000
//	[X MIN] = -180
//	[X MAX] = 180
//	[X SCALE] = 10000000
//	...
//	{COMMENTS =
//	free text
//	spanning lines
//	}
//	[END OF HEADER]
//
// Single line values use the [KEY] = value form. Multi line values (WKT,
// COMMENTS) use the {KEY = form and end with a line holding only a closing
// brace. Lines starting with # are ignored. Unknown keys are preserved in
// Header.Extra so newer writers can add keys without breaking older readers.
//
// Everything a reader needs to rebuild the record layout (every field range
// and scale, the counts and the waveform channels) is stored here together
// with the computed record size, so files can be decoded without any external
// schema.
package header
