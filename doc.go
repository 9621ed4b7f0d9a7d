// Package wlf reads and writes WLF files: bit packed LIDAR point records with
// optional digitized waveforms.
//
// # File Layout
//
//	| header (HEADER SIZE bytes of text) | record 0 | record 1 | ... | waveform region |
//
// Every record is RECORD SIZE bytes. The layout of the bits inside a record
// is computed from the value ranges declared in the header (see package
// schema). Records reference their waveform block by its address, relative to
// WAVEFORM BLOCK OFFSET (see package waveform).
//
// # Creating
//
// Create writes a placeholder header and appends records behind it. Waveform
// blocks are staged in a scratch file next to the output (path + ScratchSuffix)
// because their final offset depends on the number of records. Close copies
// the staged blocks behind the records and writes the final header. Until
// then the output is incomplete; AbortCreate, or a failed Close, removes both
// files.
//
// # Registry
//
// A Registry holds a bounded table of sessions addressed by Handle. It can
// install a signal handler that aborts every session still being created
// before the process exits, so an interrupted run leaves no partial files.
package wlf
