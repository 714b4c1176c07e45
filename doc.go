/*
Package voxelio stores N-dimensional scientific volumes as compressed blocks in an
ordered key-value store and moves rectangular regions (hyperslabs) between those
volumes and caller buffers.

Philosophy

A volume is kept in whatever element type and axis order it was created with.
Callers see it through an apparent view: dimensions may be permuted, axes may run in
either direction, and values may be read or written as raw voxels, as real values
through the volume's valid and real ranges, or normalized onto the full range of an
integer type.  The conversion engine in package hyperslab does that translation in
bounded chunks so large regions never need more than a fixed amount of scratch memory.

Packages

	dvid         element kinds, keyword configs, block serialization, logging
	storage      ordered key-value engines (memory, badger) and a block cache
	volume       volume metadata, block layout and resolution levels
	convert      element type conversion with saturation and affine transforms
	restructure  in-place permutation and reversal of N-d buffers
	hyperslab    contexts, options and the Get/Put conversion families
	config       TOML or YAML configuration files
	cmd/voxelio  command-line access to volumes in a configured store

Commands

In the following documentation, the type of brackets designate
<required parameter> and [optional parameter].

	voxelio create <name> <spec.json> [compression=none|snappy|zstd]

Creates a volume from a JSON description validated against the volume schema.

	voxelio get <name> <start> <count> [real|raw] [type=float64] [level=0]

Prints a hyperslab one line per run of the fastest apparent dimension.

	voxelio put-const <name> <start> <count> <value> [real|raw] [type=float64]

Fills a hyperslab with a single value.

	voxelio downres <name> <level>

Builds lower resolution levels by 2x averaging along spatial dimensions.
*/
package voxelio
