/*
	Package dvid provides types, constants, and functions that have no other dependencies
	and can be used by all packages within voxelio.  This includes element kinds,
	keyword configurations, block serialization, logging, and command-line argument
	handling.
*/
package dvid
