/*
Package network builds solvation transformation networks and reads and writes
them as documents.

A network for N molecules holds N×(N−1) transformations: every molecule is
dissolved once in a solvent made of every other molecule. All transformations
share one protocol instance.

# Documents

A document lists protocols, components, systems and transformations once each,
referencing each other by content key. The format is picked from the file
name: ".yaml"/".yml" for YAML, anything else for JSON, with an optional ".gz"
or ".zst" suffix for compression.
*/
package network
