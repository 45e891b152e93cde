/*
Package ports defines the driven ports (interfaces) of the campaign tools.

These interfaces decouple the builder and the gatherer from external
implementations: the chemistry toolkit that parses descriptors, the remote
execution service that runs the calculations, and the store that remembers
previous gatherer runs.

# Key Interfaces

  - Toolkit: Turns a descriptor string into a domain.Molecule.
  - Client: The remote execution service (networks, transformations, results, tasks).
  - HistoryStore: Persists GatherRun summaries between runs (e.g., Redis or Memory).
*/
package ports
