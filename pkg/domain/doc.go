/*
Package domain contains the core models of a solvation free-energy campaign.

It defines the chemistry entities that make up an alchemical network, the
physical quantities attached to settings and estimates, and the identifiers
used to address objects on the remote execution service. This package is kept
free of I/O so that the builder, the gatherer and the adapters can share it.

# Key Entities

  - Molecule: A parsed molecule descriptor (atoms and bonds).
  - Component / ChemicalSystem: The building blocks of an end state.
  - Transformation: An alchemical pathway between two chemical systems.
  - Network: The full set of transformations built for a campaign.
  - Quantity: A magnitude paired with a physical unit.
  - ScopedKey: The address of an object registered on the remote service.
*/
package domain
