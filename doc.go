/*
Package asfe builds and follows absolute solvation free-energy (ASFE)
campaigns on a remote alchemical execution service.

A campaign has three steps, each with its own command:

  - asfe-network reads a file of molecule descriptors (one SMILES per line)
    and writes an alchemical network with one transformation for every
    ordered pair of molecules: the first is solvated in the second. With
    --submit the network is also registered on the service and its scoped
    key written to scoped-key.dat.
  - asfe-gather reads the scoped key, fetches every transformation's
    finished repeats and writes a tab-separated table of dG and its
    standard deviation in kcal/mol.
  - asfe-requeue sends tasks that ended in error back to the queue and
    prints the network's task counts.

# Layout

The domain model (molecules, quantities, chemical systems, networks, keys)
lives in pkg/domain. pkg/protocol holds the simulation settings,
pkg/network builds and serializes networks, pkg/gather aggregates results
and pkg/requeue resets tasks. The remote service is reached through the
ports.Client interface; pkg/adapters/alchemiscale implements it over HTTP
and pkg/adapters/memory in process for tests.

# Usage

	n, err := network.NewBuilder(smiles.NewToolkit(), protocol.NewDefault()).
		Build([]string{"CCO", "O", "CCCCCCCCO"})
	if err != nil {
		log.Fatal(err)
	}
	if err := network.Write("network.json.zst", n); err != nil {
		log.Fatal(err)
	}
*/
package asfe
