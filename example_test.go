package asfe_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aretw0/asfe/pkg/adapters/memory"
	"github.com/aretw0/asfe/pkg/domain"
	"github.com/aretw0/asfe/pkg/gather"
	"github.com/aretw0/asfe/pkg/network"
	"github.com/aretw0/asfe/pkg/protocol"
	"github.com/aretw0/asfe/pkg/smiles"
)

// Example_network pairs every molecule with every other one as solvent.
func Example_network() {
	n, err := network.NewBuilder(smiles.NewToolkit(), protocol.NewDefault()).
		Build([]string{"CCO", "O", "CCCCCCCCO"})
	if err != nil {
		log.Fatal(err)
	}

	for _, t := range n.Transformations {
		solvent := t.StateB.Components[domain.LabelSolvent].(*domain.SolventComponent)
		fmt.Printf("%s in %s\n", t.Name, solvent.Solvent.Name())
	}
	// Output:
	// CCO in O
	// CCO in CCCCCCCCO
	// O in CCO
	// O in CCCCCCCCO
	// CCCCCCCCO in CCO
	// CCCCCCCCO in O
}

// Example_gather runs a campaign against the in-memory service and prints
// the results table.
func Example_gather() {
	ctx := context.Background()
	n, err := network.NewBuilder(smiles.NewToolkit(), nil).Build([]string{"CCO", "O"})
	if err != nil {
		log.Fatal(err)
	}

	client := memory.NewClient()
	sk, err := client.CreateNetwork(ctx, n, domain.Scope{Org: "openff", Campaign: "asfe", Project: "demo"})
	if err != nil {
		log.Fatal(err)
	}
	edges, err := client.GetNetworkTransformations(ctx, sk)
	if err != nil {
		log.Fatal(err)
	}

	// One finished repeat of "CCO in O".
	vacuum, solvent := domain.Q(-10, domain.KilocaloriePerMole), domain.Q(-5, domain.KilocaloriePerMole)
	err = client.AddResult(edges[0], domain.DAGResult{UnitResults: []domain.UnitResult{
		{OK: true, Outputs: domain.UnitOutputs{SimType: domain.PhaseVacuum, Estimate: &vacuum}},
		{OK: true, Outputs: domain.UnitOutputs{SimType: domain.PhaseSolvent, Estimate: &solvent}},
	}})
	if err != nil {
		log.Fatal(err)
	}

	report, err := gather.New(client).Gather(ctx, sk)
	if err != nil {
		log.Fatal(err)
	}
	if err := gather.WriteTSV(os.Stdout, report.Rows); err != nil {
		log.Fatal(err)
	}
	// Output:
	// molecule	dG (kcal/mol)	stdev (kcal/mol)
	// CCO	-5	0
	// O	None	None
}
