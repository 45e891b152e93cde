package network_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/asfe/pkg/domain"
	"github.com/aretw0/asfe/pkg/network"
	"github.com/aretw0/asfe/pkg/protocol"
	"github.com/aretw0/asfe/pkg/smiles"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var descriptors = []string{"CCO", "O", "CCCCCCCCO", "c1ccccc1"}

func build(t *testing.T, in []string, opts ...network.Option) *domain.Network {
	t.Helper()
	b := network.NewBuilder(smiles.NewToolkit(), protocol.NewDefault(), opts...)
	n, err := b.Build(in)
	require.NoError(t, err)
	return n
}

func TestReadDescriptors(t *testing.T) {
	in := "CCO\nO\n\n  CCCCCCCCO  \n"
	got, err := network.ReadDescriptors(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"CCO", "O", "CCCCCCCCO"}, got)

	_, err = network.ReadDescriptors(strings.NewReader("\n\n"))
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestBuild_Permutations(t *testing.T) {
	for n := 1; n <= len(descriptors); n++ {
		net := build(t, descriptors[:n])
		assert.Len(t, net.Transformations, n*(n-1), "n=%d", n)
	}
}

func TestBuild_Structure(t *testing.T) {
	net := build(t, descriptors)

	proto := net.Transformations[0].Protocol
	pairs := make(map[[2]string]bool)
	for _, tr := range net.Transformations {
		assert.Same(t, proto, tr.Protocol)
		assert.Nil(t, tr.Mapping)

		ligand := tr.StateA.Components[domain.LabelLigand].(*domain.SmallMoleculeComponent)
		solventA := tr.StateA.Components[domain.LabelSolvent].(*domain.SolventComponent)
		solventB := tr.StateB.Components[domain.LabelSolvent].(*domain.SolventComponent)

		assert.Equal(t, ligand.Name(), tr.Name)
		assert.Equal(t, []string{domain.LabelLigand, domain.LabelSolvent}, tr.StateA.Labels())
		assert.Equal(t, []string{domain.LabelSolvent}, tr.StateB.Labels())
		assert.Equal(t, solventA.Key(), solventB.Key())
		assert.NotEqual(t, ligand.Name(), solventA.Solvent.Name())
		assert.Equal(t, domain.Q(0, domain.Molar), solventA.IonConcentration)
		assert.Equal(t, "am1bccelf10", ligand.PartialChargeMethod)

		pairs[[2]string{tr.Name, solventA.Solvent.Name()}] = true
	}
	assert.Len(t, pairs, len(descriptors)*(len(descriptors)-1))
}

func TestBuild_OrderFollowsInput(t *testing.T) {
	net := build(t, []string{"CCO", "O", "CO"})
	assert.Equal(t, []string{"CCO", "CCO", "O", "O", "CO", "CO"}, net.Names())
}

func TestBuild_DuplicatesPairByPosition(t *testing.T) {
	net := build(t, []string{"O", "O"})
	assert.Len(t, net.Transformations, 2)
}

func TestBuild_IonConcentration(t *testing.T) {
	net := build(t, descriptors[:2], network.WithIonConcentration(domain.Q(0.15, domain.Molar)))
	s := net.Transformations[0].StateB.Components[domain.LabelSolvent].(*domain.SolventComponent)
	assert.Equal(t, domain.Q(0.15, domain.Molar), s.IonConcentration)

	b := network.NewBuilder(smiles.NewToolkit(), nil, network.WithIonConcentration(domain.Q(1, domain.Kelvin)))
	_, err := b.Build(descriptors)
	assert.ErrorIs(t, err, domain.ErrIncompatibleUnits)
}

func TestBuild_BadDescriptorAborts(t *testing.T) {
	b := network.NewBuilder(smiles.NewToolkit(), nil)
	n, err := b.Build([]string{"CCO", "C1CC", "O"})
	assert.Nil(t, n)
	var syn *smiles.SyntaxError
	require.ErrorAs(t, err, &syn)
	assert.Contains(t, err.Error(), "line 2")
}

func TestWriteRead_RoundTrip(t *testing.T) {
	net := build(t, descriptors)
	dir := t.TempDir()

	for _, name := range []string{"net.json", "net.yaml", "net.json.gz", "net.yml.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, network.Write(path, net))

			back, err := network.Read(path, smiles.NewToolkit())
			require.NoError(t, err)

			assert.Equal(t, net.Key(), back.Key())
			assert.Len(t, back.Transformations, len(net.Transformations))
			assert.ElementsMatch(t, net.Names(), back.Names())

			p := back.Transformations[0].Protocol
			for _, tr := range back.Transformations {
				assert.Same(t, p, tr.Protocol)
			}
			asfe := p.(*protocol.ASFE)
			assert.Equal(t, protocol.Default().Lambda, asfe.Settings().Lambda)
		})
	}
}

func TestWriteRead_PaddingSolvation(t *testing.T) {
	settingsPath := filepath.Join(t.TempDir(), "padding.yaml")
	require.NoError(t, os.WriteFile(settingsPath, []byte(`
solvation_settings:
  number_of_solvent_molecules: 0
  solvent_padding: 1.2 nm
`), 0644))
	s, err := protocol.Load(settingsPath)
	require.NoError(t, err)

	net, err := network.NewBuilder(smiles.NewToolkit(), protocol.New(s)).Build(descriptors[:2])
	require.NoError(t, err)

	dir := t.TempDir()
	for _, name := range []string{"net.json", "net.yaml.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, network.Write(path, net))

			back, err := network.Read(path, nil)
			require.NoError(t, err)
			assert.Equal(t, net.Key(), back.Key())

			got := back.Transformations[0].Protocol.(*protocol.ASFE).Settings()
			require.NotNil(t, got.Solvation.SolventPadding)
			assert.Equal(t, domain.Q(1.2, domain.Nanometer), *got.Solvation.SolventPadding)
			assert.Equal(t, 0, got.Solvation.NumberOfSolventMolecules)
		})
	}
}

func TestBuild_InvalidProtocolFails(t *testing.T) {
	s := protocol.Default()
	s.Solvation.NumberOfSolventMolecules = 0

	n, err := network.NewBuilder(smiles.NewToolkit(), protocol.New(s)).Build(descriptors)
	assert.Nil(t, n)
	var verrs protocol.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.ErrorContains(t, err, "solvation_settings.number_of_solvent_molecules")
}

func TestWrite_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.json")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	require.NoError(t, network.Write(path, build(t, descriptors[:2])))
	back, err := network.Read(path, nil)
	require.NoError(t, err)
	assert.Len(t, back.Transformations, 2)
}

func TestWrite_CompressedIsSmaller(t *testing.T) {
	net := build(t, descriptors)
	dir := t.TempDir()
	plain := filepath.Join(dir, "net.json")
	packed := filepath.Join(dir, "net.json.zst")
	require.NoError(t, network.Write(plain, net))
	require.NoError(t, network.Write(packed, net))

	a, err := os.Stat(plain)
	require.NoError(t, err)
	b, err := os.Stat(packed)
	require.NoError(t, err)
	assert.Less(t, b.Size(), a.Size())
}

func TestDocument_SharedObjectsAppearOnce(t *testing.T) {
	net := build(t, descriptors)
	doc, err := network.ToDocument(net)
	require.NoError(t, err)

	assert.Len(t, doc.Protocols, 1)
	// One molecule and one solvent per descriptor.
	assert.Len(t, doc.Components, 2*len(descriptors))
	// N solvent-only states plus N×(N−1) solvated states.
	assert.Len(t, doc.Systems, len(descriptors)+len(descriptors)*(len(descriptors)-1))
	assert.Len(t, doc.Transformations, 12)
}

func TestDocument_EncodeDecodeIsLossless(t *testing.T) {
	doc, err := network.ToDocument(build(t, descriptors))
	require.NoError(t, err)

	for _, format := range []network.Format{{}, {Encoding: network.YAML, Compression: network.Gzip}} {
		var buf bytes.Buffer
		require.NoError(t, network.EncodeDocument(&buf, doc, format))
		back, err := network.DecodeDocument(&buf, format)
		require.NoError(t, err)

		if diff := cmp.Diff(doc, back, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("document changed in %+v (-want +got):\n%s", format, diff)
		}
	}
}

func TestDecode_DetectsTampering(t *testing.T) {
	net := build(t, descriptors[:2])
	var buf bytes.Buffer
	require.NoError(t, network.Encode(&buf, net, network.Format{}))

	tampered := strings.Replace(buf.String(), `"smiles": "CCO"`, `"smiles": "CCN"`, 1)
	_, err := network.Decode(strings.NewReader(tampered), network.Format{}, nil)
	assert.ErrorIs(t, err, network.ErrKeyMismatch)

	_, err = network.Decode(strings.NewReader(`{"format":"other","version":1}`), network.Format{}, nil)
	assert.ErrorIs(t, err, network.ErrUnsupportedDocument)
}

func TestTransformationCodec(t *testing.T) {
	net := build(t, descriptors[:2])
	tr := net.Transformations[1]

	data, err := network.EncodeTransformation(tr)
	require.NoError(t, err)

	back, err := network.DecodeTransformation(data, smiles.NewToolkit())
	require.NoError(t, err)
	assert.Equal(t, tr.Key(), back.Key())
	assert.Equal(t, tr.Name, back.Name)

	_, err = network.DecodeTransformation([]byte("{"), nil)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, network.ErrKeyMismatch))
}

func TestFormatFor(t *testing.T) {
	tests := map[string]network.Format{
		"a.json":        {},
		"a":             {},
		"a.yaml":        {Encoding: network.YAML},
		"A.YML":         {Encoding: network.YAML},
		"a.json.gz":     {Compression: network.Gzip},
		"dir/a.yaml.gz": {Encoding: network.YAML, Compression: network.Gzip},
		"a.json.zst":    {Compression: network.Zstd},
	}
	for path, want := range tests {
		assert.Equal(t, want, network.FormatFor(path), path)
	}
}
