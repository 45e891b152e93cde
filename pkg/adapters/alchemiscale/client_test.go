package alchemiscale_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/asfe/internal/fakeservice"
	"github.com/aretw0/asfe/pkg/adapters/alchemiscale"
	"github.com/aretw0/asfe/pkg/domain"
	"github.com/aretw0/asfe/pkg/network"
	"github.com/aretw0/asfe/pkg/protocol"
	"github.com/aretw0/asfe/pkg/smiles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scope = domain.Scope{Org: "openff", Campaign: "asfe", Project: "octanol"}

func setup(t *testing.T) (*fakeservice.Service, *alchemiscale.Client) {
	t.Helper()
	svc := fakeservice.New(nil)
	svc.AddUser("alice", "secret")
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)

	c := alchemiscale.New(srv.URL, alchemiscale.Credentials{ID: "alice", Key: "secret"},
		alchemiscale.WithHTTPClient(srv.Client()),
		alchemiscale.WithToolkit(smiles.NewToolkit()),
	)
	return svc, c
}

func buildNetwork(t *testing.T) *domain.Network {
	t.Helper()
	n, err := network.NewBuilder(smiles.NewToolkit(), protocol.NewDefault()).Build([]string{"CCO", "O", "CCCCCCCCO"})
	require.NoError(t, err)
	return n
}

func TestClient_NetworkLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, c := setup(t)
	net := buildNetwork(t)

	sk, err := c.CreateNetwork(ctx, net, scope)
	require.NoError(t, err)
	assert.Equal(t, net.Key(), sk.Key())
	assert.Equal(t, scope, sk.Scope)

	back, err := c.GetNetwork(ctx, sk)
	require.NoError(t, err)
	assert.Equal(t, net.Key(), back.Key())

	edges, err := c.GetNetworkTransformations(ctx, sk)
	require.NoError(t, err)
	require.Len(t, edges, 6)

	tr, err := c.GetTransformation(ctx, edges[0])
	require.NoError(t, err)
	assert.Equal(t, "CCO", tr.Name)
	assert.Equal(t, edges[0].Key(), tr.Key())

	est := domain.Q(-3.5, domain.KilocaloriePerMole)
	require.NoError(t, svc.Backend.AddResult(edges[0], domain.DAGResult{UnitResults: []domain.UnitResult{
		{OK: true, Outputs: domain.UnitOutputs{SimType: domain.PhaseSolvent, Estimate: &est}},
	}}))

	results, err := c.GetTransformationResults(ctx, edges[0], true)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0].UnitResults, 1)
	assert.Equal(t, est, *results[0].UnitResults[0].Outputs.Estimate)

	refs, err := c.GetTransformationResults(ctx, edges[0], false)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Empty(t, refs[0].UnitResults)
}

func TestClient_Tasks(t *testing.T) {
	ctx := context.Background()
	svc, c := setup(t)
	sk, err := c.CreateNetwork(ctx, buildNetwork(t), scope)
	require.NoError(t, err)

	tasks := svc.Backend.Tasks(sk)
	require.NoError(t, svc.Backend.SetTaskStatus(tasks[0], domain.TaskError))
	require.NoError(t, svc.Backend.SetTaskStatus(tasks[1], domain.TaskComplete))

	errored, err := c.GetNetworkTasks(ctx, sk, domain.TaskError)
	require.NoError(t, err)
	assert.Equal(t, []domain.ScopedKey{tasks[0]}, errored)

	accepted, err := c.SetTasksStatus(ctx, []domain.ScopedKey{tasks[0], tasks[1]}, domain.TaskWaiting)
	require.NoError(t, err)
	assert.Equal(t, []domain.ScopedKey{tasks[0]}, accepted)

	status, err := c.GetNetworkStatus(ctx, sk)
	require.NoError(t, err)
	assert.Equal(t, domain.NetworkStatus{domain.TaskWaiting: 5, domain.TaskComplete: 1}, status)
}

func TestClient_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("Bad credentials", func(t *testing.T) {
		svc := fakeservice.New(nil)
		srv := httptest.NewServer(svc)
		defer srv.Close()

		c := alchemiscale.New(srv.URL, alchemiscale.Credentials{ID: "mallory", Key: "guess"})
		_, err := c.GetNetworkStatus(ctx, domain.ScopedKey{Qualname: "AlchemicalNetwork", Token: "x", Scope: scope})

		var apiErr *alchemiscale.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
		assert.Equal(t, "Incorrect identity or key", apiErr.Detail)
	})

	t.Run("Unknown network", func(t *testing.T) {
		_, c := setup(t)
		_, err := c.GetNetworkTransformations(ctx, domain.ScopedKey{Qualname: "AlchemicalNetwork", Token: "x", Scope: scope})

		var apiErr *alchemiscale.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.Status)
	})

	t.Run("Unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c := alchemiscale.New(url, alchemiscale.Credentials{ID: "a", Key: "b"})
		_, err := c.GetNetworkStatus(ctx, domain.ScopedKey{Qualname: "AlchemicalNetwork", Token: "x", Scope: scope})
		require.Error(t, err)
		var apiErr *alchemiscale.APIError
		assert.False(t, errors.As(err, &apiErr))
	})
}

func TestClient_AuthenticatesOnce(t *testing.T) {
	ctx := context.Background()
	svc, c := setup(t)
	sk, err := c.CreateNetwork(ctx, buildNetwork(t), scope)
	require.NoError(t, err)

	before := svc.Requests()
	_, err = c.GetNetworkStatus(ctx, sk)
	require.NoError(t, err)
	_, err = c.GetNetworkStatus(ctx, sk)
	require.NoError(t, err)
	assert.Equal(t, before+2, svc.Requests())
}

func TestAPIError_Message(t *testing.T) {
	err := &alchemiscale.APIError{Status: 404, Detail: "no such network"}
	assert.Equal(t, "alchemiscale: 404 Not Found: no such network", err.Error())
	assert.Equal(t, "alchemiscale: 500 Internal Server Error", (&alchemiscale.APIError{Status: 500}).Error())
}
