package statusapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/emicklei/go-restful/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

func newTestServer(reg *Registry) *httptest.Server {
	container := restful.NewContainer()
	container.Add(WebService(reg))
	return httptest.NewServer(container)
}

func TestListClustersReturnsEveryKnownCluster(t *testing.T) {
	reg := NewRegistry()
	reg.Set(engine.RunResult{Cluster: "prod"})
	reg.Set(engine.RunResult{Cluster: "staging"})

	srv := newTestServer(reg)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/status/clusters")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var names []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&names))
	assert.ElementsMatch(t, []string{"prod", "staging"}, names)
}

func TestClusterStatusReturnsComponentTree(t *testing.T) {
	root := engine.NewComponent("app", engine.KindApp)
	child := engine.NewComponent("web", engine.KindDeployment)
	root.AddChild(child)

	reg := NewRegistry()
	reg.Set(engine.RunResult{Cluster: "prod", Root: root})

	srv := newTestServer(reg)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/status/clusters/prod")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out ClusterStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "prod", out.Cluster)
	assert.Empty(t, out.Err)
	require.Len(t, out.Components, 2)
	assert.Equal(t, "app", out.Components[0].Name)
	assert.Equal(t, "web", out.Components[1].Name)
}

func TestClusterStatusReportsRunError(t *testing.T) {
	reg := NewRegistry()
	reg.Set(engine.RunResult{Cluster: "prod", Err: fmt.Errorf("boom")})

	srv := newTestServer(reg)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/status/clusters/prod")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out ClusterStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "boom", out.Err)
}

func TestClusterStatusUnknownClusterReturnsNotFound(t *testing.T) {
	reg := NewRegistry()
	srv := newTestServer(reg)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/status/clusters/nonexistent")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
