package statusapi

import (
	"net/http"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

var versionPrefix = "/api/v1"

// ComponentStatus is the wire projection of one Component: its terminal
// or in-progress lifecycle state (spec §4.6), not the resource payload
// itself.
type ComponentStatus struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	State   string `json:"state"`
	Elapsed string `json:"elapsed"`
}

// ClusterStatus is one cluster's latest known run outcome.
type ClusterStatus struct {
	Cluster    string            `json:"cluster"`
	Err        string            `json:"error,omitempty"`
	Components []ComponentStatus `json:"components"`
}

// WebService builds the status route over reg, adapted from
// interfaces/api/application.go's GetWebServiceRoute onto a single
// in-memory registry lookup instead of a service-layer/datastore call.
func WebService(reg *Registry) *restful.WebService {
	ws := new(restful.WebService)
	ws.Path(versionPrefix + "/status").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON).
		Doc("read-only status over known cluster runs")

	tags := []string{"status"}

	ws.Route(ws.GET("/clusters").To(listClusters(reg)).
		Doc("list clusters known to the registry").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusOK, "OK", []string{}))

	ws.Route(ws.GET("/clusters/{cluster}").To(clusterStatus(reg)).
		Doc("get one cluster's component tree status").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Param(ws.PathParameter("cluster", "cluster name")).
		Returns(http.StatusOK, "OK", ClusterStatus{}).
		Returns(http.StatusNotFound, "Not Found", nil))

	return ws
}

func listClusters(reg *Registry) restful.RouteFunction {
	return func(req *restful.Request, res *restful.Response) {
		if err := res.WriteEntity(reg.List()); err != nil {
			_ = res.WriteError(http.StatusInternalServerError, err)
		}
	}
}

func clusterStatus(reg *Registry) restful.RouteFunction {
	return func(req *restful.Request, res *restful.Response) {
		name := req.PathParameter("cluster")
		result, ok := reg.Get(name)
		if !ok {
			_ = res.WriteErrorString(http.StatusNotFound, "unknown cluster")
			return
		}

		out := ClusterStatus{Cluster: result.Cluster}
		if result.Err != nil {
			out.Err = result.Err.Error()
		}
		if result.Root != nil {
			result.Root.Walk(func(c *engine.Component) {
				out.Components = append(out.Components, ComponentStatus{
					Name:    c.Name,
					Kind:    string(c.Kind),
					State:   c.State().String(),
					Elapsed: c.Elapsed().String(),
				})
			})
		}
		if err := res.WriteEntity(out); err != nil {
			_ = res.WriteError(http.StatusInternalServerError, err)
		}
	}
}
