package statusapi

import (
	"context"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"
)

// Addr is the status server listen address; empty disables it, mirroring
// pkg/apiserver/utils/profiling's Addr/AddFlags pattern.
var Addr = ""

// AddFlags registers the --status-addr flag.
func AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&Addr, "status-addr", Addr, "if not empty, serve read-only run status as JSON at this address")
}

// StartServer runs the status HTTP server until ctx is done, sending any
// listen error to errChan. A no-op if Addr is empty.
func StartServer(ctx context.Context, reg *Registry, errChan chan error) {
	if Addr == "" {
		return
	}

	container := restful.NewContainer()
	container.Add(WebService(reg))

	srv := &http.Server{Addr: Addr, Handler: container}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	klog.Infof("statusapi: serving at %s", Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		if errChan != nil {
			errChan <- err
		} else {
			klog.Errorf("statusapi: %v", err)
		}
	}
}
