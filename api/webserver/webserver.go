package webserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/promptvault/prompt-media-repo/archival"
	"github.com/promptvault/prompt-media-repo/common/config"
	"github.com/promptvault/prompt-media-repo/common/rcontext"
	"github.com/promptvault/prompt-media-repo/mediastore"
	"github.com/promptvault/prompt-media-repo/sharing"
	"github.com/promptvault/prompt-media-repo/types"
)

type AccountDirectory interface {
	GetById(ctx rcontext.RequestContext, id string) (*types.Account, error)
}

type Dependencies struct {
	Media    *mediastore.Store
	Broker   *sharing.Broker
	Archives *archival.Service
	Accounts AccountDirectory
}

var srv *http.Server

type route struct {
	method string
	path   string
	action string
	fn     handlerFn
}

// buildRoutes returns the routes in registration order. mux matches in that
// order, so the literal /shares/incoming and /shares/outgoing paths must come
// before the /shares/{offerId} template or the template swallows them.
func buildRoutes(h *handlers) []route {
	return []route{
		{"GET", "/api/v1/media", "list_media", h.listMedia},
		{"POST", "/api/v1/media/sync", "sync_media", h.syncMedia},
		{"POST", "/api/v1/shares", "offer_share", h.offerShare},
		{"GET", "/api/v1/shares/incoming", "list_incoming_shares", h.listIncoming},
		{"GET", "/api/v1/shares/outgoing", "list_outgoing_shares", h.listOutgoing},
		{"GET", "/api/v1/shares/{offerId}", "get_share", h.getShare},
		{"POST", "/api/v1/shares/{offerId}/accept", "accept_share", h.acceptShare},
		{"POST", "/api/v1/shares/{offerId}/reject", "reject_share", h.rejectShare},
		{"POST", "/api/v1/archive/export", "export_archive", h.exportArchive},
		{"POST", "/api/v1/archive/import", "import_archive", h.importArchive},
		{"GET", "/api/v1/backup", "write_backup", h.writeBackup},
		{"POST", "/api/v1/backup/restore", "restore_backup", h.restoreBackup},
	}
}

func makeRouter(h *handlers) *mux.Router {
	rtr := mux.NewRouter()
	for _, r := range buildRoutes(h) {
		logrus.Info("Registering route: " + r.method + " " + r.path)
		rtr.Handle(r.path, wrap(r.action, r.fn)).Methods(r.method).Name(r.action)
	}
	rtr.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{\"ok\":true}"))
	}).Methods("GET")
	return rtr
}

func Init(deps *Dependencies) {
	rtr := makeRouter(&handlers{deps: deps})

	address := config.Get().General.BindAddress + ":" + strconv.Itoa(config.Get().General.Port)
	srv = &http.Server{
		Addr:         address,
		Handler:      rtr,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
	}

	go func() {
		logrus.Info("Started up. Listening at http://" + address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatal(err)
		}
	}()
}

func Stop() {
	if srv != nil {
		_ = srv.Close()
		srv = nil
	}
}
