package webserver

import (
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteralShareRoutesAreNotShadowed(t *testing.T) {
	rtr := makeRouter(&handlers{deps: &Dependencies{}})

	cases := []struct {
		method string
		path   string
		action string
	}{
		{"GET", "/api/v1/shares/incoming", "list_incoming_shares"},
		{"GET", "/api/v1/shares/outgoing", "list_outgoing_shares"},
		{"GET", "/api/v1/shares/abc123", "get_share"},
		{"POST", "/api/v1/shares/abc123/accept", "accept_share"},
	}
	for _, c := range cases {
		req := httptest.NewRequest(c.method, c.path, nil)
		m := &mux.RouteMatch{}
		require.True(t, rtr.Match(req, m), c.path)
		assert.Equal(t, c.action, m.Route.GetName(), c.path)
	}
}

func TestEveryRouteIsRegistered(t *testing.T) {
	routes := buildRoutes(&handlers{deps: &Dependencies{}})
	rtr := makeRouter(&handlers{deps: &Dependencies{}})

	for _, r := range routes {
		assert.NotNil(t, rtr.GetRoute(r.action), r.action)
	}
}
