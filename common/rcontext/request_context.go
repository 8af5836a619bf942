package rcontext

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
)

func Initial() RequestContext {
	return RequestContext{
		Context: context.Background(),
		Log:     logrus.WithFields(logrus.Fields{"nocontext": true}),
		Request: nil,
	}.populate()
}

type RequestContext struct {
	context.Context

	// These are also stored on the context object itself
	Log     *logrus.Entry // pr.logger
	Request *http.Request // pr.request
}

func (c RequestContext) populate() RequestContext {
	c.Context = context.WithValue(c.Context, "pr.logger", c.Log)
	c.Context = context.WithValue(c.Context, "pr.request", c.Request)
	return c
}

func (c RequestContext) ReplaceLogger(log *logrus.Entry) RequestContext {
	ctx := context.WithValue(c.Context, "pr.logger", log)
	return RequestContext{
		Context: ctx,
		Log:     log,
		Request: c.Request,
	}
}

func (c RequestContext) LogWithFields(fields logrus.Fields) RequestContext {
	return c.ReplaceLogger(c.Log.WithFields(fields))
}

// ForRequest builds a context for an inbound HTTP request.
func ForRequest(r *http.Request, log *logrus.Entry) RequestContext {
	return RequestContext{
		Context: r.Context(),
		Log:     log,
		Request: r,
	}.populate()
}
