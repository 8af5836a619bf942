package notifier

import (
	"github.com/sirupsen/logrus"

	"github.com/promptvault/prompt-media-repo/common/rcontext"
)

type Kind string

const (
	KindShareReceived Kind = "share_received"
	KindShareAccepted Kind = "share_accepted"
	KindShareRejected Kind = "share_rejected"
)

// Sink delivers user-facing notifications. Delivery is fire-and-forget: an
// implementation may fail internally but must never block or fail the state
// transition that triggered it.
type Sink interface {
	Notify(ctx rcontext.RequestContext, userId string, kind Kind, message string, relatedId string) error
}

// LogSink writes notifications to the log. Real delivery (email, websockets)
// hangs off an external service; this keeps the contract satisfied without it.
type LogSink struct {
}

func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) Notify(ctx rcontext.RequestContext, userId string, kind Kind, message string, relatedId string) error {
	ctx.Log.WithFields(logrus.Fields{
		"notifyUser":    userId,
		"notifyKind":    string(kind),
		"notifyRelated": relatedId,
	}).Info(message)
	return nil
}
