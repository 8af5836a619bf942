package pool

import (
	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"github.com/promptvault/prompt-media-repo/common/config"
)

var ShareQueue *Queue
var ArchiveQueue *Queue

func Init() {
	var err error
	if ShareQueue, err = NewQueue(config.Get().Sharing.NumWorkers, "sharing"); err != nil {
		sentry.CaptureException(err)
		logrus.Error("Error setting up sharing queue")
		logrus.Fatal(err)
	}
	if ArchiveQueue, err = NewQueue(config.Get().Archives.NumWorkers, "archives"); err != nil {
		sentry.CaptureException(err)
		logrus.Error("Error setting up archives queue")
		logrus.Fatal(err)
	}
}

func Drain() {
	ShareQueue.Release()
	ArchiveQueue.Release()
}
