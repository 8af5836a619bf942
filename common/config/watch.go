package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watch reloads the config when the file changes on disk. Callers hold the
// returned watcher open for the life of the process.
func Watch() *fsnotify.Watcher {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logrus.Fatal(err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Write == fsnotify.Write {
					logrus.Info("Config file change detected - reloading")
					if err := Reload(); err != nil {
						logrus.Error("Error reloading config: ", err)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logrus.Error("Error watching config: ", err)
			}
		}
	}()

	if err = watcher.Add(Path); err != nil {
		logrus.Fatal(err)
	}

	return watcher
}
