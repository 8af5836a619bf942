package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

type runtimeConfig struct {
	MigrationsPath string
}

var Runtime = &runtimeConfig{}
var Path = "prompt-repo.yaml"

var instance *MainConfig
var singletonLock = &sync.Once{}

func reloadConfig() (*MainConfig, error) {
	c := NewDefaultMainConfig()

	// Write a default config if the one given doesn't exist
	_, err := os.Stat(Path)
	if os.IsNotExist(err) {
		fmt.Println("Generating new configuration...")
		configBytes, err := yaml.Marshal(c)
		if err != nil {
			return nil, err
		}
		if err = os.WriteFile(Path, configBytes, 0644); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	buf, err := os.ReadFile(Path)
	if err != nil {
		return nil, err
	}
	if err = yaml.Unmarshal(buf, c); err != nil {
		return nil, err
	}

	return c, nil
}

func Get() *MainConfig {
	if instance == nil {
		singletonLock.Do(func() {
			c, err := reloadConfig()
			if err != nil {
				logrus.Fatal("Error loading config: ", err)
			}
			instance = c
		})
	}
	return instance
}

func Reload() error {
	c, err := reloadConfig()
	if err != nil {
		return err
	}
	instance = c
	return nil
}
