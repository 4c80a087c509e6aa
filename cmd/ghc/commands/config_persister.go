package commands

import (
	"sync"
)

// ConfigPersister implements the auth.TokenPersister interface by writing
// the token into the CLI config file.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// SaveToken stores token in the config file.
func (p *ConfigPersister) SaveToken(token string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config := loadConfig()

	err := setConfigValue(config, "token", token)
	if err != nil {
		return err
	}

	return saveConfigStruct(config)
}
