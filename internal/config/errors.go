package config

import (
	"errors"
	"fmt"
)

var (
	// ErrLoadConfig wraps failures reading the config file or environment.
	ErrLoadConfig = errors.New("load config failed")
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrStoreDriver is an ErrInvalidConfig for an unsupported store_driver.
	ErrStoreDriver = fmt.Errorf("%w: unknown store_driver", ErrInvalidConfig)
)
