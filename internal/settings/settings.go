package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gateconsole/pkg/models"
)

// Key is the fixed storage key of the engine connection setting.
const Key = "engine-config"

// ErrInvalid is returned when a host/port pair cannot be saved.
var ErrInvalid = errors.New("invalid engine settings")

// Store persists the single engine connection setting. Load returns
// (nil, nil) when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) (*models.EngineConfig, error)
	Save(ctx context.Context, cfg models.EngineConfig) error
	Close() error
}

// BaseURL derives the engine base URL from host and port.
func BaseURL(host, port string) string {
	return "http://" + host + ":" + port
}

// Derive builds a complete EngineConfig from host and port.
func Derive(host, port string) models.EngineConfig {
	return models.EngineConfig{Host: host, Port: port, BaseURL: BaseURL(host, port)}
}

// Merge overlays non-blank patch fields on current and re-derives the base URL.
// Host and port are trimmed before they are stored.
func Merge(current, patch models.EngineConfig) models.EngineConfig {
	host := strings.TrimSpace(current.Host)
	if h := strings.TrimSpace(patch.Host); h != "" {
		host = h
	}
	port := strings.TrimSpace(current.Port)
	if p := strings.TrimSpace(patch.Port); p != "" {
		port = p
	}
	return Derive(host, port)
}

// Validate checks that host is set and port is a TCP port number. Values are
// checked as stored, so untrimmed input is rejected.
func Validate(cfg models.EngineConfig) error {
	if cfg.Host == "" || strings.TrimSpace(cfg.Host) != cfg.Host {
		return fmt.Errorf("%w: host %q is not valid", ErrInvalid, cfg.Host)
	}
	if strings.ContainsAny(cfg.Host, "/?# ") {
		return fmt.Errorf("%w: host %q must not contain a path or spaces", ErrInvalid, cfg.Host)
	}
	if cfg.Port == "" {
		return fmt.Errorf("%w: port is required", ErrInvalid)
	}
	n, err := strconv.Atoi(cfg.Port)
	if err != nil || strings.HasPrefix(cfg.Port, "+") {
		return fmt.Errorf("%w: port %q is not a number", ErrInvalid, cfg.Port)
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("%w: port %d is out of range 1-65535", ErrInvalid, n)
	}
	return nil
}
