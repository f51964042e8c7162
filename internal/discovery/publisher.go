package discovery

import (
	"fmt"

	"github.com/sir_venger/cactus/internal/models"
	"github.com/sir_venger/cactus/pkg/dropproto"
	"github.com/sir_venger/cactus/pkg/logger"
)

// Publish объявляет запись в домене local. и запоминает её до Close.
// Повторов нет: если регистрация не удалась, вызывающий решает, продолжать ли работу.
func (c *Client) Publish(rec models.ServiceRecord) error {
	if rec.Port <= 0 {
		return fmt.Errorf("publish %s: invalid port %d", rec.Name, rec.Port)
	}

	reg, err := c.register(rec.Name, rec.ServiceType(), dropproto.ServiceDomain, rec.Port, rec.TXT())
	if err != nil {
		return fmt.Errorf("publish %s: %w", rec.Name, err)
	}

	c.mu.Lock()
	c.published = append(c.published, reg)
	c.mu.Unlock()

	logger.Info("service published", "instance", rec.Name, "type", rec.ServiceType(), "port", rec.Port)
	return nil
}

// Published сообщает, есть ли активные объявления.
func (c *Client) Published() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.published) > 0
}
