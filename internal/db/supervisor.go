package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Supervisor observa el ciclo de vida de la conexión: hace ping con un
// retraso fijo, indefinidamente, y registra transiciones de estado
// (connected/disconnected/reconnecting). Las operaciones en curso nunca
// se encolan mientras no hay conexión; fallan de inmediato y la capa de
// errores las traduce a 503.
type Supervisor struct {
	pool     *pgxpool.Pool
	logger   *zap.Logger
	interval time.Duration
}

// NewSupervisor crea un supervisor para el pool dado.
func NewSupervisor(pool *pgxpool.Pool, logger *zap.Logger, interval time.Duration) *Supervisor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Supervisor{pool: pool, logger: logger, interval: interval}
}

// Run bloquea hasta que ctx se cancele. Debe ejecutarse en su propia
// goroutine desde main.
func (s *Supervisor) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	connected := true
	s.logger.Info("database connected")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := s.pool.Ping(pingCtx)
			cancel()

			switch {
			case err != nil && connected:
				connected = false
				s.logger.Error("database disconnected", zap.Error(err))
			case err != nil:
				s.logger.Warn("database reconnecting", zap.Error(err))
			case !connected:
				connected = true
				s.logger.Info("database reconnected")
			}
		}
	}
}
