package taarufsvc

import (
	"context"
	"log/slog"
	"time"
)

// ExpiryWindow is how long a request may stay PENDING before it expires.
type ExpiryWindow time.Duration

func (s *service) ExpireStale(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(s.expiry))
	return s.tr.ExpireStale(ctx, cutoff)
}

// RunExpirySweeper expires stale requests on a fixed interval until the
// context is cancelled.
func RunExpirySweeper(ctx context.Context, svc Service, interval time.Duration, log *slog.Logger) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := svc.ExpireStale(ctx)
			if err != nil {
				log.Error("expiry sweep failed", "err", err)
				continue
			}
			if n > 0 {
				log.Info("expired stale taaruf requests", "count", n)
			}
		}
	}
}
