package server

import "log/slog"

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the operational logger. The default is a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}
