package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/screenwatch/screenwatch/internal/knowledge"
	"github.com/screenwatch/screenwatch/internal/usage"
)

// loadRecords resolves the query against the primary source first: a fresh
// private snapshot of knowledgeC.db per call. Only the classified "source
// unavailable" conditions (absent file, permission denied) fall through to
// the sync store; anything else, a corrupt snapshot in particular, must
// propagate rather than read as emptiness.
func (s *Server) loadRecords(ctx context.Context, start, end *time.Time) ([]usage.Record, error) {
	snap, err := knowledge.CopySnapshot(s.cfg.SourceDBPath)
	if err != nil {
		if errors.Is(err, knowledge.ErrNotFound) || errors.Is(err, knowledge.ErrPermissionDenied) {
			s.log.Debug("primary source unavailable, serving from sync store", "reason", err)
			records, qerr := s.store.Query(ctx, start, end)
			if qerr != nil {
				// Both resolution steps failed. The classified source
				// condition drives the response status; the store
				// failure rides along as detail.
				return nil, fmt.Errorf("%w (sync store fallback also failed: %v)", err, qerr)
			}
			return records, nil
		}
		return nil, err
	}
	defer snap.Close()

	return knowledge.NewExtractor(snap.DBPath).Usage(ctx, start, end)
}

// sourceStatus maps the classified error taxonomy onto response codes for
// errors that do surface out of loadRecords. The classified conditions only
// reach here when the sync store fallback failed too; a healthy fallback
// swallows them.
func sourceStatus(err error) (int, string) {
	switch {
	case errors.Is(err, knowledge.ErrNotFound):
		return http.StatusServiceUnavailable,
			"Screen Time may not be enabled, or the database path is wrong"
	case errors.Is(err, knowledge.ErrPermissionDenied):
		return http.StatusForbidden,
			"grant Full Disk Access to the process running this server"
	default:
		return http.StatusInternalServerError, ""
	}
}
