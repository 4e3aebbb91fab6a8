package shared

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"p9ify/internal/domain/audit"
	"p9ify/internal/requestctx"
)

const anonymousActor = "anonymous"

// RecordAudit stores an audit event for the request. Failures are logged
// and never fail the request.
func RecordAudit(r *http.Request, svc *audit.Service, action, entityType, entityID string, details any) {
	if svc == nil {
		return
	}
	actor, ok := requestctx.GetSubject(r.Context())
	if !ok {
		actor = anonymousActor
	}
	evt := audit.Event{
		ActorID:    actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  requestctx.GetRequestID(r.Context()),
		IP:         ClientIP(r),
	}
	if err := svc.Record(r.Context(), evt, details); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

// ClientIP prefers the first X-Forwarded-For hop over the socket address.
func ClientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
