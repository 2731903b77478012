package worker

import (
	"github.com/spec-kit/user-service/internal/service"
)

// StartAuditWorker registers audit handlers. Handlers run synchronously on
// the publishing request.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}
