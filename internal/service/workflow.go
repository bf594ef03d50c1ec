package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// Workflow maps the logical anchor roles (initial, resolved target) to status
// ids. Names are matched once per Reload, never per call.
type Workflow struct {
	reference    repository.ReferenceRepository
	logger       *zap.Logger
	openName     string
	resolvedName string

	mu         sync.RWMutex
	openID     string
	resolvedID string
}

// NewWorkflow builds an unloaded workflow; call Reload before use.
func NewWorkflow(reference repository.ReferenceRepository, cfg config.WorkflowConfig, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	openName, resolvedName := cfg.OpenStatus, cfg.ResolvedStatus
	if openName == "" {
		openName = "Open"
	}
	if resolvedName == "" {
		resolvedName = "Resolved"
	}
	return &Workflow{reference: reference, logger: logger, openName: openName, resolvedName: resolvedName}
}

// Reload re-resolves the anchor statuses from reference data. Missing anchors
// are not an error here; operations needing them fail later.
func (w *Workflow) Reload(ctx context.Context) error {
	statuses, err := w.reference.ListStatuses(ctx)
	if err != nil {
		return err
	}

	var openID, resolvedID string
	for _, st := range statuses {
		if openID == "" && st.HasName(w.openName) {
			openID = st.ID
		}
		if resolvedID == "" && st.HasName(w.resolvedName) {
			resolvedID = st.ID
		}
	}

	w.mu.Lock()
	w.openID, w.resolvedID = openID, resolvedID
	w.mu.Unlock()

	if openID == "" || resolvedID == "" {
		w.logger.Warn("workflow anchor status missing",
			zap.String("open_status", w.openName),
			zap.Bool("open_found", openID != ""),
			zap.String("resolved_status", w.resolvedName),
			zap.Bool("resolved_found", resolvedID != ""))
	}
	return nil
}

// OpenStatusID returns the initial and reopen target.
func (w *Workflow) OpenStatusID() (string, error) {
	w.mu.RLock()
	id := w.openID
	w.mu.RUnlock()
	return w.anchor(id, "open", w.openName)
}

// ResolvedStatusID returns the resolve target.
func (w *Workflow) ResolvedStatusID() (string, error) {
	w.mu.RLock()
	id := w.resolvedID
	w.mu.RUnlock()
	return w.anchor(id, "resolved", w.resolvedName)
}

func (w *Workflow) anchor(id, role, name string) (string, error) {
	if id != "" {
		return id, nil
	}
	w.logger.Error("workflow misconfigured: anchor status not present",
		zap.String("role", role),
		zap.String("status_name", name))
	return "", errorutil.NewConfigurationError(
		"required workflow status is not configured",
		map[string]any{"role": role, "status_name": name})
}

// IsResolvedStatus reports whether id is the resolved anchor.
func (w *Workflow) IsResolvedStatus(id string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.resolvedID != "" && w.resolvedID == id
}

// anchorsFrom is used by seeding to report what it just wrote.
func anchorsFrom(statuses []domain.Status, openName, resolvedName string) (open, resolved bool) {
	for _, st := range statuses {
		open = open || st.HasName(openName)
		resolved = resolved || st.HasName(resolvedName)
	}
	return open, resolved
}
