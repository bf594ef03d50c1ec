package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type seedStatus struct {
	name    string
	isFinal bool
	sort    int
}

type seedPriority struct {
	name                 string
	response, resolution int
	sort                 int
}

var (
	defaultStatuses = []seedStatus{
		{"Open", false, 1},
		{"In Progress", false, 2},
		{"Pending", false, 3},
		{"Resolved", true, 4},
		{"Closed", true, 5},
	}
	defaultPriorities = []seedPriority{
		{"Low", 24, 120, 1},
		{"Medium", 8, 72, 2},
		{"High", 4, 24, 3},
		{"Critical", 1, 8, 4},
	}
	defaultCategories  = []string{"Hardware", "Software", "Network", "Access"}
	defaultDepartments = []string{
		"Information & Communication Technology",
		"Human Resource",
		"Accounts",
		"Procurement",
		"Administration",
		"Customer Support",
	}
)

// SeedResult counts what a seed run inserted.
type SeedResult struct {
	Statuses    int
	Priorities  int
	Categories  int
	Departments int
	AdminID     string
}

// SeedService writes default reference data. Running it twice inserts nothing new.
type SeedService struct {
	reference *ReferenceService
	accounts  *AuthService
	workflow  *Workflow
	auth      config.AuthConfig
	wf        config.WorkflowConfig
	logger    *zap.Logger
}

// NewSeedService constructs the seeder.
func NewSeedService(reference *ReferenceService, accounts *AuthService, workflow *Workflow, authCfg config.AuthConfig, wfCfg config.WorkflowConfig, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{
		reference: reference,
		accounts:  accounts,
		workflow:  workflow,
		auth:      authCfg,
		wf:        wfCfg,
		logger:    logger,
	}
}

// Seed inserts missing rows and reloads the workflow anchors.
func (s *SeedService) Seed(ctx context.Context) (SeedResult, error) {
	var result SeedResult

	statuses, err := s.reference.ListStatuses(ctx)
	if err != nil {
		return result, err
	}
	for _, st := range defaultStatuses {
		if hasStatus(statuses, st.name) {
			continue
		}
		created, err := s.reference.CreateStatus(ctx, st.name, st.isFinal, st.sort)
		if err != nil {
			return result, err
		}
		statuses = append(statuses, *created)
		result.Statuses++
	}

	priorities, err := s.reference.ListPriorities(ctx)
	if err != nil {
		return result, err
	}
	for _, p := range defaultPriorities {
		if hasName(len(priorities), func(i int) string { return priorities[i].Name }, p.name) {
			continue
		}
		if _, err := s.reference.CreatePriority(ctx, p.name, p.response, p.resolution, p.sort); err != nil {
			return result, err
		}
		result.Priorities++
	}

	categories, err := s.reference.ListCategories(ctx)
	if err != nil {
		return result, err
	}
	for _, name := range defaultCategories {
		if hasName(len(categories), func(i int) string { return categories[i].Name }, name) {
			continue
		}
		if _, err := s.reference.CreateCategory(ctx, name, "", nil, nil); err != nil {
			return result, err
		}
		result.Categories++
	}

	departments, err := s.reference.ListDepartments(ctx)
	if err != nil {
		return result, err
	}
	for _, name := range defaultDepartments {
		if hasName(len(departments), func(i int) string { return departments[i].Name }, name) {
			continue
		}
		if _, err := s.reference.CreateDepartment(ctx, name, ""); err != nil {
			return result, err
		}
		result.Departments++
	}

	adminID, err := s.seedAdmin(ctx)
	if err != nil {
		return result, err
	}
	result.AdminID = adminID

	open, resolved := anchorsFrom(statuses, s.wf.OpenStatus, s.wf.ResolvedStatus)
	s.logger.Info("seed completed",
		zap.Int("statuses", result.Statuses),
		zap.Int("priorities", result.Priorities),
		zap.Int("categories", result.Categories),
		zap.Int("departments", result.Departments),
		zap.Bool("open_anchor", open),
		zap.Bool("resolved_anchor", resolved))

	if s.workflow == nil {
		return result, nil
	}
	return result, s.workflow.Reload(ctx)
}

func (s *SeedService) seedAdmin(ctx context.Context) (string, error) {
	if s.accounts == nil || strings.TrimSpace(s.auth.BootstrapAdminEmail) == "" {
		return "", nil
	}
	user, err := s.accounts.CreateAccount(ctx, RegisterInput{
		Name:     "Administrator",
		Email:    s.auth.BootstrapAdminEmail,
		Password: s.auth.BootstrapAdminPassword,
	}, domain.RoleAdmin)
	if errorutil.HasCode(err, errorutil.CodeConflict) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func hasStatus(statuses []domain.Status, name string) bool {
	for _, st := range statuses {
		if st.HasName(name) {
			return true
		}
	}
	return false
}

func hasName(n int, nameAt func(int) string, name string) bool {
	for i := 0; i < n; i++ {
		if strings.EqualFold(nameAt(i), name) {
			return true
		}
	}
	return false
}
