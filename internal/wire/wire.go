// Package wire provides dependency injection for the safecase application.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"io"
	"os"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/golang/glog"

	cliadapter "github.com/example/safecase/internal/adapters/cli"
	"github.com/example/safecase/internal/adapters/rest"
	"github.com/example/safecase/internal/adapters/sqlite"
	"github.com/example/safecase/internal/app"
	"github.com/example/safecase/internal/db"
	"github.com/example/safecase/internal/ports/primary"
)

// Container holds every service built over one database.
type Container struct {
	Checklists primary.ChecklistService
	Templates  primary.TemplateService
	Gates      primary.GateService
	Logs       primary.LogService
	Settings   *sqlite.FacilitySettingsRepository
}

var (
	container *Container
	once      sync.Once
)

// NewContainer wires repositories and services over database.
func NewContainer(database *sql.DB) *Container {
	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	templateRepo := sqlite.NewTemplateRepository(database)
	checklistRepo := sqlite.NewChecklistRepository(database)
	caseRepo := sqlite.NewCaseRepository(database)
	roomRepo := sqlite.NewRoomRepository(database)
	userRepo := sqlite.NewUserRepository(database)
	settingsRepo := sqlite.NewFacilitySettingsRepository(database)
	auditRepo := sqlite.NewAuditLogRepository(database)
	logWriter := sqlite.NewLogWriterAdapter(auditRepo)

	// Create services (primary ports implementation)
	templateService := app.NewTemplateService(templateRepo, logWriter)
	return &Container{
		Checklists: app.NewChecklistService(checklistRepo, templateService, caseRepo, roomRepo, userRepo, logWriter),
		Templates:  templateService,
		Gates:      app.NewGateService(settingsRepo, checklistRepo),
		Logs:       app.NewLogService(auditRepo),
		Settings:   settingsRepo,
	}
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	database, err := db.GetDB()
	if err != nil {
		glog.Fatalf("failed to initialize database: %v", err)
	}
	container = NewContainer(database)
}

// Services returns the singleton container.
func Services() *Container {
	once.Do(initServices)
	return container
}

// ChecklistService returns the singleton ChecklistService instance.
func ChecklistService() primary.ChecklistService {
	return Services().Checklists
}

// TemplateService returns the singleton TemplateService instance.
func TemplateService() primary.TemplateService {
	return Services().Templates
}

// GateService returns the singleton GateService instance.
func GateService() primary.GateService {
	return Services().Gates
}

// LogService returns the singleton LogService instance.
func LogService() primary.LogService {
	return Services().Logs
}

// Router returns the HTTP router over the singleton services.
func Router() chi.Router {
	c := Services()
	return rest.NewRouter(rest.Services{
		Checklists: c.Checklists,
		Templates:  c.Templates,
		Gates:      c.Gates,
		Logs:       c.Logs,
	})
}

// ChecklistAdapter returns a new ChecklistAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func ChecklistAdapter() *cliadapter.ChecklistAdapter {
	return ChecklistAdapterWithOutput(os.Stdout)
}

// ChecklistAdapterWithOutput returns a new ChecklistAdapter writing to the given output.
func ChecklistAdapterWithOutput(out io.Writer) *cliadapter.ChecklistAdapter {
	return cliadapter.NewChecklistAdapter(ChecklistService(), out)
}

// TemplateAdapter returns a new TemplateAdapter writing to stdout.
func TemplateAdapter() *cliadapter.TemplateAdapter {
	return cliadapter.NewTemplateAdapter(TemplateService(), os.Stdout)
}

// GateAdapter returns a new GateAdapter writing to stdout.
func GateAdapter() *cliadapter.GateAdapter {
	return cliadapter.NewGateAdapter(GateService(), os.Stdout)
}

// LogAdapter returns a new LogAdapter writing to stdout.
func LogAdapter() *cliadapter.LogAdapter {
	return cliadapter.NewLogAdapter(LogService(), os.Stdout)
}
