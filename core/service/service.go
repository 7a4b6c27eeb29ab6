// Package service is the query service boundary: authenticate/signout are
// out of scope (spec.md §1 treats session/auth as an external
// collaborator), so this package exposes only Execute and Explain, the
// two request shapes spec.md §6 names against an already-authenticated
// Session. Grounded on the teacher's top-level Query/QueryService
// wiring, generalized from one Datalog query path to the full
// validate -> optimize -> schedule pipeline against a graph statement.
package service

import (
	"context"
	"time"

	"graphd/core"
	"graphd/core/ast"
	"graphd/core/catalog"
	"graphd/core/executor"
	"graphd/core/optimizer"
	"graphd/core/plan"
	"graphd/core/storageclient"
	"graphd/core/validator"
)

// ExecutionResponse is the `execute` boundary's return shape from
// spec.md §6: status, latency, and either a dataset or an error message,
// plus an optional plan description when the caller asked for EXPLAIN.
type ExecutionResponse struct {
	Status    core.Status
	LatencyUS int64
	SpaceName string
	Dataset   *core.DataSet
	Plan      *plan.ExplainNode
}

// statuser is implemented by every validator/catalog error type so
// Execute can recover a precise core.Status instead of a bare
// EXECUTION_ERROR for user mistakes like an unknown tag or a type
// mismatch.
type statuser interface {
	Status() core.Status
}

// Service wires the validator, optimizer, scheduler, and storage client
// into the single Execute/Explain entry point, caching optimized plans
// keyed by statement+options the way the teacher's QueryEngine reuses a
// PlannerCache across repeated queries.
type Service struct {
	Catalog     catalog.Catalog
	Storage     *storageclient.Client
	Registry    *executor.Registry
	Cache       *optimizer.PlanCache
	Rules       []optimizer.Rule
	Options     optimizer.Options
	MemoryLimit int64
	Hooks       executor.Context
}

// New builds a Service. cache and hooks may be nil (no plan caching, no
// instrumentation); rules defaults to optimizer.DefaultRules() when nil.
func New(cat catalog.Catalog, storage *storageclient.Client, registry *executor.Registry, cache *optimizer.PlanCache, rules []optimizer.Rule, memoryLimit int64, hooks executor.Context) *Service {
	if rules == nil {
		rules = optimizer.DefaultRules()
	}
	return &Service{
		Catalog: cat, Storage: storage, Registry: registry, Cache: cache,
		Rules: rules, Options: optimizer.Options{EnablePushdown: true, EnableDecorrelation: true},
		MemoryLimit: memoryLimit, Hooks: hooks,
	}
}

// Execute validates, plans, and runs stmt, returning the shape spec.md
// §6 defines for the query service boundary. A user error (syntax,
// semantic, permission) never panics or returns a bare Go error without
// a matching Status; every failure path sets ExecutionResponse.Status.
func (s *Service) Execute(ctx context.Context, session catalog.Session, spaceID int32, stmt ast.Statement, params map[string]core.Value) (ExecutionResponse, error) {
	start := time.Now()
	if err := s.Catalog.CheckPermission(ctx, session, spaceID, requiredPermission(stmt)); err != nil {
		return permissionErrorResponse(err, start), nil
	}

	a, root, err := s.plan(ctx, session, spaceID, stmt)
	if err != nil {
		return errorResponse(err, start), nil
	}

	ec := executor.NewExecContext(s.Catalog, session, spaceID, params, s.Registry, s.MemoryLimit, s.Hooks, s.Storage)
	sched := executor.NewScheduler()
	ds, err := sched.Execute(ctx, ec, a, root)
	if err != nil {
		return errorResponse(err, start), nil
	}

	return ExecutionResponse{
		Status:    core.OK(),
		LatencyUS: time.Since(start).Microseconds(),
		SpaceName: s.spaceName(ctx, spaceID),
		Dataset:   ds,
	}, nil
}

// spaceName resolves spaceID to its name for the response, falling back
// to empty when the lookup fails (space resolution was already proven
// valid during validation/optimization).
func (s *Service) spaceName(ctx context.Context, spaceID int32) string {
	info, err := s.Catalog.SpaceByID(ctx, spaceID)
	if err != nil {
		return ""
	}
	return info.Name
}

// Explain validates and plans stmt like Execute, but never runs the
// scheduler, returning the resulting plan's description tree instead.
func (s *Service) Explain(ctx context.Context, session catalog.Session, spaceID int32, stmt ast.Statement) (ExecutionResponse, error) {
	start := time.Now()
	if err := s.Catalog.CheckPermission(ctx, session, spaceID, requiredPermission(stmt)); err != nil {
		return permissionErrorResponse(err, start), nil
	}
	a, root, err := s.plan(ctx, session, spaceID, stmt)
	if err != nil {
		return errorResponse(err, start), nil
	}
	return ExecutionResponse{
		Status:    core.OK(),
		LatencyUS: time.Since(start).Microseconds(),
		SpaceName: s.spaceName(ctx, spaceID),
		Plan:      plan.Explain(a, root),
	}, nil
}

// plan validates and optimizes stmt, consulting and populating the plan
// cache when one is configured, mirroring the teacher's
// QueryEngine.plan's cache-then-validate-then-optimize sequence.
func (s *Service) plan(ctx context.Context, session catalog.Session, spaceID int32, stmt ast.Statement) (*plan.Arena, plan.NodeRef, error) {
	key := ""
	if s.Cache != nil {
		key = optimizer.ComputeKey(stmt, s.Options)
		if cached, ok := s.Cache.Get(key); ok {
			return cached.Arena, cached.Root, nil
		}
	}

	qctx := validator.NewQueryContext(s.Catalog, session, spaceID)
	root, err := validator.Lower(ctx, qctx, stmt)
	if err != nil {
		return nil, 0, err
	}
	root, err = optimizer.Optimize(qctx.Arena, root, s.Rules)
	if err != nil {
		return nil, 0, err
	}

	if s.Cache != nil {
		s.Cache.Set(key, &optimizer.CachedPlan{Arena: qctx.Arena, Root: root})
	}
	return qctx.Arena, root, nil
}

// requiredPermission classifies a statement as read or write for the
// catalog's permission check; DDL clauses require admin.
func requiredPermission(stmt ast.Statement) catalog.Permission {
	perm := catalog.PermRead
	for _, c := range stmt.Clauses {
		switch c.(type) {
		case ast.DDLClause:
			return catalog.PermAdmin
		case ast.InsertVerticesClause, ast.InsertEdgesClause, ast.DeleteVerticesClause,
			ast.DeleteTagsClause, ast.DeleteEdgesClause, ast.UpdateClause:
			perm = catalog.PermWrite
		}
	}
	return perm
}

// errorResponse converts err into an ExecutionResponse, preferring a
// precise Status from a statuser error over a bare EXECUTION_ERROR.
func errorResponse(err error, start time.Time) ExecutionResponse {
	var status core.Status
	if se, ok := err.(statuser); ok {
		status = se.Status()
	} else if s, ok := err.(core.Status); ok {
		status = s
	} else {
		status = core.NewStatus(core.EXECUTION_ERROR, "%s", err.Error())
	}
	return ExecutionResponse{Status: status, LatencyUS: time.Since(start).Microseconds()}
}

// permissionErrorResponse converts a CheckPermission failure into a
// PERMISSION_ERROR status, unless the catalog already returned a more
// specific statuser error (e.g. SPACE_NOT_FOUND for an unknown space).
func permissionErrorResponse(err error, start time.Time) ExecutionResponse {
	if _, ok := err.(statuser); ok {
		return errorResponse(err, start)
	}
	return ExecutionResponse{
		Status:    core.NewStatus(core.PERMISSION_ERROR, "%s", err.Error()),
		LatencyUS: time.Since(start).Microseconds(),
	}
}
