package authz

import "github.com/ErlanBelekov/jobbee-api/internal/domain"

type Operation string

const (
	OpCreateJob     Operation = "job.create"
	OpUpdateJob     Operation = "job.update"
	OpDeleteJob     Operation = "job.delete"
	OpAppliedJobs   Operation = "jobs.applied"
	OpPublishedJobs Operation = "jobs.published"
	OpListUsers     Operation = "users.list"
	OpDeleteUser    Operation = "users.delete"
)

var (
	employerOrAdmin = []domain.Role{domain.RoleEmployer, domain.RoleAdmin}
	userOnly        = []domain.Role{domain.RoleUser}
	adminOnly       = []domain.Role{domain.RoleAdmin}
)

// Policies is the route-level role table. Operations absent from it are open
// to any authenticated actor.
var Policies = map[Operation][]domain.Role{
	OpCreateJob:     employerOrAdmin,
	OpUpdateJob:     employerOrAdmin,
	OpDeleteJob:     employerOrAdmin,
	OpAppliedJobs:   userOnly,
	OpPublishedJobs: employerOrAdmin,
	OpListUsers:     adminOnly,
	OpDeleteUser:    adminOnly,
}

func RolesFor(op Operation) []domain.Role {
	return Policies[op]
}
