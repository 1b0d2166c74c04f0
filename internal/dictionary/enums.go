// ABOUTME: WebRole and Environment enumerations shared across services
// ABOUTME: Roles carry integer ranks used for all permission comparisons

package dictionary

import "fmt"

// WebRole identifies the permission level of a principal.
type WebRole string

const (
	WebRoleUser      WebRole = "USER"
	WebRoleDeveloper WebRole = "DEVELOPER"
	WebRoleAdmin     WebRole = "ADMIN"
	WebRoleSystem    WebRole = "SYSTEM"
)

// roleRanks orders the roles. Comparisons go through Rank so new roles can
// slot in between existing ones.
var roleRanks = map[WebRole]int{
	WebRoleUser:      1,
	WebRoleDeveloper: 2,
	WebRoleAdmin:     3,
	WebRoleSystem:    4,
}

// Rank returns the integer ordering of the role. Unknown roles rank 0,
// below every valid role.
func (r WebRole) Rank() int {
	return roleRanks[r]
}

// IsValid reports whether the role is a known role.
func (r WebRole) IsValid() bool {
	_, ok := roleRanks[r]
	return ok
}

// ParseWebRole converts a string into a WebRole.
func ParseWebRole(s string) (WebRole, error) {
	r := WebRole(s)
	if !r.IsValid() {
		return "", fmt.Errorf("unknown web role %q", s)
	}
	return r, nil
}

// Environment is the deployment stage a process runs in and a token is
// signed for.
type Environment string

const (
	EnvironmentLocal       Environment = "LOCAL"
	EnvironmentTest        Environment = "TEST"
	EnvironmentDevelopment Environment = "DEVELOPMENT"
	EnvironmentProduction  Environment = "PRODUCTION"
)

// IsValid reports whether the environment is a known stage.
func (e Environment) IsValid() bool {
	switch e {
	case EnvironmentLocal, EnvironmentTest, EnvironmentDevelopment, EnvironmentProduction:
		return true
	}
	return false
}

// ParseEnvironment converts a string into an Environment.
func ParseEnvironment(s string) (Environment, error) {
	e := Environment(s)
	if !e.IsValid() {
		return "", fmt.Errorf("unknown environment %q", s)
	}
	return e, nil
}
