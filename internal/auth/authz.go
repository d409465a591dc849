package auth

import (
	"errors"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/leaguedesk/roster-service/internal/domain"
	apperrors "github.com/leaguedesk/roster-service/pkg/util/errorutil"
)

type Mode string

const (
	ModeEnforce  Mode = "enforce"
	ModeShadow   Mode = "shadow"
	ModeDisabled Mode = "disabled"
)

// Objects and actions named by the role policy.
const (
	ObjectStaff     = "staff"
	ObjectStaffTags = "staff_tags"
	ObjectTags      = "tags"
	ObjectApprovals = "approvals"

	ActionRead        = "read"
	ActionPropose     = "propose"
	ActionBulk        = "bulk"
	ActionManage      = "manage"
	ActionReadPending = "read_pending"
	ActionResolve     = "resolve"
	ActionReadSent    = "read_sent"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

type permission struct {
	object string
	action string
}

var clubPermissions = []permission{
	{ObjectStaff, ActionRead},
	{ObjectStaffTags, ActionPropose},
	{ObjectStaffTags, ActionBulk},
	{ObjectTags, ActionRead},
	{ObjectApprovals, ActionReadSent},
}

var leagueOnlyPermissions = []permission{
	{ObjectTags, ActionManage},
	{ObjectApprovals, ActionReadPending},
	{ObjectApprovals, ActionResolve},
}

// ParseMode validates a configured mode; empty means enforce.
func ParseMode(raw string) (Mode, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ModeEnforce, nil
	}
	switch Mode(raw) {
	case ModeEnforce, ModeShadow, ModeDisabled:
		return Mode(raw), nil
	default:
		return "", errors.New("authz: invalid mode (expected enforce|shadow|disabled)")
	}
}

// SubjectFromRole maps an actor role onto a policy subject.
func SubjectFromRole(role domain.ActorRole) string {
	slug := strings.ToLower(strings.TrimSpace(string(role)))
	if slug == "" {
		slug = "anonymous"
	}
	return "role:" + slug
}

// Authorizer checks role permissions with a casbin enforcer.
type Authorizer struct {
	enforcer *casbin.Enforcer
	mode     Mode
	logger   *zap.Logger
}

// NewAuthorizer builds the enforcer with the built-in role policy.
func NewAuthorizer(mode Mode, logger *zap.Logger) (*Authorizer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	league := SubjectFromRole(domain.ActorRoleLeagueAdmin)
	club := SubjectFromRole(domain.ActorRoleClub)
	for _, p := range clubPermissions {
		if _, err := enforcer.AddPolicy(club, p.object, p.action); err != nil {
			return nil, err
		}
		if _, err := enforcer.AddPolicy(league, p.object, p.action); err != nil {
			return nil, err
		}
	}
	for _, p := range leagueOnlyPermissions {
		if _, err := enforcer.AddPolicy(league, p.object, p.action); err != nil {
			return nil, err
		}
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authorizer{enforcer: enforcer, mode: mode, logger: logger}, nil
}

// Authorize reports whether the role may perform the action and whether the
// decision is enforced.
func (a *Authorizer) Authorize(role domain.ActorRole, object, action string) (allowed bool, enforced bool, err error) {
	switch a.mode {
	case ModeDisabled:
		return true, false, nil
	case ModeShadow:
		ok, err := a.enforcer.Enforce(SubjectFromRole(role), object, action)
		if err != nil {
			return false, false, err
		}
		return ok, false, nil
	case ModeEnforce:
		ok, err := a.enforcer.Enforce(SubjectFromRole(role), object, action)
		if err != nil {
			return false, true, err
		}
		return ok, true, nil
	default:
		return false, false, errors.New("authz: unknown mode")
	}
}

// RequirePermission guards a route. Must run after AuthMiddleware.
func (a *Authorizer) RequirePermission(object, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := ActorFromContext(c)
		if err != nil {
			return err
		}
		allowed, enforced, err := a.Authorize(actor.Role, object, action)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		if !allowed {
			if !enforced {
				a.logger.Warn("authz shadow deny",
					zap.String("role", string(actor.Role)),
					zap.String("object", object),
					zap.String("action", action))
				return c.Next()
			}
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
