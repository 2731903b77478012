package auth

import (
	"fmt"

	"github.com/spec-kit/user-service/internal/domain"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// Operation names a user-directory action subject to the policy.
type Operation uint8

const (
	OpCreate Operation = iota + 1
	OpLogin
	OpRead
	OpList
	OpUpdate
	OpActivate
	OpDeactivate
	OpDelete
)

func (o Operation) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpLogin:
		return "login"
	case OpRead:
		return "read"
	case OpList:
		return "list"
	case OpUpdate:
		return "update"
	case OpActivate:
		return "activate"
	case OpDeactivate:
		return "deactivate"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("operation(%d)", uint8(o))
	}
}

// Authorize decides whether the caller may perform op against targetID and
// returns the filter the store lookup must apply. A denial is a Forbidden
// error; a gated operation without claims is Unauthenticated.
func Authorize(claims *domain.Claims, op Operation, targetID string) (domain.UserFilter, error) {
	switch op {
	case OpCreate, OpLogin:
		return domain.UserFilter{}, nil
	}

	if claims == nil {
		return domain.UserFilter{}, apperrors.NewUnauthenticated(apperrors.MsgPermissionDenied)
	}

	switch claims.Role {
	case domain.RoleSuperAdmin:
		return superAdminFilter(op, targetID)
	case domain.RoleUser:
		return userFilter(claims, op, targetID)
	default:
		return domain.UserFilter{}, apperrors.NewPermissionDenied()
	}
}

func superAdminFilter(op Operation, targetID string) (domain.UserFilter, error) {
	switch op {
	case OpList:
		return domain.UserFilter{}, nil
	case OpRead, OpUpdate, OpActivate, OpDeactivate, OpDelete:
		return domain.UserFilter{ID: targetID}, nil
	default:
		return domain.UserFilter{}, apperrors.NewPermissionDenied()
	}
}

func userFilter(claims *domain.Claims, op Operation, targetID string) (domain.UserFilter, error) {
	switch op {
	case OpList:
		return domain.UserFilter{ActiveOnly: true}, nil
	case OpRead:
		return domain.UserFilter{ID: targetID, ActiveOnly: true}, nil
	case OpUpdate:
		// A foreign target is excluded by the filter, so it surfaces as not found.
		return domain.UserFilter{ID: targetID, Email: claims.Email}, nil
	case OpDeactivate:
		if targetID != claims.ID {
			return domain.UserFilter{}, apperrors.NewPermissionDenied()
		}
		return domain.UserFilter{ID: targetID}, nil
	case OpActivate, OpDelete:
		return domain.UserFilter{}, apperrors.NewPermissionDenied()
	default:
		return domain.UserFilter{}, apperrors.NewPermissionDenied()
	}
}
