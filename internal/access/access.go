// Package access описывает роли пользователей и явную таблицу прав
// "роль -> действие". Роль вычисляется один раз при выдаче токена
// и проверяется в каждом запросе без обращения к базе.
package access

import "slices"

// Role роль пользователя.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ModeratorsGroup имя группы, членство в которой даёт роль модератора.
const ModeratorsGroup = "moderators"

// Action действие над курсами, уроками, пользователями или платежами.
type Action string

const (
	ActionRead            Action = "read"
	ActionListAll         Action = "list_all"
	ActionCreate          Action = "create"
	ActionUpdate          Action = "update"
	ActionDelete          Action = "delete"
	ActionDeleteUser      Action = "delete_user"
	ActionListAllPayments Action = "list_all_payments"
)

var permissions = map[Role]map[Action]bool{
	RoleUser: {
		ActionRead: true,
	},
	RoleModerator: {
		ActionRead:    true,
		ActionListAll: true,
		ActionUpdate:  true,
	},
	RoleAdmin: {
		ActionRead:            true,
		ActionListAll:         true,
		ActionCreate:          true,
		ActionUpdate:          true,
		ActionDelete:          true,
		ActionDeleteUser:      true,
		ActionListAllPayments: true,
	},
}

// ownerActions действия, разрешённые владельцу объекта независимо от роли.
var ownerActions = map[Action]bool{
	ActionUpdate: true,
}

// Identity аутентифицированный пользователь запроса.
type Identity struct {
	UserID int64
	Email  string
	Role   Role
}

// RoleOf вычисляет роль по флагам и группам пользователя.
func RoleOf(isStaff, isSuperuser bool, groups []string) Role {
	if isStaff || isSuperuser {
		return RoleAdmin
	}
	if slices.Contains(groups, ModeratorsGroup) {
		return RoleModerator
	}
	return RoleUser
}

// ParseRole возвращает роль из строкового значения claim.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	_, ok := permissions[r]
	return r, ok
}

// Can сообщает, разрешено ли роли действие без учёта владения.
func Can(role Role, action Action) bool {
	return permissions[role][action]
}

// CanOn проверяет действие над конкретным объектом с владельцем ownerID.
// Владелец nil означает объект без владельца.
func CanOn(id Identity, action Action, ownerID *int64) bool {
	if Can(id.Role, action) {
		return true
	}
	return ownerActions[action] && ownerID != nil && *ownerID == id.UserID
}

// SeesAll сообщает, видит ли пользователь чужие курсы и уроки в списках.
func (id Identity) SeesAll() bool {
	return Can(id.Role, ActionListAll)
}

// IsAdmin сообщает, является ли пользователь администратором.
func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}
