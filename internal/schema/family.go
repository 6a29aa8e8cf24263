package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Family identifies a supported database family
type Family int

const (
	FamilyMySQL Family = iota + 1
	FamilyPostgres
	FamilySQLite
)

// ErrUnsupportedDriver is matched by every UnsupportedDriverError
var ErrUnsupportedDriver = errors.New("unsupported driver")

// UnsupportedDriverError reports a driver identifier no reader exists for
type UnsupportedDriverError struct {
	Driver    string
	Supported []string
}

func (e *UnsupportedDriverError) Error() string {
	return fmt.Sprintf("unsupported driver %q (supported: %s)", e.Driver, strings.Join(e.Supported, ", "))
}

func (e *UnsupportedDriverError) Is(target error) bool {
	return target == ErrUnsupportedDriver
}

var driverAliases = map[string]Family{
	"mysql":      FamilyMySQL,
	"mariadb":    FamilyMySQL,
	"postgres":   FamilyPostgres,
	"postgresql": FamilyPostgres,
	"pgsql":      FamilyPostgres,
	"pgx":        FamilyPostgres,
	"sqlite":     FamilySQLite,
	"sqlite3":    FamilySQLite,
}

// SupportedDrivers lists the driver identifiers ParseFamily accepts
func SupportedDrivers() []string {
	return []string{"mariadb", "mysql", "pgsql", "pgx", "postgres", "postgresql", "sqlite", "sqlite3"}
}

// ParseFamily resolves a driver identifier, case-insensitively
func ParseFamily(driver string) (Family, error) {
	if f, ok := driverAliases[strings.ToLower(strings.TrimSpace(driver))]; ok {
		return f, nil
	}
	return 0, &UnsupportedDriverError{Driver: driver, Supported: SupportedDrivers()}
}

func (f Family) String() string {
	switch f {
	case FamilyMySQL:
		return "mysql"
	case FamilyPostgres:
		return "postgres"
	case FamilySQLite:
		return "sqlite"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// Referential actions
const (
	ActionCascade    = "CASCADE"
	ActionRestrict   = "RESTRICT"
	ActionSetNull    = "SET NULL"
	ActionSetDefault = "SET DEFAULT"
	ActionNoAction   = "NO ACTION"
)

// NormalizeAction maps a vendor spelling of a referential action to its
// uppercase keyword. Postgres pg_constraint codes are understood too.
// Anything unrecognized, including the empty string, is NO ACTION.
func NormalizeAction(raw string) string {
	switch strings.TrimSpace(raw) {
	case "c":
		return ActionCascade
	case "r":
		return ActionRestrict
	case "n":
		return ActionSetNull
	case "d":
		return ActionSetDefault
	case "a":
		return ActionNoAction
	}

	action := strings.ToUpper(strings.TrimSpace(raw))
	action = strings.Join(strings.Fields(strings.ReplaceAll(action, "_", " ")), " ")
	switch action {
	case ActionCascade, ActionRestrict, ActionSetNull, ActionSetDefault, ActionNoAction:
		return action
	default:
		return ActionNoAction
	}
}
