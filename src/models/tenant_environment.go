package models

import (
	"fmt"

	"github.com/google/uuid"
)

// TenantEnvironment identifies one sync scope: a tenant/environment/company
// combination with its destination database coordinates. Fetched fresh from
// the control registry on every run; never cached across runs.
type TenantEnvironment struct {
	EnvironmentID   uuid.UUID `db:"environment_id"`
	TenantID        uuid.UUID `db:"tenant_id"`
	DatabaseServer  string    `db:"database_server"`
	DatabaseName    string    `db:"database_name"`
	EnvironmentName string    `db:"environment_name"`
	BCTenantID      uuid.UUID `db:"bc_tenant_id"`
	CompanyID       uuid.UUID `db:"company_id"`
	CompanyName     string    `db:"company_name"`
	ClientID        uuid.UUID `db:"client_id"`
}

// Scope returns the discriminator values written alongside every destination
// row when several environments share one physical table.
func (t TenantEnvironment) Scope() Scope {
	return Scope{EnvironmentName: t.EnvironmentName, CompanyID: t.CompanyID}
}

// Scope is the discriminator pair appended to destination rows and sync-log
// keys. The zero value means a dedicated single-tenant destination, where
// the merge key degenerates to SystemId alone.
type Scope struct {
	EnvironmentName string
	CompanyID       uuid.UUID
}

// ConnectionDescriptor is an immutable, fully resolved set of connection
// parameters for one scope's destination database. Built once per scope and
// injected into the store; never reconstructed ad hoc.
type ConnectionDescriptor struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	SSLMode  string

	// ConnString, when set, wins over the discrete fields.
	ConnString string
}

func (d ConnectionDescriptor) DSN() string {
	if d.ConnString != "" {
		return d.ConnString
	}
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.Username, d.Password, d.Database, d.Port, sslMode)
}
