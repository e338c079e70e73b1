package service

import (
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/domain"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/ports"
)

// TenantPolicy decides which records an actor may see and touch.
//
// Records are tagged with a center name at creation. Untagged records only
// exist in databases written before tenancy; AllowUntagged makes them visible
// and writable from every center.
type TenantPolicy struct {
	AllowUntagged bool
}

// Scope returns the listing filter for actor.
func (p TenantPolicy) Scope(actor domain.Actor) ports.TenantScope {
	return ports.TenantScope{
		CenterName:      actor.CenterName,
		IncludeUntagged: p.AllowUntagged,
	}
}

// Owns reports whether a record tagged with centerName belongs to actor's center.
func (p TenantPolicy) Owns(actor domain.Actor, centerName string) bool {
	if centerName == "" {
		return p.AllowUntagged
	}
	return centerName == actor.CenterName
}
