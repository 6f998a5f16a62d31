package authz

import (
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/apperr"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/prometheus"
)

func permissionError(reason string) error {
	prometheus.RecordGateDenial(reason)
	return apperr.Permission("access denied (%s)", reason)
}
