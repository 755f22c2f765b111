package app

import (
	"time"

	"github.com/golang/glog"
)

func utcNow() time.Time {
	return time.Now().UTC()
}

// logAudit reports audit write failures without failing the operation.
// The response and signature facts remain the authoritative record.
func logAudit(err error) {
	if err != nil {
		glog.Warningf("failed to write audit log: %v", err)
	}
}
