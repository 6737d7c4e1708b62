package inspect

import (
	"github.com/riv-inspector/backend/internal/models"
	"github.com/riv-inspector/backend/internal/riv"
)

// assetCollector passively records every embedded asset the runtime reports
// during loading. One collector exists per parse; it is never shared.
type assetCollector struct {
	records []models.AssetRecord
}

// hook returns the callback registered with the runtime's asset-loading hook.
// It only observes; returning true tells the runtime to proceed with its own
// default loading.
func (c *assetCollector) hook() riv.AssetCallback {
	return func(a riv.Asset) bool {
		c.records = append(c.records, models.AssetRecord{Name: a.Name, CDNUUID: a.CDNUUID})
		return true
	}
}
