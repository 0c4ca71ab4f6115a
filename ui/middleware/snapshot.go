package middleware

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"aivaceo/domain/dataset"
)

const snapshotKey = "snapshot"

// SnapshotGetter resolves a snapshot by ID
type SnapshotGetter interface {
	Get(ctx context.Context, id string) (*dataset.Snapshot, error)
}

// LoadSnapshot resolves the :id path parameter into a snapshot and stores it
// on the context; unknown IDs abort the request.
func LoadSnapshot(getter SnapshotGetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		snap, err := getter.Get(c.Request.Context(), id)
		if err != nil {
			log.Printf("[LoadSnapshot] Dataset %q unavailable: %v", id, err)
			AbortWithError(c, err)
			return
		}
		c.Set(snapshotKey, snap)
		c.Next()
	}
}

// Snapshot returns the snapshot stored by LoadSnapshot
func Snapshot(c *gin.Context) *dataset.Snapshot {
	v, ok := c.Get(snapshotKey)
	if !ok {
		return nil
	}
	snap, _ := v.(*dataset.Snapshot)
	return snap
}
