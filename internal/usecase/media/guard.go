package media

import (
	"github.com/templeatlas/media-pipeline-go/internal/naming"
)

// ScopeGuard decides whether a finalized object concerns the pipeline at
// all. It is consulted before any store lookup: the dominant traffic pattern
// is "not our concern", so this filter must stay pure and cheap.
type ScopeGuard struct {
	folders      []string
	variantNames []string
}

func NewScopeGuard(folders []string, variantNames []string) *ScopeGuard {
	return &ScopeGuard{folders: folders, variantNames: variantNames}
}

// ShouldProcess rejects non-images, objects outside the monitored folders,
// and objects that are themselves derived variants. The variant check is the
// loop-breaker: without it each generated variant's own finalize event would
// re-trigger generation forever.
func (g *ScopeGuard) ShouldProcess(objectKey, contentType string) bool {
	if !IsImage(contentType) {
		return false
	}
	if !naming.InFolder(objectKey, g.folders) {
		return false
	}
	if naming.IsVariantKey(objectKey, g.variantNames) {
		return false
	}
	return true
}
