package git

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/harvest/internal/core/ports"
)

// NodeID is the unique identifier for the workspace manager Graft node.
const NodeID graft.ID = "adapter.workspace"

func init() {
	graft.Register(graft.Node[ports.WorkspaceManager]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.WorkspaceManager, error) {
			return New(), nil
		},
	})
}
