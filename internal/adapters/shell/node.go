package shell

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/harvest/internal/core/ports"
)

// NodeID is the unique identifier for the build executor Graft node.
const NodeID graft.ID = "adapter.builder"

func init() {
	graft.Register(graft.Node[ports.Builder]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Builder, error) {
			return NewExecutor(), nil
		},
	})
}
