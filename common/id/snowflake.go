package id

import (
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init sets up the node for this bot instance. Only the first valid call has
// effect; instances sharing a chat account need distinct node ids.
func Init(nodeID int64) error {
	if nodeID < 0 || nodeID > 1<<snowflake.NodeBits-1 {
		return fmt.Errorf("snowflake node id %d out of range [0, %d]", nodeID, 1<<snowflake.NodeBits-1)
	}
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New returns a triage run id. Init must have succeeded.
func New() int64 {
	return node.Generate().Int64()
}

// Time reports when a run id was issued.
func Time(runID int64) time.Time {
	return time.UnixMilli(snowflake.ParseInt64(runID).Time())
}
