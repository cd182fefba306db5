package redis

import (
	"fmt"

	"github.com/mcoot/quickchess/internal/model"
)

// Key prefix for all coordinator data
const keyPrefix = "quickchess"

// playersKey returns the Redis key holding the whole player registry
// snapshot. A single key keeps the snapshot write atomic.
func playersKey() string {
	return fmt.Sprintf("%s:players", keyPrefix)
}

// gameKey returns the Redis key for an archived game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}
