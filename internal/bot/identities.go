package bot

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"sync"
)

// Identity is a display profile for a stand-in participant.
type Identity struct {
	DisplayName string `json:"display_name"`
	AvatarIndex int    `json:"avatar_index"`
}

var (
	identities []Identity
	loadOnce   sync.Once
	loadErr    error
)

// defaultIdentities backs local runs where no identity file ships with the module.
var defaultIdentities = []Identity{
	{DisplayName: "Quinn the Quizzer"},
	{DisplayName: "Inspector Otto"},
	{DisplayName: "Marlow"},
	{DisplayName: "Greta Guesswell"},
}

// LoadIdentities loads the stand-in display profiles from the given path.
// Missing or malformed files leave the built-in pool in place.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read stand-in identities: %w", err)
			return
		}

		var loaded []Identity
		if err := json.Unmarshal(data, &loaded); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal stand-in identities: %w", err)
			return
		}
		if len(loaded) > 0 {
			identities = loaded
		}
	})
	return loadErr
}

// PickDisplayName deterministically assigns a pool name to a stand-in id, so
// the same stand-in keeps its name across broadcasts within a session.
func PickDisplayName(id string) string {
	pool := identities
	if len(pool) == 0 {
		pool = defaultIdentities
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return pool[int(h.Sum32())%len(pool)].DisplayName
}
