package domain

// Scene is one tabletop view. At most one scene is active at a time.
type Scene struct {
	ID     string
	Name   string
	Active bool
}

// RingConfig is the token ring decoration. Empty colors are unset.
type RingConfig struct {
	Enabled    bool
	Color      string
	Background string
}

// HasCustomColors reports whether either ring color is set. Any non-empty
// value counts, whitespace included.
func (r RingConfig) HasCustomColors() bool {
	return r.Color != "" || r.Background != ""
}

// Token is one placement of an actor (or a bare image) on a scene.
type Token struct {
	ID      string
	SceneID string
	Name    string
	// ActorID links the token to its actor. Empty means unlinked.
	ActorID string
	Ring    RingConfig
	// Sort orders tokens inside a scene; insertion order by default.
	Sort int
}
