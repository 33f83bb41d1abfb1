package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component returns a child of the global logger tagged with cmp=name, e.g.
// "store" for collection mutations. The global logger must be installed
// before the component is created; main does this in the root Before hook.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}
