package styles

// Glyphs used in list and detail output. Plain Unicode so they render without
// a patched font.
var (
	IconFavorite  = "★"
	IconCompleted = "✓"
	IconOpen      = "·"
	IconBadge     = "◆"
	IconLocked    = "◇"
)
