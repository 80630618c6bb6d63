package model

// TileColor is the disclosed color category of a tile
type TileColor string

const (
	TileBlack TileColor = "black"
	TileWhite TileColor = "white"
)

// AllTiles returns the fixed tile pool each participant consumes over a game
func AllTiles() []int {
	return []int{1, 2, 3, 4, 5, 6, 7, 8, 9}
}

// TileColorOf returns the color category of a tile: even tiles are black,
// odd tiles are white
func TileColorOf(tile int) TileColor {
	if tile%2 == 0 {
		return TileBlack
	}
	return TileWhite
}

// ValidTile reports whether the tile belongs to the fixed pool
func ValidTile(tile int) bool {
	return tile >= 1 && tile <= 9
}
