package pdfflatten

import (
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// systemFontPaths is the ordered probe list for a sans-serif system font.
// First existing path wins; absence of all candidates is not an error.
var systemFontPaths = []string{
	`C:\Windows\Fonts\segoeui.ttf`,
	`C:\Windows\Fonts\arial.ttf`,
	"/System/Library/Fonts/SFNS.ttf",
	"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

// findFont returns the first existing system font path, or "" if none exist.
func findFont() string {
	for _, path := range systemFontPaths {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// loadFace resolves a font face sized sizePx pixels. Resolution failures
// never propagate: any problem degrades silently to the built-in bitmap face.
func loadFace(sizePx int) font.Face {
	path := findFont()
	if path == "" {
		return basicfont.Face7x13
	}
	data, err := os.ReadFile(path) // #nosec G304 -- fixed probe list
	if err != nil {
		return basicfont.Face7x13
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return basicfont.Face7x13
	}
	// Size is in points; at 72 DPI one point is one pixel.
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(sizePx),
		DPI:     baseDPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}
