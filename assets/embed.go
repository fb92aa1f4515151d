package assets

import (
	"embed"
	"io/fs"
)

//go:embed countries.csv
var FS embed.FS

// CountriesFile is the embedded default vocabulary (code,name per row).
const CountriesFile = "countries.csv"

// Countries opens the embedded country list.
func Countries() (fs.File, error) {
	return FS.Open(CountriesFile)
}
