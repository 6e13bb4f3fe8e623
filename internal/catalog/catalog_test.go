package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/co2-zone-map/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const citiesCSV = `name,latitude,longitude,co2
Delhi,28.7041,77.1025,418
Mumbai,19.0760,72.8777,
 ,1,1,400
Chennai,13.0827,80.2707,409
`

func TestLoad(t *testing.T) {
	c, err := Load(strings.NewReader(citiesCSV))
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len(), "blank names are skipped")
	assert.Equal(t, []string{"chennai", "delhi", "mumbai"}, c.Names())

	delhi, err := c.Lookup("DELHI")
	require.NoError(t, err)
	assert.Equal(t, City{Name: "Delhi", Latitude: 28.7041, Longitude: 77.1025, CO2: "418"}, delhi)

	mumbai, err := c.Lookup("mumbai")
	require.NoError(t, err)
	assert.Equal(t, "N/A", mumbai.CO2)
}

func TestLoad_WithoutCO2Column(t *testing.T) {
	c, err := Load(strings.NewReader("Name,Latitude,Longitude\nPune,18.52,73.85\n"))
	require.NoError(t, err)

	pune, err := c.Lookup("Pune")
	require.NoError(t, err)
	assert.Equal(t, "N/A", pune.CO2)
}

func TestLoad_MissingColumn(t *testing.T) {
	_, err := Load(strings.NewReader("name,latitude\nDelhi,28.7\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "longitude")
}

func TestLoad_InvalidLatitude(t *testing.T) {
	_, err := Load(strings.NewReader("name,latitude,longitude\nDelhi,north,77\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestLoad_EmptyInput(t *testing.T) {
	_, err := Load(strings.NewReader(""))
	require.Error(t, err)
}

func TestLookup_NotFound(t *testing.T) {
	c, err := Load(strings.NewReader(citiesCSV))
	require.NoError(t, err)

	_, err = c.Lookup("Atlantis")
	require.ErrorIs(t, err, domain.ErrCityNotFound)
}

func TestAll_ReturnsCopy(t *testing.T) {
	c, err := Load(strings.NewReader(citiesCSV))
	require.NoError(t, err)

	all := c.All()
	delete(all, "delhi")

	assert.Equal(t, 3, c.Len())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cities.csv")
	require.NoError(t, os.WriteFile(path, []byte(citiesCSV), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	empty, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}

func TestLoad_StripsByteOrderMark(t *testing.T) {
	c, err := Load(strings.NewReader("\ufeffname,latitude,longitude\nDelhi,28.7,77.1\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}
