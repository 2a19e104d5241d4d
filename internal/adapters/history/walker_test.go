package history

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// marketFileBZ2 es un archivo de mercado real de una línea, comprimido:
// marketDefinition con bettingType=ODDS, marketType=WIN, name="R1 1200m Mdn".
const marketFileBZ2 = "QlpoOTFBWSZTWRzOKk8AALBfgEAQUAd/8D4j3Zo/794qMAD5soaKZJp5T1BhGgMgAeiGQ9T0g0mEiemppoADQAAAABppEj0gAaB6amgA9QABpVpl7PWhWanjvjEePsEkeuYaPn4SNqMc4JThBQhFKlEuZMVY4DMUCgzLRBUcXpLYDATBqtkBjDNII6FtTDLOcXm8RkgihXNOElzIgemda0CIM4gbiLBoG7YjQ2rMJuDcAXSsI2MjaIbTUIpM4oFrOwFdKycv4Lw+lZBWZxNEzHAOjnThIajVIbxCYKj9P6vgpU2PQlUAuNBiyG8BZggqAUGFlKrfepC5IGDhAmoiqEYZSCWBK8e33eN1SP4u5IpwoSA5nFSe"

func writeBZ2(t *testing.T, path string) {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(marketFileBZ2)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// writeMarket crea el archivo comprimido y su versión plana con el
// contenido dado, simulando un recorrido previo que ya descomprimió.
func writeMarket(t *testing.T, path, firstLine string) {
	t.Helper()
	writeBZ2(t, path+".bz2")
	require.NoError(t, os.WriteFile(path, []byte(firstLine+"\n"), 0o644))
}

const headerWIN = `{"op":"mcm","mc":[{"id":"1.1","marketDefinition":{"bettingType":"ODDS","marketType":"WIN","name":"R1 1200m Mdn"}}]}`
const headerPLACE = `{"op":"mcm","mc":[{"id":"1.2","marketDefinition":{"bettingType":"ODDS","marketType":"PLACE","name":"R1 To Be Placed"}}]}`
const headerTrot = `{"op":"mcm","mc":[{"id":"1.3","marketDefinition":{"bettingType":"ODDS","marketType":"WIN","name":"R3 Trot Mobile"}}]}`
const headerPace = `{"op":"mcm","mc":[{"id":"1.4","marketDefinition":{"bettingType":"ODDS","marketType":"WIN","name":"R4 Pace Stand"}}]}`

func TestWalk_DescomprimeYListaEnOrden(t *testing.T) {
	root := t.TempDir()
	writeBZ2(t, filepath.Join(root, "2020", "Aug", "2", "29936590", "1.171755571.bz2"))
	writeBZ2(t, filepath.Join(root, "2020", "Aug", "1", "29936500", "1.171755000.bz2"))

	files, err := Walk(root, Options{})
	require.NoError(t, err)
	require.Len(t, files, 2)

	// días ordenados: 1 antes que 2
	assert.Equal(t, filepath.Join(root, "2020", "Aug", "1", "29936500", "1.171755000"), files[0])
	assert.Equal(t, filepath.Join(root, "2020", "Aug", "2", "29936590", "1.171755571"), files[1])

	// el archivo plano quedó junto a la fuente con el contenido descomprimido
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"marketType":"WIN"`)
}

func TestWalk_NoRedescomprimeSiYaExiste(t *testing.T) {
	root := t.TempDir()
	plain := filepath.Join(root, "2020", "Aug", "2", "29936590", "1.171755571")
	writeMarket(t, plain, headerWIN)

	// contenido centinela distinto al del bz2
	require.NoError(t, os.WriteFile(plain, []byte("sentinel\n"), 0o644))

	files, err := Walk(root, Options{})
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(plain)
	require.NoError(t, err)
	assert.Equal(t, "sentinel\n", string(data), "el archivo ya descomprimido no se vuelve a escribir")
}

func TestWalk_IncludeRestringeElRecorrido(t *testing.T) {
	root := t.TempDir()
	writeBZ2(t, filepath.Join(root, "2020", "Aug", "2", "e1", "1.100.bz2"))
	writeBZ2(t, filepath.Join(root, "2020", "Sep", "2", "e2", "1.101.bz2"))
	writeBZ2(t, filepath.Join(root, "2021", "Aug", "2", "e3", "1.102.bz2"))

	files, err := Walk(root, Options{Years: []string{"2020"}, Months: []string{"Aug"}})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, files[0], filepath.Join("2020", "Aug"))
}

func TestWalk_FiltraPorMarketDefinition(t *testing.T) {
	root := t.TempDir()
	writeMarket(t, filepath.Join(root, "2020", "Aug", "2", "e1", "1.100"), headerWIN)
	writeMarket(t, filepath.Join(root, "2020", "Aug", "2", "e1", "1.101"), headerPLACE)

	files, err := Walk(root, Options{Filters: map[string]string{"marketType": "WIN"}})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "2020", "Aug", "2", "e1", "1.100"), files[0])
}

func TestWalk_ExcluyeHarnessConCualquierFiltro(t *testing.T) {
	root := t.TempDir()
	writeMarket(t, filepath.Join(root, "2020", "Aug", "2", "e1", "1.100"), headerWIN)
	writeMarket(t, filepath.Join(root, "2020", "Aug", "2", "e1", "1.103"), headerTrot)
	writeMarket(t, filepath.Join(root, "2020", "Aug", "2", "e1", "1.104"), headerPace)

	// los archivos Trot/Pace pasan el filtro de keys pero se excluyen igual
	files, err := Walk(root, Options{Filters: map[string]string{"marketType": "WIN"}})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "2020", "Aug", "2", "e1", "1.100"), files[0])
}

func TestWalk_SinFiltrosNoAbreArchivos(t *testing.T) {
	root := t.TempDir()
	// header ilegible: si Walk intentara parsearlo fallaría
	writeMarket(t, filepath.Join(root, "2020", "Aug", "2", "e1", "1.100"), "not json")

	files, err := Walk(root, Options{})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestWalk_DeleteFilteredBorraAmbosArchivos(t *testing.T) {
	root := t.TempDir()
	kept := filepath.Join(root, "2020", "Aug", "2", "e1", "1.100")
	dropped := filepath.Join(root, "2020", "Aug", "2", "e1", "1.101")
	writeMarket(t, kept, headerWIN)
	writeMarket(t, dropped, headerPLACE)

	_, err := Walk(root, Options{
		Filters:        map[string]string{"marketType": "WIN"},
		DeleteFiltered: true,
	})
	require.NoError(t, err)

	_, err = os.Stat(dropped)
	assert.True(t, os.IsNotExist(err), "el plano filtrado se borra")
	_, err = os.Stat(dropped + ".bz2")
	assert.True(t, os.IsNotExist(err), "la fuente filtrada se borra")
	_, err = os.Stat(kept)
	assert.NoError(t, err)
}

func TestWalk_SinResultadosEsErrNoFiles(t *testing.T) {
	root := t.TempDir()
	writeMarket(t, filepath.Join(root, "2020", "Aug", "2", "e1", "1.101"), headerPLACE)

	_, err := Walk(root, Options{Filters: map[string]string{"marketType": "WIN"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestWalk_DirectorioVacioEsErrNoFiles(t *testing.T) {
	_, err := Walk(t.TempDir(), Options{})
	assert.ErrorIs(t, err, ErrNoFiles)
}
