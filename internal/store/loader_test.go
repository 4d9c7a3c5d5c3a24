package store_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/restalytics/restalytics/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
  "restaurante": {"nome": "Pizzaria do Zé"},
  "pedidos": [
    {
      "cliente": {"nome": "Ana"},
      "valor_total": 30.0,
      "data_pedido": "2025-07-14T09:00:00",
      "dia_semana": "Segunda-feira",
      "horario_recebimento": "09:00:00",
      "horario_despacho": "09:10:00",
      "itens": [{"nome_produto": "Pizza", "quantidade": 2}]
    }
  ]
}`

func TestParseOrderLog(t *testing.T) {
	log, err := store.ParseOrderLog([]byte(samplePayload))
	require.NoError(t, err)

	assert.Equal(t, "Pizzaria do Zé", log.Restaurant.Name)
	require.Len(t, log.Orders, 1)

	order := log.Orders[0]
	assert.Equal(t, "Ana", order.Customer.Name)
	assert.Equal(t, 30.0, order.Total)
	assert.Equal(t, "Segunda-feira", order.WeekdayName)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Pizza", order.Items[0].ProductName)
	assert.Equal(t, 2, order.Items[0].Quantity)
}

func TestParseOrderLogMalformedPayload(t *testing.T) {
	for _, payload := range []string{"not json at all", "{", `[1,2,3`} {
		_, err := store.ParseOrderLog([]byte(payload))
		require.Error(t, err, "payload %q", payload)
		assert.True(t, errors.Is(err, store.ErrInvalidInputFormat))
	}
}

func TestParseOrderLogMissingSectionsDefault(t *testing.T) {
	log, err := store.ParseOrderLog([]byte(`{}`))
	require.NoError(t, err)

	assert.Equal(t, "", log.Restaurant.Name)
	assert.NotNil(t, log.Orders)
	assert.Empty(t, log.Orders)
}

func TestFileStoreLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pedidos.json")
	require.NoError(t, os.WriteFile(path, []byte(samplePayload), 0o644))

	log, err := store.NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "Pizzaria do Zé", log.Restaurant.Name)
}

func TestFileStoreMissingFile(t *testing.T) {
	_, err := store.NewFileStore(filepath.Join(t.TempDir(), "nope.json")).Load()
	assert.Error(t, err)
}
