package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewReceiptConfigHolderReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "receipt.yml")
	content := []byte(`receipt:
  shop_name: Corner Shop
  address_lines:
    - 12 Market Street
    - Springfield
  footer: See you soon
  width: 42
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	holder, err := NewReceiptConfigHolder(Config{ReceiptConfigPath: path}, zap.NewNop())
	require.NoError(t, err)

	got := holder.Get()
	assert.Equal(t, "Corner Shop", got.ShopName)
	assert.Equal(t, []string{"12 Market Street", "Springfield"}, got.AddressLines)
	assert.Equal(t, "See you soon", got.Footer)
	assert.Equal(t, 42, got.Width)
}

func TestNewReceiptConfigHolderRejectsBadWidth(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "receipt.yml")
	require.NoError(t, os.WriteFile(path, []byte("receipt:\n  shop_name: X\n  width: 5\n"), 0o600))

	_, err := NewReceiptConfigHolder(Config{ReceiptConfigPath: path}, zap.NewNop())
	assert.Error(t, err)
}

func TestStaticReceiptConfigHolder(t *testing.T) {
	holder := NewStaticReceiptConfigHolder(DefaultReceiptConfig())
	assert.Equal(t, 32, holder.Get().Width)
}
