package handlers

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbertone/inventario/internal/domain/services"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportHandler_Handle_CSVFile(t *testing.T) {
	th := newTestHandlers().seed()
	path := writeFile(t, "productos.csv", "nombre,precio\nMesa,120.50\nLámpara,30\n")

	result, err := th.imports.Handle(context.Background(), path, ImportOptions{})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Empty(t, result.Errors)
	assert.Len(t, th.store.Products, 4)
}

func TestImportHandler_Handle_JSONFile(t *testing.T) {
	th := newTestHandlers().seed()
	path := writeFile(t, "productos.json", `[{"nombre": "Mesa", "precio": 120.5}, {"nombre": "Silla roja", "precio": 1}]`)

	result, err := th.imports.Handle(context.Background(), path, ImportOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "nombre", result.Errors[0].Field)
}

func TestImportHandler_Handle_ExplicitFormat(t *testing.T) {
	th := newTestHandlers().seed()
	path := writeFile(t, "productos.txt", "nombre,precio\nMesa,10\n")

	result, err := th.imports.Handle(context.Background(), path, ImportOptions{Format: "csv"})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
}

func TestImportHandler_Handle_DryRun(t *testing.T) {
	th := newTestHandlers().seed()
	path := writeFile(t, "productos.csv", "nombre,precio\nMesa,10\n")

	result, err := th.imports.Handle(context.Background(), path, ImportOptions{DryRun: true})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Len(t, th.store.Products, 2)
	assert.Empty(t, th.store.History)
}

func TestImportHandler_Handle_EmptyFile(t *testing.T) {
	th := newTestHandlers().seed()
	path := writeFile(t, "productos.json", `[]`)

	result, err := th.imports.Handle(context.Background(), path, ImportOptions{})

	require.NoError(t, err)
	assert.Zero(t, result.Imported)
}

func TestImportHandler_Handle_UnsupportedFormat(t *testing.T) {
	th := newTestHandlers()
	path := writeFile(t, "productos.xml", "<productos/>")

	_, err := th.imports.Handle(context.Background(), path, ImportOptions{})

	require.ErrorIs(t, err, services.ErrInvalidInput)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestImportHandler_Handle_Stdin(t *testing.T) {
	th := newTestHandlers().seed()
	th.imports.stdin = strings.NewReader("nombre;precio\nMesa;12,5\n")

	result, err := th.imports.Handle(context.Background(), StdinSource, ImportOptions{Format: "csv"})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Len(t, th.store.Products, 3)
}

func TestImportHandler_Handle_StdinNeedsFormat(t *testing.T) {
	th := newTestHandlers().seed()
	th.imports.stdin = strings.NewReader("[]")

	_, err := th.imports.Handle(context.Background(), StdinSource, ImportOptions{})

	require.ErrorIs(t, err, services.ErrInvalidInput)
	assert.Contains(t, err.Error(), "cannot detect format")
}

func TestImportHandler_Handle_FileNotFound(t *testing.T) {
	th := newTestHandlers()

	_, err := th.imports.Handle(context.Background(), "/nonexistent/productos.json", ImportOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening file")
}
