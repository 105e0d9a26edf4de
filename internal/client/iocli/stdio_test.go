package iocli

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Проверяем что NewStdio возвращает валидный объект
func TestNewStdio(t *testing.T) {
	stdio := NewStdio()
	assert.NotNil(t, stdio)
}

func TestPrintlnPrintfWrite(t *testing.T) {
	var out bytes.Buffer
	stdio := newStdio(os.Stdin, &out)

	stdio.Println("hello", "world")
	stdio.Printf("test %d %s\n", 1, "abc")
	_, err := stdio.Write([]byte("raw"))
	require.NoError(t, err)

	assert.Equal(t, "hello world\ntest 1 abc\nraw", out.String())
}

// pipeInput подменяет stdin на pipe с заданным содержимым
func pipeInput(t *testing.T, input string) *os.File {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	go func() {
		_, _ = w.Write([]byte(input))
		_ = w.Close()
	}()

	t.Cleanup(func() { _ = r.Close() })
	return r
}

// Тест ReadInput: читаем несколько строк из одного потока
func TestReadInput(t *testing.T) {
	var out bytes.Buffer
	stdio := newStdio(pipeInput(t, "  first line \nsecond\nlast"), &out)

	first, err := stdio.ReadInput("Prompt: ")
	require.NoError(t, err)
	assert.Equal(t, "first line", first)

	second, err := stdio.ReadInput("Prompt: ")
	require.NoError(t, err)
	assert.Equal(t, "second", second)

	// Последняя строка без перевода строки
	last, err := stdio.ReadInput("Prompt: ")
	require.NoError(t, err)
	assert.Equal(t, "last", last)

	_, err = stdio.ReadInput("Prompt: ")
	assert.Error(t, err)

	assert.Equal(t, "Prompt: Prompt: Prompt: Prompt: ", out.String())
}

// Не терминал: пароль читается как строка
func TestReadPassword_NotTerminal(t *testing.T) {
	var out bytes.Buffer
	stdio := newStdio(pipeInput(t, "s3cret\n"), &out)

	password, err := stdio.ReadPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", password)
}
