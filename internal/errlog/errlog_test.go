package errlog

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	at := time.Date(2024, 3, 7, 9, 5, 2, 0, time.UTC)
	assert.Equal(t, "2024-03-07 09:05:02 - Arquivo CSV está vazio\n", FormatLine("Arquivo CSV está vazio", at))
}

func TestFileLog_AppendsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2024, 3, 7, 9, 5, 2, 0, time.UTC)

	l, err := Open(dir, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, l.Append("primeiro", at))
	require.NoError(t, l.Close())

	l, err = Open(dir, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, l.Append("segundo", at.Add(time.Second)))
	require.NoError(t, l.Close())

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Equal(t,
		"2024-03-07 09:05:02 - primeiro\n2024-03-07 09:05:03 - segundo\n",
		string(data))
}

func TestFileLog_ConcurrentAppendsDoNotInterleave(t *testing.T) {
	l, err := Open(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	defer l.Close()

	const writers, perWriter = 8, 50
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				msg := fmt.Sprintf("writer %d entry %d %s", w, i, strings.Repeat("x", 200))
				assert.NoError(t, l.Append(msg, at))
			}
		}(w)
	}
	wg.Wait()

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, writers*perWriter)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "2024-01-01 00:00:00 - writer "), line)
		assert.True(t, strings.HasSuffix(line, strings.Repeat("x", 200)), line)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Append("a", time.Time{}))
	require.NoError(t, m.Append("b", time.Time{}))

	assert.Equal(t, []string{"a", "b"}, m.Messages())

	entries := m.Entries()
	entries[0].Message = "changed"
	assert.Equal(t, "a", m.Entries()[0].Message)
}
