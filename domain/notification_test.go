package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Preview_Truncation(t *testing.T) {
	req := require.New(t)

	exactly80 := strings.Repeat("a", 80)
	req.Equal(exactly80, Preview(exactly80))

	exactly81 := strings.Repeat("a", 81)
	preview := Preview(exactly81)
	req.Equal(strings.Repeat("a", 77)+"...", preview)
	req.Len(preview, 80)

	req.Equal("short note", Preview("short note"))
	req.Equal("", Preview(""))
}

func Test_Preview_Counts_Runes_Not_Bytes(t *testing.T) {
	req := require.New(t)

	long := strings.Repeat("é", 81)
	preview := Preview(long)
	req.Equal(strings.Repeat("é", 77)+"...", preview)
}
