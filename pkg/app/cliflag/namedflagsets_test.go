package cliflag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamedFlagSets_Order(t *testing.T) {
	var fss NamedFlagSets
	fss.FlagSet("http").String("http.addr", ":8000", "listen address")
	fss.FlagSet("log").String("log.level", "info", "log level")
	fss.FlagSet("http").Duration("http.read-timeout", 0, "read timeout")

	assert.Equal(t, []string{"http", "log"}, fss.Order)
	assert.NotNil(t, fss.FlagSets["http"].Lookup("http.read-timeout"))
}

func TestPrintSections(t *testing.T) {
	var fss NamedFlagSets
	fss.FlagSet("rag").Int("rag.chunk-size", 800, "chunk size")
	fss.FlagSet("empty")

	var buf bytes.Buffer
	PrintSections(&buf, fss, 0)

	assert.Contains(t, buf.String(), "Rag flags:")
	assert.Contains(t, buf.String(), "--rag.chunk-size")
	assert.NotContains(t, buf.String(), "Empty flags:")
}
