package output_test

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ilview/internal/ui/output"
)

func TestColorProfile_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, termenv.Ascii, output.ColorProfile())
}

func TestNew_WritesPlainTextWithoutColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	out := output.New(buf)
	require.NotNil(t, out)

	styled := out.String("plain").Foreground(termenv.RGBColor("#FF0000"))
	_, err := out.WriteString(styled.String())
	require.NoError(t, err)

	assert.Equal(t, "plain", buf.String())
}

func TestNew_NilWriterDefaultsToStderr(t *testing.T) {
	assert.NotNil(t, output.New(nil))
}
