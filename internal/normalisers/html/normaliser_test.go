package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

func TestMetadata(t *testing.T) {
	n := New()
	assert.Equal(t, "html", n.Name())
	assert.Contains(t, n.SupportedMIMETypes(), domain.MIMETypeHTML)
	assert.Contains(t, n.SupportedMIMETypes(), "application/xhtml+xml")
	assert.Equal(t, 60, n.Priority())
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "paragraphs",
			input: "<p>First</p><p>Second</p>",
			want:  "First\nSecond",
		},
		{
			name:  "inline elements stay on the line",
			input: "<p>Section <b>302</b> of the <i>Penal Code</i></p>",
			want:  "Section 302 of the Penal Code",
		},
		{
			name:  "entities decoded",
			input: "<p>Smith &amp; Sons &lt;appellant&gt; &#167;5</p>",
			want:  "Smith & Sons <appellant> §5",
		},
		{
			name:  "scripts styles and head dropped",
			input: "<html><head><title>Judgment</title><style>p{}</style></head><body><script>var x = 1;</script><p>Held</p><noscript>js</noscript></body></html>",
			want:  "Held",
		},
		{
			name:  "unclosed head ends at body",
			input: "<head><title>T</title><body><p>Order</p>",
			want:  "Order",
		},
		{
			name:  "line breaks and lists",
			input: "Line one<br>Line two<br/><ul><li>Bail</li><li>Appeal</li></ul>",
			want:  "Line one\nLine two\nBail\nAppeal",
		},
		{
			name:  "table cells spaced",
			input: "<table><tr><td>Section</td><td>Offence</td></tr><tr><td>420</td><td>Cheating</td></tr></table>",
			want:  "Section Offence\n420 Cheating",
		},
		{
			name:  "whitespace collapsed",
			input: "<div>\n   spread    across\t\tspaces   \n\n\n</div>",
			want:  "spread across spaces",
		},
		{
			name:  "comments ignored",
			input: "<p>Kept<!-- hidden --></p>",
			want:  "Kept",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractText([]byte(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalise(t *testing.T) {
	raw := domain.NewRawDocument("judgment.html", "", []byte("<h1>State v. Rao</h1><p>Appeal dismissed.</p>"))
	require.Equal(t, domain.MIMETypeHTML, raw.MIMEType)

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"State v. Rao\nAppeal dismissed."}, result.Pages)
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}
