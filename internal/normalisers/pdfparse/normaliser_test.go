package pdfparse

import (
	"context"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

func TestMetadata(t *testing.T) {
	n := New()
	assert.Equal(t, "pdfparse", n.Name())
	assert.Equal(t, []string{"application/pdf"}, n.SupportedMIMETypes())
	assert.Equal(t, 70, n.Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_EmptyDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), domain.NewRawDocument("a.pdf", "", nil))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_GarbageIsAnError(t *testing.T) {
	raw := domain.NewRawDocument("broken.pdf", domain.MIMETypePDF, []byte("this is not a pdf at all"))

	result, err := New().Normalise(context.Background(), raw)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "pdfparse")
}

func TestJoinRow(t *testing.T) {
	tests := []struct {
		name string
		runs []pdf.Text
		want string
	}{
		{
			name: "adjacent glyphs form one word",
			runs: []pdf.Text{
				{S: "Art", X: 10, W: 15, FontSize: 10},
				{S: "icle", X: 25, W: 20, FontSize: 10},
			},
			want: "Article",
		},
		{
			name: "wide gap becomes a space",
			runs: []pdf.Text{
				{S: "Article", X: 10, W: 35, FontSize: 10},
				{S: "21", X: 50, W: 10, FontSize: 10},
			},
			want: "Article 21",
		},
		{
			name: "out of order runs are sorted by x",
			runs: []pdf.Text{
				{S: "life", X: 60, W: 20, FontSize: 10},
				{S: "of", X: 45, W: 10, FontSize: 10},
				{S: "Right", X: 10, W: 30, FontSize: 10},
			},
			want: "Right of life",
		},
		{
			name: "existing spaces are not doubled",
			runs: []pdf.Text{
				{S: "Part ", X: 10, W: 25, FontSize: 10},
				{S: "III", X: 40, W: 15, FontSize: 10},
			},
			want: "Part III",
		},
		{
			name: "empty row",
			runs: nil,
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, joinRow(tc.runs))
		})
	}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}
